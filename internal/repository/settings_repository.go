// internal/repository/settings_repository.go
package repository

import (
	"database/sql"
	"encoding/json"

	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
)

type SettingsRepositoryInterface interface {
	Get(tenantID, key string) (string, error)
	Put(tenantID, key, value string) error
	Delete(tenantID, key string) error
}

// SettingsRepository stores per-tenant keyed settings. Values are wrapped as
// {"value": "..."} in the column; callers only ever see the inner string.
type SettingsRepository struct {
	DB *sql.DB
}

func (r *SettingsRepository) Get(tenantID, key string) (string, error) {
	var raw string
	err := r.DB.QueryRow(
		`SELECT value FROM tenant_settings WHERE tenant_id=$1 AND key=$2`,
		tenantID, key,
	).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", appErrors.NewNotFound("setting", key)
		}
		return "", err
	}

	var wrapper model.SettingValue
	if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
		return "", err
	}
	return wrapper.Value, nil
}

func (r *SettingsRepository) Put(tenantID, key, value string) error {
	raw, err := json.Marshal(model.SettingValue{Value: value})
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(`
        INSERT INTO tenant_settings (tenant_id, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (tenant_id, key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()
    `, tenantID, key, string(raw))
	return err
}

func (r *SettingsRepository) Delete(tenantID, key string) error {
	res, err := r.DB.Exec(
		`DELETE FROM tenant_settings WHERE tenant_id=$1 AND key=$2`,
		tenantID, key,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "setting", key)
}

var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)
