// internal/model/setting.go
package model

import "time"

// Setting is one per-tenant configuration row. The stored value is the JSON
// wrapper {"value": "..."} for compatibility with the settings consumers.
type Setting struct {
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SettingValue is the wrapper shape persisted in the value column.
type SettingValue struct {
	Value string `json:"value"`
}
