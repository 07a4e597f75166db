// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ValidationError blocks an action before any persistence happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// AuthorizationError rejects a send that the conversation state forbids
// (suspended lead, or a sender that does not own the conversation).
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

func NewAuthorization(format string, args ...any) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

func IsAuthorization(err error) bool {
	var a *AuthorizationError
	return errors.As(err, &a)
}

// DeliveryError wraps a carrier rejection or timeout. It is recorded on the
// affected message row, never surfaced as a page-level failure.
type DeliveryError struct {
	Msg string
	Err error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func NewDelivery(msg string, err error) error {
	return &DeliveryError{Msg: msg, Err: err}
}

func IsDelivery(err error) bool {
	var d *DeliveryError
	return errors.As(err, &d)
}

// NotFoundError covers unknown leads, messages, campaigns and failed phone
// resolution.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}
