package domain

import "errors"

// Closed set of outcomes for gateway and controller operations. Call
// sites switch over these instead of probing response bodies.
var (
	ErrUnauthorized = errors.New("guide: unauthorized")
	ErrForbidden    = errors.New("guide: forbidden")
	ErrNotFound     = errors.New("guide: not found")
	ErrNetwork      = errors.New("guide: network failure")
)

// ValidationError covers input rejected locally (missing field, rating
// out of range, no session) or by the server. Msg is user-facing.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf is a convenience for local checks.
func Validationf(msg string) *ValidationError { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
