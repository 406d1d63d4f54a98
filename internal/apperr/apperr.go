// Package apperr defines the error kinds shared by the bulk gate, the
// aggregation engine and the HTTP layer.
package apperr

import (
	"github.com/cockroachdb/errors"

	"github.com/diewo77/invoice-desk/validation"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrValidation      = errors.New("invalid input")
	ErrDataAccess      = errors.New("data access failure")
	ErrNotFound        = errors.New("not found")
)

// ValidationError carries the field-scoped violations of a rejected request.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidation.Error()
	}
	first := e.Violations[0]
	return ErrValidation.Error() + ": " + first.Field + ": " + first.Message
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid wraps violations into a ValidationError.
func Invalid(v validation.Violations) error {
	return &ValidationError{Violations: v}
}

// InvalidField is a shortcut for a single violation.
func InvalidField(field, message string) error {
	return Invalid(validation.Violations{{Field: field, Message: message}})
}

// DataAccess wraps a storage failure. The original error stays in the chain
// for logging but must never be shown to callers.
func DataAccess(err error, op string) error {
	if err == nil {
		return nil
	}
	return &dataAccessError{err: errors.Wrap(err, op)}
}

type dataAccessError struct {
	err error
}

func (e *dataAccessError) Error() string { return e.err.Error() }
func (e *dataAccessError) Unwrap() error { return e.err }

// Is makes errors.Is(err, ErrDataAccess) true.
func (e *dataAccessError) Is(target error) bool { return target == ErrDataAccess }

// Violations extracts the violations of a validation error, if any.
func Violations(err error) (validation.Violations, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations, true
	}
	return nil, false
}
