package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// Guard errors: a referential or availability precondition failed. The
// guard runs before the mutating statement, so a rejected operation leaves
// the store untouched.
var (
	ErrAuthorHasBooks   = errors.New("author has dependent books")
	ErrBookHasOpenLoan  = errors.New("book has an active loan")
	ErrBookNotAvailable = errors.New("book is not available")
	ErrLoanNotOpen      = errors.New("loan is already closed")
	ErrNotFound         = errors.New("not found")
)

// IsGuardError reports whether err is one of the integrity guard
// rejections, as opposed to a validation or backend failure.
func IsGuardError(err error) bool {
	return errors.Is(err, ErrAuthorHasBooks) ||
		errors.Is(err, ErrBookHasOpenLoan) ||
		errors.Is(err, ErrBookNotAvailable) ||
		errors.Is(err, ErrLoanNotOpen)
}

// ValidationError rejects an operation before any statement runs because a
// required field is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// RequiredField builds the common "field is required" rejection.
func RequiredField(field string) *ValidationError {
	return &ValidationError{Field: field}
}

// IsValidationError reports whether err is a pre-write validation
// rejection.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BackendError wraps a failure of the storage layer itself. It carries the
// underlying message for display; callers never retry.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
