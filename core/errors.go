package core

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// ErrStoreUnavailable is the cause reported by every *StoreError.
var ErrStoreUnavailable = errors.New("store unavailable")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError reports that no record matches the requested key.
type NotFoundError struct {
	msg string
}

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{msg: msg}
}

func (err *NotFoundError) Error() string {
	return err.msg
}

// ConflictError reports a uniqueness violation on Field.
type ConflictError struct {
	Field string
	msg   string
}

func NewConflictError(field, msg string) *ConflictError {
	return &ConflictError{Field: field, msg: msg}
}

func (err *ConflictError) Error() string {
	return err.msg
}

// StoreError wraps a persistence failure the caller may retry.
type StoreError struct {
	Err error
}

func NewStoreError(err error) error {
	return &StoreError{Err: err}
}

func (err *StoreError) Error() string {
	return fmt.Sprintf("%v: %v", ErrStoreUnavailable, err.Err)
}

func (err *StoreError) Unwrap() error { return err.Err }

// LedgerWriteError is returned when an attendance change went through but its
// correction log entry could not be written. RolledBack tells whether the
// attendance change was undone; when it is false the two tables disagree and
// need manual reconciliation.
type LedgerWriteError struct {
	Err        error
	RolledBack bool
}

func (err *LedgerWriteError) Error() string {
	if err.RolledBack {
		return fmt.Sprintf("correction log write failed, attendance change rolled back: %v", err.Err)
	}
	return fmt.Sprintf("correction log write failed, attendance changed without log entry: %v", err.Err)
}

func (err *LedgerWriteError) Unwrap() error { return err.Err }

// RollbackError is returned when a failed transaction could not be rolled back.
type RollbackError struct {
	Err         error
	RollbackErr error
}

func (err *RollbackError) Error() string {
	return fmt.Sprintf("%v (rollback failed: %v)", err.Err, err.RollbackErr)
}

func (err *RollbackError) Unwrap() error { return err.Err }

// IsUnavailable reports whether err comes from an unreachable or timed out store.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
