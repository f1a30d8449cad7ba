package resource

import (
	"errors"
	"fmt"

	"github.com/tbourn/courtdesk-backend/internal/datastore"
)

// Sentinel errors returned (possibly wrapped) by Hook operations.
var (
	// ErrAuthRequired is returned by mutations when no session is active.
	// Nothing is written.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNotFound aliases the store's missing-row error so callers need not
	// import datastore.
	ErrNotFound = datastore.ErrNotFound

	// ErrConflict aliases the store's unique-violation error.
	ErrConflict = datastore.ErrConflict

	// ErrInvalidField means a patch named a column that is unknown or not
	// mutable, or carried a value of the wrong type.
	ErrInvalidField = errors.New("invalid field")

	// ErrInvalidStatus means the workflow state is not allowed by the schema.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrEmptyPatch means an update supplied no fields.
	ErrEmptyPatch = errors.New("no fields to update")
)

// Op names a mutation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// QueryError reports a failed read against the store. Reads are never
// retried.
type QueryError struct {
	Entity string
	Err    error
}

func (e *QueryError) Error() string { return fmt.Sprintf("query %s: %v", e.Entity, e.Err) }
func (e *QueryError) Unwrap() error { return e.Err }

// MutationError reports a rejected create, update, or delete.
type MutationError struct {
	Entity string
	Op     Op
	Err    error
}

func (e *MutationError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err) }
func (e *MutationError) Unwrap() error { return e.Err }

// IsValidation reports whether err stems from a rejected payload rather than
// the store.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyPatch)
}

// Cause strips the MutationError or QueryError envelope, returning the
// store's or validator's own error for user-facing messages.
func Cause(err error) error {
	var me *MutationError
	if errors.As(err, &me) {
		return me.Err
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Err
	}
	return err
}
