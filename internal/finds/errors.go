package finds

import (
	"errors"
	"fmt"
)

// Kind classifies a lifecycle failure for the caller.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindStorage    Kind = "storage"
)

// Error codes grouped by failure class.
const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeMissingRequired = 1001
	ErrCodeNoActiveSession = 1002
	ErrCodeInvalidUser     = 1003

	// Domain state (2xxx)
	ErrCodeFindNotFound = 2001
	ErrCodeFindIDExists = 2101

	// Storage (4xxx)
	ErrCodeStoreFailure      = 4002
	ErrCodeMediaCommitFailed = 4003
)

// Error is a typed failure surfaced by the find lifecycle. Validation
// and conflict failures are resolved here and never escape as raw store
// errors; storage failures wrap the underlying cause.
type Error struct {
	Kind Kind
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a lifecycle failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}

// CodeOf returns the numeric code of a lifecycle failure, or 0.
func CodeOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 0
}

func validationError(code int, err error) error {
	return &Error{Kind: KindValidation, Code: code, Err: err}
}

func conflictError(code int, err error) error {
	return &Error{Kind: KindConflict, Code: code, Err: err}
}

func notFoundError(code int, err error) error {
	return &Error{Kind: KindNotFound, Code: code, Err: err}
}

func storageError(code int, err error) error {
	return &Error{Kind: KindStorage, Code: code, Err: err}
}
