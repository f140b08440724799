package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used as the unwrap target for each typed error below.
// Callers classify errors with errors.Is against these sentinels.
var (
	ErrObjectNotFound         = errors.New("object not found")
	ErrValueIsRequired        = errors.New("value is required")
	ErrValueIsInvalid         = errors.New("value is invalid")
	ErrVersionConflict        = errors.New("version conflict")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidCursor          = errors.New("invalid cursor")
	ErrIdempotencyInFlight    = errors.New("idempotency key is being processed")
	ErrLockTimeout            = errors.New("lock wait timed out")
)

// sanitize collapses newlines so multi-line causes cannot break log lines.
func sanitize(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// ObjectNotFoundError indicates that a requested object does not exist.
// A tenant mismatch is reported with the same error as an unknown ID so
// callers cannot probe for the existence of other tenants' objects.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError without a cause.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping an underlying cause.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %s)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID))
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsRequiredError indicates that a required value was not provided.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError without a cause.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError wrapping an underlying cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsRequired, e.ParamName, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName))
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// ValueIsInvalidError indicates that a provided value failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError without a cause.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError wrapping an underlying cause.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsInvalid, e.ParamName, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName))
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// VersionConflictError indicates that an optimistic-lock check failed.
// It always carries both the version the caller expected and the version
// actually found, so clients can decide whether to retry with a fresh read.
type VersionConflictError struct {
	Expected int
	Actual   int
}

// NewVersionConflictError creates a VersionConflictError for the given version pair.
func NewVersionConflictError(expected, actual int) *VersionConflictError {
	return &VersionConflictError{Expected: expected, Actual: actual}
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s: expected version %d, actual version %d",
		ErrVersionConflict, e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}

// InvalidStateTransitionError indicates that an order transition was requested
// from a status that does not allow it.
type InvalidStateTransitionError struct {
	From string
	To   string
}

// NewInvalidStateTransitionError creates an InvalidStateTransitionError for the given move.
func NewInvalidStateTransitionError(from, to string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{From: from, To: to}
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %s to %s", ErrInvalidStateTransition, e.From, e.To)
}

func (e *InvalidStateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

// InvalidCursorError indicates that a pagination token could not be decoded.
// Tampered or truncated cursors must fail with this error, never produce a
// wrong page.
type InvalidCursorError struct {
	Cause error
}

// NewInvalidCursorError creates an InvalidCursorError without a cause.
func NewInvalidCursorError() *InvalidCursorError {
	return &InvalidCursorError{}
}

// NewInvalidCursorErrorWithCause creates an InvalidCursorError wrapping an underlying cause.
func NewInvalidCursorErrorWithCause(cause error) *InvalidCursorError {
	return &InvalidCursorError{Cause: cause}
}

func (e *InvalidCursorError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s (cause: %s)", ErrInvalidCursor, e.Cause))
	}
	return ErrInvalidCursor.Error()
}

func (e *InvalidCursorError) Unwrap() error {
	return ErrInvalidCursor
}

// IdempotencyInFlightError indicates that another request holding the same
// idempotency key claimed it first and has not finished yet.
type IdempotencyInFlightError struct {
	Key string
}

// NewIdempotencyInFlightError creates an IdempotencyInFlightError for the given key.
func NewIdempotencyInFlightError(key string) *IdempotencyInFlightError {
	return &IdempotencyInFlightError{Key: key}
}

func (e *IdempotencyInFlightError) Error() string {
	return sanitize(fmt.Sprintf("%s: %s", ErrIdempotencyInFlight, e.Key))
}

func (e *IdempotencyInFlightError) Unwrap() error {
	return ErrIdempotencyInFlight
}

// LockTimeoutError indicates that a bounded wait for a row lock expired.
// The operation did not run; clients may retry.
type LockTimeoutError struct {
	ParamName string
	Cause     error
}

// NewLockTimeoutError creates a LockTimeoutError wrapping an underlying cause.
func NewLockTimeoutError(paramName string, cause error) *LockTimeoutError {
	return &LockTimeoutError{ParamName: paramName, Cause: cause}
}

func (e *LockTimeoutError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %s (cause: %s)", ErrLockTimeout, e.ParamName, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrLockTimeout, e.ParamName))
}

func (e *LockTimeoutError) Unwrap() error {
	return ErrLockTimeout
}
