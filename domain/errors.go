package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetNil is returned when a decode target that should be a
	// pointer is passed as a nil value.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when a decode target is not a pointer.
	ErrNonPointer = errors.New("target must be a pointer")
	// ErrCursorClosed is returned when operating on a closed [Cursor].
	ErrCursorClosed = errors.New("cursor is closed")
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = errors.New("cannot scan before calling Next")
	// ErrNotFound is returned when a single-result read matches nothing.
	ErrNotFound = errors.New("no document matched the query")
	// ErrNotPersisted is returned when an atomic update is requested for
	// a root that was never inserted.
	ErrNotPersisted = errors.New("document has never been persisted")
)

// ErrAddressing is returned when a node cannot produce a valid atomic
// address, usually because it is detached from any root. No partial command
// may be submitted once it is raised.
type ErrAddressing struct {
	Key  string
	Kind Kind
}

// Error implements [error].
func (e ErrAddressing) Error() string {
	return fmt.Sprintf("%s node %q has no path to a root", e.Kind, e.Key)
}

// ErrConflictingOperator is returned when two operators target the same
// address within a single [UpdateCommand]. The command must not reach the
// store boundary.
type ErrConflictingOperator struct {
	Address  string
	Previous string
	Next     string
}

// Error implements [error].
func (e ErrConflictingOperator) Error() string {
	return fmt.Sprintf("operators %s and %s both target %q in one command", e.Previous, e.Next, e.Address)
}

// ErrDecode wraps third party decoding errors with the source and target that
// failed to convert.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}

// ErrValueType is returned when a value passed to build node fields is
// neither a map nor a struct.
type ErrValueType struct {
	Actual any
}

// Error implements [error].
func (e ErrValueType) Error() string {
	return fmt.Sprintf("expected map or struct, got %T", e.Actual)
}

// ErrUnknownOperator is returned by the store boundary when an update command
// carries an operator it does not understand.
type ErrUnknownOperator struct {
	Name string
}

// Error implements [error].
func (e ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Name)
}
