// Package fault defines the error kinds the waybill services produce.
//
// Services return *Error values so callers (HTTP layer, CLI) can map a
// failure to a response without string matching. Wrapping with fmt.Errorf
// and %w preserves the kind through errors.As.
package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a service failure.
type Kind string

const (
	NotFound           Kind = "not_found"
	InvalidArgument    Kind = "invalid_argument"
	Conflict           Kind = "conflict"
	PreconditionFailed Kind = "precondition_failed"
	ImmutableInState   Kind = "immutable_in_state"
	CannotRollback     Kind = "cannot_rollback"
	SnapshotInvalid    Kind = "snapshot_invalid"
	CannotDelete       Kind = "cannot_delete"
	StoreError         Kind = "store_error"
)

// Error is a tagged service failure. IDs names the offending records, if
// any; Details accumulates every reason a validation failed, so callers
// see all of them at once.
type Error struct {
	Kind    Kind
	Message string
	IDs     []string
	Details []string
	Err     error // wrapped cause, usually a store error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.IDs) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.IDs, ", "))
		b.WriteString(")")
	}
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithIDs attaches offending record ids.
func (e *Error) WithIDs(ids ...string) *Error {
	e.IDs = append(e.IDs, ids...)
	return e
}

// WithDetails attaches accumulated validation messages.
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

// Store wraps an underlying store failure.
func Store(err error, message string) *Error {
	return &Error{Kind: StoreError, Message: message, Err: err}
}

// KindOf extracts the Kind from err, or "" if err is not a fault error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
