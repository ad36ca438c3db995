// Package apperr classifies failures so the UI can decide how loudly to
// surface them.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the failure category.
type Kind int

const (
	// AuthFailure is a rejected login. Shown briefly, never fatal.
	AuthFailure Kind = iota + 1
	// FetchFailure is a failed poll request. Logged and retried next cycle.
	FetchFailure
	// MutationFailure is a failed add or delete. Alerted once.
	MutationFailure
	// StorageFailure is a credential persistence error. Alerted once.
	StorageFailure
)

// String returns the display name for a kind.
func (k Kind) String() string {
	switch k {
	case AuthFailure:
		return "auth"
	case FetchFailure:
		return "fetch"
	case MutationFailure:
		return "mutation"
	case StorageFailure:
		return "storage"
	default:
		return "unknown"
	}
}

// Error wraps a failure with its kind and the operation that produced it.
type Error struct {
	Err  error
	Op   string
	Kind Kind
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err as a failure of the given kind.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Alerting reports whether a failure of this kind is surfaced as a one-shot
// alert rather than a transient or silent message.
func (k Kind) Alerting() bool {
	return k == MutationFailure || k == StorageFailure
}
