package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/vectl/vectl/pkg/embed"
	"github.com/vectl/vectl/pkg/vecdb"
)

// Kind classifies an operation failure. Retryable kinds are transient
// (transport, provider); the rest indicate a missing resource or a
// caller bug and retrying cannot help.
type Kind string

const (
	// KindBackendUnavailable is a transport or server failure talking to
	// the vector backend. Retryable.
	KindBackendUnavailable Kind = "backend_unavailable"

	// KindNotFound means the target collection does not exist.
	KindNotFound Kind = "not_found"

	// KindAlreadyExists means a create collided with an existing name.
	KindAlreadyExists Kind = "already_exists"

	// KindDimensionMismatch means a vector's length disagrees with the
	// collection's declared dimension. Indicates a bad embedding
	// model/collection pairing, not a transient fault.
	KindDimensionMismatch Kind = "dimension_mismatch"

	// KindEmbedding is an embedding provider failure. Retryable.
	KindEmbedding Kind = "embedding_error"

	// KindInvalidArgument is a malformed operation input. Caller bug.
	KindInvalidArgument Kind = "invalid_argument"

	// KindCanceled means the caller canceled the operation.
	KindCanceled Kind = "canceled"

	// KindInternal is an unclassified failure.
	KindInternal Kind = "internal"
)

// Retryable reports whether failures of this kind may succeed on retry.
func (k Kind) Retryable() bool {
	return k == KindBackendUnavailable || k == KindEmbedding
}

// Error is the uniform failure shape every operation reports: the
// operation name, the failure kind, and a message.
type Error struct {
	// Op is the operation that failed (e.g., "add_documents").
	Op string

	// Kind classifies the failure.
	Kind Kind

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the underlying cause's message.
func (e *Error) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Retryable reports whether the operation may succeed on retry.
func (e *Error) Retryable() bool {
	return e.Kind.Retryable()
}

// AsError extracts *Error from an error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// errorf builds an *Error with a formatted cause.
func errorf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// classify wraps an arbitrary failure from a backend or provider call
// into an *Error. Already-classified errors pass through unchanged.
func classify(op string, err error) *Error {
	if e, ok := AsError(err); ok {
		return e
	}
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) Kind {
	switch {
	case errors.Is(err, vecdb.ErrNotFound):
		return KindNotFound
	case errors.Is(err, vecdb.ErrExists):
		return KindAlreadyExists
	case errors.Is(err, vecdb.ErrDimensionMismatch):
		return KindDimensionMismatch
	case errors.Is(err, vecdb.ErrUnavailable):
		return KindBackendUnavailable
	case errors.Is(err, embed.ErrEmptyInput):
		return KindInvalidArgument
	case errors.Is(err, embed.ErrDimension):
		return KindEmbedding
	case errors.Is(err, context.DeadlineExceeded):
		// Per-call timeout: the retry policy may try again.
		return KindBackendUnavailable
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindInternal
	}
}
