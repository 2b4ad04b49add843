package action

import (
	"context"
	"errors"
	"strings"
)

// Status is the lifecycle stage of an action.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Operation is a zero-argument asynchronous unit of work. The context is the
// one handed to Trigger or Run; the controller never cancels it.
type Operation[T any] func(ctx context.Context) (T, error)

// State is a snapshot of an action's lifecycle.
//
// Data is set only when Status is StatusSuccess and Err only when Status is
// StatusError. Attempt identifies the most recent accepted trigger and is 0
// until the first one.
type State[T any] struct {
	Status  Status
	Data    *T
	Err     *OperationFailure
	Attempt uint64
}

// IsIdle reports whether no attempt has been made yet.
func (s State[T]) IsIdle() bool { return s.Status == StatusIdle }

// IsLoading reports whether an attempt is in flight.
func (s State[T]) IsLoading() bool { return s.Status == StatusLoading }

// IsSuccess reports whether the latest attempt produced a value.
func (s State[T]) IsSuccess() bool { return s.Status == StatusSuccess }

// IsError reports whether the latest attempt failed.
func (s State[T]) IsError() bool { return s.Status == StatusError }

// DefaultFailureMessage is used when a failure carries no readable text.
const DefaultFailureMessage = "operation failed"

// ErrNilOperation is reported when a nil Operation is triggered.
var ErrNilOperation = errors.New("nil operation")

// OperationFailure is the only error kind surfaced by a Controller. It wraps
// whatever the operation returned or panicked with.
type OperationFailure struct {
	// Message is human-readable and never empty.
	Message string
	// Defaulted is set when Message is DefaultFailureMessage because the
	// cause carried no text. Hosts may substitute their own wording.
	Defaulted bool
	// Cause is the raw failure. May be nil.
	Cause error
}

// NewOperationFailure wraps cause. If cause already is (or wraps) an
// OperationFailure, that failure's message is kept.
func NewOperationFailure(cause error) *OperationFailure {
	var existing *OperationFailure
	if errors.As(cause, &existing) && existing != nil {
		msg, defaulted := messageOrDefault(existing.Message)
		return &OperationFailure{Message: msg, Defaulted: defaulted || existing.Defaulted, Cause: existing.Cause}
	}

	text := ""
	if cause != nil {
		text = cause.Error()
	}
	msg, defaulted := messageOrDefault(text)
	return &OperationFailure{Message: msg, Defaulted: defaulted, Cause: cause}
}

func messageOrDefault(msg string) (string, bool) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return DefaultFailureMessage, true
	}
	return msg, false
}

func (f *OperationFailure) Error() string {
	return f.Message
}

func (f *OperationFailure) Unwrap() error {
	return f.Cause
}
