package event

import (
	"time"

	"github.com/Iron-Ham/insights/internal/action"
)

// Event is the interface that all events implement.
type Event interface {
	// EventType returns "category.action", e.g. "action.failed".
	EventType() string
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeActionStarted   = "action.started"
	TypeActionSucceeded = "action.succeeded"
	TypeActionFailed    = "action.failed"
	TypeActionIgnored   = "action.ignored"
	TypeTasksReloaded   = "tasks.reloaded"
)

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// -----------------------------------------------------------------------------
// Action Lifecycle Events
// -----------------------------------------------------------------------------

// ActionStartedEvent is emitted when an attempt enters Loading.
type ActionStartedEvent struct {
	baseEvent
	Action  string // Name of the controller, e.g. "insight"
	Attempt uint64
}

// ActionSucceededEvent is emitted when an attempt settles with a value.
type ActionSucceededEvent struct {
	baseEvent
	Action  string
	Attempt uint64
}

// ActionFailedEvent is emitted when an attempt settles with a failure.
type ActionFailedEvent struct {
	baseEvent
	Action  string
	Attempt uint64
	Message string // OperationFailure message
}

// ActionIgnoredEvent is emitted when a trigger arrives while an attempt is
// already in flight.
type ActionIgnoredEvent struct {
	baseEvent
	Action   string
	InFlight uint64 // attempt that kept running
}

// NewActionIgnoredEvent creates an ActionIgnoredEvent.
func NewActionIgnoredEvent(name string, inFlight uint64) ActionIgnoredEvent {
	return ActionIgnoredEvent{
		baseEvent: newBaseEvent(TypeActionIgnored),
		Action:    name,
		InFlight:  inFlight,
	}
}

// FromActionState converts a controller snapshot into its lifecycle event.
// Idle snapshots have no event and return nil.
func FromActionState[T any](name string, s action.State[T]) Event {
	switch s.Status {
	case action.StatusLoading:
		return ActionStartedEvent{baseEvent: newBaseEvent(TypeActionStarted), Action: name, Attempt: s.Attempt}
	case action.StatusSuccess:
		return ActionSucceededEvent{baseEvent: newBaseEvent(TypeActionSucceeded), Action: name, Attempt: s.Attempt}
	case action.StatusError:
		msg := action.DefaultFailureMessage
		if s.Err != nil {
			msg = s.Err.Message
		}
		return ActionFailedEvent{baseEvent: newBaseEvent(TypeActionFailed), Action: name, Attempt: s.Attempt, Message: msg}
	default:
		return nil
	}
}

// BridgeAction publishes every transition of ctrl on bus and returns a
// function that stops doing so.
func BridgeAction[T any](bus *Bus, name string, ctrl *action.Controller[T]) func() {
	return ctrl.Subscribe(func(s action.State[T]) {
		if e := FromActionState(name, s); e != nil {
			bus.Publish(e)
		}
	})
}

// -----------------------------------------------------------------------------
// Task Source Events
// -----------------------------------------------------------------------------

// TasksReloadedEvent is emitted after the tasks file is re-read.
type TasksReloadedEvent struct {
	baseEvent
	Path  string
	Count int   // number of tasks after reload
	Err   error // non-nil if the reload failed and the previous list was kept
}

// NewTasksReloadedEvent creates a TasksReloadedEvent.
func NewTasksReloadedEvent(path string, count int, err error) TasksReloadedEvent {
	return TasksReloadedEvent{
		baseEvent: newBaseEvent(TypeTasksReloaded),
		Path:      path,
		Count:     count,
		Err:       err,
	}
}
