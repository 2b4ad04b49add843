package event

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/insights/internal/action"
	"github.com/Iron-Ham/insights/internal/logging"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe(TypeActionStarted, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(TypeActionIgnored, func(e Event) {
		received = e
	})
	bus.Subscribe(TypeActionFailed, func(e Event) {
		t.Error("handler for another type should not be called")
	})

	bus.Publish(NewActionIgnoredEvent("insight", 4))

	ignored, ok := received.(ActionIgnoredEvent)
	if !ok {
		t.Fatalf("received %T, want ActionIgnoredEvent", received)
	}
	if ignored.Action != "insight" || ignored.InFlight != 4 {
		t.Errorf("unexpected event: %+v", ignored)
	}
	if ignored.Timestamp().IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestBus_SubscribeAllRunsAfterSpecific(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "all") })
	bus.Subscribe(TypeTasksReloaded, func(e Event) { order = append(order, "specific") })

	bus.Publish(NewTasksReloadedEvent("tasks.yaml", 3, nil))

	if strings.Join(order, ",") != "specific,all" {
		t.Errorf("dispatch order = %v, want [specific all]", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	count := 0
	id := bus.Subscribe(TypeActionStarted, func(e Event) { count++ })
	keep := bus.Subscribe(TypeActionStarted, func(e Event) { count += 10 })

	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return true for an existing subscription")
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return false the second time")
	}
	if bus.Unsubscribe("sub-does-not-exist") {
		t.Error("Unsubscribe should return false for unknown IDs")
	}

	bus.Publish(NewActionIgnoredEvent("x", 1)) // different type, no effect
	bus.Publish(FromActionState("x", action.State[int]{Status: action.StatusLoading, Attempt: 1}))

	if count != 10 {
		t.Errorf("count = %d, want 10 (only the kept handler)", count)
	}
	if !bus.Unsubscribe(keep) || bus.SubscriptionCount() != 0 {
		t.Error("expected no subscriptions left")
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWithWriter(&buf, logging.LevelDebug))

	secondCalled := false
	bus.Subscribe(TypeActionFailed, func(e Event) { panic("handler exploded") })
	bus.Subscribe(TypeActionFailed, func(e Event) { secondCalled = true })

	bus.Publish(ActionFailedEvent{baseEvent: newBaseEvent(TypeActionFailed), Action: "insight"})

	if !secondCalled {
		t.Error("second handler should still run after a panic")
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("panic was not logged: %s", buf.String())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(NewTasksReloadedEvent("tasks.yaml", 1, nil))
		}()
	}
	wg.Wait()

	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus(nil)
	seen := make(map[string]bool)
	for range 100 {
		id := bus.Subscribe(TypeActionStarted, func(Event) {})
		if seen[id] {
			t.Fatalf("duplicate subscription ID %q", id)
		}
		seen[id] = true
	}
}

func TestFromActionState(t *testing.T) {
	tests := []struct {
		name     string
		state    action.State[string]
		wantType string
	}{
		{name: "idle has no event", state: action.State[string]{}, wantType: ""},
		{name: "loading", state: action.State[string]{Status: action.StatusLoading, Attempt: 1}, wantType: TypeActionStarted},
		{name: "success", state: action.State[string]{Status: action.StatusSuccess, Attempt: 1}, wantType: TypeActionSucceeded},
		{name: "error", state: action.State[string]{Status: action.StatusError, Attempt: 1, Err: &action.OperationFailure{Message: "down"}}, wantType: TypeActionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromActionState("insight", tt.state)
			if tt.wantType == "" {
				if e != nil {
					t.Errorf("expected nil event, got %T", e)
				}
				return
			}
			if e == nil || e.EventType() != tt.wantType {
				t.Fatalf("event = %v, want type %s", e, tt.wantType)
			}
			if failed, ok := e.(ActionFailedEvent); ok && failed.Message != "down" {
				t.Errorf("Message = %q, want %q", failed.Message, "down")
			}
		})
	}
}

func TestBridgeAction(t *testing.T) {
	bus := NewBus(nil)
	ctrl := action.New[string]()

	var types []string
	bus.SubscribeAll(func(e Event) { types = append(types, e.EventType()) })

	stop := BridgeAction(bus, "insight", ctrl)
	ctrl.Run(context.Background(), func(ctx context.Context) (string, error) { return "ok", nil })
	ctrl.Run(context.Background(), func(ctx context.Context) (string, error) { return "", errors.New("down") })
	stop()
	ctrl.Run(context.Background(), func(ctx context.Context) (string, error) { return "ok", nil })

	want := []string{TypeActionStarted, TypeActionSucceeded, TypeActionStarted, TypeActionFailed}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Errorf("published %v, want %v", types, want)
	}
}
