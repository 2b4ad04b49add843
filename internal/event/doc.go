// Package event provides a synchronous pub-sub bus for decoupled
// communication between the panel, the fetch command and the server.
//
// # Event Categories
//
// Action lifecycle (published for every controller transition):
//   - [ActionStartedEvent]: an attempt entered Loading ("action.started")
//   - [ActionSucceededEvent]: an attempt produced a value ("action.succeeded")
//   - [ActionFailedEvent]: an attempt failed ("action.failed")
//   - [ActionIgnoredEvent]: a trigger arrived while Loading ("action.ignored")
//
// Task source:
//   - [TasksReloadedEvent]: the tasks file changed on disk ("tasks.reloaded")
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine; a panicking handler is logged and skipped.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypeActionFailed, func(e event.Event) {
//	    failed := e.(event.ActionFailedEvent)
//	    logger.Warn("fetch failed", "message", failed.Message)
//	})
//	unsubscribe := event.BridgeAction(bus, "insight", ctrl)
//	defer unsubscribe()
package event
