// Package action tracks the lifecycle of a single asynchronous operation.
//
// A [Controller] wraps a caller-supplied [Operation] and publishes its
// progress as an immutable [State] snapshot. The controller is the only
// writer of its state; everyone else reads snapshots or subscribes to
// transitions.
//
// # States
//
// Exactly one [Status] holds at any time:
//
//	Idle --trigger--> Loading --success--> Success
//	                          --failure--> Error
//	Success --trigger--> Loading
//	Error   --trigger--> Loading
//
// Idle is the initial status. Success and Error are not terminal: a new
// trigger re-enters Loading and clears the previous payload, so retry and
// reset are the same action.
//
// # In-flight Policy
//
// At most one operation runs per controller. A trigger that arrives while
// the controller is Loading is ignored: it returns immediately, changes
// nothing and produces no notification. The in-flight operation cannot be
// cancelled by the controller; an operation that never returns leaves the
// controller in Loading.
//
// # Failures
//
// Every failure of the wrapped operation, including a panic, is converted
// into an [OperationFailure] and stored on the state. Failures never escape
// the controller and are not classified or retried.
//
// # Driving a Controller
//
// Headless callers use [Controller.Trigger] (fire-and-observe) or
// [Controller.Run] (blocks until settled):
//
//	ctrl := action.New[insight.Insight]()
//	unsubscribe := ctrl.Subscribe(func(s action.State[insight.Insight]) {
//	    fmt.Println("status:", s.Status)
//	})
//	defer unsubscribe()
//
//	ctrl.Trigger(ctx, provider.FetchInsight)
//
// Hosts that already own an event loop, such as a Bubbletea program, split
// the trigger in two: [Controller.Begin] enters Loading on the loop, the
// operation runs elsewhere via [Invoke], and [Controller.Settle] applies the
// outcome back on the loop.
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use. Listeners are called
// one at a time, in transition order, without any controller lock held, so
// a listener may read [Controller.State] or trigger a new attempt. A
// listener that panics is skipped; delivery continues with the next one.
package action
