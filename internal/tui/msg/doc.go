// Package msg defines the message types used by the TUI's Bubbletea event loop.
//
// Message types are exported so they can be produced by command factories in
// this package and handled by the main TUI model. Each factory wraps an async
// operation in a [tea.Cmd] whose result comes back as one of these messages.
package msg
