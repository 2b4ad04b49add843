// Package logging provides structured logging for insights sessions.
//
// It wraps log/slog with a JSON handler and keeps a set of persistent
// attributes on each [Logger], so a panel session, a server request or a
// single fetch attempt can be followed through the log after the fact.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/log/dir", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	sessionLogger := logger.WithSession(uuid.NewString()).WithComponent("panel")
//	sessionLogger.Warn("insight fetch failed", "attempt", 2, "error", err.Error())
//
// Output:
//
//	{"time":"...","level":"WARN","msg":"insight fetch failed","session_id":"...","component":"panel","attempt":2,"error":"..."}
//
// When the directory is empty, logs go to stderr. Use [NopLogger] in tests.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Child loggers created with the
// With* methods share the parent's handler and file.
package logging
