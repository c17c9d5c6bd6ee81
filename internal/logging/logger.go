// Package logging defines the structured logger the server components are
// wired with. The HTTP layer and the application bootstrap log through the
// Logger interface; the concrete implementation (an slog adapter) is chosen
// once, in the entrypoint.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Error(ctx, "login error", "error", err)
type Logger interface {
	// Info logs normal lifecycle events (startup, shutdown).
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value
	// pairs, used to tag a component once instead of on every call.
	With(args ...any) Logger
}
