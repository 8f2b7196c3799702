// Package logging is the structured logger shared by the file storage server,
// its services and the sweeper. The only implementation is backed by slog.
package logging

import "context"

// Logger takes a message plus alternating keys and values:
//
//	log.Info(ctx, "blob stored", "key", key, "size", size)
//
// Components derive scoped loggers with With, for example
// log.With("module", "sweeper").
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is for client mistakes and recoverable storage hiccups.
	Warn(ctx context.Context, msg string, args ...any)
	// Error is for failures that surface as 500s or abort a sweep.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that prefixes every record with args.
	With(args ...any) Logger
}
