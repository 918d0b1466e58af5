package ports

import "context"

// Logger is the structured logging interface used across the engine. The
// optional fields map carries structured context (symbol, side, prices);
// implementations emit the first map and ignore the rest. Error takes the
// error separately so adapters can attach it as a dedicated field.
type Logger interface {
	// Debug logs a message at Debug level.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs a message at Info level.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs a message at Warning level.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs an error with a message at Error level.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
