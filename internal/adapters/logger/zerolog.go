// Package logger adapts zerolog to the ports.Logger interface.
package logger

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"bybitScalpBot/internal/ports"
)

// ZerologLogger implements the ports.Logger interface using zerolog.
type ZerologLogger struct {
	logger zerolog.Logger
}

var _ ports.Logger = (*ZerologLogger)(nil)

// New creates a zerolog-backed logger writing JSON to stdout.
// Unknown level strings fall back to info.
func New(level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return &ZerologLogger{
		logger: zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl),
	}
}

func (l *ZerologLogger) emit(ev *zerolog.Event, msg string, fields []map[string]interface{}) {
	if len(fields) > 0 && fields[0] != nil {
		ev = ev.Fields(map[string]interface{}(fields[0]))
	}
	ev.Msg(msg)
}

// Debug logs a message at Debug level.
func (l *ZerologLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Debug(), msg, fields)
}

// Info logs a message at Info level.
func (l *ZerologLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Info(), msg, fields)
}

// Warn logs a message at Warning level.
func (l *ZerologLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Warn(), msg, fields)
}

// Error logs an error message at Error level.
func (l *ZerologLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Error().Err(err), msg, fields)
}
