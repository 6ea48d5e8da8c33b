// Package logger provides structured logging for the game server.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger behind the small set of methods the rest
// of this module calls, so call sites don't depend on zerolog's API
// directly.
type Logger struct {
	z zerolog.Logger
}

// Options configures a new Logger.
type Options struct {
	// Color enables zerolog's console writer (human-readable, ANSI
	// colored). When false, logs are emitted as newline-delimited JSON,
	// suited to log aggregation.
	Color bool
	Out   io.Writer
}

// New builds a Logger per opts.
func New(opts Options) *Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Color {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	z := zerolog.New(out).With().Timestamp().Logger()
	return &Logger{z: z}
}

// Info logs an informational message.
func (l *Logger) Info(msg string) { l.z.Info().Msg(msg) }

// Warn logs a warning.
func (l *Logger) Warn(msg string) { l.z.Warn().Msg(msg) }

// Error logs an error.
func (l *Logger) Error(msg string) { l.z.Error().Msg(msg) }

// Event logs a structured occurrence worth correlating later: an action
// submitted, a session created, a listener reconnect.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.z.Info().Str("event", eventType).Str("actor", actorID).Msg(details)
}

// With returns a Logger that attaches key/value to every subsequent
// message, for scoping logs to a request or a game.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{z: l.z.With().Str(key, value).Logger()}
}
