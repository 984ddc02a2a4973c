package saga

import (
	"fmt"
	"log/slog"
)

// Level is the severity attached to an entry emitted through the Logger
// sink.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the Level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("Unknown Level: %d", int(l))
	}
}

// Logger is the narrow sink the executor reports through: a severity, a
// message, and an optional associated error. It is the only logging
// contract the core depends on; adapt whatever framework you use.
type Logger interface {
	Log(level Level, msg string, err error)
}

// LoggerFunc adapts a plain function to the Logger sink.
type LoggerFunc func(level Level, msg string, err error)

// Log implements the Logger interface for LoggerFunc.
func (f LoggerFunc) Log(level Level, msg string, err error) {
	f(level, msg, err)
}

// NopLogger discards everything. Useful in tests.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Log(Level, string, error) {}

// NewSlogLogger adapts a *slog.Logger to the Logger sink. The optional
// error travels as an "error" attribute.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Log(level Level, msg string, err error) {
	var attrs []any
	if err != nil {
		attrs = append(attrs, "error", err)
	}

	switch level {
	case LevelDebug:
		s.l.Debug(msg, attrs...)
	case LevelWarn:
		s.l.Warn(msg, attrs...)
	case LevelError:
		s.l.Error(msg, attrs...)
	default:
		s.l.Info(msg, attrs...)
	}
}

// logf formats a message and forwards it to the sink.
func logf(l Logger, level Level, err error, format string, args ...any) {
	l.Log(level, fmt.Sprintf(format, args...), err)
}
