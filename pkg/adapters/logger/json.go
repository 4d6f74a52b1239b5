package logger

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/user/upscaler/pkg/ports"
)

// JSONLogger writes one JSON object per line using zerolog.
// Messages are not translated so that log processors see stable text.
type JSONLogger struct {
	zl zerolog.Logger
}

// NewJSON creates a JSON logger writing to w at the given level.
func NewJSON(level ports.LogLevel, w io.Writer) *JSONLogger {
	zl := zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &JSONLogger{zl: zl}
}

func zerologLevel(level ports.LogLevel) zerolog.Level {
	switch level {
	case ports.LevelDebug:
		return zerolog.DebugLevel
	case ports.LevelInfo:
		return zerolog.InfoLevel
	case ports.LevelWarn:
		return zerolog.WarnLevel
	case ports.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// Debug logs a debug message.
func (l *JSONLogger) Debug(msg string, args ...interface{}) {
	l.zl.Debug().Msgf(msg, args...)
}

// Info logs an informational message.
func (l *JSONLogger) Info(msg string, args ...interface{}) {
	l.zl.Info().Msgf(msg, args...)
}

// Warn logs a warning message.
func (l *JSONLogger) Warn(msg string, args ...interface{}) {
	l.zl.Warn().Msgf(msg, args...)
}

// Error logs an error message.
func (l *JSONLogger) Error(msg string, args ...interface{}) {
	l.zl.Error().Msgf(msg, args...)
}

// WithComponent returns a logger that adds a "component" field.
func (l *JSONLogger) WithComponent(component string) ports.Logger {
	return &JSONLogger{zl: l.zl.With().Str("component", component).Logger()}
}

var _ ports.Logger = (*JSONLogger)(nil)
