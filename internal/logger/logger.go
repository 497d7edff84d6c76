// Package logger provides structured logging for the export core, backed by
// zerolog. The Field-based API mirrors how call sites attach context without
// binding them to a specific logging backend.
package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Field represents a structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

var (
	once sync.Once
	base zerolog.Logger
)

func instance() zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		level := zerolog.InfoLevel
		if os.Getenv("LOG_LEVEL") == "debug" {
			level = zerolog.DebugLevel
		}
		var w zerolog.ConsoleWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		if os.Getenv("LOG_FORMAT") == "json" {
			base = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
			return
		}
		base = zerolog.New(w).Level(level).With().Timestamp().Logger()
	})
	return base
}

func apply(e *zerolog.Event, fields ...Field) *zerolog.Event {
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	return e
}

// Info logs an informational message with optional structured fields.
func Info(msg string, fields ...Field) {
	apply(instance().Info(), fields...).Msg(msg)
}

// Warn logs a warning message with optional structured fields.
func Warn(msg string, fields ...Field) {
	apply(instance().Warn(), fields...).Msg(msg)
}

// Error logs an error message with optional structured fields.
func Error(msg string, fields ...Field) {
	apply(instance().Error(), fields...).Msg(msg)
}

// Debug logs a debug message with optional structured fields. Suppressed
// unless LOG_LEVEL=debug.
func Debug(msg string, fields ...Field) {
	apply(instance().Debug(), fields...).Msg(msg)
}

// String builds a string Field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int Field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 builds an int64 Field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Float64 builds a float64 Field.
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

// Bool builds a bool Field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration builds a duration Field.
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err builds an error Field, recording nil explicitly so omission is never
// ambiguous with "no error happened".
func Err(key string, err error) Field {
	if err == nil {
		return Field{Key: key, Value: nil}
	}
	return Field{Key: key, Value: err.Error()}
}
