package logging

import (
	"context"
	"io"
	"maps"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// DefaultLogger is the zerolog-backed implementation of Logger.
// Console output is colored when the destination is a terminal.
type DefaultLogger struct {
	zl     zerolog.Logger
	level  Level
	fields Fields
}

// NewDefaultLogger creates a console logger writing to stderr
func NewDefaultLogger() *DefaultLogger {
	return NewConsoleLogger(os.Stderr)
}

// NewConsoleLogger creates a human readable logger writing to out
func NewConsoleLogger(out *os.File) *DefaultLogger {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !isTerminal(out),
		TimeFormat: time.RFC3339,
	}
	return newDefaultLogger(writer)
}

// NewJSONLogger creates a logger emitting one JSON object per line
func NewJSONLogger(w io.Writer) *DefaultLogger {
	return newDefaultLogger(w)
}

func newDefaultLogger(w io.Writer) *DefaultLogger {
	return &DefaultLogger{
		zl:     zerolog.New(w).With().Timestamp().Logger(),
		level:  InfoLevel,
		fields: make(Fields),
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (d *DefaultLogger) event(level Level) *zerolog.Event {
	switch level {
	case DebugLevel:
		return d.zl.Debug()
	case InfoLevel:
		return d.zl.Info()
	case WarnLevel:
		return d.zl.Warn()
	case ErrorLevel:
		return d.zl.Error()
	default:
		return d.zl.Fatal()
	}
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < d.level {
		return
	}

	allFields := make(map[string]any, len(d.fields))
	maps.Copy(allFields, d.fields)
	for _, f := range fields {
		maps.Copy(allFields, f)
	}

	ev := d.event(level)
	if err != nil {
		ev = ev.Err(err)
	}
	if len(allFields) > 0 {
		ev = ev.Fields(allFields)
	}
	ev.Msg(msg)
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

// Fatal logs and exits the process with status 1
func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields...)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields)
	maps.Copy(newFields, d.fields)
	maps.Copy(newFields, fields)

	return &DefaultLogger{
		zl:     d.zl,
		level:  d.level,
		fields: newFields,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
