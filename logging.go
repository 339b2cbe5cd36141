package pollkit

import (
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Field is a single structured logging attribute, passed through to the
// configured Logger without this package needing to know the logger's
// concrete field-encoding rules.
type Field struct {
	Key   string
	Value any
}

// F builds a Field; a small convenience so call sites read like
// F("fd", fd), F("mode", mode).
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger is the structured-diagnostics facade of this package. Its one
// call site is Waker.Wake, which logs a failed notify at Error level
// before panicking. It is distinct from the error
// return path: a Logger call never changes control flow, it only records
// what happened.
type Logger interface {
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
}

// noopLogger discards everything; installed via SetLogger(nil) or NoopLogger().
type noopLogger struct{}

func (noopLogger) Debug(string, ...Field)        {}
func (noopLogger) Warn(string, ...Field)         {}
func (noopLogger) Error(string, error, ...Field) {}

// NoopLogger returns a Logger that discards all records.
func NoopLogger() Logger { return noopLogger{} }

// stumpyLogger is the default Logger, backed by github.com/joeycumines/logiface
// with github.com/joeycumines/stumpy as the concrete JSON-writing Event
// implementation.
type stumpyLogger struct {
	l *logiface.Logger[*stumpy.Event]
}

// NewStumpyLogger builds a Logger on top of stumpy's JSON writer, with the
// given stumpy options (stumpy.WithWriter, stumpy.WithLevelField, etc).
func NewStumpyLogger(options ...stumpy.Option) Logger {
	return &stumpyLogger{l: stumpy.L.New(stumpy.L.WithStumpy(options...))}
}

func (s *stumpyLogger) Debug(msg string, fields ...Field) {
	b := s.l.Debug()
	if !b.Enabled() {
		b.Release()
		return
	}
	applyFields(b, fields)
	b.Log(msg)
}

func (s *stumpyLogger) Warn(msg string, fields ...Field) {
	b := s.l.Warning()
	if !b.Enabled() {
		b.Release()
		return
	}
	applyFields(b, fields)
	b.Log(msg)
}

func (s *stumpyLogger) Error(msg string, err error, fields ...Field) {
	b := s.l.Err()
	if !b.Enabled() {
		b.Release()
		return
	}
	if err != nil {
		b.Err(err)
	}
	applyFields(b, fields)
	b.Log(msg)
}

func applyFields(b *logiface.Builder[*stumpy.Event], fields []Field) {
	for _, f := range fields {
		b.Any(f.Key, f.Value)
	}
}

var (
	globalLoggerMu sync.RWMutex
	globalLogger   Logger = NewStumpyLogger()
)

// SetLogger replaces the package-wide default Logger; no Source takes a
// Logger of its own. Passing nil installs NoopLogger.
func SetLogger(l Logger) {
	if l == nil {
		l = NoopLogger()
	}
	globalLoggerMu.Lock()
	globalLogger = l
	globalLoggerMu.Unlock()
}

// CurrentLogger returns the active package-wide default Logger.
func CurrentLogger() Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}
