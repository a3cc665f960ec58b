package logger

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Entry is one captured log call
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Err     error
}

// recorder is the shared sink behind a TestLogger and all its children
type recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *recorder) append(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// TestLogger captures log calls for assertions. With* methods return
// children that share the same recorder, so a test holds the root and
// inspects everything the code under test logged.
type TestLogger struct {
	rec    *recorder
	fields map[string]interface{}
	err    error
	nop    *zerolog.Logger
}

// NewTestLogger creates a capturing logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{rec: &recorder{}, nop: &nop}
}

func (l *TestLogger) child() *TestLogger {
	c := &TestLogger{rec: l.rec, err: l.err, nop: l.nop, fields: map[string]interface{}{}}
	for k, v := range l.fields {
		c.fields[k] = v
	}
	return c
}

func (l *TestLogger) capture(level, msg string, extra map[string]interface{}) {
	fields := make(map[string]interface{}, len(l.fields)+len(extra))
	for k, v := range l.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}
	l.rec.append(Entry{Level: level, Message: msg, Fields: fields, Err: l.err})
}

func (l *TestLogger) Debug(msg string) { l.capture("debug", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.capture("info", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.capture("warn", msg, nil) }
func (l *TestLogger) Error(msg string) { l.capture("error", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.capture("fatal", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.capture("debug", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.capture("info", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.capture("warn", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.capture("error", msg, fields)
}

func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.capture("fatal", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	c := l.child()
	c.fields[key] = value
	return c
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	c := l.child()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (l *TestLogger) WithError(err error) Logger {
	c := l.child()
	c.err = err
	return c
}

func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }

func (l *TestLogger) GetZerolog() *zerolog.Logger { return l.nop }

// Entries returns a copy of everything captured so far
func (l *TestLogger) Entries() []Entry {
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	entries := make([]Entry, len(l.rec.entries))
	copy(entries, l.rec.entries)
	return entries
}

// EntriesAt returns captured entries of one level
func (l *TestLogger) EntriesAt(level string) []Entry {
	var filtered []Entry
	for _, e := range l.Entries() {
		if e.Level == level {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Contains reports whether any captured message contains substr
func (l *TestLogger) Contains(substr string) bool {
	for _, e := range l.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// Reset drops everything captured so far
func (l *TestLogger) Reset() {
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	l.rec.entries = nil
}
