package logger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
)

// Entry is one message captured by a TestLogger
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// TestLogger forwards messages to t.Logf and keeps them for assertions.
// Loggers derived with WithField share the parent's entries.
type TestLogger struct {
	T *testing.T

	fields  map[string]interface{}
	mu      *sync.Mutex
	entries *[]Entry
}

// NewTestLogger creates a new test logger
func NewTestLogger(t *testing.T) Logger {
	return newTestLogger(t)
}

func newTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{T: t, mu: &sync.Mutex{}, entries: &[]Entry{}}
}

// NewCapturingLogger is NewTestLogger typed for access to Entries
func NewCapturingLogger(t *testing.T) *TestLogger {
	return newTestLogger(t)
}

func (l *TestLogger) log(level, msg string) {
	l.mu.Lock()
	*l.entries = append(*l.entries, Entry{Level: level, Message: msg, Fields: l.fields})
	l.mu.Unlock()

	if l.T != nil {
		l.T.Logf("[%s] %s%s", strings.ToUpper(level), msg, l.formatFields())
	}
}

func (l *TestLogger) formatFields() string {
	if len(l.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, l.fields[k])
	}
	return sb.String()
}

func (l *TestLogger) Debug(msg string) { l.log("debug", msg) }

func (l *TestLogger) Info(msg string) { l.log("info", msg) }

func (l *TestLogger) Warn(msg string) { l.log("warn", msg) }

func (l *TestLogger) Error(msg string) { l.log("error", msg) }

// Fatal records the message without exiting
func (l *TestLogger) Fatal(msg string) { l.log("fatal", msg) }

// WithField returns a logger with a field
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger with fields
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{T: l.T, fields: merged, mu: l.mu, entries: l.entries}
}

// Entries returns a copy of the captured messages
func (l *TestLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), *l.entries...)
}
