package providers

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// logrusLogger adapts a logrus.Logger to the Logger interface.
type logrusLogger struct {
	l *logrus.Logger
}

// NewLogrusLogger returns a Logger backed by the given logrus logger.
// A nil argument uses the logrus standard logger.
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &logrusLogger{l: l}
}

// NewStderrLogger returns a logrus-backed Logger writing to w at the given
// level.
func NewStderrLogger(w io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	return &logrusLogger{l: l}
}

func (a *logrusLogger) entry(fields []any) *logrus.Entry {
	return a.l.WithFields(fieldMap(fields))
}

func (a *logrusLogger) Debug(message string, fields ...any)   { a.entry(fields).Debug(message) }
func (a *logrusLogger) Info(message string, fields ...any)    { a.entry(fields).Info(message) }
func (a *logrusLogger) Warning(message string, fields ...any) { a.entry(fields).Warn(message) }
func (a *logrusLogger) Error(message string, fields ...any)   { a.entry(fields).Error(message) }

// fieldMap pairs up alternating key/value arguments. A trailing odd value
// is kept under the key "value".
func fieldMap(fields []any) logrus.Fields {
	out := logrus.Fields{}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		out[key] = fields[i+1]
	}
	if len(fields)%2 == 1 {
		out["value"] = fields[len(fields)-1]
	}
	return out
}

// BufferedLogger captures log output for later retrieval, for tests.
type BufferedLogger struct {
	mu    sync.Mutex
	lines []string
}

// NewBufferedLogger creates a new buffered logger
func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (l *BufferedLogger) log(level, message string, fields []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sb strings.Builder
	sb.WriteString(level)
	sb.WriteString(" ")
	sb.WriteString(message)
	for i := 0; i+1 < len(fields); i += 2 {
		sb.WriteString(fmt.Sprintf(" %v=%v", fields[i], fields[i+1]))
	}
	l.lines = append(l.lines, sb.String())
}

func (l *BufferedLogger) Debug(message string, fields ...any)   { l.log("DEBUG", message, fields) }
func (l *BufferedLogger) Info(message string, fields ...any)    { l.log("INFO", message, fields) }
func (l *BufferedLogger) Warning(message string, fields ...any) { l.log("WARN", message, fields) }
func (l *BufferedLogger) Error(message string, fields ...any)   { l.log("ERROR", message, fields) }

// Lines returns all captured log lines
func (l *BufferedLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := make([]string, len(l.lines))
	copy(result, l.lines)
	return result
}

// Reset clears all captured output
func (l *BufferedLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = l.lines[:0]
}

// nullLogger discards all output
type nullLogger struct{}

func (nullLogger) Debug(message string, fields ...any)   {}
func (nullLogger) Info(message string, fields ...any)    {}
func (nullLogger) Warning(message string, fields ...any) {}
func (nullLogger) Error(message string, fields ...any)   {}

// NullLogger returns a logger that discards all output
func NullLogger() Logger {
	return nullLogger{}
}
