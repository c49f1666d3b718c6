package logging

import (
	"fmt"
	"io"
	"os"
)

// Verbosity levels, selected by the repeatable -v flag.
const (
	LevelQuiet = iota - 1
	LevelDefault
	LevelInfo
	LevelDebug
)

// Logger writes leveled, human-readable messages to stderr.
// Warnings and errors always show; -v adds info, -vv adds debug,
// and -q silences everything.
type Logger struct {
	level int
	out   io.Writer
}

// New creates a logger from the CLI's verbosity count and quiet flag.
// Quiet wins over any number of -v flags.
func New(verbosity int, quiet bool) *Logger {
	level := verbosity
	if level > LevelDebug {
		level = LevelDebug
	}
	if quiet {
		level = LevelQuiet
	}
	return &Logger{level: level, out: os.Stderr}
}

// NewWithWriter creates a logger writing to the given writer, for tests.
func NewWithWriter(w io.Writer, verbosity int, quiet bool) *Logger {
	l := New(verbosity, quiet)
	l.out = w
	return l
}

// Info logs an informational message, shown at -v and above.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level < LevelInfo {
		return
	}
	fmt.Fprintf(l.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level < LevelDefault {
		return
	}
	fmt.Fprintf(l.out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level < LevelDefault {
		return
	}
	fmt.Fprintf(l.out, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Debug logs a debug message, shown at -vv and above.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level < LevelDebug {
		return
	}
	fmt.Fprintf(l.out, "[DEBUG] %s\n", fmt.Sprintf(format, args...))
}

// Secret is a string whose formatted value is always redacted.
type Secret string

// String implements fmt.Stringer, always returning a redacted value.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string {
	return "[REDACTED]"
}
