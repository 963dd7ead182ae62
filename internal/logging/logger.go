// Package logging provides structured logging with redaction of SRP secrets.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log entry.
type LogLevel string

// Log severity levels.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogFormat represents the output format for log entries.
type LogFormat string

// Log output formats.
const (
	// FormatJSON outputs one JSON object per line (default).
	FormatJSON LogFormat = "json"
	// FormatHuman outputs a bracketed timestamp followed by key=value pairs.
	FormatHuman LogFormat = "human"
)

var levelRank = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a configuration string to a LogLevel.
// Unknown or empty values select LevelInfo.
func ParseLevel(level string) LogLevel {
	l := LogLevel(strings.ToLower(strings.TrimSpace(level)))
	if _, ok := levelRank[l]; ok {
		return l
	}
	return LevelInfo
}

// ParseFormat maps a configuration string to a LogFormat.
// Unknown or empty values select FormatJSON.
func ParseFormat(format string) LogFormat {
	if LogFormat(strings.ToLower(strings.TrimSpace(format))) == FormatHuman {
		return FormatHuman
	}
	return FormatJSON
}

// sink is the output shared by a Logger and every logger derived from it.
type sink struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// Logger provides structured logging with secret redaction.
// Loggers derived with WithFields share the parent's output.
type Logger struct {
	level    LogLevel
	format   LogFormat
	redactor *Redactor
	out      *sink
	fields   map[string]any
}

type logEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// New creates a Logger that writes errors to stderr and everything else to
// stdout.
func New(level LogLevel, format LogFormat) *Logger {
	return &Logger{
		level:    level,
		format:   format,
		redactor: NewRedactor(),
		out:      &sink{stdout: os.Stdout, stderr: os.Stderr},
	}
}

// SetOutput replaces the output writers. Used by tests.
func (l *Logger) SetOutput(stdout, stderr io.Writer) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.stdout = stdout
	l.out.stderr = stderr
}

// Level returns the minimum level that is written.
func (l *Logger) Level() LogLevel {
	return l.level
}

// WithFields returns a logger that adds fields to every entry.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	child := *l
	child.fields = mergeFields(l.fields, fields)
	return &child
}

// Debug logs a debug-level message.
func (l *Logger) Debug(msg string, fields ...map[string]any) {
	l.log(LevelDebug, msg, fields)
}

// Info logs an info-level message.
func (l *Logger) Info(msg string, fields ...map[string]any) {
	l.log(LevelInfo, msg, fields)
}

// Warn logs a warn-level message.
func (l *Logger) Warn(msg string, fields ...map[string]any) {
	l.log(LevelWarn, msg, fields)
}

// Error logs an error-level message.
func (l *Logger) Error(msg string, fields ...map[string]any) {
	l.log(LevelError, msg, fields)
}

func (l *Logger) log(level LogLevel, msg string, fields []map[string]any) {
	if levelRank[level] < levelRank[l.level] {
		return
	}

	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   msg,
		Fields:    l.redactor.RedactFields(mergeFields(append([]map[string]any{l.fields}, fields...)...)),
	}

	var output string
	if l.format == FormatHuman {
		output = formatHuman(entry)
	} else {
		output = formatJSON(entry)
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	w := l.out.stdout
	if level == LevelError {
		w = l.out.stderr
	}
	_, _ = io.WriteString(w, output)
}

func formatJSON(entry logEntry) string {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"timestamp":%q,"level":"error","message":"failed to marshal log entry: %s"}`+"\n",
			entry.Timestamp, err.Error())
	}
	return string(data) + "\n"
}

// formatHuman prints fields sorted by key so output is stable.
func formatHuman(entry logEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", entry.Timestamp, entry.Level, entry.Message)
	for _, k := range slices.Sorted(maps.Keys(entry.Fields)) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	b.WriteString("\n")
	return b.String()
}

// mergeFields merges field maps left to right. Nil and empty maps are
// skipped; the result is nil when nothing remains.
func mergeFields(fields ...map[string]any) map[string]any {
	var merged map[string]any
	for _, f := range fields {
		if len(f) == 0 {
			continue
		}
		if merged == nil {
			merged = make(map[string]any, len(f))
		}
		maps.Copy(merged, f)
	}
	return merged
}
