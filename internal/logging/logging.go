// Package logging provides a small leveled logger for diagnostics.
//
// Output goes to stderr so it never mixes with answers printed on stdout.
// Logging is off unless the CLI runs with --verbose.
//
//	logger := logging.New(logging.Options{Level: logging.LevelDebug, Output: os.Stderr})
//	logger.With("session").Debug("dispatching question", logging.Fields{"turns": 3})
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone disables all logging
	LevelNone
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "NONE", "OFF":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Format represents the output format
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Fields is a map of structured log fields
type Fields map[string]interface{}

// Entry is a single log record as written in JSON format
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Component string    `json:"component,omitempty"`
	Message   string    `json:"message"`
	Fields    Fields    `json:"fields,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Options configures the logger
type Options struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger writes leveled entries to a single writer. Safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	level  Level
	format Format
	output io.Writer
	now    func() time.Time
}

// New creates a new Logger with the given options
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return &Logger{
		level:  opts.Level,
		format: opts.Format,
		output: opts.Output,
		now:    time.Now,
	}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return New(Options{Level: LevelNone, Output: io.Discard})
}

// SetLevel changes the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Enabled reports whether entries at level would be written
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level && l.level != LevelNone
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	l.write(LevelDebug, "", msg, nil, fields)
}

func (l *Logger) Info(msg string, fields ...Fields) {
	l.write(LevelInfo, "", msg, nil, fields)
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	l.write(LevelWarn, "", msg, nil, fields)
}

func (l *Logger) Error(msg string, err error, fields ...Fields) {
	l.write(LevelError, "", msg, err, fields)
}

// With returns a logger that tags every entry with a component name
func (l *Logger) With(component string) *ComponentLogger {
	return &ComponentLogger{logger: l, component: component}
}

func (l *Logger) write(level Level, component, msg string, err error, fields []Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level == LevelNone || level < l.level {
		return
	}

	entry := Entry{
		Timestamp: l.now(),
		Level:     level.String(),
		Component: component,
		Message:   msg,
		Fields:    merge(fields),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if l.format == FormatJSON {
		fmt.Fprintln(l.output, formatJSON(entry))
		return
	}
	fmt.Fprintln(l.output, formatText(entry))
}

func merge(fields []Fields) Fields {
	if len(fields) == 0 {
		return nil
	}
	merged := make(Fields)
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

func formatJSON(entry Entry) string {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal log entry: %s"}`, err.Error())
	}
	return string(data)
}

// formatText renders an entry on one line with fields sorted by key
func formatText(entry Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", entry.Timestamp.Format("15:04:05.000"), entry.Level)
	if entry.Component != "" {
		fmt.Fprintf(&sb, " %s", entry.Component)
	}
	fmt.Fprintf(&sb, ": %s", entry.Message)

	if entry.Error != "" {
		fmt.Fprintf(&sb, " error=%q", entry.Error)
	}

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry.Fields[k])
	}

	return sb.String()
}

// ComponentLogger is a Logger bound to one component name
type ComponentLogger struct {
	logger    *Logger
	component string
}

func (c *ComponentLogger) Debug(msg string, fields ...Fields) {
	c.logger.write(LevelDebug, c.component, msg, nil, fields)
}

func (c *ComponentLogger) Info(msg string, fields ...Fields) {
	c.logger.write(LevelInfo, c.component, msg, nil, fields)
}

func (c *ComponentLogger) Warn(msg string, fields ...Fields) {
	c.logger.write(LevelWarn, c.component, msg, nil, fields)
}

func (c *ComponentLogger) Error(msg string, err error, fields ...Fields) {
	c.logger.write(LevelError, c.component, msg, err, fields)
}
