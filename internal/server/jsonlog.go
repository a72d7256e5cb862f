// jsonlog.go - Structured logging: JSON for production, colored text for
// development.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelRanks = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

var logLevelColors = map[LogLevel]func(format string, a ...interface{}) string{
	LogLevelDebug: color.CyanString,
	LogLevelInfo:  color.GreenString,
	LogLevelWarn:  color.YellowString,
	LogLevelError: color.RedString,
}

// Logger writes structured log entries at or above a minimum level.
type Logger struct {
	mu         sync.Mutex
	output     io.Writer
	minLevel   LogLevel
	enableJSON bool
}

// LogEntry is one structured log record.
type LogEntry struct {
	Level   LogLevel       `json:"level"`
	Time    string         `json:"time"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// DefaultLogger is the process-wide logger instance.
var DefaultLogger *Logger

func init() {
	enableJSON := os.Getenv("FD_LOG_FORMAT") == "json" || os.Getenv("FD_ENV") == "production"

	DefaultLogger = &Logger{
		output:     os.Stdout,
		minLevel:   logLevelFromEnv(),
		enableJSON: enableJSON,
	}
}

func logLevelFromEnv() LogLevel {
	switch os.Getenv("FD_LOG_LEVEL") {
	case "debug":
		return LogLevelDebug
	case "warn":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// NewLogger builds a logger for the given writer, useful in tests.
func NewLogger(output io.Writer, minLevel LogLevel, enableJSON bool) *Logger {
	return &Logger{output: output, minLevel: minLevel, enableJSON: enableJSON}
}

// SetLevel adjusts the minimum level, e.g. when --debug is passed.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

func (l *Logger) log(level LogLevel, msg string, fields map[string]any, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if logLevelRanks[level] < logLevelRanks[l.minLevel] {
		return
	}

	entry := LogEntry{
		Level:   level,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Message: msg,
		Fields:  fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if l.enableJSON {
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.output, string(data))
		return
	}

	colorize := logLevelColors[level]
	fmt.Fprintf(l.output, "%s [%s] %s", colorize("%s", levelTag(level)), entry.Time, entry.Message)
	for k, v := range entry.Fields {
		fmt.Fprintf(l.output, " %s=%v", k, v)
	}
	if entry.Error != "" {
		fmt.Fprintf(l.output, " error=%s", entry.Error)
	}
	fmt.Fprintln(l.output)
}

func levelTag(level LogLevel) string {
	switch level {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields map[string]any) { l.log(LogLevelDebug, msg, fields, nil) }

// Info logs an info message.
func (l *Logger) Info(msg string, fields map[string]any) { l.log(LogLevelInfo, msg, fields, nil) }

// Warn logs a warning.
func (l *Logger) Warn(msg string, fields map[string]any) { l.log(LogLevelWarn, msg, fields, nil) }

// Error logs an error message.
func (l *Logger) Error(msg string, fields map[string]any, err error) {
	l.log(LogLevelError, msg, fields, err)
}

// Package-level helpers writing through DefaultLogger.

func Debug(msg string, fields map[string]any) { DefaultLogger.Debug(msg, fields) }

func Info(msg string, fields map[string]any) { DefaultLogger.Info(msg, fields) }

func Warn(msg string, fields map[string]any) { DefaultLogger.Warn(msg, fields) }

func Error(msg string, fields map[string]any, err error) { DefaultLogger.Error(msg, fields, err) }
