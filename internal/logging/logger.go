// Package logging is a minimal synchronous structured logger: every
// call writes one JSON line directly, with no background goroutine,
// since a pure in-memory data structure must not spawn one a caller
// didn't ask for.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// LogLevel represents the severity of a log entry.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogEntry is a single structured, JSON-serializable log line.
type LogEntry struct {
	Timestamp     time.Time `json:"@timestamp"`
	Level         string    `json:"level"`
	Message       string    `json:"message"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Component     string    `json:"component,omitempty"`
}

// Logger is a minimal synchronous structured logger: every call writes
// one JSON line directly to the configured writer.
type Logger struct {
	level         LogLevel
	component     string
	correlationID string
	writer        io.Writer
}

// New returns a Logger at the given level, writing to w. A nil w defaults
// to os.Stderr. component tags every entry (e.g. "scuckoo").
func New(level LogLevel, component string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		level:         level,
		component:     component,
		correlationID: uuid.NewString(),
		writer:        w,
	}
}

func (l *Logger) write(level LogLevel, msg string) {
	if l == nil || level < l.level {
		return
	}
	entry := LogEntry{
		Timestamp:     time.Now().UTC(),
		Level:         level.String(),
		Message:       msg,
		CorrelationID: l.correlationID,
		Component:     l.component,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

// Debugf logs a formatted message at DEBUG level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.write(DEBUG, fmt.Sprintf(format, args...)) }

// Infof logs a formatted message at INFO level.
func (l *Logger) Infof(format string, args ...interface{}) { l.write(INFO, fmt.Sprintf(format, args...)) }

// Warnf logs a formatted message at WARN level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.write(WARN, fmt.Sprintf(format, args...)) }

// Errorf logs a formatted message at ERROR level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.write(ERROR, fmt.Sprintf(format, args...)) }
