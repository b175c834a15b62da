package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is the structured logging interface used across the server and the
// transfer utility.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel maps a level name (any case) to a Level. Unknown names fall
// back to LevelInfo.
func ParseLevel(name string) Level {
	for level, levelName := range levelNames {
		if strings.EqualFold(levelName, name) {
			return level
		}
	}
	return LevelInfo
}

// maxValueLen bounds string field values; longer ones are truncated.
const maxValueLen = 100

// DefaultLogger writes one line per entry:
//
//	[2006-01-02 15:04:05.000] INFO: msg | key=value key=value
type DefaultLogger struct {
	mu     sync.Mutex
	logger *log.Logger
	level  Level
	fields []Field
}

// New returns a DefaultLogger writing to w at the given minimum level.
func New(w io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{
		logger: log.New(w, "", 0),
		level:  level,
	}
}

// NewDefaultLogger logs to stdout at info level.
func NewDefaultLogger() *DefaultLogger {
	return New(os.Stdout, LevelInfo)
}

// With returns a logger that appends fields to every entry.
func (l *DefaultLogger) With(fields ...Field) *DefaultLogger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &DefaultLogger{
		logger: l.logger,
		level:  l.level,
		fields: merged,
	}
}

func (l *DefaultLogger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

func (l *DefaultLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

func (l *DefaultLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

func (l *DefaultLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

func (l *DefaultLogger) log(level Level, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	var b strings.Builder
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(&b, "[%s] %s: %s", timestamp, level, msg)

	all := append(append([]Field{}, l.fields...), fields...)
	if len(all) > 0 {
		b.WriteString(" |")
		for _, f := range all {
			fmt.Fprintf(&b, " %s=%v", f.Key, sanitizeValue(f.Value))
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logger == nil {
		l.logger = log.New(os.Stdout, "", 0)
	}
	l.logger.Println(b.String())
}

func sanitizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		if len(val) > maxValueLen {
			return val[:maxValueLen] + "...[truncated]"
		}
	case error:
		return sanitizeValue(val.Error())
	}
	return v
}

// NullLogger discards all logs (for testing)
type NullLogger struct{}

func (NullLogger) Debug(msg string, fields ...Field) {}
func (NullLogger) Info(msg string, fields ...Field)  {}
func (NullLogger) Warn(msg string, fields ...Field)  {}
func (NullLogger) Error(msg string, fields ...Field) {}
