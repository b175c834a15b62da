package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelDebug)

	l.Info("request handled", F("path", "/index.html"), F("status", 200))

	line := strings.TrimSpace(buf.String())
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\] INFO: request handled`, line)
	assert.True(t, strings.HasSuffix(line, "| path=/index.html status=200"))
}

func TestDefaultLoggerLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelWarn)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Error("kept too")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "WARN: kept")
	assert.Contains(t, out, "ERROR: kept too")
}

func TestDefaultLoggerWith(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelInfo).With(F("conn", "c1"))

	l.Info("sent", F("bytes", 10))

	assert.Contains(t, buf.String(), "| conn=c1 bytes=10")
}

func TestSanitizeValue(t *testing.T) {
	long := strings.Repeat("x", 150)
	got, ok := sanitizeValue(long).(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(got, "...[truncated]"))
	assert.Len(t, got, maxValueLen+len("...[truncated]"))

	assert.Equal(t, "boom", sanitizeValue(errors.New("boom")))
	assert.Equal(t, 42, sanitizeValue(42))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, "WARN", LevelWarn.String())
}
