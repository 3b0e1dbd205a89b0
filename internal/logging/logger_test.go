package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(WARN, "test", &buf)

	l.Debugf("hidden")
	l.Infof("also hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below configured level, got %q", buf.String())
	}

	l.Warnf("visible %d", 1)
	if buf.Len() == 0 {
		t.Fatalf("expected output at configured level")
	}
}

func TestLoggerWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(DEBUG, "scuckoo", &buf)
	l.Infof("grew to level %d", 2)

	line := strings.TrimSpace(buf.String())
	var entry LogEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v (%q)", err, line)
	}
	if entry.Level != "INFO" {
		t.Errorf("Level = %q, want INFO", entry.Level)
	}
	if entry.Component != "scuckoo" {
		t.Errorf("Component = %q, want scuckoo", entry.Component)
	}
	if entry.Message != "grew to level 2" {
		t.Errorf("Message = %q, want %q", entry.Message, "grew to level 2")
	}
	if entry.CorrelationID == "" {
		t.Errorf("expected a non-empty correlation ID")
	}
}

func TestLevelFromString(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"DEBUG":   DEBUG,
		"info":    INFO,
		"warn":    WARN,
		"warning": WARN,
		"error":   ERROR,
		"bogus":   INFO,
		"":        INFO,
	}
	for in, want := range cases {
		if got := LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}
