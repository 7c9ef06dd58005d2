package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// Interface compliance (compile-time assertions)
var (
	_ Logger = (*AgentFlowLogger)(nil)
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = NoOpLogger{}
)

func captureLogger(level LogLevel) (*AgentFlowLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: &buf}), &buf
}

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	return entry
}

func TestAgentFlowLogger_KeyValueArgs(t *testing.T) {
	l, buf := captureLogger(LogLevelDebug)

	l.Info("agent.run.start", "agent", "writer", "rounds", 2)

	entry := decodeLine(t, strings.TrimSpace(buf.String()))
	if entry["msg"] != "agent.run.start" {
		t.Fatalf("unexpected message: %v", entry["msg"])
	}
	if entry["agent"] != "writer" {
		t.Fatalf("expected agent field, got %v", entry["agent"])
	}
	if entry["rounds"] != float64(2) {
		t.Fatalf("expected rounds field, got %v", entry["rounds"])
	}
}

func TestAgentFlowLogger_LevelFilter(t *testing.T) {
	l, buf := captureLogger(LogLevelWarn)

	l.Debug("below threshold")
	l.Info("below threshold")
	l.Warn("visible")
	l.Error("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %q", len(lines), buf.String())
	}
}

func TestAgentFlowLogger_ContextualClones(t *testing.T) {
	l, buf := captureLogger(LogLevelInfo)

	scoped := l.WithComponent("runner").WithSession("sess-1", "run-1").WithContext("branch", "research.alpha")
	scoped.Info("runner.run.start")

	entry := decodeLine(t, strings.TrimSpace(buf.String()))
	if entry["component"] != "runner" {
		t.Fatalf("expected component, got %v", entry["component"])
	}
	if entry["session_id"] != "sess-1" || entry["run_id"] != "run-1" {
		t.Fatalf("expected session identifiers, got %v", entry)
	}
	if entry["branch"] != "research.alpha" {
		t.Fatalf("expected context attribute, got %v", entry["branch"])
	}

	// Clones never leak back into the base logger.
	buf.Reset()
	l.Info("plain")
	base := decodeLine(t, strings.TrimSpace(buf.String()))
	if _, ok := base["component"]; ok {
		t.Fatal("base logger picked up component from clone")
	}
}

func TestAgentFlowLogger_CustomAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{
		Level:       LogLevelInfo,
		Format:      "json",
		Output:      &buf,
		CustomAttrs: map[string]any{"service": "agentflow"},
	})

	l.Info("boot")

	entry := decodeLine(t, strings.TrimSpace(buf.String()))
	if entry["service"] != "agentflow" {
		t.Fatalf("expected custom attribute, got %v", entry)
	}
}

func TestSlogAdapter_ForwardsArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

	l.Warn("parallel.state.collision", "key", "draft")

	entry := decodeLine(t, strings.TrimSpace(buf.String()))
	if entry["msg"] != "parallel.state.collision" || entry["key"] != "draft" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestLogLevel_String(t *testing.T) {
	cases := map[LogLevel]string{
		LogLevelDebug: "DEBUG",
		LogLevelInfo:  "INFO",
		LogLevelWarn:  "WARN",
		LogLevelError: "ERROR",
		LogLevel(99):  "UNKNOWN",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Fatalf("level %d: expected %s, got %s", level, want, got)
		}
	}
}
