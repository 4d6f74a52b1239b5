package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/user/upscaler/pkg/ports"
)

func TestConsoleLogger_RoutesByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleWriter(ports.LevelDebug, &out, &errOut)

	l.Debug("Frame: %d", 3)
	l.Info("Output saved to %s", "out.mp4")
	l.Warn("something odd")
	l.Error("something broke")

	if got := strings.Count(out.String(), "\n"); got != 2 {
		t.Errorf("expected 2 lines on stdout, got %d: %q", got, out.String())
	}
	if got := strings.Count(errOut.String(), "\n"); got != 2 {
		t.Errorf("expected 2 lines on stderr, got %d: %q", got, errOut.String())
	}
	if !strings.Contains(out.String(), "Frame: 3") {
		t.Errorf("expected formatted debug line, got %q", out.String())
	}
}

func TestConsoleLogger_FiltersBelowLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleWriter(ports.LevelWarn, &out, &errOut)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	if out.Len() != 0 {
		t.Errorf("expected no stdout output, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "shown") {
		t.Errorf("expected warning on stderr, got %q", errOut.String())
	}
}

func TestConsoleLogger_QuietSuppressesAll(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleWriter(ports.LevelQuiet, &out, &errOut)

	l.Error("hidden")

	if out.Len() != 0 || errOut.Len() != 0 {
		t.Errorf("expected no output in quiet mode, got %q / %q", out.String(), errOut.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleWriter(ports.LevelInfo, &out, &errOut).WithComponent("pipeline")

	l.Info("started")

	if got := out.String(); got != "[pipeline] started\n" {
		t.Errorf("expected component prefix, got %q", got)
	}
}

func TestJSONLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(ports.LevelInfo, &buf).WithComponent("orchestrator")

	l.Debug("hidden")
	l.Info("Frame: %d", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if rec["level"] != "info" {
		t.Errorf("expected level info, got %v", rec["level"])
	}
	if rec["component"] != "orchestrator" {
		t.Errorf("expected component orchestrator, got %v", rec["component"])
	}
	if rec["message"] != "Frame: 7" {
		t.Errorf("expected message %q, got %v", "Frame: 7", rec["message"])
	}
}

func TestNoopLogger(t *testing.T) {
	var l ports.Logger = NewNoop()
	l.Info("nothing")
	if l.WithComponent("x") != l {
		t.Error("expected WithComponent to return the same logger")
	}
}
