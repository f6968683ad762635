package telemetry

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("analysis.completed", map[string]any{"analysis_id": "a-1", "duration_ms": 12.5})

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log json: %v (%q)", err, buf.String())
	}
	for _, key := range []string{"ts", "level", "msg", "analysis_id", "duration_ms"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["msg"] != "analysis.completed" || payload["level"] != "info" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestSetLevelSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("warn")
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	})

	Info("hidden", nil)
	Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	Warn("shown", nil)
	if buf.Len() == 0 {
		t.Fatalf("expected warn output")
	}
}
