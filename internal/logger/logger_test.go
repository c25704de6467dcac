package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gai-kavia/kavia-console/internal/config"
)

func TestZapLoggerWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&config.Config{AppName: "kavia-console", Env: "test", LogLevel: "info"}, &buf)

	log.InfoObj("call completed", "call_result", map[string]any{"call": "health"})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "call completed" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("ts key missing: %v", entry)
	}
	if entry["app"] != "kavia-console" {
		t.Fatalf("app = %v", entry["app"])
	}
	obj, ok := entry["call_result"].(map[string]any)
	if !ok || obj["call"] != "health" {
		t.Fatalf("call_result = %#v", entry["call_result"])
	}
}

func TestZapLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&config.Config{LogLevel: "warn"}, &buf)

	log.DebugObj("hidden", "k", 1)
	log.InfoObj("hidden", "k", 1)
	log.WarnObj("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNopLoggerSatisfiesInterface(t *testing.T) {
	var log Logger = NopLogger{}
	log.ErrorObj("ignored", "k", nil)
}
