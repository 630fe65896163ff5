package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/smasher164/chocopy/logger"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]logger.LogLevel{
		"debug":   logger.LevelDebug,
		"INFO":    logger.LevelInfo,
		"warning": logger.LevelWarn,
		"error":   logger.LevelError,
	} {
		got, err := logger.ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := logger.ParseLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	if err := logger.Init(logger.Config{Level: logger.LevelInfo, Format: "json", Output: &buf}); err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.LogResult("a.py", 2)
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("%v: %s", err, buf.String())
	}
	if rec["msg"] != "analysis failed" || rec["file"] != "a.py" || rec["diagnostics"] != float64(2) {
		t.Errorf("unexpected record %v", rec)
	}

	buf.Reset()
	if err := logger.Init(logger.Config{Level: logger.LevelDebug, Output: &buf}); err != nil {
		t.Fatal(err)
	}
	logger.LogPhase(logger.With("component", "test"), "hierarchy")
	if out := buf.String(); !strings.Contains(out, "phase=hierarchy") || !strings.Contains(out, "component=test") {
		t.Errorf("unexpected output %q", out)
	}

	if err := logger.Init(logger.Config{Format: "xml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
