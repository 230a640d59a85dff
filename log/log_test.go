package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("level = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("format = %v, want %v", logger.Format(), DefaultFormat)
	}
}

func TestLogger_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelError))

	logger.Info("quiet message")
	if buf.Len() > 0 {
		t.Errorf("info message logged at Error level: %s", buf.String())
	}

	logger.Error("loud message")
	if !strings.Contains(buf.String(), "loud message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_TraceLevel_RendersTraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelTrace))

	logger.Trace("deep detail")

	output := buf.String()
	if !strings.Contains(output, "TRACE") {
		t.Errorf("expected TRACE label, got: %s", output)
	}

	if !strings.Contains(output, "deep detail") {
		t.Errorf("trace message missing: %s", output)
	}
}

func TestLogger_JSONFormat_EmitsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatJSON))

	logger.Info("structured", slog.Int("count", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if entry["msg"] != "structured" {
		t.Errorf("msg = %v", entry["msg"])
	}

	if entry["count"] != float64(3) {
		t.Errorf("count = %v", entry["count"])
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf).With(slog.String("component", "codec"))

	logger.Info("tagged")

	if !strings.Contains(buf.String(), "codec") {
		t.Errorf("attribute missing from output: %s", buf.String())
	}
}

func TestLogger_ZeroValue_IsSilentAndSafe(t *testing.T) {
	var logger Logger

	// None of these may panic, and the zero value reports defaults.
	logger.Trace("a")
	logger.Debug("b")
	logger.Info("c")
	logger.Warn("d")
	logger.Error("e")

	if logger.Level() != DefaultLevel {
		t.Errorf("zero value level = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("zero value format = %v, want %v", logger.Format(), DefaultFormat)
	}

	if tagged := logger.With(slog.String("k", "v")); tagged.Logger != nil {
		t.Error("With on zero value should stay zero")
	}
}

func TestLogger_Wrap_OverridesConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelError))

	verbose := logger.Wrap(WithLevel(LevelDebug))

	verbose.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("wrapped logger did not lower the level")
	}

	if logger.Level() != LevelError {
		t.Errorf("original level changed to %v", logger.Level())
	}
}
