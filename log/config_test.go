package log

import (
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Level
	}{
		{"trace", "trace", LevelTrace},
		{"trace uppercase", "TRACE", LevelTrace},
		{"debug", "debug", LevelDebug},
		{"info", "info", LevelInfo},
		{"warn", "warn", LevelWarn},
		{"error", "ERROR", LevelError},
		{"unknown falls back", "loud", DefaultLevel},
		{"empty falls back", "", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevel_String_RoundTrip(t *testing.T) {
	for name := range Levels() {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q).String() = %q", name, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Format
	}{
		{"json", "json", FormatJSON},
		{"json padded", " JSON ", FormatJSON},
		{"text", "text", FormatText},
		{"unknown falls back", "pretty", DefaultFormat},
		{"empty falls back", "", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolveTimeLayout(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"named rfc3339", "RFC3339", time.RFC3339},
		{"named kitchen", "kitchen", time.Kitchen},
		{"none disables", "none", ""},
		{"verbatim layout", "2006-01-02", "2006-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveTimeLayout(tt.input); got != tt.expected {
				t.Errorf("resolveTimeLayout(%q) = %q, want %q",
					tt.input, got, tt.expected)
			}
		})
	}
}

func TestConfig_WithLevel_SetsLevel(t *testing.T) {
	c := config{}
	if result := WithLevel(LevelError)(c); result.level != LevelError {
		t.Errorf("level = %v, want %v", result.level, LevelError)
	}
}

func TestConfig_WithCaller_SetsCaller(t *testing.T) {
	c := config{}
	if result := WithCaller(true)(c); !result.caller {
		t.Error("caller not enabled")
	}
}
