package pkg

import (
	"os"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "tsk"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestVersion(t *testing.T) {
	// Version is embedded from the VERSION file beside this package.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if string(buf) != Version {
		t.Errorf("Expected Version to be %q, got %q", buf, Version)
	}

	if strings.TrimSpace(Version) == "" {
		t.Error("Version must not be empty")
	}
}
