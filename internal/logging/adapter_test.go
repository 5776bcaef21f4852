package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewCronAdapter_WithNil(t *testing.T) {
	adapter := NewCronAdapter(nil)
	if adapter == nil {
		t.Fatal("NewCronAdapter returned nil")
	}
	if adapter.logger == nil {
		t.Error("adapter.logger should not be nil when created with nil")
	}
}

func TestNewCronAdapter_WithLogger(t *testing.T) {
	logger := slog.Default()
	adapter := NewCronAdapter(logger)
	if adapter.Logger() != logger {
		t.Error("Logger() should return the underlying logger")
	}
}

func TestCronAdapter_InfoIsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	adapter := NewCronAdapter(logger)

	adapter.Info("wake", "now", "2024-03-15")
	if buf.Len() != 0 {
		t.Errorf("Info should log at debug level, got %q", buf.String())
	}
}

func TestCronAdapter_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	adapter := NewCronAdapter(logger)

	adapter.Error(errors.New("boom"), "job failed", "entry", 1)

	out := buf.String()
	if !strings.Contains(out, "job failed") {
		t.Errorf("missing message in %q", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("missing error attribute in %q", out)
	}
	if !strings.Contains(out, "entry=1") {
		t.Errorf("missing key-value pair in %q", out)
	}
}
