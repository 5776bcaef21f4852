package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const (
	testToolEvents   = "libcal_find_events"
	testToolBookings = "libcal_room_bookings"
	testDate         = "2024-03-15"
)

func attrKeys(attrs []slog.Attr) map[string]slog.Value {
	keys := make(map[string]slog.Value, len(attrs))
	for _, a := range attrs {
		keys[a.Key] = a.Value
	}
	return keys
}

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolEvents)

	if ti.Tool != testToolEvents {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolEvents)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolBookings)
	ti.CompleteWithError(errors.New("library has no booking location"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "library has no booking location" {
		t.Errorf("Error = %q", ti.Error)
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolEvents).
		WithScope(testDate, []int{9404, 9395}).
		WithArguments(map[string]any{"date": testDate})
	ti.TraceID = "abc123"
	ti.SpanID = "span789"
	ti.CompleteSuccess()

	keys := attrKeys(ti.LogAttrs())
	for _, k := range []string{"tool", "duration", "success", "date", "libraries", "trace_id"} {
		if _, ok := keys[k]; !ok {
			t.Errorf("LogAttrs missing %q", k)
		}
	}
	if _, ok := keys["arguments"]; ok {
		t.Error("LogAttrs must not include raw arguments")
	}
	if _, ok := keys["span_id"]; ok {
		t.Error("LogAttrs must not include span_id")
	}

	audit := attrKeys(ti.LogAuditAttrs())
	if _, ok := audit["arguments"]; !ok {
		t.Error("LogAuditAttrs should include arguments")
	}
	if audit["span_id"].String() != "span789" {
		t.Errorf("span_id = %q", audit["span_id"].String())
	}
}

func TestToolInvocation_LogAttrs_MinimalFields(t *testing.T) {
	ti := NewToolInvocation(testToolEvents).CompleteSuccess()

	if got := len(ti.LogAttrs()); got != 3 {
		t.Errorf("expected 3 attributes, got %d", got)
	}
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation(testToolEvents).WithSpanContext(context.Background())
	if ti.TraceID != "" || ti.SpanID != "" {
		t.Errorf("expected empty trace context, got %q/%q", ti.TraceID, ti.SpanID)
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	al.LogToolInvocation(NewToolInvocation(testToolEvents).CompleteSuccess())
	al.LogToolInvocation(NewToolInvocation(testToolBookings).CompleteWithError(errors.New("boom")))

	out := buf.String()
	if !strings.Contains(out, "tool_executed") {
		t.Errorf("missing success record in %q", out)
	}
	if !strings.Contains(out, "level=WARN msg=tool_failed") {
		t.Errorf("missing failure record in %q", out)
	}
}

func TestAuditLogger_IncludeArguments(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ti := NewToolInvocation(testToolEvents).
		WithArguments(map[string]any{"date": testDate}).
		CompleteSuccess()

	NewAuditLogger(logger).LogToolInvocation(ti)
	if strings.Contains(buf.String(), "arguments") {
		t.Error("arguments logged without IncludeArguments")
	}

	buf.Reset()
	NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, IncludeArguments: true}).LogToolInvocation(ti)
	if !strings.Contains(buf.String(), "arguments") {
		t.Errorf("arguments missing in %q", buf.String())
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewTextHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})

	al.LogToolInvocation(NewToolInvocation(testToolEvents).CompleteSuccess())
	if buf.Len() != 0 {
		t.Errorf("disabled audit logger wrote %q", buf.String())
	}

	al.SetEnabled(true)
	al.LogToolInvocation(NewToolInvocation(testToolEvents).CompleteSuccess())
	if buf.Len() == 0 {
		t.Error("re-enabled audit logger wrote nothing")
	}
}

func TestAuditLogger_NilSafe(t *testing.T) {
	var al *AuditLogger
	al.LogToolInvocation(NewToolInvocation(testToolEvents).CompleteSuccess())
}
