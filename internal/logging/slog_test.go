package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSetup(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "debug")
	if logger == nil {
		t.Fatal("Setup returned nil")
	}
	logger.Debug("visible at debug")
	if !strings.Contains(buf.String(), "visible at debug") {
		t.Errorf("debug message not written, got %q", buf.String())
	}

	buf.Reset()
	logger = Setup(&buf, "warn")
	logger.Info("filtered at warn")
	if buf.Len() != 0 {
		t.Errorf("info message should be filtered at warn level, got %q", buf.String())
	}

	// Unknown levels fall back to info.
	buf.Reset()
	logger = Setup(&buf, "bogus")
	logger.Debug("filtered")
	logger.Info("passed")
	if strings.Contains(buf.String(), "filtered") {
		t.Error("debug should be filtered at fallback info level")
	}
	if !strings.Contains(buf.String(), "passed") {
		t.Error("info should pass at fallback info level")
	}
}

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "test_operation")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithTool(t *testing.T) {
	logger := slog.Default()
	result := WithTool(logger, "test_tool")
	if result == nil {
		t.Error("WithTool returned nil")
	}
}

func TestWithService(t *testing.T) {
	logger := slog.Default()
	result := WithService(logger, "calendar")
	if result == nil {
		t.Error("WithService returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("test_op")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "test_op" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "test_op")
	}
}

func TestServiceAttr(t *testing.T) {
	attr := Service("meet")
	if attr.Key != KeyService {
		t.Errorf("Service key = %q, want %q", attr.Key, KeyService)
	}
	if attr.Value.String() != "meet" {
		t.Errorf("Service value = %q, want %q", attr.Value.String(), "meet")
	}
}

func TestPrincipalAttr(t *testing.T) {
	attr := Principal("default")
	if attr.Key != KeyPrincipal {
		t.Errorf("Principal key = %q, want %q", attr.Key, KeyPrincipal)
	}
	if attr.Value.String() != "default" {
		t.Errorf("Principal value = %q, want %q", attr.Value.String(), "default")
	}
}

func TestToolAttr(t *testing.T) {
	attr := Tool("calendar_v3_list_events")
	if attr.Key != KeyTool {
		t.Errorf("Tool key = %q, want %q", attr.Key, KeyTool)
	}
	if attr.Value.String() != "calendar_v3_list_events" {
		t.Errorf("Tool value = %q, want %q", attr.Value.String(), "calendar_v3_list_events")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != StatusSuccess {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), StatusSuccess)
	}
}

func TestErrorKindAttr(t *testing.T) {
	attr := ErrorKind("RateLimited")
	if attr.Key != KeyErrorKind {
		t.Errorf("ErrorKind key = %q, want %q", attr.Key, KeyErrorKind)
	}
	if attr.Value.String() != "RateLimited" {
		t.Errorf("ErrorKind value = %q, want %q", attr.Value.String(), "RateLimited")
	}
}

func TestErr(t *testing.T) {
	// Test with error
	err := errors.New("test error")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}

	// Test with nil - should return an empty group that slog will omit
	attr = Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty string (empty group)", attr.Key)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"a_very_long_token_string", "[token:24 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := SanitizeToken(tt.token)
			if result != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, result, tt.expected)
			}
		})
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusSuccess != "success" {
		t.Errorf("StatusSuccess = %q, want %q", StatusSuccess, "success")
	}
	if StatusError != "error" {
		t.Errorf("StatusError = %q, want %q", StatusError, "error")
	}
}
