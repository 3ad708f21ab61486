package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestLoggingIncludesHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	testLogger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogging(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ContextWithLogAttrs(r.Context(), slog.String("role", "user"))
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/student/dashboard", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("could not decode log entry %q: %v", buf.String(), err)
	}

	if entry["role"] != "user" {
		t.Errorf("expected role attribute in request log, got %v", entry["role"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("expected status %d, got %v", http.StatusTeapot, entry["status"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("expected WARN level for 4xx response, got %v", entry["level"])
	}
}

func TestRequestLoggingSkipsHealth(t *testing.T) {
	var buf bytes.Buffer
	testLogger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogging(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if buf.Len() != 0 {
		t.Errorf("expected no log output for health request, got %q", buf.String())
	}
}
