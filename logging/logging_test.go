package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestWeekKey(t *testing.T) {
	// 2026-01-05 is a Monday in ISO week 2
	ts := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	if got := weekKey(ts); got != "2026-W02" {
		t.Errorf("weekKey = %q, want 2026-W02", got)
	}
}

func TestSetupLoggerCreatesWeeklyFile(t *testing.T) {
	dir := t.TempDir()

	logger := SetupLogger(dir, "info")
	logger.Info("test entry")

	expected := filepath.Join(dir, "app-"+weekKey(time.Now())+".log")
	if _, err := os.Stat(expected); err != nil {
		t.Errorf("Expected log file %s: %v", expected, err)
	}
}

func TestSetupLoggerBadDirFallsBack(t *testing.T) {
	// A file in place of the directory makes MkdirAll fail
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	logger := SetupLogger(blocker, "info")
	if logger == nil {
		t.Fatal("Logger should still be usable without a file")
	}
	logger.Info("console only")
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest("GET", "/api/v1/stats?name=x", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Errorf("Status = %d", rr.Code)
	}

	logged := buf.String()
	for _, want := range []string{"method=GET", "path=/api/v1/stats", "status_code=418", "query=name=x"} {
		if !strings.Contains(logged, want) {
			t.Errorf("Log line should contain %q, got: %s", want, logged)
		}
	}
}

func TestLoggingMiddlewareSkipsProbes(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", path, nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if buf.Len() != 0 {
				t.Errorf("Probe endpoint %s should not be logged, got: %s", path, buf.String())
			}
		})
	}
}

func TestGlobalLoggerFallback(t *testing.T) {
	// Package-level logging must work before InitLogger runs
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = saved }()

	// Must not panic
	Info("fallback info")
	Warn("fallback warn")
	Error("fallback error")
	Debug("fallback debug")
}
