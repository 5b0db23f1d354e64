package config

import (
	"strings"
	"testing"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "8000")
	t.Setenv("ADDRESS", "127.0.0.1")
	t.Setenv("ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/interactions_test?sslmode=disable")
}

func TestLoadDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DataDir != "dataset" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.StorageDir != "medical_files" {
		t.Errorf("StorageDir = %q", cfg.StorageDir)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("OpenAIModel = %q", cfg.OpenAIModel)
	}
	if cfg.MaxUploadSize != 10*1024*1024 {
		t.Errorf("MaxUploadSize = %d", cfg.MaxUploadSize)
	}
	if cfg.InteractionsFile != "interactions.csv" || cfg.SynonymsFile != "drugs_synonyms.json" {
		t.Errorf("Dataset files = %q, %q", cfg.InteractionsFile, cfg.SynonymsFile)
	}
	if cfg.AIConfigured() {
		t.Error("AIConfigured should be false without OPENAI_API_KEY")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"non-numeric port", "PORT", "abc", "PORT"},
		{"privileged port", "PORT", "80", "privileged"},
		{"port out of range", "PORT", "70000", "PORT"},
		{"bad address", "ADDRESS", "not-an-ip", "ADDRESS"},
		{"bad env", "ENV", "production!", "ENV"},
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"zero upload size", "MAX_UPLOAD_SIZE", "0", "MAX_UPLOAD_SIZE"},
		{"oversized upload limit", "MAX_UPLOAD_SIZE", "209715200", "MAX_UPLOAD_SIZE"},
		{"zero ai timeout", "AI_TIMEOUT_SECONDS", "0", "AI_TIMEOUT_SECONDS"},
		{"excessive ai timeout", "AI_TIMEOUT_SECONDS", "600", "AI_TIMEOUT_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected validation error for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q should mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setValidEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Expected DATABASE_URL error, got %v", err)
	}
}

func TestAIConfigured(t *testing.T) {
	setValidEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.AIConfigured() {
		t.Error("AIConfigured should be true with a key set")
	}
}
