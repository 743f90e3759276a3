package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quantummeadow"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meadow.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoadConfigDefaults verifies defaults without a file or environment.
func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", envMap(nil))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.ListenAddr != ":8180" || cfg.Server.MaxSessions != 1000 {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Generator.Model != quantummeadow.DefaultModel || cfg.Generator.NumQuestions != quantummeadow.DefaultNumQuestions {
		t.Fatalf("unexpected generator defaults %+v", cfg.Generator)
	}
	idle, err := cfg.sessionIdle()
	if err != nil || idle != 2*time.Hour {
		t.Fatalf("unexpected idle %v %v", idle, err)
	}

	src, err := cfg.sourceConfig()
	if err != nil {
		t.Fatalf("source config: %v", err)
	}
	if src.APIKey != "" || src.Timeout != 0 || len(src.Fallback) != 2 {
		t.Fatalf("unexpected source config %+v", src)
	}
}

// TestLoadConfigFileAndEnv verifies file values and environment overrides.
func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":9000"
  max_sessions: 5
  session_idle: 30m
generator:
  api_key: file-key
  model: gemini-test
  temperature: 0.3
  num_questions: 3
  request_timeout: 20s
diagnostics:
  llm_log_dir: /tmp/meadow-logs
`)
	cfg, err := loadConfig(path, envMap(map[string]string{
		"API_KEY":         "env-key",
		"PORT":            "7000",
		"ALLOWED_ORIGINS": "https://a.example,https://b.example",
	}))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.ListenAddr != ":7000" {
		t.Fatalf("expected PORT override, got %s", cfg.Server.ListenAddr)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.MaxSessions != 5 {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}

	src, err := cfg.sourceConfig()
	if err != nil {
		t.Fatalf("source config: %v", err)
	}
	if src.APIKey != "env-key" || src.Model != "gemini-test" || src.NumQuestions != 3 {
		t.Fatalf("unexpected source config %+v", src)
	}
	if src.Temperature != 0.3 || src.Timeout != 20*time.Second || src.LogDir != "/tmp/meadow-logs" {
		t.Fatalf("unexpected source tuning %+v", src)
	}
}

// TestLoadConfigGeminiKeyWins verifies GEMINI_API_KEY takes precedence.
func TestLoadConfigGeminiKeyWins(t *testing.T) {
	cfg, err := loadConfig("", envMap(map[string]string{
		"GEMINI_API_KEY": "gemini-key",
		"API_KEY":        "generic-key",
	}))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Generator.APIKey != "gemini-key" {
		t.Fatalf("expected gemini key, got %q", cfg.Generator.APIKey)
	}
}

// TestLoadConfigInvalid verifies bad durations and counts are rejected.
func TestLoadConfigInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"unparsable idle", "server:\n  session_idle: soon\n", "session_idle"},
		{"negative idle", "server:\n  session_idle: -1h\n", "session_idle must be positive"},
		{"zero idle", "server:\n  session_idle: 0s\n", "session_idle must be positive"},
		{"unparsable timeout", "generator:\n  request_timeout: later\n", "request_timeout"},
		{"negative count", "generator:\n  num_questions: -2\n", "num_questions"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tc.content), envMap(nil))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %q", tc.want, err.Error())
			}
		})
	}
}

// TestLoadConfigTemperature verifies an explicit zero temperature is kept and an absent one defaults.
func TestLoadConfigTemperature(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "generator:\n  temperature: 0\n"), envMap(nil))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	src, err := cfg.sourceConfig()
	if err != nil {
		t.Fatalf("source config: %v", err)
	}
	if src.Temperature != 0 {
		t.Fatalf("expected explicit zero temperature, got %v", src.Temperature)
	}

	cfg, err = loadConfig("", envMap(nil))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	src, err = cfg.sourceConfig()
	if err != nil {
		t.Fatalf("source config: %v", err)
	}
	if src.Temperature != quantummeadow.DefaultTemperature {
		t.Fatalf("expected default temperature, got %v", src.Temperature)
	}
}

// TestSourceConfigFallbackFile verifies a configured fallback file replaces the defaults.
func TestSourceConfigFallbackFile(t *testing.T) {
	fallback := filepath.Join(t.TempDir(), "fallback.yaml")
	if err := os.WriteFile(fallback, []byte("questions: []\n"), 0644); err != nil {
		t.Fatalf("write fallback: %v", err)
	}
	path := writeConfig(t, "generator:\n  fallback_file: "+fallback+"\n")
	cfg, err := loadConfig(path, envMap(nil))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	src, err := cfg.sourceConfig()
	if err != nil {
		t.Fatalf("source config: %v", err)
	}
	if len(src.Fallback) != 0 {
		t.Fatalf("expected empty fallback, got %d questions", len(src.Fallback))
	}
}
