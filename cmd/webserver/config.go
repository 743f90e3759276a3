package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"quantummeadow"
)

// config describes the webserver YAML configuration. Every field has a
// default, so the file is optional.
type config struct {
	Server struct {
		ListenAddr     string   `yaml:"listen_addr"`
		SessionSecret  string   `yaml:"session_secret"`
		SecureCookies  bool     `yaml:"secure_cookies"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		MaxSessions    int      `yaml:"max_sessions"`
		SessionIdle    string   `yaml:"session_idle"`
	} `yaml:"server"`
	Generator struct {
		APIKey         string   `yaml:"api_key"`
		BaseURL        string   `yaml:"base_url"`
		Model          string   `yaml:"model"`
		Temperature    *float32 `yaml:"temperature"` // nil means the default; 0 is honoured
		NumQuestions   int      `yaml:"num_questions"`
		RequestTimeout string   `yaml:"request_timeout"`
		FallbackFile   string   `yaml:"fallback_file"`
	} `yaml:"generator"`
	Diagnostics struct {
		LLMLogDir string `yaml:"llm_log_dir"`
		HistoryDB string `yaml:"history_db"`
	} `yaml:"diagnostics"`
}

// loadConfig reads the optional YAML file, applies environment overrides
// and fills in defaults.
func loadConfig(path string, getenv func(string) string) (config, error) {
	var cfg config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if key := firstNonEmpty(getenv("GEMINI_API_KEY"), getenv("API_KEY")); key != "" {
		cfg.Generator.APIKey = key
	}
	if port := getenv("PORT"); port != "" {
		cfg.Server.ListenAddr = ":" + port
	}
	if secret := getenv("SESSION_SECRET"); secret != "" {
		cfg.Server.SessionSecret = secret
	}
	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8180"
	}
	if cfg.Server.MaxSessions == 0 {
		cfg.Server.MaxSessions = 1000
	}
	if cfg.Server.SessionIdle == "" {
		cfg.Server.SessionIdle = "2h"
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = quantummeadow.DefaultBaseURL
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = quantummeadow.DefaultModel
	}
	if cfg.Generator.Temperature == nil {
		t := float32(quantummeadow.DefaultTemperature)
		cfg.Generator.Temperature = &t
	}
	if cfg.Generator.NumQuestions == 0 {
		cfg.Generator.NumQuestions = quantummeadow.DefaultNumQuestions
	}
	if cfg.Generator.NumQuestions < 0 {
		return cfg, fmt.Errorf("generator.num_questions must be positive")
	}

	idle, err := cfg.sessionIdle()
	if err != nil {
		return cfg, err
	}
	if idle <= 0 {
		return cfg, fmt.Errorf("server.session_idle must be positive")
	}
	if _, err := cfg.requestTimeout(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// sessionIdle parses server.session_idle
func (c config) sessionIdle() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.SessionIdle)
	if err != nil {
		return 0, fmt.Errorf("invalid server.session_idle: %w", err)
	}
	return d, nil
}

// requestTimeout parses generator.request_timeout; empty means no timeout
func (c config) requestTimeout() (time.Duration, error) {
	if c.Generator.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Generator.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid generator.request_timeout: %w", err)
	}
	return d, nil
}

// sourceConfig builds the question source configuration
func (c config) sourceConfig() (quantummeadow.SourceConfig, error) {
	src := quantummeadow.DefaultSourceConfig()
	src.APIKey = c.Generator.APIKey
	src.BaseURL = c.Generator.BaseURL
	src.Model = c.Generator.Model
	if c.Generator.Temperature != nil {
		src.Temperature = *c.Generator.Temperature
	}
	src.NumQuestions = c.Generator.NumQuestions
	src.LogDir = c.Diagnostics.LLMLogDir

	timeout, err := c.requestTimeout()
	if err != nil {
		return src, err
	}
	src.Timeout = timeout

	if c.Generator.FallbackFile != "" {
		fallback, err := quantummeadow.LoadFallbackFile(c.Generator.FallbackFile)
		if err != nil {
			return src, err
		}
		src.Fallback = fallback
	}
	return src, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
