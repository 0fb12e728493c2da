package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearPlogEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PLOG_API_URL", "PLOG_API_TOKEN", "PLOG_TOKEN_FUNCTION_KEY", "PLOG_STATE_FILE"} {
		t.Setenv(key, "")
	}
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	clearPlogEnv(t)
	dir := filepath.Join(t.TempDir(), "plog")

	cfg, err := loadFrom(dir)
	if err != nil {
		t.Fatalf("loadFrom() error: %v", err)
	}

	if cfg.State.Path != filepath.Join(dir, "plog.db") {
		t.Errorf("default state path = %q", cfg.State.Path)
	}
	if cfg.API.BaseURL != "" {
		t.Errorf("default base URL should be empty, got %q", cfg.API.BaseURL)
	}

	// First load writes the file so the user has something to edit.
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestLoadReadsExistingFile(t *testing.T) {
	clearPlogEnv(t)
	dir := t.TempDir()

	data := "api:\n  base_url: https://plog.example.com\nstate:\n  path: /tmp/custom.db\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFrom(dir)
	if err != nil {
		t.Fatalf("loadFrom() error: %v", err)
	}
	if cfg.API.BaseURL != "https://plog.example.com" {
		t.Errorf("base URL = %q", cfg.API.BaseURL)
	}
	if cfg.State.Path != "/tmp/custom.db" {
		t.Errorf("state path = %q", cfg.State.Path)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearPlogEnv(t)
	dir := t.TempDir()

	data := "api:\n  base_url: https://file.example.com\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PLOG_API_URL", "https://env.example.com")
	t.Setenv("PLOG_API_TOKEN", "env-token")
	t.Setenv("PLOG_TOKEN_FUNCTION_KEY", "env-key")
	t.Setenv("PLOG_STATE_FILE", "/tmp/env.db")

	cfg, err := loadFrom(dir)
	if err != nil {
		t.Fatalf("loadFrom() error: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("base URL = %q, env should win", cfg.API.BaseURL)
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("token = %q", cfg.API.Token)
	}
	if cfg.API.FunctionKey != "env-key" {
		t.Errorf("function key = %q", cfg.API.FunctionKey)
	}
	if cfg.State.Path != "/tmp/env.db" {
		t.Errorf("state path = %q", cfg.State.Path)
	}
}

func TestSecretsNeverWrittenToFile(t *testing.T) {
	clearPlogEnv(t)
	dir := t.TempDir()

	t.Setenv("PLOG_API_TOKEN", "super-secret")
	if _, err := loadFrom(dir); err != nil {
		t.Fatalf("loadFrom() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "super-secret") {
		t.Errorf("config file contains a secret:\n%s", data)
	}
}

func TestMalformedFileIsAnError(t *testing.T) {
	clearPlogEnv(t)
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadFrom(dir); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
