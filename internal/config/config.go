package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API   APIConfig   `yaml:"api"`
	State StateConfig `yaml:"state"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Secrets never go into the config file; they come from the
	// environment only.
	Token       string `yaml:"-"`
	FunctionKey string `yaml:"-"`
}

type StateConfig struct {
	Path string `yaml:"path"`
}

// Load reads the config file from the user config dir, creating it with
// defaults on first use, and then applies environment overrides.
func Load() (*Config, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return loadFrom(filepath.Join(base, "plog"))
}

func loadFrom(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	cfg := defaultConfig(dir)
	path := filepath.Join(dir, "config.yaml")

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		if err := write(path, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaultConfig(dir string) *Config {
	return &Config{
		State: StateConfig{
			Path: filepath.Join(dir, "plog.db"),
		},
	}
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Environment variables take precedence over the config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PLOG_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("PLOG_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("PLOG_TOKEN_FUNCTION_KEY"); v != "" {
		cfg.API.FunctionKey = v
	}
	if v := os.Getenv("PLOG_STATE_FILE"); v != "" {
		cfg.State.Path = v
	}
}
