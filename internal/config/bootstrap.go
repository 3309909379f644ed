// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed insights.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/insights/insights.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", inserr.Errorf(inserr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "insights", "insights.yaml"), nil
}

// BootstrapConfig writes the default commented config to path if it does not
// already exist. Returns the path written, or empty string if the file already
// existed or an error occurred (non-fatal, logged and skipped).
func BootstrapConfig() string {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		slog.Debug("skipping config bootstrap", "error", err)
		return ""
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return "" // already exists
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return ""
	}

	if err := os.WriteFile(cfgPath, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", cfgPath, "error", err)
		return ""
	}

	slog.Info("created default config", "path", cfgPath)
	return cfgPath
}

// yamlDuration renders as "10s" instead of raw nanoseconds.
type yamlDuration time.Duration

func (d yamlDuration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// fileDoc mirrors Config for serialization, using the same key names Load
// reads back.
type fileDoc struct {
	Upstream struct {
		BaseURL   string       `yaml:"base_url"`
		Timeout   yamlDuration `yaml:"timeout"`
		UserAgent string       `yaml:"user_agent"`
		APIKey    string       `yaml:"api_key,omitempty"`
	} `yaml:"upstream"`
	Cache struct {
		Enabled      bool                    `yaml:"enabled"`
		MaxEntries   int                     `yaml:"max_entries"`
		TTLOverrides map[string]yamlDuration `yaml:"ttl_overrides,omitempty"`
	} `yaml:"cache"`
	RateLimit struct {
		Capacity        int     `yaml:"capacity"`
		RefillPerSecond float64 `yaml:"refill_per_second"`
	} `yaml:"rate_limit"`
	Aggregate struct {
		Timeout yamlDuration `yaml:"timeout"`
	} `yaml:"aggregate"`
	Server struct {
		Listen          string       `yaml:"listen"`
		CORSOrigins     []string     `yaml:"cors_origins"`
		RateLimitRPS    float64      `yaml:"rate_limit_rps"`
		RateLimitBurst  int          `yaml:"rate_limit_burst"`
		ShutdownTimeout yamlDuration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// YAML renders the effective configuration as a config file Load accepts.
// Unlike the embedded template this reflects applied overrides, so a
// process started with env vars or flags can persist what it actually ran
// with.
func (c *Config) YAML() ([]byte, error) {
	var doc fileDoc
	doc.Upstream.BaseURL = c.Upstream.BaseURL
	doc.Upstream.Timeout = yamlDuration(c.Upstream.Timeout)
	doc.Upstream.UserAgent = c.Upstream.UserAgent
	doc.Upstream.APIKey = c.Upstream.APIKey
	doc.Cache.Enabled = c.Cache.Enabled
	doc.Cache.MaxEntries = c.Cache.MaxEntries
	if len(c.Cache.TTLOverrides) > 0 {
		doc.Cache.TTLOverrides = make(map[string]yamlDuration, len(c.Cache.TTLOverrides))
		for name, ttl := range c.Cache.TTLOverrides {
			doc.Cache.TTLOverrides[name] = yamlDuration(ttl)
		}
	}
	doc.RateLimit.Capacity = c.RateLimit.Capacity
	doc.RateLimit.RefillPerSecond = c.RateLimit.RefillPerSecond
	doc.Aggregate.Timeout = yamlDuration(c.Aggregate.Timeout)
	doc.Server.Listen = c.Server.Listen
	doc.Server.CORSOrigins = c.Server.CORSOrigins
	doc.Server.RateLimitRPS = c.Server.RateLimitRPS
	doc.Server.RateLimitBurst = c.Server.RateLimitBurst
	doc.Server.ShutdownTimeout = yamlDuration(c.Server.ShutdownTimeout)
	doc.Logging.Level = c.Logging.Level
	doc.Logging.Format = c.Logging.Format
	doc.Metrics.Enabled = c.Metrics.Enabled
	doc.Metrics.Path = c.Metrics.Path

	body, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, inserr.Errorf(inserr.CodeConfigLoadReadFailure, "rendering config: %w", err)
	}
	header := []byte("# Insights client configuration.\n# Keys can also be set through the environment with the INSIGHTS_ prefix.\n\n")
	return append(header, body...), nil
}

// WriteFile writes the rendered configuration to path. An existing file is
// left untouched unless force is set.
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return inserr.Errorf(inserr.CodeCLIInputInvalid,
				"config file already exists at %s; pass --force to overwrite", path)
		}
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return inserr.Errorf(inserr.CodeConfigLoadReadFailure, "creating config directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return inserr.Errorf(inserr.CodeConfigLoadReadFailure, "writing config to %s: %w", path, err)
	}
	return nil
}
