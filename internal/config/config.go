// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ryno Crypto Mining Services

package config

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	inserr "github.com/Ryno-Crypto-Mining-Services/braiins-insights-mcp-server-sub000/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the top-level Insights configuration.
type Config struct {
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Aggregate AggregateConfig `mapstructure:"aggregate"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// UpstreamConfig points the client at the Insights API.
type UpstreamConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	// APIKey is optional. The public API answers without one; partner
	// deployments with raised quotas send it as a bearer token.
	APIKey string `mapstructure:"api_key"`
}

// CacheConfig controls the upstream response cache.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxEntries int  `mapstructure:"max_entries"`
	// TTLOverrides replaces the built-in freshness window per endpoint
	// name, e.g. {"mempool-stats": 30s}.
	TTLOverrides map[string]time.Duration `mapstructure:"ttl_overrides"`
}

// RateLimitConfig shapes outbound traffic toward the upstream API.
type RateLimitConfig struct {
	Capacity        int     `mapstructure:"capacity"`
	RefillPerSecond float64 `mapstructure:"refill_per_second"`
}

// AggregateConfig bounds multi-endpoint report runs.
type AggregateConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig controls the local tool server.
type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig controls log verbosity and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix INSIGHTS_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("upstream.base_url", "https://insights.braiins.com/api")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.user_agent", "braiins-insights-client/1.0")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_entries", 512)
	v.SetDefault("rate_limit.capacity", 10)
	v.SetDefault("rate_limit.refill_per_second", 5.0)
	v.SetDefault("aggregate.timeout", 30*time.Second)
	v.SetDefault("server.listen", "127.0.0.1:8686")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.rate_limit_rps", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Environment
	v.SetEnvPrefix("INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, inserr.Errorf(inserr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, inserr.Errorf(inserr.CodeConfigLoadReadFailure, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, inserr.Errorf(inserr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateUpstream()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validateRateLimit()...)
	errs = append(errs, c.validateAggregate()...)
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateMetrics()...)

	return errs
}

func (c *Config) validateUpstream() []error {
	var errs []error

	if c.Upstream.BaseURL == "" {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue, "config: upstream.base_url must not be empty"))
	} else {
		u, err := url.Parse(c.Upstream.BaseURL)
		switch {
		case err != nil:
			errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
				"config: upstream.base_url must be a valid URL, got %q: %w",
				c.Upstream.BaseURL, err,
			))
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
				"config: upstream.base_url scheme must be http or https, got %q",
				u.Scheme,
			))
		case u.Host == "":
			errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
				"config: upstream.base_url must include a host, got %q",
				c.Upstream.BaseURL,
			))
		}
	}

	if c.Upstream.Timeout <= 0 {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: upstream.timeout must be greater than 0, got %s",
			c.Upstream.Timeout,
		))
	}

	return errs
}

func (c *Config) validateCache() []error {
	var errs []error

	if c.Cache.MaxEntries <= 0 {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: cache.max_entries must be greater than 0, got %d",
			c.Cache.MaxEntries,
		))
	}

	for name, ttl := range c.Cache.TTLOverrides {
		if ttl <= 0 {
			errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
				"config: cache.ttl_overrides[%s] must be greater than 0, got %s",
				name, ttl,
			))
		}
	}

	return errs
}

func (c *Config) validateRateLimit() []error {
	var errs []error

	if c.RateLimit.Capacity <= 0 {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: rate_limit.capacity must be greater than 0, got %d",
			c.RateLimit.Capacity,
		))
	}

	if c.RateLimit.RefillPerSecond <= 0 {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: rate_limit.refill_per_second must be greater than 0, got %g",
			c.RateLimit.RefillPerSecond,
		))
	}

	return errs
}

func (c *Config) validateAggregate() []error {
	var errs []error

	if c.Aggregate.Timeout <= 0 {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: aggregate.timeout must be greater than 0, got %s",
			c.Aggregate.Timeout,
		))
	}

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
	} else {
		host, portStr, err := net.SplitHostPort(c.Server.Listen)
		if err != nil {
			errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
				"config: server.listen must be a valid host:port address, got %q: %w",
				c.Server.Listen, err,
			))
		} else {
			_ = host // host can be empty (e.g., ":8686"), which is valid
			port, err := strconv.Atoi(portStr)
			if err != nil {
				errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
					"config: server.listen port must be a number, got %q",
					portStr,
				))
			} else if port < 1 || port > 65535 {
				errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
					"config: server.listen port must be between 1 and 65535, got %d",
					port,
				))
			}
		}
	}

	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: server.rate_limit_rps must not be negative, got %g",
			c.Server.RateLimitRPS,
		))
	}

	// RPS > 0 enables the per-client limiter, which needs a burst size.
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst <= 0 {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: server.rate_limit_burst must be positive when rate_limit_rps is set, got %d",
			c.Server.RateLimitBurst,
		))
	}

	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: server.shutdown_timeout must be greater than 0, got %s",
			c.Server.ShutdownTimeout,
		))
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: logging.level must be one of [debug, info, warn, error], got %q",
			c.Logging.Level,
		))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: logging.format must be one of [text, json], got %q",
			c.Logging.Format,
		))
	}

	return errs
}

func (c *Config) validateMetrics() []error {
	var errs []error

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, inserr.Errorf(inserr.CodeConfigValidateInvalidValue,
			"config: metrics.path must start with /, got %q",
			c.Metrics.Path,
		))
	}

	return errs
}
