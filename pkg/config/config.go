// Package config loads threadlens configuration from file, environment and
// defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
)

// Sentinel validation errors.
var (
	ErrInvalidBaseURL      = errors.New("backend base URL must be an absolute http(s) URL")
	ErrInvalidTimeout      = errors.New("backend timeout must be positive")
	ErrInvalidTopN         = errors.New("bias top_n must be positive")
	ErrInvalidTheme        = errors.New("render theme must be light or dark")
	ErrInvalidCacheBackend = errors.New("cache backend must be memory or redis")
	ErrMissingRedisAddr    = errors.New("redis cache backend requires cache.redis_addr")
	ErrInvalidSize         = errors.New("invalid byte size")
	ErrInvalidSampleRatio  = errors.New("telemetry sample ratio must be within [0, 1]")
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config is the full threadlens configuration.
type Config struct {
	Backend   BackendConfig   `mapstructure:"backend"`
	Bias      BiasConfig      `mapstructure:"bias"`
	Render    RenderConfig    `mapstructure:"render"`
	State     StateConfig     `mapstructure:"state"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// BackendConfig locates the analysis backend.
type BackendConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxResponseSize string        `mapstructure:"max_response_size"`
}

// MaxResponseBytes parses MaxResponseSize.
func (b BackendConfig) MaxResponseBytes() (int64, error) {
	return parseSize(b.MaxResponseSize)
}

// BiasConfig controls the bias enrichment phase.
type BiasConfig struct {
	TopN           int  `mapstructure:"top_n"`
	FallbackToFull bool `mapstructure:"fallback_to_full"`
}

// RenderConfig controls HTML output.
type RenderConfig struct {
	Theme  string `mapstructure:"theme"`
	Output string `mapstructure:"output"`
}

// StateConfig locates persisted state. Empty Dir uses the user config dir.
type StateConfig struct {
	Dir string `mapstructure:"dir"`
}

// CacheConfig configures the server's snapshot cache.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	MaxSize   string        `mapstructure:"max_size"`
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// MaxBytes parses MaxSize.
func (c CacheConfig) MaxBytes() (int64, error) {
	return parseSize(c.MaxSize)
}

// ServerConfig configures `threadlens serve`.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig configures OTLP export.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	Environment  string  `mapstructure:"environment"`
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}

	if c.Bias.TopN <= 0 {
		return ErrInvalidTopN
	}

	if c.Render.Theme != ThemeLight && c.Render.Theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Render.Theme)
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	return nil
}

func (c *Config) validateBackend() error {
	parsed, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Backend.BaseURL)
	}

	if c.Backend.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if _, err := c.Backend.MaxResponseBytes(); err != nil {
		return fmt.Errorf("backend.max_response_size: %w", err)
	}

	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheMemory:
		if _, err := c.Cache.MaxBytes(); err != nil {
			return fmt.Errorf("cache.max_size: %w", err)
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCacheBackend, c.Cache.Backend)
	}

	return nil
}

// Observability derives the telemetry configuration for a run mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	obs := observability.DefaultConfig()
	obs.Mode = mode
	obs.ServiceVersion = version
	obs.Environment = c.Telemetry.Environment
	obs.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	obs.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	obs.OTLPInsecure = c.Telemetry.OTLPInsecure
	obs.SampleRatio = c.Telemetry.SampleRatio
	obs.LogLevel = observability.ParseLevel(c.Logging.Level)
	obs.LogJSON = c.Logging.JSON

	return obs
}

func parseSize(raw string) (int64, error) {
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidSize, raw, err)
	}

	if n == 0 || n > uint64(1<<62) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, raw)
	}

	return int64(n), nil
}
