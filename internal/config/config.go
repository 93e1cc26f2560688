// Package config loads and validates pactscan configuration.
// Values come from an optional YAML file (path in PACTSCAN_CONFIG) with
// environment variables taking precedence over both the file and defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the extraction pipeline.
type Config struct {
	Env   string
	AI    AIConfig
	Cache CacheConfig
}

// AIConfig configures the three inference tiers. All tiers share one API key
// and endpoint; they differ in model and timeout ceiling.
type AIConfig struct {
	APIKey    string
	BaseURL   string
	MaxTokens int

	FastModel     string
	ThoroughModel string
	FallbackModel string

	FastTimeout     time.Duration
	ThoroughTimeout time.Duration
	FallbackTimeout time.Duration
}

// CacheConfig configures the optional result cache. An empty RedisURL
// disables caching; the pipeline never requires it.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

func defaults() *Config {
	return &Config{
		Env: "development",
		AI: AIConfig{
			BaseURL:         "https://api.anthropic.com",
			MaxTokens:       2048,
			FastModel:       "claude-3-5-haiku-20241022",
			ThoroughModel:   "claude-sonnet-4-5-20250929",
			FallbackModel:   "claude-3-7-sonnet-20250219",
			FastTimeout:     60 * time.Second,
			ThoroughTimeout: 120 * time.Second,
			FallbackTimeout: 120 * time.Second,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
	}
}

// fileConfig mirrors Config for YAML decoding. Durations are strings in
// time.ParseDuration syntax ("90s", "2h"); empty fields keep their defaults.
type fileConfig struct {
	Env string `yaml:"env"`
	AI  struct {
		APIKey    string `yaml:"apiKey"`
		BaseURL   string `yaml:"baseUrl"`
		MaxTokens int    `yaml:"maxTokens"`

		FastModel     string `yaml:"fastModel"`
		ThoroughModel string `yaml:"thoroughModel"`
		FallbackModel string `yaml:"fallbackModel"`

		FastTimeout     string `yaml:"fastTimeout"`
		ThoroughTimeout string `yaml:"thoroughTimeout"`
		FallbackTimeout string `yaml:"fallbackTimeout"`
	} `yaml:"ai"`
	Cache struct {
		RedisURL string `yaml:"redisUrl"`
		TTL      string `yaml:"ttl"`
	} `yaml:"cache"`
}

// Load reads configuration and returns a validated Config.
// Returns an error with a descriptive message if any required value is
// missing or invalid.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("PACTSCAN_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if err := cfg.mergeFile(fc); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(fc fileConfig) error {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, name, v string) error {
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q", name, v)
		}
		*dst = d
		return nil
	}

	setString(&c.Env, fc.Env)
	setString(&c.AI.APIKey, fc.AI.APIKey)
	setString(&c.AI.BaseURL, fc.AI.BaseURL)
	setString(&c.AI.FastModel, fc.AI.FastModel)
	setString(&c.AI.ThoroughModel, fc.AI.ThoroughModel)
	setString(&c.AI.FallbackModel, fc.AI.FallbackModel)
	setString(&c.Cache.RedisURL, fc.Cache.RedisURL)
	if fc.AI.MaxTokens > 0 {
		c.AI.MaxTokens = fc.AI.MaxTokens
	}

	if err := setDuration(&c.AI.FastTimeout, "ai.fastTimeout", fc.AI.FastTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.AI.ThoroughTimeout, "ai.thoroughTimeout", fc.AI.ThoroughTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.AI.FallbackTimeout, "ai.fallbackTimeout", fc.AI.FallbackTimeout); err != nil {
		return err
	}
	return setDuration(&c.Cache.TTL, "cache.ttl", fc.Cache.TTL)
}

func (c *Config) applyEnv() {
	c.Env = envString("PACTSCAN_ENV", c.Env)

	c.AI.APIKey = envString("ANTHROPIC_API_KEY", c.AI.APIKey)
	c.AI.BaseURL = envString("ANTHROPIC_BASE_URL", c.AI.BaseURL)
	c.AI.MaxTokens = envInt("PACTSCAN_MAX_TOKENS", c.AI.MaxTokens)

	c.AI.FastModel = envString("PACTSCAN_FAST_MODEL", c.AI.FastModel)
	c.AI.ThoroughModel = envString("PACTSCAN_THOROUGH_MODEL", c.AI.ThoroughModel)
	c.AI.FallbackModel = envString("PACTSCAN_FALLBACK_MODEL", c.AI.FallbackModel)

	c.AI.FastTimeout = envDurationSecs("PACTSCAN_FAST_TIMEOUT_SECS", c.AI.FastTimeout)
	c.AI.ThoroughTimeout = envDurationSecs("PACTSCAN_THOROUGH_TIMEOUT_SECS", c.AI.ThoroughTimeout)
	c.AI.FallbackTimeout = envDurationSecs("PACTSCAN_FALLBACK_TIMEOUT_SECS", c.AI.FallbackTimeout)

	c.Cache.RedisURL = envString("REDIS_URL", c.Cache.RedisURL)
	c.Cache.TTL = envDuration("PACTSCAN_CACHE_TTL", c.Cache.TTL)
}

func (c *Config) validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if !strings.HasPrefix(c.AI.BaseURL, "http://") && !strings.HasPrefix(c.AI.BaseURL, "https://") {
		return fmt.Errorf("ANTHROPIC_BASE_URL must start with http:// or https://, got %q", c.AI.BaseURL)
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("PACTSCAN_MAX_TOKENS must be positive, got %d", c.AI.MaxTokens)
	}
	for _, m := range []struct{ tier, model string }{
		{"fast", c.AI.FastModel},
		{"thorough", c.AI.ThoroughModel},
		{"fallback", c.AI.FallbackModel},
	} {
		if m.model == "" {
			return fmt.Errorf("%s tier model must not be empty", m.tier)
		}
	}
	for _, d := range []struct {
		tier    string
		timeout time.Duration
	}{
		{"fast", c.AI.FastTimeout},
		{"thorough", c.AI.ThoroughTimeout},
		{"fallback", c.AI.FallbackTimeout},
	} {
		if d.timeout <= 0 {
			return fmt.Errorf("%s tier timeout must be positive, got %s", d.tier, d.timeout)
		}
	}
	if c.Cache.RedisURL != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("PACTSCAN_CACHE_TTL must be positive when caching is enabled, got %s", c.Cache.TTL)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
