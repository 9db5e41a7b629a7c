package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Opinions  OpinionsConfig
	Scrape    ScrapeConfig
	Fetcher   FetcherConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	Messaging MessagingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpinionsConfig holds the opinions backend configuration
type OpinionsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScrapeConfig holds the scraping service configuration
type ScrapeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FetcherConfig controls server-side product page downloads
type FetcherConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// StoreConfig holds the per-tab record store configuration
type StoreConfig struct {
	TTL time.Duration `mapstructure:"ttl"` // 0 keeps records until the tab closes
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP    int `mapstructure:"per_ip"`   // requests per minute per client IP
	Opinions int `mapstructure:"opinions"` // requests per minute to the opinions backend
}

// MessagingConfig holds the content to background channel configuration
type MessagingConfig struct {
	Buffer int `mapstructure:"buffer"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/productlens/")

	// Environment variable settings
	v.SetEnvPrefix("PRODUCTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// External services run next to the extension
	v.SetDefault("opinions.base_url", "http://localhost:5001")
	v.SetDefault("opinions.timeout", "60s")
	v.SetDefault("scrape.base_url", "http://localhost:5000")
	v.SetDefault("scrape.timeout", "60s")

	// Fetcher defaults
	v.SetDefault("fetcher.timeout", "15s")
	v.SetDefault("fetcher.max_body_bytes", 10<<20)
	v.SetDefault("fetcher.user_agent", "")

	// Store defaults
	v.SetDefault("store.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.opinions", 30)

	// Messaging defaults
	v.SetDefault("messaging.buffer", 64)
}

// validate validates the configuration
func validate(config *Config) error {
	if err := validateBaseURL("opinions", config.Opinions.BaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("scrape", config.Scrape.BaseURL); err != nil {
		return err
	}

	if config.Opinions.Timeout <= 0 || config.Scrape.Timeout <= 0 || config.Fetcher.Timeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	if config.Store.TTL < 0 {
		return fmt.Errorf("store TTL must not be negative, got: %s", config.Store.TTL)
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Opinions < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	if config.Messaging.Buffer <= 0 {
		return fmt.Errorf("messaging buffer must be positive, got: %d", config.Messaging.Buffer)
	}

	return nil
}

func validateBaseURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s base URL must be an absolute http(s) URL, got: %q", name, raw)
	}
	return nil
}
