package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// disabled turns off an optional backend
const disabled = "none"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// Enabled is false when the URL is empty or "none"; the cache, stream
// consumer and stream publisher are then skipped
func (r RedisConfig) Enabled() bool {
	return r.URL != "" && r.URL != disabled
}

// StoreConfig selects the database
type StoreConfig struct {
	Driver string `yaml:"driver"` // postgres, sqlite, none
	DSN    string `yaml:"dsn"`
}

// Enabled is false when the driver is empty or "none"
func (s StoreConfig) Enabled() bool {
	return s.Driver != "" && s.Driver != disabled
}

// StreamConfig names the request and result streams
type StreamConfig struct {
	RequestStream    string `yaml:"request_stream"`
	ValidationStream string `yaml:"validation_stream"`
	ConsumerGroup    string `yaml:"consumer_group"`
	ConsumerID       string `yaml:"consumer_id"`

	// repeated requests for a game within DedupTTL are skipped; 0 disables
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

// ProviderConfig controls box-score page fetching
type ProviderConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxAttempts  int           `yaml:"max_attempts"`
	PageCacheTTL time.Duration `yaml:"page_cache_ttl"`

	// outbound page requests per minute; 0 disables the cap
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Store    StoreConfig    `yaml:"store"`
	Stream   StreamConfig   `yaml:"stream"`
	Provider ProviderConfig `yaml:"provider"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8085",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Redis:  RedisConfig{URL: "localhost:6380"},
		Store:  StoreConfig{Driver: "sqlite", DSN: "boxscore.db"},
		Stream: StreamConfig{
			RequestStream:    "games.final.baseball_mlb",
			ValidationStream: "games.validation.baseball_mlb",
			ConsumerGroup:    "boxscore-validator",
			ConsumerID:       "validator-1",
			DedupTTL:         30 * time.Minute,
		},
		Provider: ProviderConfig{
			BaseURL:      "https://www.baseball-reference.com",
			Timeout:      15 * time.Second,
			MaxAttempts:  3,
			PageCacheTTL: 24 * time.Hour,

			// stay under the site's published limit of 20 per minute
			RequestsPerMinute: 15,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by CONFIG_FILE, and environment variables, in that order
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Addr = getEnv("SERVER_ADDR", c.Server.Addr)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.DSN = getEnv("STORE_DSN", c.Store.DSN)
	c.Stream.RequestStream = getEnv("REQUEST_STREAM", c.Stream.RequestStream)
	c.Stream.ValidationStream = getEnv("VALIDATION_STREAM", c.Stream.ValidationStream)
	c.Stream.ConsumerGroup = getEnv("CONSUMER_GROUP", c.Stream.ConsumerGroup)
	c.Stream.ConsumerID = getEnv("CONSUMER_ID", c.Stream.ConsumerID)
	c.Provider.BaseURL = getEnv("PROVIDER_BASE_URL", c.Provider.BaseURL)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	var err error
	if c.Provider.Timeout, err = getDuration("PROVIDER_TIMEOUT", c.Provider.Timeout); err != nil {
		return err
	}
	if c.Provider.PageCacheTTL, err = getDuration("PAGE_CACHE_TTL", c.Provider.PageCacheTTL); err != nil {
		return err
	}
	if c.Provider.MaxAttempts, err = getInt("PROVIDER_MAX_ATTEMPTS", c.Provider.MaxAttempts); err != nil {
		return err
	}
	if c.Provider.RequestsPerMinute, err = getInt("PROVIDER_REQUESTS_PER_MINUTE", c.Provider.RequestsPerMinute); err != nil {
		return err
	}
	if c.Stream.DedupTTL, err = getDuration("DEDUP_TTL", c.Stream.DedupTTL); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "", disabled, "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid store driver %q (want postgres, sqlite or none)", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		return fmt.Errorf("store driver postgres requires a dsn")
	}
	if c.Provider.MaxAttempts < 1 {
		return fmt.Errorf("provider max attempts must be positive, got %d", c.Provider.MaxAttempts)
	}
	if c.Provider.RequestsPerMinute < 0 {
		return fmt.Errorf("provider requests per minute must not be negative, got %d", c.Provider.RequestsPerMinute)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider timeout must be positive, got %s", c.Provider.Timeout)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// splitList splits a comma-separated value, dropping blanks
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
