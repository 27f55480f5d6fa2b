package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrUnknownCrawlerBackend = errors.New("CRAWLER_BACKEND must be 'firecrawl' or 'local'")
	ErrInvalidPageLimit      = errors.New("CRAWL_PAGE_LIMIT must be at least 1")
	ErrInvalidMaxChars       = errors.New("AGGREGATE_MAX_CHARS must be at least 1")
)

const (
	BackendFirecrawl = "firecrawl"
	BackendLocal     = "local"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	PostgresURL      string `mapstructure:"POSTGRES_URL"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string `mapstructure:"POSTGRES_PORT"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	CrawlerBackend         string `mapstructure:"CRAWLER_BACKEND"`
	CrawlPageLimit         int    `mapstructure:"CRAWL_PAGE_LIMIT"`
	CrawlerRenderJS        bool   `mapstructure:"CRAWLER_RENDER_JS"`
	MaxConcurrency         int    `mapstructure:"MAX_CONCURRENCY"`
	PageLoadTimeoutSeconds int    `mapstructure:"PAGE_LOAD_TIMEOUT_SECONDS"`

	FirecrawlAPIKey         string `mapstructure:"FIRECRAWL_API_KEY"`
	FirecrawlBaseURL        string `mapstructure:"FIRECRAWL_BASE_URL"`
	FirecrawlPollIntervalMS int    `mapstructure:"FIRECRAWL_POLL_INTERVAL_MS"`
	FirecrawlTimeoutSeconds int    `mapstructure:"FIRECRAWL_TIMEOUT_SECONDS"`

	OpenAIAPIKey      string  `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL     string  `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel       string  `mapstructure:"OPENAI_MODEL"`
	OpenAITemperature float32 `mapstructure:"OPENAI_TEMPERATURE"`

	AggregateMaxChars    int `mapstructure:"AGGREGATE_MAX_CHARS"`
	RunLockTTLSeconds    int `mapstructure:"RUN_LOCK_TTL_SECONDS"`
	CrawlCacheTTLSeconds int `mapstructure:"CRAWL_CACHE_TTL_SECONDS"`
}

var defaults = map[string]any{
	"SERVER_PORT":                "8080",
	"LOG_LEVEL":                  "info",
	"POSTGRES_URL":               "",
	"POSTGRES_HOST":              "localhost",
	"POSTGRES_PORT":              "5432",
	"POSTGRES_USER":              "user",
	"POSTGRES_PASSWORD":          "password",
	"POSTGRES_DB":                "skillgen",
	"REDIS_ADDR":                 "localhost:6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"CRAWLER_BACKEND":            BackendFirecrawl,
	"CRAWL_PAGE_LIMIT":           20,
	"CRAWLER_RENDER_JS":          false,
	"MAX_CONCURRENCY":            4,
	"PAGE_LOAD_TIMEOUT_SECONDS":  30,
	"FIRECRAWL_API_KEY":          "",
	"FIRECRAWL_BASE_URL":         "https://api.firecrawl.dev",
	"FIRECRAWL_POLL_INTERVAL_MS": 2000,
	"FIRECRAWL_TIMEOUT_SECONDS":  300,
	"OPENAI_API_KEY":             "",
	"OPENAI_BASE_URL":            "",
	"OPENAI_MODEL":               "gpt-4o-mini",
	"OPENAI_TEMPERATURE":         0.3,
	"AGGREGATE_MAX_CHARS":        100000,
	"RUN_LOCK_TTL_SECONDS":       600,
	"CRAWL_CACHE_TTL_SECONDS":    0,
}

// Load reads configuration from an optional .env file and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Allows configuration purely through environment variables in production.
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch strings.ToLower(c.CrawlerBackend) {
	case BackendFirecrawl, BackendLocal:
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownCrawlerBackend, c.CrawlerBackend)
	}
	if c.CrawlPageLimit < 1 {
		return ErrInvalidPageLimit
	}
	if c.AggregateMaxChars < 1 {
		return ErrInvalidMaxChars
	}
	return nil
}

// PostgresDSN returns POSTGRES_URL, or builds one from the individual settings.
func (c *Config) PostgresDSN() string {
	if c.PostgresURL != "" {
		return c.PostgresURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

func (c *Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSeconds) * time.Second
}

func (c *Config) FirecrawlPollInterval() time.Duration {
	return time.Duration(c.FirecrawlPollIntervalMS) * time.Millisecond
}

func (c *Config) FirecrawlTimeout() time.Duration {
	return time.Duration(c.FirecrawlTimeoutSeconds) * time.Second
}

func (c *Config) RunLockTTL() time.Duration {
	return time.Duration(c.RunLockTTLSeconds) * time.Second
}

// CrawlCacheTTL is zero when the crawl cache is disabled.
func (c *Config) CrawlCacheTTL() time.Duration {
	return time.Duration(c.CrawlCacheTTLSeconds) * time.Second
}
