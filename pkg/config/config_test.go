package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func missingFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(missingFile(t))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.CrawlerBackend != BackendFirecrawl {
		t.Errorf("CrawlerBackend = %q, want %q", cfg.CrawlerBackend, BackendFirecrawl)
	}
	if cfg.CrawlPageLimit != 20 {
		t.Errorf("CrawlPageLimit = %d, want 20", cfg.CrawlPageLimit)
	}
	if cfg.AggregateMaxChars != 100000 {
		t.Errorf("AggregateMaxChars = %d, want 100000", cfg.AggregateMaxChars)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("OpenAIModel = %q, want gpt-4o-mini", cfg.OpenAIModel)
	}
	if cfg.CrawlCacheTTL() != 0 {
		t.Errorf("CrawlCacheTTL() = %v, want 0", cfg.CrawlCacheTTL())
	}
	if cfg.FirecrawlPollInterval() != 2*time.Second {
		t.Errorf("FirecrawlPollInterval() = %v, want 2s", cfg.FirecrawlPollInterval())
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CRAWLER_BACKEND", "local")
	t.Setenv("CRAWL_PAGE_LIMIT", "5")
	t.Setenv("CRAWLER_RENDER_JS", "true")
	t.Setenv("OPENAI_TEMPERATURE", "0.7")

	cfg, err := LoadFile(missingFile(t))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.CrawlerBackend != BackendLocal {
		t.Errorf("CrawlerBackend = %q, want local", cfg.CrawlerBackend)
	}
	if cfg.CrawlPageLimit != 5 {
		t.Errorf("CrawlPageLimit = %d, want 5", cfg.CrawlPageLimit)
	}
	if !cfg.CrawlerRenderJS {
		t.Error("CrawlerRenderJS = false, want true")
	}
	if cfg.OpenAITemperature < 0.69 || cfg.OpenAITemperature > 0.71 {
		t.Errorf("OpenAITemperature = %v, want 0.7", cfg.OpenAITemperature)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "REDIS_ADDR=cache:6380\nAGGREGATE_MAX_CHARS=5000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.RedisAddr != "cache:6380" {
		t.Errorf("RedisAddr = %q, want cache:6380", cfg.RedisAddr)
	}
	if cfg.AggregateMaxChars != 5000 {
		t.Errorf("AggregateMaxChars = %d, want 5000", cfg.AggregateMaxChars)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{CrawlerBackend: BackendFirecrawl, CrawlPageLimit: 20, AggregateMaxChars: 100}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.CrawlerBackend = "scrapy" }, wantErr: ErrUnknownCrawlerBackend},
		{name: "zero page limit", mutate: func(c *Config) { c.CrawlPageLimit = 0 }, wantErr: ErrInvalidPageLimit},
		{name: "zero budget", mutate: func(c *Config) { c.AggregateMaxChars = 0 }, wantErr: ErrInvalidMaxChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresHost:     "db",
		PostgresPort:     "5433",
		PostgresDB:       "skills",
	}
	want := "postgres://u:p@db:5433/skills?sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}

	cfg.PostgresURL = "postgres://override"
	if got := cfg.PostgresDSN(); got != "postgres://override" {
		t.Errorf("PostgresDSN() = %q, want explicit URL", got)
	}
}
