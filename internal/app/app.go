package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/skillgen-service/internal/adapter/chromedp_crawler"
	"github.com/user/skillgen-service/internal/adapter/firecrawl"
	"github.com/user/skillgen-service/internal/adapter/openai"
	"github.com/user/skillgen-service/internal/adapter/postgres"
	redis_adapter "github.com/user/skillgen-service/internal/adapter/redis"
	"github.com/user/skillgen-service/internal/adapter/sitecrawler"
	"github.com/user/skillgen-service/internal/delivery/http/handler"
	"github.com/user/skillgen-service/internal/repository"
	"github.com/user/skillgen-service/internal/usecase"
	"github.com/user/skillgen-service/pkg/config"
)

// App holds the wired dependencies shared by the API server and the CLI.
type App struct {
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Generator usecase.SkillGenerator
	Query     usecase.SkillQuery

	closers []func()
}

// New connects to Postgres and Redis and builds the use cases.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbpool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	logger.Info("PostgreSQL connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		dbpool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("unable to connect to Redis: %w", err)
	}
	logger.Info("Redis connection established")

	a := &App{
		DB:      dbpool,
		Redis:   rdb,
		closers: []func(){func() { _ = rdb.Close() }, dbpool.Close},
	}

	crawler := a.newCrawler(cfg, logger)
	model := newModel(cfg, logger)

	projectRepo := postgres.NewProjectRepo(dbpool)
	skillRepo := postgres.NewSkillRepo(dbpool)

	opts := usecase.GeneratorOptions{
		PageLimit:  cfg.CrawlPageLimit,
		MaxChars:   cfg.AggregateMaxChars,
		RunLock:    redis_adapter.NewRunLockRepo(rdb),
		RunLockTTL: cfg.RunLockTTL(),
	}
	if ttl := cfg.CrawlCacheTTL(); ttl > 0 {
		opts.CrawlCache = redis_adapter.NewCrawlCacheRepo(rdb)
		opts.CrawlCacheTTL = ttl
	}

	a.Generator = usecase.NewSkillGenerator(projectRepo, crawler, model, skillRepo, logger, opts)
	a.Query = usecase.NewSkillQuery(projectRepo, skillRepo)
	return a, nil
}

// NewPreview builds a dry-run pipeline that only crawls and calls the model.
// It connects to neither Postgres nor Redis, so the returned generator supports
// Preview only; Generate on it is not valid.
func NewPreview(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{}
	opts := usecase.GeneratorOptions{
		PageLimit: cfg.CrawlPageLimit,
		MaxChars:  cfg.AggregateMaxChars,
	}
	a.Generator = usecase.NewSkillGenerator(nil, a.newCrawler(cfg, logger), newModel(cfg, logger), nil, logger, opts)
	return a
}

func newModel(cfg *config.Config, logger *zap.Logger) repository.TextExtractor {
	return openai.NewExtractor(openai.Options{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
	}, logger)
}

func (a *App) newCrawler(cfg *config.Config, logger *zap.Logger) repository.CrawlerRepository {
	if strings.ToLower(cfg.CrawlerBackend) != config.BackendLocal {
		logger.Info("Using Firecrawl crawler", zap.String("base_url", cfg.FirecrawlBaseURL))
		return firecrawl.NewCrawler(firecrawl.Options{
			BaseURL:      cfg.FirecrawlBaseURL,
			APIKey:       cfg.FirecrawlAPIKey,
			PollInterval: cfg.FirecrawlPollInterval(),
			Timeout:      cfg.FirecrawlTimeout(),
		}, logger)
	}

	var fetcher repository.PageFetcher
	if cfg.CrawlerRenderJS {
		cf := chromedp_crawler.NewChromedpFetcher(cfg.MaxConcurrency, cfg.PageLoadTimeout(), logger)
		a.closers = append(a.closers, cf.Close)
		fetcher = cf
	} else {
		fetcher = sitecrawler.NewHTTPFetcher(&http.Client{Timeout: cfg.PageLoadTimeout()}, cfg.PageLoadTimeout())
	}
	logger.Info("Using built-in crawler", zap.Bool("render_js", cfg.CrawlerRenderJS))
	return sitecrawler.NewCrawler(fetcher, logger)
}

// HealthChecks returns the dependencies probed by GET /api/health.
func (a *App) HealthChecks() map[string]handler.Pinger {
	return map[string]handler.Pinger{
		"postgres": a.DB,
		"redis": handler.PingFunc(func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}),
	}
}

// Migrate creates the tables the service needs.
func (a *App) Migrate(ctx context.Context) error {
	return postgres.RunSchema(ctx, a.DB)
}

// Close releases connections and browser processes in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
