package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/skillgen-service/internal/entity"
	"github.com/user/skillgen-service/internal/repository"
	"github.com/user/skillgen-service/pkg/metrics"
	"github.com/user/skillgen-service/pkg/utils"
)

const (
	// DefaultPageLimit bounds how many pages one run crawls.
	DefaultPageLimit  = 20
	defaultRunLockTTL = 10 * time.Minute
)

// State is a step of the generation pipeline. Runs only move forward.
type State string

const (
	StateIdle        State = "idle"
	StateCrawling    State = "crawling"
	StateAggregating State = "aggregating"
	StateExtracting  State = "extracting"
	StateValidating  State = "validating"
	StatePersisting  State = "persisting"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
)

// SkillGenerator turns a documentation site into skills stored on a project.
type SkillGenerator interface {
	// Generate crawls rawURL and persists the extracted skills under projectID,
	// which must be owned by principalID. It returns every created skill or a
	// *PipelineError; a failed run persists nothing.
	Generate(ctx context.Context, principalID, projectID, rawURL string) ([]entity.Skill, error)
	// Preview runs crawl, aggregation, extraction and validation without persisting.
	Preview(ctx context.Context, rawURL string) (*PreviewResult, error)
}

// PreviewResult is the outcome of a dry run.
type PreviewResult struct {
	URL             string              `json:"url" yaml:"url"`
	SourcePageCount int                 `json:"source_page_count" yaml:"source_page_count"`
	CorpusChars     int                 `json:"corpus_chars" yaml:"corpus_chars"`
	Truncated       bool                `json:"truncated" yaml:"truncated"`
	Skills          []entity.SkillDraft `json:"skills" yaml:"skills"`
}

// GeneratorOptions tunes a SkillGenerator. RunLock and CrawlCache are optional.
type GeneratorOptions struct {
	PageLimit     int
	MaxChars      int
	RunLock       repository.RunLockRepository
	RunLockTTL    time.Duration
	CrawlCache    repository.CrawlCacheRepository
	CrawlCacheTTL time.Duration
}

type skillGeneratorUseCase struct {
	projectRepo repository.ProjectRepository
	crawlerRepo repository.CrawlerRepository
	extractor   *SkillExtractor
	skillRepo   repository.SkillRepository
	opts        GeneratorOptions
	logger      *zap.Logger
}

// NewSkillGenerator creates a new instance of the skill generation use case.
func NewSkillGenerator(
	projectRepo repository.ProjectRepository,
	crawlerRepo repository.CrawlerRepository,
	model repository.TextExtractor,
	skillRepo repository.SkillRepository,
	logger *zap.Logger,
	opts GeneratorOptions,
) SkillGenerator {
	metrics.Init()
	if opts.PageLimit < 1 {
		opts.PageLimit = DefaultPageLimit
	}
	if opts.MaxChars < 1 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.RunLockTTL <= 0 {
		opts.RunLockTTL = defaultRunLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &skillGeneratorUseCase{
		projectRepo: projectRepo,
		crawlerRepo: crawlerRepo,
		extractor:   NewSkillExtractor(model),
		skillRepo:   skillRepo,
		opts:        opts,
		logger:      logger,
	}
}

func (uc *skillGeneratorUseCase) Generate(ctx context.Context, principalID, projectID, rawURL string) ([]entity.Skill, error) {
	metrics.RunsInFlight.Inc()
	defer metrics.RunsInFlight.Dec()

	r := uc.newRun(zap.String("project_id", projectID), zap.String("url", rawURL))

	if strings.TrimSpace(principalID) == "" {
		return nil, r.fail(newError(KindUnauthorized, "authentication required"))
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, r.fail(newError(KindInvalidInput, "project id is required"))
	}
	if _, err := utils.ParseAbsoluteURL(rawURL); err != nil {
		return nil, r.fail(wrapError(KindInvalidInput, "invalid documentation URL", err))
	}

	if _, err := uc.projectRepo.FindOwned(ctx, projectID, principalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, r.fail(newError(KindNotFound, "project not found"))
		}
		return nil, r.fail(wrapError(KindPersistenceFailed, "failed to look up project", err))
	}

	release, lerr := uc.acquireRunLock(ctx, projectID, r)
	if lerr != nil {
		return nil, r.fail(lerr)
	}
	defer release()

	req := entity.CrawlRequest{RootURL: strings.TrimSpace(rawURL), PageLimit: uc.opts.PageLimit}
	drafts, _, perr := uc.prepare(ctx, r, req)
	if perr != nil {
		return nil, r.fail(perr)
	}

	r.enter(StatePersisting)
	if err := ctx.Err(); err != nil {
		return nil, r.fail(wrapError(KindPersistenceFailed, "run cancelled before persisting", err))
	}
	skills, err := uc.skillRepo.CreateBatch(ctx, projectID, drafts)
	if err != nil {
		return nil, r.fail(wrapError(KindPersistenceFailed, "failed to save skills", err))
	}

	metrics.SkillsCreatedTotal.Add(float64(len(skills)))
	r.succeed(zap.Int("skills_created", len(skills)))
	return skills, nil
}

func (uc *skillGeneratorUseCase) Preview(ctx context.Context, rawURL string) (*PreviewResult, error) {
	r := uc.newRun(zap.String("url", rawURL), zap.Bool("preview", true))

	if _, err := utils.ParseAbsoluteURL(rawURL); err != nil {
		return nil, r.fail(wrapError(KindInvalidInput, "invalid documentation URL", err))
	}

	req := entity.CrawlRequest{RootURL: strings.TrimSpace(rawURL), PageLimit: uc.opts.PageLimit}
	drafts, corpus, perr := uc.prepare(ctx, r, req)
	if perr != nil {
		return nil, r.fail(perr)
	}

	r.succeed(zap.Int("skills_identified", len(drafts)))
	return &PreviewResult{
		URL:             req.RootURL,
		SourcePageCount: corpus.SourcePageCount,
		CorpusChars:     len([]rune(corpus.Text)),
		Truncated:       corpus.Truncated,
		Skills:          drafts,
	}, nil
}

// prepare runs every stage that has no side effects: crawl, aggregate, extract, validate.
func (uc *skillGeneratorUseCase) prepare(ctx context.Context, r *run, req entity.CrawlRequest) ([]entity.SkillDraft, entity.AggregatedCorpus, *PipelineError) {
	r.enter(StateCrawling)
	pages, perr := uc.crawl(ctx, req)
	if perr != nil {
		return nil, entity.AggregatedCorpus{}, perr
	}

	r.enter(StateAggregating)
	corpus := Aggregate(pages, uc.opts.MaxChars)
	r.logger.Info("Corpus aggregated",
		zap.Int("pages", len(pages)),
		zap.Int("source_pages", corpus.SourcePageCount),
		zap.Bool("truncated", corpus.Truncated),
	)

	r.enter(StateExtracting)
	raw, err := uc.extractor.Extract(ctx, corpus)
	if err != nil {
		return nil, corpus, err.(*PipelineError)
	}

	r.enter(StateValidating)
	drafts, dropped, err := validateSkills(raw)
	if err != nil {
		return nil, corpus, err.(*PipelineError)
	}
	if dropped > 0 {
		r.logger.Warn("Dropped invalid skill candidates", zap.Int("dropped", dropped), zap.Int("kept", len(drafts)))
	}
	return drafts, corpus, nil
}

func (uc *skillGeneratorUseCase) crawl(ctx context.Context, req entity.CrawlRequest) ([]entity.CrawledPage, *PipelineError) {
	if cache := uc.opts.CrawlCache; cache != nil {
		pages, err := cache.Get(ctx, req)
		switch {
		case err == nil && len(pages) > 0:
			metrics.CrawlsTotal.WithLabelValues(string(entity.CrawlCompleted), "cache").Inc()
			uc.logger.Info("Using cached crawl", zap.String("url", req.RootURL), zap.Int("pages", len(pages)))
			return pages, nil
		case err != nil && !errors.Is(err, repository.ErrCacheMiss):
			uc.logger.Warn("Crawl cache lookup failed", zap.String("url", req.RootURL), zap.Error(err))
		}
	}

	start := time.Now()
	result, err := uc.crawlerRepo.Crawl(ctx, req)
	metrics.CrawlDuration.WithLabelValues(hostOf(req.RootURL)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CrawlsTotal.WithLabelValues(string(entity.CrawlFailed), "network").Inc()
		return nil, wrapError(KindCrawlFailed, "failed to crawl the documentation site", err)
	}
	if result == nil || result.Status != entity.CrawlCompleted {
		metrics.CrawlsTotal.WithLabelValues(string(entity.CrawlFailed), "network").Inc()
		perr := newError(KindCrawlFailed, "failed to crawl the documentation site")
		if result != nil && result.FailureReason != "" {
			perr.Cause = errors.New(result.FailureReason)
		}
		return nil, perr
	}
	metrics.CrawlsTotal.WithLabelValues(string(entity.CrawlCompleted), "network").Inc()

	pages := usablePages(result.Pages)
	metrics.CrawledPages.Observe(float64(len(pages)))
	if len(pages) == 0 {
		return nil, newError(KindNoContent, "no readable content found at the provided URL")
	}

	if cache := uc.opts.CrawlCache; cache != nil && uc.opts.CrawlCacheTTL > 0 {
		if err := cache.Put(ctx, req, pages, uc.opts.CrawlCacheTTL); err != nil {
			uc.logger.Warn("Failed to cache crawl", zap.String("url", req.RootURL), zap.Error(err))
		}
	}
	return pages, nil
}

// acquireRunLock returns a release func. Lock store errors other than a held
// lock are logged and the run proceeds unlocked.
func (uc *skillGeneratorUseCase) acquireRunLock(ctx context.Context, projectID string, r *run) (func(), *PipelineError) {
	lock := uc.opts.RunLock
	if lock == nil {
		return func() {}, nil
	}
	token, err := lock.Acquire(ctx, projectID, uc.opts.RunLockTTL)
	if err != nil {
		if errors.Is(err, repository.ErrLockHeld) {
			return nil, newError(KindRunInProgress, "skill generation is already running for this project")
		}
		r.logger.Warn("Run lock unavailable, continuing without it", zap.Error(err))
		return func() {}, nil
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx), projectID, token); err != nil {
			r.logger.Warn("Failed to release run lock", zap.Error(err))
		}
	}, nil
}

// usablePages drops pages without text and renumbers the rest in crawl order.
func usablePages(pages []entity.CrawledPage) []entity.CrawledPage {
	usable := make([]entity.CrawledPage, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		p.Ordinal = len(usable)
		usable = append(usable, p)
	}
	return usable
}

func hostOf(rawURL string) string {
	u, err := utils.ParseAbsoluteURL(rawURL)
	if err != nil {
		return "unknown"
	}
	return u.Hostname()
}
