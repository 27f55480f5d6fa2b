package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/user/skillgen-service/internal/entity"
)

const (
	testUser    = "user-1"
	testProject = "project-1"
	testURL     = "https://docs.example.com"
)

type harness struct {
	projects *fakeProjects
	crawler  *fakeCrawler
	model    *fakeModel
	skills   *memorySkills
	opts     GeneratorOptions
}

func newHarness() *harness {
	return &harness{
		projects: &fakeProjects{projects: map[string]string{testProject: testUser}},
		crawler: &fakeCrawler{result: &entity.CrawlResult{
			Status: entity.CrawlCompleted,
			Pages: []entity.CrawledPage{
				{URL: testURL, Content: strings.Repeat("a", 200), Ordinal: 0},
				{URL: testURL + "/auth", Content: strings.Repeat("b", 150), Ordinal: 1},
				{URL: testURL + "/errors", Content: strings.Repeat("c", 150), Ordinal: 2},
			},
		}},
		model:  &fakeModel{output: skillsJSON(5)},
		skills: &memorySkills{},
	}
}

func (h *harness) generator() SkillGenerator {
	return NewSkillGenerator(h.projects, h.crawler, h.model, h.skills, nil, h.opts)
}

func skillsJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"name":"Skill %d","description":"When topic %d comes up","content":"Do step %d."}`, i, i, i)
	}
	return `{"skills":[` + strings.Join(items, ",") + `]}`
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want kind %q", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("kind = %q, want %q (err: %v)", got, want, err)
	}
}

func TestGenerateWellFormedRun(t *testing.T) {
	h := newHarness()

	skills, err := h.generator().Generate(context.Background(), testUser, testProject, testURL)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(skills) != 5 {
		t.Fatalf("len(skills) = %d, want 5", len(skills))
	}
	for _, s := range skills {
		if s.ProjectID != testProject {
			t.Errorf("skill %s ProjectID = %q", s.ID, s.ProjectID)
		}
		if s.Type != entity.SkillType {
			t.Errorf("skill %s Type = %q, want skill", s.ID, s.Type)
		}
	}
	if h.skills.count() != 5 {
		t.Errorf("stored skills = %d, want 5", h.skills.count())
	}
	if h.crawler.last.PageLimit != DefaultPageLimit {
		t.Errorf("PageLimit = %d, want %d", h.crawler.last.PageLimit, DefaultPageLimit)
	}
	if got := strings.Count(h.model.userContent, PageSeparator); got != 2 {
		t.Errorf("separators sent to model = %d, want 2", got)
	}
	if !strings.HasPrefix(h.model.userContent, userContentPrefix) {
		t.Error("user content lacks the instruction prefix")
	}
}

func TestGenerateCrawlFailedStatus(t *testing.T) {
	h := newHarness()
	h.crawler.result = &entity.CrawlResult{
		Status:        entity.CrawlFailed,
		Pages:         []entity.CrawledPage{{URL: testURL, Content: "partial"}},
		FailureReason: "robots.txt disallows crawling",
	}

	_, err := h.generator().Generate(context.Background(), testUser, testProject, testURL)

	assertKind(t, err, KindCrawlFailed)
	if h.skills.count() != 0 {
		t.Errorf("stored skills = %d, want 0", h.skills.count())
	}
	if h.model.calls != 0 {
		t.Errorf("model calls = %d, want 0", h.model.calls)
	}
	var pe *PipelineError
	if errors.As(err, &pe) && pe.Stage != StateCrawling {
		t.Errorf("Stage = %q, want crawling", pe.Stage)
	}
	if !strings.Contains(err.Error(), "robots.txt") {
		t.Errorf("error %q does not carry the crawler's reason", err)
	}
}

func TestGenerateSingleSkill(t *testing.T) {
	h := newHarness()
	h.model.output = `{"skills": [{"name":"A","content":"..."}]}`

	skills, err := h.generator().Generate(context.Background(), testUser, testProject, testURL)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(skills) != 1 || h.skills.count() != 1 {
		t.Fatalf("created %d (stored %d), want exactly 1", len(skills), h.skills.count())
	}
	if skills[0].Name != "A" || skills[0].Description != "" {
		t.Errorf("skill = %#v", skills[0])
	}
}

func TestGenerateTruncatesOversizedPage(t *testing.T) {
	h := newHarness()
	h.opts.MaxChars = 100_000
	h.crawler.result = &entity.CrawlResult{
		Status: entity.CrawlCompleted,
		Pages:  []entity.CrawledPage{{URL: testURL, Content: strings.Repeat("z", 200_000)}},
	}

	if _, err := h.generator().Generate(context.Background(), testUser, testProject, testURL); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	corpus := strings.TrimPrefix(h.model.userContent, userContentPrefix)
	if got := utf8.RuneCountInString(corpus); got != 100_000 {
		t.Errorf("corpus sent to model = %d chars, want 100000", got)
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		project   string
		url       string
		setup     func(h *harness)
		wantKind  ErrorKind
		wantStage State
	}{
		{
			name:      "no principal",
			principal: "",
			wantKind:  KindUnauthorized,
			wantStage: StateIdle,
		},
		{
			name:      "project owned by someone else",
			principal: "intruder",
			wantKind:  KindNotFound,
			wantStage: StateIdle,
		},
		{
			name:      "unknown project",
			project:   "missing",
			wantKind:  KindNotFound,
			wantStage: StateIdle,
		},
		{
			name:      "relative url",
			url:       "/docs",
			wantKind:  KindInvalidInput,
			wantStage: StateIdle,
		},
		{
			name:      "project store down",
			setup:     func(h *harness) { h.projects.err = errBoom },
			wantKind:  KindPersistenceFailed,
			wantStage: StateIdle,
		},
		{
			name:      "crawler transport error",
			setup:     func(h *harness) { h.crawler.err = errBoom },
			wantKind:  KindCrawlFailed,
			wantStage: StateCrawling,
		},
		{
			name: "crawl without text",
			setup: func(h *harness) {
				h.crawler.result = &entity.CrawlResult{
					Status: entity.CrawlCompleted,
					Pages:  []entity.CrawledPage{{URL: testURL, Content: "  \n\t"}},
				}
			},
			wantKind:  KindNoContent,
			wantStage: StateCrawling,
		},
		{
			name:      "crawl with zero pages",
			setup:     func(h *harness) { h.crawler.result = &entity.CrawlResult{Status: entity.CrawlCompleted} },
			wantKind:  KindNoContent,
			wantStage: StateCrawling,
		},
		{
			name:      "model error",
			setup:     func(h *harness) { h.model.err = errBoom },
			wantKind:  KindExtractionFailed,
			wantStage: StateExtracting,
		},
		{
			name:      "model empty answer",
			setup:     func(h *harness) { h.model.output = "  " },
			wantKind:  KindExtractionFailed,
			wantStage: StateExtracting,
		},
		{
			name:      "model returns prose",
			setup:     func(h *harness) { h.model.output = "Here are your skills!" },
			wantKind:  KindMalformedOutput,
			wantStage: StateValidating,
		},
		{
			name:      "model returns object without skills array",
			setup:     func(h *harness) { h.model.output = `{"topics": ["returns"]}` },
			wantKind:  KindNoSkillsIdentified,
			wantStage: StateValidating,
		},
		{
			name:      "model returns no skills",
			setup:     func(h *harness) { h.model.output = `{"skills": []}` },
			wantKind:  KindNoSkillsIdentified,
			wantStage: StateValidating,
		},
		{
			name:      "store write fails",
			setup:     func(h *harness) { h.skills.failErr = errBoom },
			wantKind:  KindPersistenceFailed,
			wantStage: StatePersisting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			if tt.setup != nil {
				tt.setup(h)
			}
			principal := tt.principal
			if principal == "" && tt.wantKind != KindUnauthorized {
				principal = testUser
			}
			project := tt.project
			if project == "" {
				project = testProject
			}
			url := tt.url
			if url == "" {
				url = testURL
			}

			skills, err := h.generator().Generate(context.Background(), principal, project, url)

			if skills != nil {
				t.Errorf("skills = %v, want nil on failure", skills)
			}
			assertKind(t, err, tt.wantKind)
			var pe *PipelineError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *PipelineError", err)
			}
			if pe.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", pe.Stage, tt.wantStage)
			}
			if h.skills.count() != 0 {
				t.Errorf("stored skills = %d, want 0", h.skills.count())
			}
		})
	}
}

func TestGenerateCancelledBeforePersisting(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	h.model.onExtract = cancel

	_, err := h.generator().Generate(ctx, testUser, testProject, testURL)

	assertKind(t, err, KindPersistenceFailed)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not wrap context.Canceled", err)
	}
	if h.skills.count() != 0 {
		t.Errorf("stored skills = %d, want 0", h.skills.count())
	}
}

func TestGenerateRunLock(t *testing.T) {
	h := newHarness()
	lock := newFakeLock()
	h.opts.RunLock = lock

	if _, err := h.generator().Generate(context.Background(), testUser, testProject, testURL); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if lock.acquires != 1 || lock.releases != 1 {
		t.Errorf("acquires = %d, releases = %d; want 1, 1", lock.acquires, lock.releases)
	}

	// A run already in progress for the project blocks a second one.
	lock.held[testProject] = "other-run"
	_, err := h.generator().Generate(context.Background(), testUser, testProject, testURL)
	assertKind(t, err, KindRunInProgress)
	if h.crawler.calls != 1 {
		t.Errorf("crawler calls = %d, want 1", h.crawler.calls)
	}
}

func TestGenerateReleasesLockOnFailure(t *testing.T) {
	h := newHarness()
	lock := newFakeLock()
	h.opts.RunLock = lock
	h.model.err = errBoom

	_, err := h.generator().Generate(context.Background(), testUser, testProject, testURL)

	assertKind(t, err, KindExtractionFailed)
	if len(lock.held) != 0 {
		t.Errorf("lock still held after failed run: %v", lock.held)
	}
}

func TestGenerateContinuesWhenLockStoreIsDown(t *testing.T) {
	h := newHarness()
	lock := newFakeLock()
	lock.err = errBoom
	h.opts.RunLock = lock

	if _, err := h.generator().Generate(context.Background(), testUser, testProject, testURL); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestGenerateUsesCrawlCache(t *testing.T) {
	h := newHarness()
	cache := newFakeCache()
	h.opts.CrawlCache = cache
	h.opts.CrawlCacheTTL = time.Minute

	gen := h.generator()
	for i := 0; i < 2; i++ {
		if _, err := gen.Generate(context.Background(), testUser, testProject, testURL); err != nil {
			t.Fatalf("run %d: Generate() error = %v", i, err)
		}
	}

	if h.crawler.calls != 1 {
		t.Errorf("crawler calls = %d, want 1 (second run served from cache)", h.crawler.calls)
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestGenerateDoesNotCacheFailedCrawls(t *testing.T) {
	h := newHarness()
	cache := newFakeCache()
	h.opts.CrawlCache = cache
	h.opts.CrawlCacheTTL = time.Minute
	h.crawler.result = &entity.CrawlResult{Status: entity.CrawlFailed}

	_, err := h.generator().Generate(context.Background(), testUser, testProject, testURL)

	assertKind(t, err, KindCrawlFailed)
	if cache.puts != 0 {
		t.Errorf("cache puts = %d, want 0", cache.puts)
	}
}

func TestGenerateIgnoresCacheErrors(t *testing.T) {
	h := newHarness()
	cache := newFakeCache()
	cache.getErr = errBoom
	h.opts.CrawlCache = cache

	if _, err := h.generator().Generate(context.Background(), testUser, testProject, testURL); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if h.crawler.calls != 1 {
		t.Errorf("crawler calls = %d, want 1", h.crawler.calls)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	h := newHarness()

	preview, err := h.generator().Preview(context.Background(), testURL)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if len(preview.Skills) != 5 {
		t.Errorf("len(Skills) = %d, want 5", len(preview.Skills))
	}
	if preview.SourcePageCount != 3 || preview.Truncated {
		t.Errorf("SourcePageCount = %d, Truncated = %v", preview.SourcePageCount, preview.Truncated)
	}
	if want := 500 + 2*len(PageSeparator); preview.CorpusChars != want {
		t.Errorf("CorpusChars = %d, want %d", preview.CorpusChars, want)
	}
	if h.skills.count() != 0 {
		t.Errorf("stored skills = %d, want 0", h.skills.count())
	}
}

func TestPreviewRejectsInvalidURL(t *testing.T) {
	h := newHarness()
	_, err := h.generator().Preview(context.Background(), "docs.example.com")
	assertKind(t, err, KindInvalidInput)
}

func TestUsablePagesRenumbers(t *testing.T) {
	pages := usablePages([]entity.CrawledPage{
		{URL: "a", Content: "one", Ordinal: 0},
		{URL: "b", Content: "", Ordinal: 1},
		{URL: "c", Content: "three", Ordinal: 2},
	})
	if len(pages) != 2 || pages[1].URL != "c" || pages[1].Ordinal != 1 {
		t.Errorf("usablePages = %#v", pages)
	}
}
