package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/skillgen-service/internal/entity"
	"github.com/user/skillgen-service/internal/repository"
)

type fakeProjects struct {
	projects map[string]string // project id -> owner
	err      error
}

func (f *fakeProjects) FindOwned(_ context.Context, projectID, userID string) (*entity.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	owner, ok := f.projects[projectID]
	if !ok || owner != userID {
		return nil, repository.ErrNotFound
	}
	return &entity.Project{ID: projectID, UserID: owner, Name: "Docs"}, nil
}

type fakeCrawler struct {
	result *entity.CrawlResult
	err    error
	calls  int
	last   entity.CrawlRequest
}

func (f *fakeCrawler) Crawl(_ context.Context, req entity.CrawlRequest) (*entity.CrawlResult, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

type fakeModel struct {
	output      string
	err         error
	calls       int
	userContent string
	onExtract   func()
}

func (f *fakeModel) Extract(_ context.Context, _, userContent string) (string, error) {
	f.calls++
	f.userContent = userContent
	if f.onExtract != nil {
		f.onExtract()
	}
	return f.output, f.err
}

// memorySkills is an all-or-nothing in-memory skill store.
type memorySkills struct {
	mu      sync.Mutex
	skills  []entity.Skill
	failErr error
	nextID  int
}

func (m *memorySkills) CreateBatch(ctx context.Context, projectID string, drafts []entity.SkillDraft) ([]entity.Skill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.failErr != nil {
		return nil, m.failErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	created := make([]entity.Skill, 0, len(drafts))
	for _, d := range drafts {
		m.nextID++
		created = append(created, entity.Skill{
			ID:          fmt.Sprintf("skill-%d", m.nextID),
			ProjectID:   projectID,
			Name:        d.Name,
			Description: d.Description,
			Content:     d.Content,
			Type:        entity.SkillType,
			CreatedAt:   now,
		})
	}
	m.skills = append(m.skills, created...)
	return created, nil
}

func (m *memorySkills) ListByProject(_ context.Context, projectID, promptType string) ([]entity.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Skill
	for _, s := range m.skills {
		if s.ProjectID == projectID && s.Type == promptType {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySkills) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.skills)
}

type fakeLock struct {
	mu       sync.Mutex
	held     map[string]string
	acquires int
	releases int
	err      error
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: map[string]string{}}
}

func (l *fakeLock) Acquire(_ context.Context, key string, _ time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", l.err
	}
	if _, ok := l.held[key]; ok {
		return "", repository.ErrLockHeld
	}
	l.acquires++
	token := fmt.Sprintf("token-%d", l.acquires)
	l.held[key] = token
	return token, nil
}

func (l *fakeLock) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.releases++
	}
	return nil
}

type fakeCache struct {
	entries map[string][]entity.CrawledPage
	puts    int
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]entity.CrawledPage{}}
}

func cacheKey(req entity.CrawlRequest) string {
	return fmt.Sprintf("%s|%d", req.RootURL, req.PageLimit)
}

func (c *fakeCache) Get(_ context.Context, req entity.CrawlRequest) ([]entity.CrawledPage, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	pages, ok := c.entries[cacheKey(req)]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return pages, nil
}

func (c *fakeCache) Put(_ context.Context, req entity.CrawlRequest, pages []entity.CrawledPage, _ time.Duration) error {
	c.puts++
	c.entries[cacheKey(req)] = pages
	return nil
}

var errBoom = errors.New("boom")
