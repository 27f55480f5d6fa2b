package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/skillgen-service/internal/entity"
	"github.com/user/skillgen-service/internal/repository"
	"github.com/user/skillgen-service/pkg/utils"
)

const crawlCachePrefix = "skillgen:crawl:"

// CrawlCacheRepoImpl caches crawled pages in Redis as JSON.
type CrawlCacheRepoImpl struct {
	client *redis.Client
}

// NewCrawlCacheRepo creates a new instance of CrawlCacheRepoImpl.
func NewCrawlCacheRepo(client *redis.Client) *CrawlCacheRepoImpl {
	return &CrawlCacheRepoImpl{client: client}
}

var _ repository.CrawlCacheRepository = (*CrawlCacheRepoImpl)(nil)

// generateKey hashes the root URL together with the page limit, since a
// crawl capped at 5 pages must not answer a request for 20.
func (r *CrawlCacheRepoImpl) generateKey(req entity.CrawlRequest) string {
	return crawlCachePrefix + utils.HashURL(fmt.Sprintf("%s|%d", req.RootURL, req.PageLimit))
}

func (r *CrawlCacheRepoImpl) Get(ctx context.Context, req entity.CrawlRequest) ([]entity.CrawledPage, error) {
	data, err := r.client.Get(ctx, r.generateKey(req)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, err
	}

	var pages []entity.CrawledPage
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("corrupt crawl cache entry: %w", err)
	}
	return pages, nil
}

func (r *CrawlCacheRepoImpl) Put(ctx context.Context, req entity.CrawlRequest, pages []entity.CrawledPage, ttl time.Duration) error {
	data, err := json.Marshal(pages)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.generateKey(req), data, ttl).Err()
}
