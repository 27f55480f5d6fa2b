package repository

import (
	"context"
	"time"

	"github.com/user/skillgen-service/internal/entity"
)

// CrawlCacheRepository keeps recent successful crawls so repeated runs for the same site skip the network.
type CrawlCacheRepository interface {
	// Get returns cached pages for req or ErrCacheMiss.
	Get(ctx context.Context, req entity.CrawlRequest) ([]entity.CrawledPage, error)
	// Put stores pages for req with the given expiry.
	Put(ctx context.Context, req entity.CrawlRequest, pages []entity.CrawledPage, ttl time.Duration) error
}
