package repository

import (
	"context"

	"github.com/user/skillgen-service/internal/entity"
)

// CrawlerRepository defines the contract for crawling a documentation site.
type CrawlerRepository interface {
	// Crawl fetches up to req.PageLimit pages reachable from req.RootURL.
	// A returned error means the crawl could not be run at all; a crawl that ran
	// but did not complete is reported through CrawlResult.Status.
	Crawl(ctx context.Context, req entity.CrawlRequest) (*entity.CrawlResult, error)
}

// PageFetcher retrieves the HTML of a single page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (html string, err error)
}
