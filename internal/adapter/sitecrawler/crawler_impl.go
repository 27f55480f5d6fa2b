package sitecrawler

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/user/skillgen-service/internal/entity"
	"github.com/user/skillgen-service/internal/repository"
	"github.com/user/skillgen-service/pkg/utils"
)

// Crawler walks a documentation site breadth-first, staying on the root's host.
type Crawler struct {
	fetcher repository.PageFetcher
	logger  *zap.Logger
}

var _ repository.CrawlerRepository = (*Crawler)(nil)

func NewCrawler(fetcher repository.PageFetcher, logger *zap.Logger) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{fetcher: fetcher, logger: logger}
}

// Crawl visits at most req.PageLimit pages. Pages that fail to fetch are
// skipped, except the root: without it the crawl is reported as failed.
func (c *Crawler) Crawl(ctx context.Context, req entity.CrawlRequest) (*entity.CrawlResult, error) {
	root, err := utils.ParseAbsoluteURL(req.RootURL)
	if err != nil {
		return nil, fmt.Errorf("invalid root URL %q: %w", req.RootURL, err)
	}
	limit := req.PageLimit
	if limit < 1 {
		limit = 1
	}

	start := utils.NormalizeURL(root)
	queue := []string{start}
	visited := map[string]struct{}{start: {}}
	var pages []entity.CrawledPage

	for len(queue) > 0 && len(pages) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := queue[0]
		queue = queue[1:]

		body, err := c.fetcher.Fetch(ctx, current)
		if err != nil {
			if current == start {
				c.logger.Warn("Root page fetch failed", zap.String("url", current), zap.Error(err))
				return &entity.CrawlResult{
					Status:        entity.CrawlFailed,
					FailureReason: fmt.Sprintf("fetching root page: %v", err),
				}, nil
			}
			c.logger.Debug("Skipping page", zap.String("url", current), zap.Error(err))
			continue
		}

		page, err := ExtractPage(current, body)
		if err != nil {
			c.logger.Debug("Skipping unparsable page", zap.String("url", current), zap.Error(err))
			continue
		}
		pages = append(pages, entity.CrawledPage{
			URL:     current,
			Content: page.Markdown,
			Ordinal: len(pages),
		})

		for _, link := range page.Links {
			if _, ok := visited[link]; ok || !sameSite(root, link) {
				continue
			}
			visited[link] = struct{}{}
			queue = append(queue, link)
		}
	}

	c.logger.Info("Site crawl finished", zap.String("url", start), zap.Int("pages", len(pages)), zap.Int("queued", len(queue)))
	return &entity.CrawlResult{Status: entity.CrawlCompleted, Pages: pages}, nil
}

func sameSite(root *url.URL, link string) bool {
	u, err := url.Parse(link)
	return err == nil && u.Host == root.Host
}
