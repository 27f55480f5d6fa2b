package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/skillgen-service/internal/entity"
	"github.com/user/skillgen-service/internal/repository"
)

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
	statusCancelled = "cancelled"

	maxErrorBody = 4 << 10
)

// Options configures the Firecrawl client.
type Options struct {
	BaseURL      string
	APIKey       string
	PollInterval time.Duration
	Timeout      time.Duration // bounds a whole crawl including polling
	HTTPClient   *http.Client
}

// Crawler runs crawl jobs on the Firecrawl API and waits for them to finish.
type Crawler struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	timeout      time.Duration
	client       *http.Client
	logger       *zap.Logger
}

var _ repository.CrawlerRepository = (*Crawler)(nil)

// NewCrawler creates a Firecrawl-backed CrawlerRepository.
func NewCrawler(opts Options, logger *zap.Logger) *Crawler {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		apiKey:       opts.APIKey,
		pollInterval: opts.PollInterval,
		timeout:      opts.Timeout,
		client:       opts.HTTPClient,
		logger:       logger,
	}
}

type scrapeOptions struct {
	Formats []string `json:"formats"`
}

type startRequest struct {
	URL           string        `json:"url"`
	Limit         int           `json:"limit"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type startResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

type document struct {
	Markdown string `json:"markdown"`
	Metadata struct {
		SourceURL string `json:"sourceURL"`
		URL       string `json:"url"`
	} `json:"metadata"`
}

type statusResponse struct {
	Status    string     `json:"status"`
	Total     int        `json:"total"`
	Completed int        `json:"completed"`
	Next      string     `json:"next"`
	Data      []document `json:"data"`
	Error     string     `json:"error"`
}

// Crawl starts a crawl job and polls it until it reaches a terminal status.
func (c *Crawler) Crawl(ctx context.Context, req entity.CrawlRequest) (*entity.CrawlResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jobID, err := c.start(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Firecrawl job started", zap.String("job_id", jobID), zap.String("url", req.RootURL), zap.Int("limit", req.PageLimit))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	statusURL := fmt.Sprintf("%s/v1/crawl/%s", c.baseURL, jobID)
	for {
		status, err := c.fetchStatus(ctx, statusURL)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case statusCompleted:
			pages, err := c.collect(ctx, status, req.PageLimit)
			if err != nil {
				return nil, err
			}
			c.logger.Info("Firecrawl job completed", zap.String("job_id", jobID), zap.Int("pages", len(pages)))
			return &entity.CrawlResult{Status: entity.CrawlCompleted, Pages: pages}, nil
		case statusFailed, statusCancelled:
			reason := fmt.Sprintf("crawl job %s ended with status %q", jobID, status.Status)
			if status.Error != "" {
				reason += ": " + status.Error
			}
			return &entity.CrawlResult{Status: entity.CrawlFailed, FailureReason: reason}, nil
		}

		c.logger.Debug("Firecrawl job in progress",
			zap.String("job_id", jobID),
			zap.String("status", status.Status),
			zap.Int("completed", status.Completed),
			zap.Int("total", status.Total),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for crawl job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Crawler) start(ctx context.Context, req entity.CrawlRequest) (string, error) {
	body, err := json.Marshal(startRequest{
		URL:           req.RootURL,
		Limit:         req.PageLimit,
		ScrapeOptions: scrapeOptions{Formats: []string{"markdown"}},
	})
	if err != nil {
		return "", err
	}

	var resp startResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/crawl", body, &resp); err != nil {
		return "", fmt.Errorf("failed to start crawl: %w", err)
	}
	if !resp.Success || resp.ID == "" {
		return "", fmt.Errorf("failed to start crawl: %s", resp.Error)
	}
	return resp.ID, nil
}

func (c *Crawler) fetchStatus(ctx context.Context, url string) (*statusResponse, error) {
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get crawl status: %w", err)
	}
	return &resp, nil
}

// collect gathers the documents of a completed job, following pagination links.
// It stops at limit pages even if the service returned more.
func (c *Crawler) collect(ctx context.Context, first *statusResponse, limit int) ([]entity.CrawledPage, error) {
	var pages []entity.CrawledPage
	status := first
	for {
		for _, doc := range status.Data {
			if limit > 0 && len(pages) >= limit {
				return pages, nil
			}
			pageURL := doc.Metadata.SourceURL
			if pageURL == "" {
				pageURL = doc.Metadata.URL
			}
			pages = append(pages, entity.CrawledPage{
				URL:     pageURL,
				Content: doc.Markdown,
				Ordinal: len(pages),
			})
		}
		if status.Next == "" || (limit > 0 && len(pages) >= limit) {
			return pages, nil
		}
		next, err := c.fetchStatus(ctx, status.Next)
		if err != nil {
			return nil, err
		}
		status = next
	}
}

func (c *Crawler) do(ctx context.Context, method, url string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("firecrawl returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
