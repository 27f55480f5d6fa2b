package sitecrawler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/user/skillgen-service/internal/repository"
)

// UserAgent is sent with every request made by the built-in crawler.
const UserAgent = "skillgen-crawler/1.0 (+https://github.com/user/skillgen-service)"

const maxPageBytes = 5 << 20

// HTTPFetcher fetches pages with a plain HTTP GET. It does not run JavaScript.
type HTTPFetcher struct {
	client *http.Client
}

var _ repository.PageFetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(client *http.Client, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ := mime.ParseMediaType(ct)
		if mediaType != "text/html" && mediaType != "application/xhtml+xml" && !strings.HasPrefix(mediaType, "text/") {
			return "", fmt.Errorf("GET %s: unsupported content type %q", url, mediaType)
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
