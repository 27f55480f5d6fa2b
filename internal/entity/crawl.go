package entity

// CrawlStatus is the terminal state reported by a crawl backend.
type CrawlStatus string

const (
	CrawlCompleted CrawlStatus = "completed"
	CrawlFailed    CrawlStatus = "failed"
)

// CrawlRequest describes one crawl of a documentation site. It is built per run and never stored.
type CrawlRequest struct {
	RootURL   string
	PageLimit int
}

// CrawledPage is the textual (markdown-like) content of a single fetched page.
type CrawledPage struct {
	URL     string `json:"url"`
	Content string `json:"content"`
	Ordinal int    `json:"ordinal"` // position in crawl order, starting at 0
}

// CrawlResult is what a crawl backend returns for a request.
type CrawlResult struct {
	Status CrawlStatus
	Pages  []CrawledPage
	// FailureReason is set by backends that can explain a failed status.
	FailureReason string
}
