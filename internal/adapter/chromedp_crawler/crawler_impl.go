package chromedp_crawler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/skillgen-service/internal/repository"
)

// ChromedpFetcher renders pages in headless Chrome so that client-side
// documentation sites yield their final HTML.
type ChromedpFetcher struct {
	allocatorPool *sync.Pool
	cancels       []context.CancelFunc
	mu            sync.Mutex
	timeout       time.Duration
	logger        *zap.Logger
}

var _ repository.PageFetcher = (*ChromedpFetcher)(nil)

// NewChromedpFetcher creates a page fetcher backed by chromedp.
func NewChromedpFetcher(maxConcurrency int, pageLoadTimeout time.Duration, logger *zap.Logger) *ChromedpFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &ChromedpFetcher{
		timeout: pageLoadTimeout,
		logger:  logger,
	}
	f.allocatorPool = &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(`Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36`),
			)
			allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
			f.mu.Lock()
			f.cancels = append(f.cancels, cancel)
			f.mu.Unlock()
			return allocCtx
		},
	}

	// Pre-warm the pool
	for i := 0; i < maxConcurrency; i++ {
		allocCtx := f.allocatorPool.Get().(context.Context)
		f.allocatorPool.Put(allocCtx)
	}
	return f
}

// Fetch navigates to url, waits for the body and returns the rendered document.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocCtx := f.allocatorPool.Get().(context.Context)
	defer f.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(f.logger.Sugar().Debugf))
	defer cancel()

	// Tie the browser tab to the caller's cancellation as well as the page timeout.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, f.timeout)
	defer cancelTimeout()

	// The first document response is the page itself; later ones are frames.
	var statusCode atomic.Int64
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			statusCode.CompareAndSwap(0, e.Response.Status)
		}
	})

	startTime := time.Now()
	var htmlContent string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		f.logger.Warn("Failed to render URL", zap.String("url", url), zap.Error(err))
		return "", err
	}
	if code := statusCode.Load(); code >= 400 {
		return "", fmt.Errorf("GET %s: unexpected status %d", url, code)
	}

	f.logger.Debug("Rendered URL",
		zap.String("url", url),
		zap.Int64("status", statusCode.Load()),
		zap.Duration("elapsed", time.Since(startTime)),
	)
	return htmlContent, nil
}

// Close shuts down every browser process started by the pool.
func (f *ChromedpFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cancel := range f.cancels {
		cancel()
	}
	f.cancels = nil
}
