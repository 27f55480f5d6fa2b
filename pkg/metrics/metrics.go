package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RunsInFlight        prometheus.Gauge
	RunsTotal           *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	CrawlsTotal         *prometheus.CounterVec
	CrawlDuration       *prometheus.HistogramVec
	CrawledPages        prometheus.Histogram
	SkillsCreatedTotal  prometheus.Counter
)

var initOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RunsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skillgen_runs_in_flight",
			Help: "Current number of skill generation runs.",
		},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillgen_runs_total",
			Help: "Total number of skill generation runs by outcome.",
		},
		[]string{"outcome"}, // "succeeded" or the error kind
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillgen_stage_duration_seconds",
			Help:    "Duration of each pipeline stage.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	CrawlsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawls_total",
			Help: "Total number of crawl attempts.",
		},
		[]string{"status", "source"}, // source: network, cache
	)

	CrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawl_duration_seconds",
			Help:    "Duration of crawl operations.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120, 300},
		},
		[]string{"domain"},
	)

	CrawledPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawl_pages",
			Help:    "Number of usable pages returned per crawl.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	SkillsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skills_created_total",
			Help: "Total number of skills persisted.",
		},
	)
}
