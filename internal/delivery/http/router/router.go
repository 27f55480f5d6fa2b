package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/skillgen-service/internal/delivery/http/handler"
	"github.com/user/skillgen-service/internal/delivery/http/middleware"
	"github.com/user/skillgen-service/pkg/metrics"
)

func New(h *handler.Handler, logger *zap.Logger) http.Handler {
	metrics.Init()
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.Principal)

	r.Handle("/metrics", promhttp.Handler())
	r.With(chimw.Timeout(5*time.Second)).Get("/api/health", h.HandleHealthCheck)

	r.Route("/api/projects/{projectID}/skills", func(r chi.Router) {
		// Generation crawls and calls the model, so it is bounded by the server write timeout instead.
		r.Post("/generate", h.HandleGenerateSkills)
		r.With(chimw.Timeout(30*time.Second)).Get("/", h.HandleListSkills)
	})

	return r
}
