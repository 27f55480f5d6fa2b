package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/skillgen-service/internal/delivery/http/middleware"
	"github.com/user/skillgen-service/internal/delivery/http/request"
	"github.com/user/skillgen-service/internal/delivery/http/response"
	"github.com/user/skillgen-service/internal/usecase"
)

const maxBodyBytes = 1 << 20

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handler struct {
	generator usecase.SkillGenerator
	query     usecase.SkillQuery
	checks    map[string]Pinger
	logger    *zap.Logger
}

func NewHandler(generator usecase.SkillGenerator, query usecase.SkillQuery, checks map[string]Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		generator: generator,
		query:     query,
		checks:    checks,
		logger:    logger,
	}
}

func (h *Handler) HandleGenerateSkills(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req request.GenerateSkillsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeJSONError(w, "Invalid request body", string(usecase.KindInvalidInput), http.StatusBadRequest)
		return
	}

	skills, err := h.generator.Generate(r.Context(), middleware.PrincipalFrom(r.Context()), projectID, req.URL)
	if err != nil {
		h.writePipelineError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, response.GenerateSkillsResponse{
		Skills: response.NewSkillResponses(skills),
		Count:  len(skills),
	})
}

func (h *Handler) HandleListSkills(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	skills, err := h.query.ListSkills(r.Context(), middleware.PrincipalFrom(r.Context()), projectID)
	if err != nil {
		h.writePipelineError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.ListSkillsResponse{Skills: response.NewSkillResponses(skills)})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Error("Health check failed", zap.String("dependency", name), zap.Error(err))
			status[name] = "unhealthy"
			healthy = false
			continue
		}
		status[name] = "healthy"
	}

	if !healthy {
		h.writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var perr *usecase.PipelineError
	if !errors.As(err, &perr) {
		h.logger.Error("Unclassified error", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeJSONError(w, "Internal server error", "", http.StatusInternalServerError)
		return
	}

	status := StatusForKind(perr.Kind)
	message := perr.Message
	if message == "" {
		message = string(perr.Kind)
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	h.writeJSON(w, status, response.ErrorResponse{
		Error:     message,
		Kind:      string(perr.Kind),
		Retryable: perr.Kind.Retryable(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message, kind string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message, Kind: kind})
}
