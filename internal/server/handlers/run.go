package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

// RunCache is the request-level result cache consulted before a run.
type RunCache interface {
	Get(ctx context.Context, req trend.Request) (*trend.RunResult, error)
	Set(ctx context.Context, req trend.Request, result *trend.RunResult) error
}

// RunHandler handles analysis run requests.
type RunHandler struct {
	runner trend.Runner
	cache  RunCache
	logger *logrus.Logger
}

// NewRunHandler creates a run handler. cache may be nil.
func NewRunHandler(runner trend.Runner, cache RunCache, logger *logrus.Logger) *RunHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &RunHandler{runner: runner, cache: cache, logger: logger}
}

type runRequest struct {
	Keywords  []string `json:"keywords"`
	TimeRange string   `json:"time_range"`
	Platforms []string `json:"platforms"`
}

type runResponse struct {
	Cached bool             `json:"cached"`
	Result *trend.RunResult `json:"result"`
}

// CreateRun starts a full analysis run for the posted keywords.
// Degraded platforms and runs that find nothing are normal responses;
// only an invalid request is a client error.
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var body runRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := trend.Request{
		Keywords:  body.Keywords,
		TimeRange: platform.TimeRange(body.TimeRange),
	}
	for _, p := range body.Platforms {
		req.Platforms = append(req.Platforms, platform.Platform(p))
	}
	if req.TimeRange == "" {
		req.TimeRange = platform.Range7d
	}

	if h.cache != nil {
		cached, err := h.cache.Get(r.Context(), req)
		if err != nil {
			h.logger.WithError(err).Warn("run cache lookup failed")
		} else if cached != nil {
			respondWithJSON(w, http.StatusOK, runResponse{Cached: true, Result: cached})
			return
		}
	}

	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		var configErr *trend.ConfigError
		switch {
		case errors.As(err, &configErr):
			respondWithError(w, http.StatusBadRequest, configErr.Error())
			return
		case errors.Is(err, trend.ErrNoEvidence):
			// The partial result still carries the per-platform health.
			respondWithJSON(w, http.StatusOK, runResponse{Result: result})
			return
		default:
			h.logger.WithError(err).Error("analysis run failed")
			respondWithError(w, http.StatusInternalServerError, "Analysis run failed")
			return
		}
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), req, result); err != nil {
			h.logger.WithError(err).Warn("failed to cache run result")
		}
	}

	respondWithJSON(w, http.StatusOK, runResponse{Result: result})
}
