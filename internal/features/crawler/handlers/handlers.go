package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/services"
	"mobiledev-news/internal/features/crawler/sources"
)

// manualCrawlTimeout bounds a crawl triggered over HTTP
const manualCrawlTimeout = 5 * time.Minute

// Handlers serves the operator view of the crawl pipeline
type Handlers struct {
	logger   *core.Logger
	registry *sources.Registry
	runner   CrawlRunner
	sources  services.SourceStore
	runs     services.RunLogStore
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	logger *core.Logger,
	registry *sources.Registry,
	runner CrawlRunner,
	sourceStore services.SourceStore,
	runs services.RunLogStore,
) *Handlers {
	return &Handlers{
		logger:   logger,
		registry: registry,
		runner:   runner,
		sources:  sourceStore,
		runs:     runs,
	}
}

// SourceView is a registry entry joined with its stored row, if any
type SourceView struct {
	sources.Spec
	SourceID      *int64     `json:"source_id,omitempty"`
	SourceType    string     `json:"source_type"`
	LastCrawledAt *time.Time `json:"last_crawled_at"`
}

// ListSources returns every registered source with its last crawl time
func (h *Handlers) ListSources(w http.ResponseWriter, r *http.Request) {
	stored, err := h.sources.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sources", "error", err)
		core.HandleError(w, core.NewDatabaseError("failed to list sources", err))
		return
	}

	byURL := make(map[string]models.Source, len(stored))
	for _, source := range stored {
		byURL[source.URL] = source
	}

	views := []SourceView{}
	for _, key := range h.registry.Keys() {
		spec, _ := h.registry.Get(key)
		view := SourceView{Spec: spec, SourceType: string(spec.SourceType())}
		if source, ok := byURL[spec.SiteURL]; ok {
			view.SourceID = &source.ID
			view.LastCrawledAt = source.LastCrawledAt
		}
		views = append(views, view)
	}

	writeJSON(w, http.StatusOK, map[string]any{"sources": views})
}

// ListRuns returns recent crawl runs, optionally for one source key
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			core.HandleError(w, core.NewValidationError(fmt.Sprintf("invalid limit %q", raw), err))
			return
		}
		limit = n
	}

	runs, err := h.queryRuns(r.Context(), r.URL.Query().Get("source"), limit)
	if err != nil {
		if !core.HasCode(err, core.ErrCodeNotFound) {
			h.logger.Error("Failed to list crawl runs", "error", err)
		}
		core.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Handlers) queryRuns(ctx context.Context, key string, limit int) ([]models.RunLog, error) {
	if key == "" {
		return h.runs.Recent(ctx, limit)
	}

	spec, err := h.registry.Get(key)
	if err != nil {
		return nil, core.NewNotFoundError(err.Error(), err)
	}
	source, err := h.sources.ByURL(ctx, spec.SiteURL)
	if err != nil {
		if core.HasCode(err, core.ErrCodeNotFound) {
			return []models.RunLog{}, nil
		}
		return nil, err
	}
	return h.runs.BySource(ctx, source.ID, limit)
}

// CrawlSource crawls one source now and returns its result. An adapter
// failure is still a 200: the result carries the failed status.
func (h *Handlers) CrawlSource(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	spec, err := h.registry.Get(key)
	if err != nil {
		core.HandleError(w, core.NewNotFoundError(err.Error(), err))
		return
	}

	// the crawl outlives a disconnected client
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), manualCrawlTimeout)
	defer cancel()

	waveID := services.NewWaveID()
	h.logger.Info("Manual crawl requested", "source", key, "wave_id", waveID)

	result, err := h.runner.RunSource(ctx, spec, waveID)
	if errors.Is(err, services.ErrSourceBusy) {
		core.HandleError(w, core.NewConflictError(fmt.Sprintf("source %s is already being crawled", key), err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"wave_id": waveID, "result": result})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
