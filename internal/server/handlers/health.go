package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mobiledev-news/internal/core"
)

// Pinger is satisfied by *core.Database
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ArticleCounter reports how many articles have been stored
type ArticleCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthHandler reports database reachability, the stored article count and
// feature status
type HealthHandler struct {
	logger   *core.Logger
	db       Pinger
	articles ArticleCounter
	registry *core.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *core.Logger, db Pinger, articles ArticleCounter, registry *core.Registry) *HealthHandler {
	return &HealthHandler{
		logger:   logger,
		db:       db,
		articles: articles,
		registry: registry,
	}
}

// HealthCheckHandler provides a health check endpoint
func (h *HealthHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]interface{}{
		"status":   "ok",
		"service":  "mobiledev-news",
		"features": h.registry.GetFeatureStatus(),
	}
	code := http.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("Health check database ping failed", "error", err)
		body["status"], code = "unavailable", http.StatusServiceUnavailable
	} else if count, err := h.articles.Count(ctx); err != nil {
		h.logger.Error("Health check article count failed", "error", err)
		body["status"], code = "unavailable", http.StatusServiceUnavailable
	} else {
		body["articles"] = count
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
