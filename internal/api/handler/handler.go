// Package handler provides HTTP handlers for the read API. Handlers open
// the report database read-only per request — the file is owned by the
// ingestion CLI and may not exist until the first run completes.
package handler

import (
	"net/http"
	"time"

	"github.com/avoronina/wb-finance-data/internal/api/respond"
	"github.com/avoronina/wb-finance-data/internal/cache"
	"github.com/avoronina/wb-finance-data/internal/config"
	"github.com/avoronina/wb-finance-data/internal/metrics"
	"github.com/avoronina/wb-finance-data/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	cfg     *config.Config
	cache   *cache.Cache
	metrics *metrics.Registry
}

// New creates a Handler with shared dependencies.
func New(cfg *config.Config, c *cache.Cache, m *metrics.Registry) *Handler {
	return &Handler{cfg: cfg, cache: c, metrics: m}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "WB Financial Reports API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status, cache statistics, and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies the report database exists and is readable.
// @Summary Database health check
// @Description Verifies the report database file exists and answers queries.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	st, err := store.OpenReadOnly(h.cfg.DBPath)
	if err == nil {
		defer st.Close()
		err = st.Ping(r.Context())
	}
	if err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "unavailable",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
