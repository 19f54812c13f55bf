package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/avoronina/wb-finance-data/internal/api/respond"
	"github.com/avoronina/wb-finance-data/internal/cache"
	"github.com/avoronina/wb-finance-data/internal/store"
)

const defaultReportLimit = 100

// GetLatestReport returns the most recent RRD rows ordered by date.
// @Summary Latest report rows
// @Description Returns the most recent N persisted RRD rows ordered by date descending.
// @Tags report
// @Produce json
// @Param limit query int false "Maximum rows to return" default(100)
// @Success 200 {array} store.LatestRow
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /rrd [get]
func (h *Handler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	limit := defaultReportLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}

	cacheKey := fmt.Sprintf("rrd:%d", limit)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.ETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLReport, true)
		return
	}

	st, err := store.OpenReadOnly(h.cfg.DBPath)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DATABASE_NOT_FOUND",
			"Report database not found; run an ingestion first")
		return
	}
	defer st.Close()

	rows, err := st.LatestRows(r.Context(), limit)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to read report rows")
		return
	}
	h.metrics.ReportRowsRead.Add(float64(len(rows)))

	data, err := json.Marshal(rows)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode report rows")
		return
	}

	etag := h.cache.Set(cacheKey, data, cache.TTLReport)
	respond.WriteJSON(w, data, etag, cache.TTLReport, false)
}
