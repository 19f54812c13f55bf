// Package wbapi provides the HTTP client for the Wildberries statistics
// API report endpoint.
//
// The endpoint uses rrd_id cursor-based pagination and Authorization
// header auth. Rate limiting is handled via a token bucket limiter.
package wbapi

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production statistics API host.
const DefaultBaseURL = "https://statistics-api.wildberries.ru"

// Client is the HTTP client for the supplier report endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a statistics API client with rate limiting. The token
// is sent verbatim in the Authorization header on every request.
func NewClient(baseURL, token string, timeout time.Duration, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
