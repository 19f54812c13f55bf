// Package metrics exposes Prometheus counters for the read API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the API server's Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	ReportRowsRead  prometheus.Counter
}

// NewRegistry creates and registers all collectors.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wbapi_http_requests_total",
		Help: "HTTP requests served, by route and status code.",
	}, []string{"route", "status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wbapi_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	})
	rowsRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wbapi_report_rows_read_total",
		Help: "RRD rows returned by the /rrd endpoint.",
	})

	r.MustRegister(requests, duration, rowsRead)
	return &Registry{
		reg:             r,
		RequestsTotal:   requests,
		RequestDuration: duration,
		ReportRowsRead:  rowsRead,
	}
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
