package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/menengai/fansite-api/api"
	"github.com/menengai/fansite-api/config"
)

// Metrics serves the in-process request metrics for the admin dashboard.
type Metrics struct{}

// MetricsSummaryHandler returns the top-line request counters.
func (m Metrics) MetricsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	c := api.GetMetrics()
	if c == nil {
		config.ErrorStatus("metrics are not enabled", http.StatusServiceUnavailable, w, errors.New("collector not initialized"))
		return
	}

	b, err := json.Marshal(c.GetSummary())
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RouteMetricsHandler returns per-route aggregates. Pass ?sort=slowest to
// order by p95 latency, and ?limit=N to cap the list.
func (m Metrics) RouteMetricsHandler(w http.ResponseWriter, r *http.Request) {
	c := api.GetMetrics()
	if c == nil {
		config.ErrorStatus("metrics are not enabled", http.StatusServiceUnavailable, w, errors.New("collector not initialized"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			config.ErrorStatus("invalid limit", http.StatusBadRequest, w, err)
			return
		}
		limit = n
	}

	var stats []api.RouteStats
	if r.URL.Query().Get("sort") == "slowest" {
		stats = c.GetSlowestRoutes(limit)
	} else {
		stats = c.GetRouteMetrics()
		if limit > 0 && len(stats) > limit {
			stats = stats[:limit]
		}
	}

	b, err := json.Marshal(stats)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SlowQueriesHandler returns the captured slow database queries.
func (m Metrics) SlowQueriesHandler(w http.ResponseWriter, r *http.Request) {
	c := api.GetMetrics()
	if c == nil {
		config.ErrorStatus("metrics are not enabled", http.StatusServiceUnavailable, w, errors.New("collector not initialized"))
		return
	}

	b, err := json.Marshal(c.GetSlowQueries())
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
