package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestMetricsCollectorAggregatesTraces(t *testing.T) {
	m := NewMetricsCollector()
	defer m.Stop()

	now := time.Now()
	for i, d := range []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond} {
		status := http.StatusOK
		if i == 2 {
			status = http.StatusInternalServerError
		}
		m.RecordTrace(RequestTrace{
			Method:     "GET",
			Route:      "/api/v1/livestreams",
			StatusCode: status,
			StartedAt:  now,
			Duration:   d,
		})
	}
	m.RecordTrace(RequestTrace{
		Method:     "POST",
		Route:      "/api/v1/orders",
		StatusCode: http.StatusCreated,
		StartedAt:  now,
		Duration:   5 * time.Millisecond,
	})

	waitFor(t, func() bool { return m.GetSummary().TotalRequests == 4 },
		"collector never ingested all traces")

	summary := m.GetSummary()
	assert.Equal(t, int64(1), summary.TotalErrors)
	assert.Equal(t, 2, summary.Routes)

	stats := m.GetRouteMetrics()
	assert.Len(t, stats, 2)
	assert.Equal(t, "/api/v1/livestreams", stats[0].Route)
	assert.Equal(t, int64(3), stats[0].Count)
	assert.Equal(t, int64(1), stats[0].Errors)
	assert.Equal(t, float64(30), stats[0].MaxMs)
	assert.Equal(t, float64(20), stats[0].AvgMs)

	slowest := m.GetSlowestRoutes(1)
	assert.Len(t, slowest, 1)
	assert.Equal(t, "/api/v1/livestreams", slowest[0].Route)
}

func TestMetricsCollectorCapturesSlowQueries(t *testing.T) {
	m := NewMetricsCollector()
	defer m.Stop()

	m.RecordTrace(RequestTrace{
		Method:     "GET",
		Route:      "/api/v1/livestreams/{livestream_id}/comments",
		StatusCode: http.StatusOK,
		StartedAt:  time.Now(),
		Duration:   300 * time.Millisecond,
		Queries: []DBQueryTrace{
			{Collection: "livestreams", Operation: "findOne", Duration: 5 * time.Millisecond},
			{Collection: "livestreamComments", Operation: "find", Duration: 250 * time.Millisecond},
		},
	})

	waitFor(t, func() bool { return len(m.GetSlowQueries()) == 1 },
		"slow query was never captured")

	slow := m.GetSlowQueries()[0]
	assert.Equal(t, "livestreamComments", slow.Collection)
	assert.Equal(t, "find", slow.Operation)
	assert.Equal(t, "/api/v1/livestreams/{livestream_id}/comments", slow.Route)

	summary := m.GetSummary()
	assert.Equal(t, 1, summary.SlowQueries)
}

func TestRecordDBQueryFromContext(t *testing.T) {
	ctx := WithRequestTrace(context.Background())

	RecordDBQueryFromContext(ctx, "livestreams", "findOne", 2*time.Millisecond, nil)
	RecordDBQueryFromContext(ctx, "uploadRecords", "updateOne", 4*time.Millisecond, errors.New("write conflict"))

	queries := queriesFromContext(ctx)
	assert.Len(t, queries, 2)
	assert.Equal(t, "livestreams", queries[0].Collection)
	assert.False(t, queries[0].Failed)
	assert.True(t, queries[1].Failed)

	// a context without a trace is a no-op
	RecordDBQueryFromContext(context.Background(), "livestreams", "find", time.Millisecond, nil)
	assert.Nil(t, queriesFromContext(context.Background()))
}

func TestNormalizeRoutePath(t *testing.T) {
	assert.Equal(t, "/api/v1/livestreams/{id}",
		normalizeRoutePath("/api/v1/livestreams/64f1c9a2b3d4e5f60718293a"))
	assert.Equal(t, "/api/v1/livestreams/{id}/chat/{id}/pin",
		normalizeRoutePath("/api/v1/livestreams/64f1c9a2b3d4e5f60718293a/chat/71a2b3c4d5e6f708192a3b4c/pin"))
	assert.Equal(t, "/api/v1/livestreams/slug/spring-tour-finale",
		normalizeRoutePath("/api/v1/livestreams/slug/spring-tour-finale"))
}

func TestMetricsMiddlewareTracesRequests(t *testing.T) {
	m := NewMetricsCollector()
	defer m.Stop()
	prev := globalMetrics
	globalMetrics = m
	defer func() { globalMetrics = prev }()

	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("/api/v1/livestreams/{livestream_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/api/v1/livestreams/64f1c9a2b3d4e5f60718293a", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	waitFor(t, func() bool { return len(m.GetTraces(0)) == 1 },
		"request was never traced")

	trace := m.GetTraces(1)[0]
	assert.NotEmpty(t, trace.RequestID)
	assert.Equal(t, "GET", trace.Method)
	assert.Equal(t, "/api/v1/livestreams/{livestream_id}", trace.Route)
	assert.Equal(t, http.StatusNotFound, trace.StatusCode)

	// the health check stays out of the collector
	req = httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, m.GetTraces(0), 1)
}
