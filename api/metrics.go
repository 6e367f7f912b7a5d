package api

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	traceBuffer    = 1000
	maxTraces      = 500
	maxDurations   = 1000
	maxSlowQueries = 100
	slowQueryAfter = 100 * time.Millisecond
)

// RequestTrace is one completed request as seen by the metrics middleware.
type RequestTrace struct {
	RequestID  string         `json:"requestId"`
	Method     string         `json:"method"`
	Route      string         `json:"route"`
	StatusCode int            `json:"statusCode"`
	StartedAt  time.Time      `json:"startedAt"`
	Duration   time.Duration  `json:"-"`
	DurationMs float64        `json:"durationMs"`
	Queries    []DBQueryTrace `json:"queries,omitempty"`
}

// DBQueryTrace records a single store round trip made while serving a request.
type DBQueryTrace struct {
	Collection string        `json:"collection"`
	Operation  string        `json:"operation"`
	Duration   time.Duration `json:"-"`
	DurationMs float64       `json:"durationMs"`
	Failed     bool          `json:"failed,omitempty"`
}

// SlowQuery is a query that crossed the slow threshold, kept with the route
// that issued it.
type SlowQuery struct {
	Route      string    `json:"route"`
	Collection string    `json:"collection"`
	Operation  string    `json:"operation"`
	DurationMs float64   `json:"durationMs"`
	At         time.Time `json:"at"`
}

// routeMetrics aggregates timings for one method+route pair.
type routeMetrics struct {
	method    string
	route     string
	count     int64
	errors    int64
	total     time.Duration
	max       time.Duration
	durations []time.Duration
}

// RouteStats is the exported snapshot of a route's aggregate timings.
type RouteStats struct {
	Method string  `json:"method"`
	Route  string  `json:"route"`
	Count  int64   `json:"count"`
	Errors int64   `json:"errors"`
	AvgMs  float64 `json:"avgMs"`
	MaxMs  float64 `json:"maxMs"`
	P50Ms  float64 `json:"p50Ms"`
	P95Ms  float64 `json:"p95Ms"`
	P99Ms  float64 `json:"p99Ms"`
}

// MetricsSummary is the top-line view served by the metrics endpoints.
type MetricsSummary struct {
	UptimeSeconds float64 `json:"uptimeSeconds"`
	TotalRequests int64   `json:"totalRequests"`
	TotalErrors   int64   `json:"totalErrors"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
	Routes        int     `json:"routes"`
	SlowQueries   int     `json:"slowQueries"`
}

// MetricsCollector ingests request traces off the hot path. Traces are sent
// over a buffered channel and folded into per-route aggregates by a single
// background goroutine.
type MetricsCollector struct {
	mu        sync.RWMutex
	traces    []RequestTrace
	routes    map[string]*routeMetrics
	slow      []SlowQuery
	startedAt time.Time

	traceCh chan RequestTrace
	done    chan struct{}
}

// NewMetricsCollector starts the background processor.
func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		routes:    make(map[string]*routeMetrics),
		startedAt: time.Now(),
		traceCh:   make(chan RequestTrace, traceBuffer),
		done:      make(chan struct{}),
	}
	go m.processTraces()
	return m
}

// Stop terminates the background processor.
func (m *MetricsCollector) Stop() {
	close(m.done)
}

// RecordTrace hands a completed trace to the processor. Traces are dropped
// when the buffer is full rather than blocking the request.
func (m *MetricsCollector) RecordTrace(t RequestTrace) {
	select {
	case m.traceCh <- t:
	default:
	}
}

func (m *MetricsCollector) processTraces() {
	for {
		select {
		case t := <-m.traceCh:
			m.ingest(t)
		case <-m.done:
			return
		}
	}
}

func (m *MetricsCollector) ingest(t RequestTrace) {
	t.DurationMs = durationMs(t.Duration)
	for i := range t.Queries {
		t.Queries[i].DurationMs = durationMs(t.Queries[i].Duration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.traces = append(m.traces, t)
	if len(m.traces) > maxTraces {
		m.traces = m.traces[len(m.traces)-maxTraces:]
	}

	key := t.Method + " " + t.Route
	rm, ok := m.routes[key]
	if !ok {
		rm = &routeMetrics{method: t.Method, route: t.Route}
		m.routes[key] = rm
	}
	rm.count++
	if t.StatusCode >= 500 {
		rm.errors++
	}
	rm.total += t.Duration
	if t.Duration > rm.max {
		rm.max = t.Duration
	}
	rm.durations = append(rm.durations, t.Duration)
	if len(rm.durations) > maxDurations {
		rm.durations = rm.durations[len(rm.durations)-maxDurations:]
	}

	for _, q := range t.Queries {
		if q.Duration <= slowQueryAfter {
			continue
		}
		m.slow = append(m.slow, SlowQuery{
			Route:      t.Route,
			Collection: q.Collection,
			Operation:  q.Operation,
			DurationMs: q.DurationMs,
			At:         t.StartedAt,
		})
		if len(m.slow) > maxSlowQueries {
			m.slow = m.slow[len(m.slow)-maxSlowQueries:]
		}
	}
}

// GetSummary returns the top-line counters.
func (m *MetricsCollector) GetSummary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var requests, errors int64
	var total time.Duration
	for _, rm := range m.routes {
		requests += rm.count
		errors += rm.errors
		total += rm.total
	}
	s := MetricsSummary{
		UptimeSeconds: time.Since(m.startedAt).Seconds(),
		TotalRequests: requests,
		TotalErrors:   errors,
		Routes:        len(m.routes),
		SlowQueries:   len(m.slow),
	}
	if requests > 0 {
		s.AvgLatencyMs = durationMs(total) / float64(requests)
	}
	return s
}

// GetRouteMetrics returns per-route aggregates ordered by request count.
func (m *MetricsCollector) GetRouteMetrics() []RouteStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make([]RouteStats, 0, len(m.routes))
	for _, rm := range m.routes {
		stats = append(stats, rm.snapshot())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return stats
}

// GetSlowestRoutes returns up to n routes ordered by p95 latency.
func (m *MetricsCollector) GetSlowestRoutes(n int) []RouteStats {
	stats := m.GetRouteMetrics()
	sort.Slice(stats, func(i, j int) bool { return stats[i].P95Ms > stats[j].P95Ms })
	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// GetSlowQueries returns the captured slow queries, newest last.
func (m *MetricsCollector) GetSlowQueries() []SlowQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SlowQuery, len(m.slow))
	copy(out, m.slow)
	return out
}

// GetTraces returns up to n recent traces, newest last.
func (m *MetricsCollector) GetTraces(n int) []RequestTrace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	traces := m.traces
	if n > 0 && len(traces) > n {
		traces = traces[len(traces)-n:]
	}
	out := make([]RequestTrace, len(traces))
	copy(out, traces)
	return out
}

func (rm *routeMetrics) snapshot() RouteStats {
	s := RouteStats{
		Method: rm.method,
		Route:  rm.route,
		Count:  rm.count,
		Errors: rm.errors,
		MaxMs:  durationMs(rm.max),
	}
	if rm.count > 0 {
		s.AvgMs = durationMs(rm.total) / float64(rm.count)
	}
	if len(rm.durations) > 0 {
		sorted := make([]time.Duration, len(rm.durations))
		copy(sorted, rm.durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		s.P50Ms = durationMs(percentile(sorted, 50))
		s.P95Ms = durationMs(percentile(sorted, 95))
		s.P99Ms = durationMs(percentile(sorted, 99))
	}
	return s
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func durationMs(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// InitMetrics creates the process-wide collector. Safe to call more than once.
func InitMetrics() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

// GetMetrics returns the process-wide collector, nil before InitMetrics.
func GetMetrics() *MetricsCollector {
	return globalMetrics
}

type traceContextKey struct{}

// activeTrace accumulates query timings while a request is in flight.
type activeTrace struct {
	mu      sync.Mutex
	queries []DBQueryTrace
}

// WithRequestTrace attaches a query accumulator to the context.
func WithRequestTrace(ctx context.Context) context.Context {
	return context.WithValue(ctx, traceContextKey{}, &activeTrace{})
}

// RecordDBQueryFromContext records one store round trip against the request's
// trace. Requests without a trace (background jobs, the feed engine) only get
// the slow-query log line.
func RecordDBQueryFromContext(ctx context.Context, collection, operation string, duration time.Duration, err error) {
	if duration > slowQueryAfter {
		zap.S().Warnw("slow database query",
			"collection", collection,
			"operation", operation,
			"duration", duration,
		)
	}
	at, ok := ctx.Value(traceContextKey{}).(*activeTrace)
	if !ok {
		return
	}
	at.mu.Lock()
	at.queries = append(at.queries, DBQueryTrace{
		Collection: collection,
		Operation:  operation,
		Duration:   duration,
		Failed:     err != nil,
	})
	at.mu.Unlock()
}

func queriesFromContext(ctx context.Context) []DBQueryTrace {
	at, ok := ctx.Value(traceContextKey{}).(*activeTrace)
	if !ok {
		return nil
	}
	at.mu.Lock()
	defer at.mu.Unlock()
	out := make([]DBQueryTrace, len(at.queries))
	copy(out, at.queries)
	return out
}

var objectIDPathPattern = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)

// normalizeRoutePath collapses raw object ids so unmatched paths still group
// into one route.
func normalizeRoutePath(path string) string {
	return objectIDPathPattern.ReplaceAllString(path, "/{id}$1")
}
