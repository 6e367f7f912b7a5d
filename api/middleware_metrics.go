package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const slowRequestAfter = 1 * time.Second

// metricsResponseWriter captures the status code written by the handler. It
// forwards Hijack so the livestream feed socket can still upgrade behind the
// middleware.
type metricsResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (w *metricsResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MetricsMiddleware traces every request into the collector. The health check
// and the metrics endpoints themselves are not traced.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetMetrics() == nil || r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/api/v1/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		requestID := uuid.New().String()
		ctx := WithRequestTrace(r.Context())
		mw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(mw, r.WithContext(ctx))

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		trace := RequestTrace{
			RequestID:  requestID,
			Method:     r.Method,
			Route:      normalizeRoutePath(route),
			StatusCode: mw.status,
			StartedAt:  start,
			Duration:   time.Since(start),
			Queries:    queriesFromContext(ctx),
		}
		GetMetrics().RecordTrace(trace)

		if trace.Duration > slowRequestAfter {
			zap.S().Warnw("Slow request",
				"requestId", requestID,
				"method", trace.Method,
				"route", trace.Route,
				"status", trace.StatusCode,
				"duration", trace.Duration,
			)
		}
	})
}
