// internal/app/middleware.go
package app

import (
	"net/http"
	"strconv"
	"time"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// accessLog logs each request and records its latency by route pattern.
func accessLog(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(duration.Seconds())

		if route == "GET /metrics" || route == "GET /health" {
			return
		}
		log.Info("http request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"route":      route,
			"status":     rec.status,
			"durationMs": duration.Milliseconds(),
		})
	})
}
