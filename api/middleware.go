package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// requestLogger logs one access line per request and drives the Prometheus
// request counter and latency histogram. Metrics are labelled with the chi
// route pattern, not the raw path, so /api/v1/bookings/{id} stays one series
// no matter how many IDs pass through it.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		var traceID string
		if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
			traceID = " trace=" + sc.TraceID().String()
		}

		log.Printf("[API] %s %s -> %d (%s)%s", r.Method, r.URL.Path, status, time.Since(start), traceID)

		httpRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}
