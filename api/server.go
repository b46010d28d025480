/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. Recoverer:     Panic recovery (500 instead of crash)
  3. requestLogger: Access log + Prometheus counters (middleware.go)
  4. CORS:          Cross-origin requests for a future frontend

ROUTE GROUPS:
  /health                  Liveness probe
  /metrics                 Prometheus exposition
  /api/v1/bookings/*       Ledger records
  /api/v1/import           CSV feed ingestion
  /api/v1/calendar         Daily revenue/occupancy figures
  /api/v1/occupancy        Single-day house state
  /api/v1/collections/*    Payment reconciliation
  /api/v1/alerts/*         Duplicate and overcrowding alerts
  /api/v1/notifications    Upcoming arrivals/departures digest

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public; the
  server is meant to sit on a private network behind the house router.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Operational endpoints
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Ledger records
		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", h.ListBookings)
			r.Post("/", h.CreateBooking)
			r.Get("/{id}", h.GetBooking)
			r.Put("/{id}", h.UpdateBooking)
			r.Delete("/{id}", h.DeleteBooking)
		})

		// Feed ingestion
		r.Post("/import", h.ImportCSV)

		// Derived reports
		r.Get("/calendar", h.Calendar)
		r.Get("/occupancy", h.Occupancy)

		r.Route("/collections", func(r chi.Router) {
			r.Get("/monthly", h.MonthlyCollections)
			r.Get("/weekly", h.WeeklyCollections)
			r.Get("/overdue", h.OverdueCollections)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/duplicates", h.DuplicateAlerts)
			r.Get("/overcrowding", h.OvercrowdingAlerts)
		})

		r.Get("/notifications", h.Notifications)
	})

	// Plain index so a browser hitting the root sees where the API lives.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Inn Ledger</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Inn Ledger API</h1>
<h2>Endpoints</h2>
<ul>
<li><a href="/api/v1/bookings">/api/v1/bookings</a> - Ledger records</li>
<li><a href="/api/v1/calendar">/api/v1/calendar</a> - Daily figures</li>
<li><a href="/api/v1/collections/monthly">/api/v1/collections/monthly</a> - Collection summaries</li>
<li><a href="/api/v1/alerts/duplicates">/api/v1/alerts/duplicates</a> - Duplicate alerts</li>
<li><a href="/api/v1/notifications">/api/v1/notifications</a> - Upcoming stays</li>
<li><a href="/metrics">/metrics</a> - Prometheus metrics</li>
</ul>
</body>
</html>`))
	})

	return r
}
