package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "innledger_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "innledger_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "path"})

	bookingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "innledger_bookings_ingested_total",
		Help: "Bookings accepted through the API or CSV import, by outcome",
	}, []string{"outcome"})

	digestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "innledger_digest_runs_total",
		Help: "Daily digest deliveries, by outcome",
	}, []string{"outcome"})
)

const (
	outcomeStored    = "stored"
	outcomeFlagged   = "flagged"
	outcomeDuplicate = "duplicate"
	outcomeRejected  = "rejected"

	outcomeSent   = "sent"
	outcomeEmpty  = "empty"
	outcomeFailed = "failed"
)
