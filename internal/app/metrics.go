package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromMetrics holds the Prometheus metrics exposed on the ops listener.
type PromMetrics struct {
	GenerationRequests prometheus.Counter
	GenerationLatency  prometheus.Histogram
	GenerationErrors   *prometheus.CounterVec
	RateLimited        *prometheus.CounterVec
	LineupRefreshes    prometheus.Counter
}

// NewPromMetrics registers and returns the application metrics.
func NewPromMetrics() *PromMetrics {
	return &PromMetrics{
		GenerationRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goroku_generation_requests_total",
			Help: "Total number of generation requests processed",
		}),

		GenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "goroku_generation_duration_seconds",
			Help:    "Generation request latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		GenerationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "goroku_generation_errors_total",
			Help: "Total number of generation failures by kind",
		}, []string{"kind"}),

		RateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "goroku_rate_limited_total",
			Help: "Total number of rate-limited requests by scope",
		}, []string{"scope"}),

		LineupRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goroku_lineup_refreshes_total",
			Help: "Total number of daily lineup recomputations",
		}),
	}
}
