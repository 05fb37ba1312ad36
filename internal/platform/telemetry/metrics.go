package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/goroku-app/goroku/telemetry"
)

// Metrics holds generation pipeline metrics.
type Metrics struct {
	generationDuration metric.Float64Histogram
	generationTotal    metric.Int64Counter
	activeGenerations  metric.Int64UpDownCounter
}

// NewMetrics creates generation pipeline metrics on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	generationDuration, err := meter.Float64Histogram(
		"generation.duration",
		metric.WithDescription("Generation request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	generationTotal, err := meter.Int64Counter(
		"generation.total",
		metric.WithDescription("Total number of generation requests"),
	)
	if err != nil {
		return nil, err
	}

	activeGenerations, err := meter.Int64UpDownCounter(
		"generation.active",
		metric.WithDescription("Number of in-flight generation requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		generationDuration: generationDuration,
		generationTotal:    generationTotal,
		activeGenerations:  activeGenerations,
	}, nil
}

// GenerationStarted records the start of a generation request and returns a
// func that records its completion with the final outcome label, one of
// "ok", "rate_limited", "upstream", "invalid", "store", "validation".
func (m *Metrics) GenerationStarted(ctx context.Context) func(outcome string) {
	if m == nil {
		return func(string) {}
	}

	start := time.Now()
	m.activeGenerations.Add(ctx, 1)

	return func(outcome string) {
		m.activeGenerations.Add(ctx, -1)

		attrs := metric.WithAttributes(attribute.String("outcome", outcome))
		m.generationDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		m.generationTotal.Add(ctx, 1, attrs)
	}
}
