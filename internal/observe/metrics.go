// Package observe holds the OpenTelemetry metric instruments for the
// word-chain server and the Prometheus bridge that exposes them on /metrics.
//
// Tests should build their own [Metrics] with [NewMetrics] and a
// ManualReader-backed MeterProvider instead of using [DefaultMetrics].
package observe

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/robalobadob/wordchain"

// Metrics holds all metric instruments. Safe for concurrent use.
type Metrics struct {
	// WordsSubmitted counts submitted moves. Attributes: result, reason.
	WordsSubmitted metric.Int64Counter

	// PuzzleGenerations counts generation attempts. Attribute: outcome.
	PuzzleGenerations metric.Int64Counter

	// PuzzleGenerationDuration tracks one full generation call.
	PuzzleGenerationDuration metric.Float64Histogram

	// ActiveGames tracks games started but not finished.
	ActiveGames metric.Int64UpDownCounter

	// HTTPRequestDuration tracks request latency. Attributes: method, route, status.
	HTTPRequestDuration metric.Float64Histogram
}

var generationBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates every instrument on mp's meter.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.WordsSubmitted, err = m.Int64Counter("wordchain.words.submitted",
		metric.WithDescription("Submitted words by result and rejection reason."),
	); err != nil {
		return nil, err
	}
	if met.PuzzleGenerations, err = m.Int64Counter("wordchain.puzzle.generations",
		metric.WithDescription("Puzzle generation attempts by outcome."),
	); err != nil {
		return nil, err
	}
	if met.PuzzleGenerationDuration, err = m.Float64Histogram("wordchain.puzzle.generation.duration",
		metric.WithDescription("Latency of one puzzle generation call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(generationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveGames, err = m.Int64UpDownCounter("wordchain.active_games",
		metric.WithDescription("Games started and not yet finished."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("wordchain.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level instance built on the global
// MeterProvider. Panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordWord counts one submitted word. reason is empty for accepted words.
func (m *Metrics) RecordWord(ctx context.Context, accepted bool, reason string) {
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	m.WordsSubmitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
		attribute.String("reason", reason),
	))
}

// RecordGeneration counts one generation call and its latency.
func (m *Metrics) RecordGeneration(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.PuzzleGenerations.Add(ctx, 1, attrs)
	m.PuzzleGenerationDuration.Record(ctx, d.Seconds(), attrs)
}

// Middleware records request latency keyed by the matched chi route pattern.
func Middleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequestDuration.Record(r.Context(), time.Since(start).Seconds(),
				metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.String("route", route),
					attribute.Int("status", status),
				),
			)
		})
	}
}
