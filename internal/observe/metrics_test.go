package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumInt(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: data is %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordWord(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordWord(ctx, true, "")
	m.RecordWord(ctx, true, "")
	m.RecordWord(ctx, false, "unknown_word")

	got := findMetric(collect(t, reader), "wordchain.words.submitted")
	if got == nil {
		t.Fatal("metric not found")
	}
	if n := sumInt(t, got); n != 3 {
		t.Fatalf("total = %d, want 3", n)
	}
	if pts := len(got.Data.(metricdata.Sum[int64]).DataPoints); pts != 2 {
		t.Fatalf("data points = %d, want 2 attribute sets", pts)
	}
}

func TestRecordGeneration(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordGeneration(context.Background(), "ready", 120*time.Millisecond)

	rm := collect(t, reader)
	if c := findMetric(rm, "wordchain.puzzle.generations"); c == nil || sumInt(t, c) != 1 {
		t.Fatal("generation counter not recorded")
	}
	h := findMetric(rm, "wordchain.puzzle.generation.duration")
	if h == nil {
		t.Fatal("duration histogram not found")
	}
	hist, ok := h.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Fatalf("histogram = %+v", h.Data)
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m, reader := newTestMetrics(t)
	r := chi.NewRouter()
	r.Use(Middleware(m))
	r.Get("/words/{word}/next", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/words/puzzle/next", nil))

	h := findMetric(collect(t, reader), "wordchain.http.request.duration")
	if h == nil {
		t.Fatal("http histogram not found")
	}
	dp := h.Data.(metricdata.Histogram[float64]).DataPoints[0]
	if v, _ := dp.Attributes.Value("route"); v.AsString() != "/words/{word}/next" {
		t.Errorf("route = %q", v.AsString())
	}
	if v, _ := dp.Attributes.Value("status"); v.AsInt64() != http.StatusTeapot {
		t.Errorf("status = %d", v.AsInt64())
	}
}
