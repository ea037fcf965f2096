package prometheus

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "testns", Subsystem: "pipeline"}, nil)
	require.NoError(t, err)
	return c
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestCounterAppearsInHandlerOutput(t *testing.T) {
	c := newTestCollector(t)
	counter := c.RegisterCounter("records_total", "Records processed.", "format")
	counter.WithLabelValues("sdf").Inc()
	counter.WithLabelValues("sdf").Add(2)

	body := scrape(t, c)
	assert.Contains(t, body, `testns_pipeline_records_total{format="sdf"} 3`)
}

func TestGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)

	gauge := c.RegisterGauge("active_runs", "Active runs.")
	gauge.WithLabelValues().Set(5)
	gauge.WithLabelValues().Inc()
	gauge.WithLabelValues().Dec()

	hist := c.RegisterHistogram("build_seconds", "Build time.", []float64{0.1, 1, 10}, "method")
	hist.WithLabelValues("metric").Observe(0.5)

	body := scrape(t, c)
	assert.Contains(t, body, "testns_pipeline_active_runs 5")
	assert.Contains(t, body, `testns_pipeline_build_seconds_count{method="metric"} 1`)
	assert.Contains(t, body, `testns_pipeline_build_seconds_bucket{method="metric",le="10"} 1`)
}

func TestRegisterDeduplicates(t *testing.T) {
	c := newTestCollector(t)
	first := c.RegisterCounter("dup_total", "Duplicate.", "k")
	second := c.RegisterCounter("dup_total", "Duplicate.", "k")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Inc()

	body := scrape(t, c)
	assert.Contains(t, body, `testns_pipeline_dup_total{k="a"} 2`)
}

func TestTimerObservesIntoHistogram(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("timed_seconds", "Timed.", nil)

	timer := NewTimer(hist.WithLabelValues())
	timer.ObserveDuration()

	body := scrape(t, c)
	assert.Contains(t, body, "testns_pipeline_timed_seconds_count 1")
}

func TestTimerNilHistogram(t *testing.T) {
	assert.NotPanics(t, func() {
		NewTimer(nil).ObserveDuration()
	})
}

func TestNewPipelineMetrics(t *testing.T) {
	c := newTestCollector(t)
	m := NewPipelineMetrics(c)

	m.RecordsTotal.WithLabelValues("sdf").Inc()
	m.GraphsEmitted.WithLabelValues("sdf").Inc()
	m.RecordsSkipped.WithLabelValues("smi", "malformed_smiles").Inc()
	m.ToolCallsTotal.WithLabelValues("convert_smiles").Inc()
	m.ToolCallDuration.WithLabelValues("convert_smiles").Observe(0.2)
	m.CacheHitsTotal.WithLabelValues().Inc()
	m.CacheMissesTotal.WithLabelValues().Inc()
	m.GraphBuildSeconds.WithLabelValues("metric").Observe(0.01)

	body := scrape(t, c)
	assert.Contains(t, body, "records_total")
	assert.Contains(t, body, "graphs_emitted_total")
	assert.Contains(t, body, "records_skipped_total")
	assert.Contains(t, body, "conversion_cache_hits_total")
}

func TestNopPipelineMetrics(t *testing.T) {
	m := NewNopPipelineMetrics()
	assert.NotPanics(t, func() {
		m.RecordsTotal.WithLabelValues("sdf").Inc()
		m.GraphBuildSeconds.WithLabelValues("metric").Observe(1)
		m.CacheHitsTotal.WithLabelValues().Inc()
	})
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}
