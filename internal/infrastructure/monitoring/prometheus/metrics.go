package prometheus

// PipelineMetrics holds the conversion-stream metric set.  Labels:
// "format" on stream-level metrics, "reason" on skips, "operation" on
// external-tool calls.
type PipelineMetrics struct {
	RecordsTotal      CounterVec
	GraphsEmitted     CounterVec
	RecordsSkipped    CounterVec
	ToolCallsTotal    CounterVec
	ToolCallDuration  HistogramVec
	CacheHitsTotal    CounterVec
	CacheMissesTotal  CounterVec
	GraphBuildSeconds HistogramVec
}

// DefaultToolDurationBuckets covers subprocess round trips: conformer
// generation on large molecules can run for minutes.
var DefaultToolDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// NewPipelineMetrics registers the conversion-stream metric set.
func NewPipelineMetrics(collector MetricsCollector) *PipelineMetrics {
	return &PipelineMetrics{
		RecordsTotal:      collector.RegisterCounter("records_total", "Input records read", "format"),
		GraphsEmitted:     collector.RegisterCounter("graphs_emitted_total", "Graphs emitted downstream", "format"),
		RecordsSkipped:    collector.RegisterCounter("records_skipped_total", "Records dropped before emission", "format", "reason"),
		ToolCallsTotal:    collector.RegisterCounter("tool_calls_total", "External tool invocations", "operation"),
		ToolCallDuration:  collector.RegisterHistogram("tool_call_duration_seconds", "External tool call latency", DefaultToolDurationBuckets, "operation"),
		CacheHitsTotal:    collector.RegisterCounter("conversion_cache_hits_total", "Conversion cache hits"),
		CacheMissesTotal:  collector.RegisterCounter("conversion_cache_misses_total", "Conversion cache misses"),
		GraphBuildSeconds: collector.RegisterHistogram("graph_build_duration_seconds", "Per-molecule graph build latency", nil, "method"),
	}
}

// NewNopPipelineMetrics returns a metric set whose every instrument is a
// no-op, for callers that run without a registry.
func NewNopPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		RecordsTotal:      noopCounterVec{},
		GraphsEmitted:     noopCounterVec{},
		RecordsSkipped:    noopCounterVec{},
		ToolCallsTotal:    noopCounterVec{},
		ToolCallDuration:  noopHistogramVec{},
		CacheHitsTotal:    noopCounterVec{},
		CacheMissesTotal:  noopCounterVec{},
		GraphBuildSeconds: noopHistogramVec{},
	}
}
