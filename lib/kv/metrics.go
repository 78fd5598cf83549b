package kv

import (
	"io"

	"github.com/ValentinKolb/bufkv/lib/buffer"
	"github.com/VictoriaMetrics/metrics"
)

// storeMetrics holds the Prometheus-style counters and histograms for one
// Store. Each Store gets its own metrics.Set rather than registering into
// the global default set, so that multiple Stores (as in tests) never
// collide on metric names.
type storeMetrics struct {
	set *metrics.Set

	cacheHits   *metrics.Counter
	cacheMisses *metrics.Counter
	flushTotal  *metrics.Counter
	flushErrors *metrics.Counter
	flushDur    *metrics.Histogram
	bufferLen   *metrics.Gauge
}

func newStoreMetrics(buf *buffer.Buffer) *storeMetrics {
	set := metrics.NewSet()
	m := &storeMetrics{
		set:         set,
		cacheHits:   set.NewCounter(`bufkv_cache_hits_total`),
		cacheMisses: set.NewCounter(`bufkv_cache_misses_total`),
		flushTotal:  set.NewCounter(`bufkv_flush_total`),
		flushErrors: set.NewCounter(`bufkv_flush_errors_total`),
		flushDur:    set.NewHistogram(`bufkv_flush_duration_seconds`),
	}
	m.bufferLen = set.NewGauge(`bufkv_buffer_entries`, func() float64 {
		return float64(buf.Len())
	})
	return m
}

// WritePrometheus writes this Store's metrics in Prometheus exposition
// format to w, for callers that want to expose bufkv's counters alongside
// their own (e.g. on an HTTP /metrics handler).
func (s *Store) WritePrometheus(w io.Writer) {
	s.metrics.set.WritePrometheus(w)
}
