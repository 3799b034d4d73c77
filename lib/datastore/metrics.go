package datastore

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"sync"
)

// storeMetrics groups the counters of one DataStore. Without WithMetricsSet every
// datastore gets its own metrics.Set. Datastores sharing a set report aggregated
// values: the counters are shared and japi_records is the sum over all of them.
type storeMetrics struct {
	set         *metrics.Set
	cacheHits   *metrics.Counter
	cacheMisses *metrics.Counter
}

// recordGauges holds the record counters of all datastores per metrics set,
// since a set keeps the callback of the first GetOrCreateGauge call only.
var recordGauges = xsync.NewMapOf[*metrics.Set, *recordSources]()

type recordSources struct {
	mu      sync.Mutex
	sources []func() float64
}

func (r *recordSources) add(records func() float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, records)
}

func (r *recordSources) sum() float64 {
	r.mu.Lock()
	sources := r.sources
	r.mu.Unlock()

	total := 0.0
	for _, records := range sources {
		total += records()
	}
	return total
}

func newStoreMetrics(set *metrics.Set, records func() float64) *storeMetrics {
	if set == nil {
		set = metrics.NewSet()
	}
	m := &storeMetrics{
		set:         set,
		cacheHits:   set.GetOrCreateCounter("japi_cache_hits_total"),
		cacheMisses: set.GetOrCreateCounter("japi_cache_misses_total"),
	}

	sources, _ := recordGauges.LoadOrCompute(set, func() *recordSources {
		return &recordSources{}
	})
	sources.add(records)
	set.GetOrCreateGauge("japi_records", sources.sum)
	return m
}

// fetched counts a fetch of the given operation.
func (m *storeMetrics) fetched(op string) {
	m.set.GetOrCreateCounter(fmt.Sprintf("japi_fetch_total{op=%q}", op)).Inc()
}

// failed counts a failed operation (fetch or normalization).
func (m *storeMetrics) failed(op string) {
	m.set.GetOrCreateCounter(fmt.Sprintf("japi_fetch_errors_total{op=%q}", op)).Inc()
}

// WriteMetrics writes all metrics of the datastore in Prometheus text format.
func (ds *DataStore) WriteMetrics(w io.Writer) {
	ds.metrics.set.WritePrometheus(w)
}
