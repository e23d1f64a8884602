package areacodes

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load kinds used as the "kind" label.
const (
	loadKindAll     = "all"
	loadKindCountry = "country"
)

// Metrics provides observability for dataset loading and the catalog caches.
type Metrics struct {
	SourceLoads   *prometheus.CounterVec   // physical loads by kind and outcome
	LoadDuration  *prometheus.HistogramVec // physical load latency by kind
	CacheLookups  *prometheus.CounterVec   // cache hits/misses by cache
	RecordsLoaded prometheus.Gauge         // records in the last successful full load
}

// NewMetrics creates the catalog metrics and registers them with reg.
// A nil reg creates unregistered collectors, which is convenient in tests
// that want isolated counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SourceLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "areacodes_source_loads_total",
			Help: "Total number of physical dataset loads, by kind (all, country) and outcome",
		}, []string{"kind", "outcome"}),
		LoadDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "areacodes_load_duration_seconds",
			Help:    "Duration of physical dataset loads",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "areacodes_cache_lookups_total",
			Help: "Catalog cache lookups, by cache (all, country) and result (hit, miss)",
		}, []string{"cache", "result"}),
		RecordsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "areacodes_records_loaded",
			Help: "Number of records in the most recent successful full load",
		}),
	}
}

// ObserveLoad records a physical load of the given kind.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveLoad(kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.SourceLoads.WithLabelValues(kind, outcome).Inc()
	m.LoadDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

// SetRecordsLoaded records the size of a freshly published full dataset.
func (m *Metrics) SetRecordsLoaded(n int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.Set(float64(n))
}
