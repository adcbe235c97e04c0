package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics holds engine-level collectors shared across services.
type DomainMetrics struct {
	ComposeRequestsTotal     *prometheus.CounterVec
	DelegateCallsTotal       *prometheus.CounterVec
	DelegateLatency          prometheus.Histogram
	DataQualityWarningsTotal *prometheus.CounterVec
	SnapshotTruncatedTotal   prometheus.Counter
	SnapshotRebuildsTotal    prometheus.Counter
}

var (
	domainOnce    sync.Once
	domainMetrics *DomainMetrics
)

// MustRegisterDomainMetrics registers the domain collectors once and returns them.
// Subsequent calls return the same instance regardless of registerer.
func MustRegisterDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	domainOnce.Do(func() {
		m := &DomainMetrics{
			ComposeRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "compose_requests_total",
				Help: "Order composition requests by source and outcome.",
			}, []string{"source", "result"}),
			DelegateCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "intent_delegate_calls_total",
				Help: "Intent delegate invocations by result.",
			}, []string{"result"}),
			DelegateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "intent_delegate_latency_ms",
				Help:    "Intent delegate round trip latency in milliseconds.",
				Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000},
			}),
			DataQualityWarningsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "catalog_data_quality_warnings_total",
				Help: "Catalog data quality warnings by kind.",
			}, []string{"kind"}),
			SnapshotTruncatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "catalog_snapshot_truncated_total",
				Help: "Snapshot builds that exceeded the item cap.",
			}),
			SnapshotRebuildsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "catalog_snapshot_rebuilds_total",
				Help: "Snapshot rebuilds performed.",
			}),
		}
		mustRegister(reg,
			m.ComposeRequestsTotal,
			m.DelegateCallsTotal,
			m.DelegateLatency,
			m.DataQualityWarningsTotal,
			m.SnapshotTruncatedTotal,
			m.SnapshotRebuildsTotal,
		)
		domainMetrics = m
	})
	return domainMetrics
}

// ObserveCompose records a composition request outcome. Nil safe.
func (m *DomainMetrics) ObserveCompose(source, result string) {
	if m == nil {
		return
	}
	m.ComposeRequestsTotal.WithLabelValues(source, result).Inc()
}

// ObserveDelegate records a delegate call result and latency. Nil safe.
func (m *DomainMetrics) ObserveDelegate(result string, latencyMs float64) {
	if m == nil {
		return
	}
	m.DelegateCallsTotal.WithLabelValues(result).Inc()
	m.DelegateLatency.Observe(latencyMs)
}

// ObserveWarning records a data quality warning by kind. Nil safe.
func (m *DomainMetrics) ObserveWarning(kind string) {
	if m == nil {
		return
	}
	m.DataQualityWarningsTotal.WithLabelValues(kind).Inc()
}

// ObserveSnapshotRebuild records a snapshot rebuild, truncated or not. Nil safe.
func (m *DomainMetrics) ObserveSnapshotRebuild(truncated bool) {
	if m == nil {
		return
	}
	m.SnapshotRebuildsTotal.Inc()
	if truncated {
		m.SnapshotTruncatedTotal.Inc()
	}
}
