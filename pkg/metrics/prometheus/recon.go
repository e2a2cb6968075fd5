// Package prometheus implements the metrics interfaces on the shared
// Prometheus registry.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/idrecon/pkg/metrics"
)

// reconMetrics is the Prometheus implementation of metrics.ReconMetrics.
type reconMetrics struct {
	consolidationDuration prometheus.Histogram
	consolidatedRows      prometheus.Gauge
	discrepancies         *prometheus.CounterVec
	ingestRecords         *prometheus.CounterVec
	syncDuration          *prometheus.HistogramVec
}

// NewReconMetrics creates a Prometheus-backed ReconMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewReconMetrics() metrics.ReconMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &reconMetrics{
		consolidationDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "idrecon_consolidation_duration_seconds",
				Help: "Duration of consolidation runs in seconds",
				Buckets: []float64{
					0.01, // small test sets
					0.05,
					0.1,
					0.5,
					1, // a few tens of thousands of records
					2.5,
					5,
					10,
				},
			},
		),
		consolidatedRows: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "idrecon_consolidated_rows",
				Help: "Number of rows produced by the last consolidation",
			},
		),
		discrepancies: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "idrecon_discrepancies_total",
				Help: "Consolidated rows flagged per discrepancy kind",
			},
			[]string{"kind"},
		),
		ingestRecords: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "idrecon_ingest_records_total",
				Help: "Records imported per source",
			},
			[]string{"source"},
		),
		syncDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "idrecon_sync_duration_seconds",
				Help: "Duration of LDAP directory syncs in seconds",
				Buckets: []float64{
					0.5,
					1,
					5,
					10,
					30,
					60,  // large forests
					120, // slow links
				},
			},
			[]string{"domain", "status"},
		),
	}
}

func (m *reconMetrics) ObserveConsolidation(duration time.Duration, rows int, discrepancies map[string]int) {
	if m == nil {
		return
	}

	m.consolidationDuration.Observe(duration.Seconds())
	m.consolidatedRows.Set(float64(rows))
	for kind, n := range discrepancies {
		if n > 0 {
			m.discrepancies.WithLabelValues(kind).Add(float64(n))
		}
	}
}

func (m *reconMetrics) RecordIngest(source string, records int) {
	if m == nil || records <= 0 {
		return
	}
	m.ingestRecords.WithLabelValues(source).Add(float64(records))
}

func (m *reconMetrics) ObserveSync(domain string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.syncDuration.WithLabelValues(domain, status(err)).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
