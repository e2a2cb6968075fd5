package metrics

import "time"

// ReconMetrics observes reconciliation work.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewReconMetrics()
//	svc := reconciler.New(store, reconciler.Options{Metrics: m})
//
//	// Without metrics
//	svc := reconciler.New(store, reconciler.Options{})
type ReconMetrics interface {
	// ObserveConsolidation records one consolidation run, its row count and
	// the number of rows per discrepancy kind.
	ObserveConsolidation(duration time.Duration, rows int, discrepancies map[string]int)

	// RecordIngest records records imported from a source ("directory",
	// "mfa", "hr").
	RecordIngest(source string, records int)

	// ObserveSync records one directory sync of a domain.
	ObserveSync(domain string, duration time.Duration, err error)
}

// ObserveConsolidation forwards to m when it is not nil.
func ObserveConsolidation(m ReconMetrics, duration time.Duration, rows int, discrepancies map[string]int) {
	if m != nil {
		m.ObserveConsolidation(duration, rows, discrepancies)
	}
}

// RecordIngest forwards to m when it is not nil.
func RecordIngest(m ReconMetrics, source string, records int) {
	if m != nil {
		m.RecordIngest(source, records)
	}
}

// ObserveSync forwards to m when it is not nil.
func ObserveSync(m ReconMetrics, domain string, duration time.Duration, err error) {
	if m != nil {
		m.ObserveSync(domain, duration, err)
	}
}
