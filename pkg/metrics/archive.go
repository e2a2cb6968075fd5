package metrics

import "time"

// ArchiveMetrics observes report uploads to the archive bucket.
type ArchiveMetrics interface {
	// ObserveUpload records one upload of a report in format ("xlsx",
	// "csv"). size is only counted when err is nil.
	ObserveUpload(format string, size int, duration time.Duration, err error)
}

// ObserveUpload forwards to m when it is not nil.
func ObserveUpload(m ArchiveMetrics, format string, size int, duration time.Duration, err error) {
	if m != nil {
		m.ObserveUpload(format, size, duration, err)
	}
}
