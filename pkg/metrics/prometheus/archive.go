package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/idrecon/pkg/metrics"
)

type archiveMetrics struct {
	uploads        *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
	archivedBytes  *prometheus.CounterVec
}

// NewArchiveMetrics returns nil unless the registry was initialized.
func NewArchiveMetrics() metrics.ArchiveMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	f := promauto.With(metrics.GetRegistry())

	return &archiveMetrics{
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idrecon_archive_uploads_total",
			Help: "Reports uploaded to the archive bucket by format and outcome",
		}, []string{"format", "status"}),
		uploadDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "idrecon_archive_upload_duration_seconds",
			Help: "Duration of report uploads in seconds",
			// workbooks of a few MB over a WAN link
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30},
		}, []string{"format"}),
		archivedBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idrecon_archive_bytes_total",
			Help: "Bytes of reports stored in the archive bucket",
		}, []string{"format"}),
	}
}

func (m *archiveMetrics) ObserveUpload(format string, size int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(format, status(err)).Inc()
	m.uploadDuration.WithLabelValues(format).Observe(duration.Seconds())
	if err == nil && size > 0 {
		m.archivedBytes.WithLabelValues(format).Add(float64(size))
	}
}
