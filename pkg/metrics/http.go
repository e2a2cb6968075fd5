package metrics

import "time"

// HTTPMetrics observes API requests.
type HTTPMetrics interface {
	// RecordRequest records a completed request by route pattern and status
	// code.
	RecordRequest(route string, status int, duration time.Duration)
}
