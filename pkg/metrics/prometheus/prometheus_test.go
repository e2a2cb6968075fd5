package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/idrecon/pkg/metrics"
)

func enable(t *testing.T) {
	t.Helper()
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)
}

func TestDisabledReturnsNil(t *testing.T) {
	metrics.Reset()
	assert.Nil(t, NewReconMetrics())
	assert.Nil(t, NewHTTPMetrics())
	assert.Nil(t, NewArchiveMetrics())

	// helpers accept nil implementations
	metrics.ObserveConsolidation(nil, time.Second, 1, nil)
	metrics.RecordIngest(nil, "hr", 1)
	metrics.ObserveSync(nil, "izhevsk", time.Second, nil)
	metrics.ObserveUpload(nil, "csv", 1, time.Second, nil)
}

func TestReconMetrics(t *testing.T) {
	enable(t)
	m := NewReconMetrics()
	require.NotNil(t, m)
	rm := m.(*reconMetrics)

	m.ObserveConsolidation(200*time.Millisecond, 42, map[string]int{"no_mfa": 3, "no_hr": 0})
	m.ObserveConsolidation(100*time.Millisecond, 40, map[string]int{"no_mfa": 2})
	assert.Equal(t, float64(40), testutil.ToFloat64(rm.consolidatedRows))
	assert.Equal(t, float64(5), testutil.ToFloat64(rm.discrepancies.WithLabelValues("no_mfa")))
	assert.Equal(t, 1, testutil.CollectAndCount(rm.discrepancies), "zero counts create no series")

	m.RecordIngest("directory", 10)
	m.RecordIngest("directory", 0)
	assert.Equal(t, float64(10), testutil.ToFloat64(rm.ingestRecords.WithLabelValues("directory")))

	m.ObserveSync("izhevsk", time.Second, nil)
	m.ObserveSync("izhevsk", time.Second, errors.New("bind failed"))
	assert.Equal(t, 2, testutil.CollectAndCount(rm.syncDuration))
}

func TestHTTPMetrics(t *testing.T) {
	enable(t)
	m := NewHTTPMetrics()
	require.NotNil(t, m)
	hm := m.(*httpMetrics)

	m.RecordRequest("/api/v1/stats", 200, time.Millisecond)
	m.RecordRequest("/api/v1/stats", 200, time.Millisecond)
	m.RecordRequest("", 404, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(hm.requestsTotal.WithLabelValues("/api/v1/stats", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(hm.requestsTotal.WithLabelValues("unmatched", "404")))
}

func TestArchiveMetrics(t *testing.T) {
	enable(t)
	m := NewArchiveMetrics()
	require.NotNil(t, m)
	am := m.(*archiveMetrics)

	m.ObserveUpload("xlsx", 2048, 20*time.Millisecond, nil)
	m.ObserveUpload("xlsx", 4096, 20*time.Millisecond, errors.New("access denied"))
	m.ObserveUpload("csv", 0, time.Millisecond, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(am.uploads.WithLabelValues("xlsx", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(am.uploads.WithLabelValues("csv", "success")))
	assert.Equal(t, float64(2048), testutil.ToFloat64(am.archivedBytes.WithLabelValues("xlsx")), "failed uploads are not counted")
	assert.Equal(t, 1, testutil.CollectAndCount(am.archivedBytes))
}
