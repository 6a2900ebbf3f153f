package metrics

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	switch {
	case out.Counter != nil:
		return out.GetCounter().GetValue()
	case out.Gauge != nil:
		return out.GetGauge().GetValue()
	case out.Histogram != nil:
		return float64(out.GetHistogram().GetSampleCount())
	}
	return 0
}

func TestCollector_IsolatedRegistries(t *testing.T) {
	// Two collectors on separate registries must not panic on duplicate names.
	a := NewCollectorWithRegistry("telemetry", prometheus.NewRegistry())
	b := NewCollectorWithRegistry("telemetry", prometheus.NewRegistry())

	a.RecordSync("latest", "ok")
	assert.Equal(t, 1.0, value(t, a.SyncResultsTotal.WithLabelValues("latest", "ok")))
	assert.Equal(t, 0.0, value(t, b.SyncResultsTotal.WithLabelValues("latest", "ok")))
}

func TestCollector_Recorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectorWithRegistry("telemetry", reg)

	c.RecordAPIRequest("/api/stations", "GET", "200")
	c.RecordAPIError("validation", "/api/stations")
	c.RecordUpstream("latest", "ok", 20*time.Millisecond)
	c.RecordDegraded("history")
	c.RecordDBError("exec_error")
	c.UpdateDBConnectionPool(2, 3, 5)
	c.CatalogCacheHits.Inc()

	assert.Equal(t, 1.0, value(t, c.APIRequestsTotal.WithLabelValues("/api/stations", "GET", "200")))
	assert.Equal(t, 1.0, value(t, c.APIErrorsTotal.WithLabelValues("validation", "/api/stations")))
	assert.Equal(t, 1.0, value(t, c.UpstreamRequestsTotal.WithLabelValues("latest", "ok")))
	assert.Equal(t, 1.0, value(t, c.DegradedResponsesTotal.WithLabelValues("history")))
	assert.Equal(t, 1.0, value(t, c.DBErrorsTotal.WithLabelValues("exec_error")))
	assert.Equal(t, 5.0, value(t, c.DBConnectionPool.WithLabelValues("total")))
	assert.Equal(t, 1.0, value(t, c.CatalogCacheHits))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := NewCollectorWithRegistry("telemetry", prometheus.NewRegistry())
	clock := clockwork.NewFakeClock()
	timer := c.NewTimer(clock, c.SyncBatchDuration)
	clock.Advance(1500 * time.Millisecond)

	d := timer.ObserveDuration()
	assert.Equal(t, 1500*time.Millisecond, d)
	assert.Equal(t, 1.0, value(t, c.SyncBatchDuration))

	var out dto.Metric
	require.NoError(t, c.SyncBatchDuration.Write(&out))
	assert.InDelta(t, 1.5, out.GetHistogram().GetSampleSum(), 1e-9)
}
