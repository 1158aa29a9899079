package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("dashboard:warmup").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("dashboard:warmup").End(boom), boom)

	families := gather(t, reg)
	runs := families["shelf_jobs_total"]
	require.NotNil(t, runs)
	require.Len(t, runs.GetMetric(), 2)
	failures := families["shelf_jobs_failures_total"]
	require.NotNil(t, failures)
	require.Equal(t, 1.0, failures.GetMetric()[0].GetCounter().GetValue())
	require.NotNil(t, families["shelf_job_duration_seconds"])
}

func TestAddWarmed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.AddWarmed("sales.weekly", 3)
	m.AddWarmed("sales.weekly", 0)

	warmed := gather(t, reg)["shelf_dashboard_queries_warmed_total"]
	require.NotNil(t, warmed)
	require.Equal(t, 3.0, warmed.GetMetric()[0].GetCounter().GetValue())
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.AddWarmed("products", 1)
	require.NoError(t, m.Track("x").End(nil))
}
