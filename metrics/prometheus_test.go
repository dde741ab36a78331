package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProvider_Instruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg)

	c := p.Counter("handoff_items_pushed_total", WithDescription("items pushed"))
	c.Add(2)
	c.Add(-1)
	p.Counter("handoff_items_pushed_total").Add(1)

	g := p.UpDownCounter("handoff_queue_length", WithAttributes(map[string]string{"queue": "main"}))
	g.Add(5)
	g.Add(-2)

	p.Histogram("handoff_run_seconds").Record(0.25)

	require.Equal(t, 3.0, testutil.ToFloat64(c.(promCounter).c))
	require.Equal(t, 3.0, testutil.ToFloat64(g.(promGauge).g))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestPrometheusProvider_ReusesCollector(t *testing.T) {
	p := NewPrometheusProvider(prometheus.NewRegistry())

	require.NotPanics(t, func() {
		p.Counter("dup")
		p.Counter("dup")
		p.UpDownCounter("dup_gauge")
		p.UpDownCounter("dup_gauge")
		p.Histogram("dup_hist")
		p.Histogram("dup_hist")
	})
}
