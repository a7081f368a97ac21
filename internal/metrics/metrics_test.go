package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"commute-route-service/internal/metrics"
)

func TestRegister_SchedulerAndWorker(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s := metrics.NewScheduler()
	w := metrics.NewWorker()

	require.NoError(t, metrics.Register(reg, s.Collectors()...))
	require.NoError(t, metrics.Register(reg, w.Collectors()...))

	s.RequestsPublished.Inc()
	w.DeadLettered.WithLabelValues("resolve").Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(s.RequestsPublished))
	require.Equal(t, 1.0, testutil.ToFloat64(w.DeadLettered.WithLabelValues("resolve")))
}

func TestRegister_AlreadyRegisteredIsTolerated(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s := metrics.NewScheduler()

	require.NoError(t, metrics.Register(reg, s.Collectors()...))
	require.NoError(t, metrics.Register(reg, s.Collectors()...))
}
