package node

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Execution metrics, registered lazily so embedding hosts that never call
// EnableMetrics pay nothing and keep their registry clean. The enabled
// flag is atomic; EnableMetrics may race with in-flight executions.
var (
	metricsOnce sync.Once
	metricsOn   atomic.Bool

	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ycnodes",
			Name:      "executions_total",
			Help:      "Node operation executions by node, operation and outcome.",
		},
		[]string{"node", "operation", "outcome"},
	)

	executionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ycnodes",
			Name:      "execution_duration_seconds",
			Help:      "Node operation duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"node", "operation"},
	)
)

// EnableMetrics registers the execution collectors with the given
// registerer. Passing nil uses the default prometheus registry. Safe to
// call more than once; only the first call registers.
func EnableMetrics(reg prometheus.Registerer) error {
	var err error
	metricsOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		if err = reg.Register(executionsTotal); err != nil {
			return
		}
		if err = reg.Register(executionDuration); err != nil {
			return
		}
		metricsOn.Store(true)
	})
	return err
}

func observeExecution(node, operation, outcome string, d time.Duration) {
	if !metricsOn.Load() {
		return
	}
	executionsTotal.WithLabelValues(node, operation, outcome).Inc()
	executionDuration.WithLabelValues(node, operation).Observe(d.Seconds())
}
