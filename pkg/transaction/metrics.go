// pkg/transaction/metrics.go
package transaction

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	successCounter    prometheus.Counter
	failureCounter    prometheus.Counter
	durationHistogram prometheus.Histogram
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics returns the process-wide transaction metrics. Collectors are
// registered exactly once; Manager and Monitor share the same instance.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		successCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solana_tx_success_total",
			Help: "Total number of successful transactions",
		})
		failureCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solana_tx_failure_total",
			Help: "Total number of failed transactions",
		})
		durationHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solana_tx_duration_seconds",
			Help:    "Transaction duration in seconds",
			Buckets: prometheus.LinearBuckets(0, 0.1, 10),
		})

		prometheus.MustRegister(successCounter, failureCounter, durationHistogram)

		sharedMetrics = &Metrics{
			successCounter:    successCounter,
			failureCounter:    failureCounter,
			durationHistogram: durationHistogram,
		}
	})
	return sharedMetrics
}

func (tm *Metrics) RecordSuccess() {
	tm.successCounter.Inc()
}

func (tm *Metrics) RecordFailure() {
	tm.failureCounter.Inc()
}

func (tm *Metrics) TrackTransaction(start time.Time) {
	tm.durationHistogram.Observe(time.Since(start).Seconds())
}
