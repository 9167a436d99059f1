package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	blocksExecuted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taiko_executor",
		Name:      "blocks_executed_total",
		Help:      "Number of blocks successfully executed.",
	})
	blocksFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taiko_executor",
		Name:      "blocks_failed_total",
		Help:      "Number of blocks that aborted with a fatal error, by kind.",
	}, []string{"kind"})
	transactionsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taiko_executor",
		Name:      "transactions_skipped_total",
		Help:      "Number of transactions recorded in a block's skipped-index list.",
	})
	executionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "taiko_executor",
		Name:      "execution_duration_seconds",
		Help:      "Wall-clock time to execute one block.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(blocksExecuted, blocksFailed, transactionsSkipped, executionDuration)
}

// instrumented wraps a block-execution call with timing and outcome
// metrics.
func instrumented(run func() (*Output, error)) (*Output, error) {
	start := time.Now()
	out, err := run()
	executionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := "unknown"
		if execErr, ok := err.(*Error); ok {
			kind = execErr.Kind.String()
		}
		blocksFailed.WithLabelValues(kind).Inc()
		return nil, err
	}
	blocksExecuted.Inc()
	if out != nil {
		transactionsSkipped.Add(float64(len(out.SkippedIndices)))
	}
	return out, nil
}
