// Package metrics holds the prometheus collectors for block ingestion and
// the HTTP surface. Collectors register themselves at import.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chiadex/chiadex/internal/chaindb"
)

var (
	ingestBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chiadex",
		Subsystem: "ingest",
		Name:      "blocks_total",
		Help:      "Count of block ingestion attempts.",
	}, []string{"status"})

	ingestBlockDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chiadex",
		Subsystem: "ingest",
		Name:      "block_duration_seconds",
		Help:      "Duration of ingesting a single block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	ingestCoinsPerBlock = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chiadex",
		Subsystem: "ingest",
		Name:      "coins_per_block",
		Help:      "Created plus spent coins carried per ingested block.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	})

	ingestPeakHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chiadex",
		Subsystem: "ingest",
		Name:      "peak_height",
		Help:      "Highest ingested block height.",
	})
)

type Ingester struct{}

func NewIngester() *Ingester {
	return &Ingester{}
}

// ObserveBlock records one ApplyBlock outcome. Precondition rejections count
// under their own status so storage faults stand out.
func (m Ingester) ObserveBlock(err error, coins int, started time.Time) {
	status := "success"
	var seqErr *chaindb.SequenceError
	var conflictErr *chaindb.ConflictError
	switch {
	case err == nil:
	case errors.As(err, &seqErr), errors.As(err, &conflictErr):
		status = "rejected"
	default:
		status = "error"
	}
	ingestBlocksTotal.WithLabelValues(status).Inc()
	ingestBlockDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	if err == nil {
		ingestCoinsPerBlock.Observe(float64(coins))
	}
}

func (m Ingester) SetPeakHeight(height uint32) {
	ingestPeakHeight.Set(float64(height))
}
