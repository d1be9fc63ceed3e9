package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BatchJobMetrics records metadata for batch tools such as the pricing
// preflight scan and the pricing-mode backfill.
type BatchJobMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	processed *prometheus.CounterVec
	flagged   *prometheus.CounterVec
}

// NewBatchJobMetrics registers the batch job metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewBatchJobMetrics(reg prometheus.Registerer) *BatchJobMetrics {
	if reg == nil {
		return &BatchJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of batch jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful batch job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed batch job executions.",
	}, []string{"job"})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_items_processed",
		Help: "Items examined by batch jobs.",
	}, []string{"job"})
	flagged := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_items_flagged",
		Help: "Items a batch job reported as needing attention.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure, processed, flagged)
	return &BatchJobMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		processed: processed,
		flagged:   flagged,
	}
}

// ObserveDuration records the duration for the named job.
func (b *BatchJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (b *BatchJobMetrics) IncSuccess(job string) {
	if b == nil || b.success == nil {
		return
	}
	b.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (b *BatchJobMetrics) IncFailure(job string) {
	if b == nil || b.failure == nil {
		return
	}
	b.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// AddProcessed adds to the processed-items counter for the named job.
func (b *BatchJobMetrics) AddProcessed(job string, n int) {
	if b == nil || b.processed == nil || n <= 0 {
		return
	}
	b.processed.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}

// AddFlagged adds to the flagged-items counter for the named job.
func (b *BatchJobMetrics) AddFlagged(job string, n int) {
	if b == nil || b.flagged == nil || n <= 0 {
		return
	}
	b.flagged.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
