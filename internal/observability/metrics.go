package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "placement_rag"

// Pipeline stage labels used with RecordStage
const (
	StageEmbedQuery = "embed_query"
	StageRank       = "rank"
	StageGenerate   = "generate"
	StageEmbedDoc   = "embed_document"
)

// Metrics collects pipeline metrics
type Metrics interface {
	// RecordAnswer counts a finished answer request by status
	// ("success", "no_documents", "error")
	RecordAnswer(status string)
	// RecordStage observes the duration of a pipeline stage
	RecordStage(stage string, d time.Duration)
	// RecordEmbedOutcome counts one embedder outcome
	// ("embedded", "failed", "dimension_mismatch", "join_missing")
	RecordEmbedOutcome(outcome string)
	// RecordCandidates observes the number of embedded offers ranked by a query
	RecordCandidates(n int)
}

// PrometheusMetrics implements Metrics with Prometheus collectors
type PrometheusMetrics struct {
	answers    *prometheus.CounterVec
	stages     *prometheus.HistogramVec
	embeds     *prometheus.CounterVec
	candidates prometheus.Histogram
}

// NewPrometheusMetrics creates the collectors and registers them on reg
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_total",
				Help:      "Total number of answer requests by status",
			},
			[]string{"status"},
		),
		stages: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		embeds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedder_offers_total",
				Help:      "Offers processed by the embedder job by outcome",
			},
			[]string{"outcome"},
		),
		candidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieval_candidates",
				Help:      "Number of embedded offers scored per query",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}

	for _, c := range []prometheus.Collector{m.answers, m.stages, m.embeds, m.candidates} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordAnswer(status string) {
	m.answers.WithLabelValues(status).Inc()
}

func (m *PrometheusMetrics) RecordStage(stage string, d time.Duration) {
	m.stages.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordEmbedOutcome(outcome string) {
	m.embeds.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) RecordCandidates(n int) {
	m.candidates.Observe(float64(n))
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordAnswer(string)               {}
func (NopMetrics) RecordStage(string, time.Duration) {}
func (NopMetrics) RecordEmbedOutcome(string)         {}
func (NopMetrics) RecordCandidates(int)              {}
