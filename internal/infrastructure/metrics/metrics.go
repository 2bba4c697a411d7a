// Package metrics exposes ingestion, retrieval and model counters to
// Prometheus.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
)

var (
	once sync.Once

	documentsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptiverag_documents_ingested_total",
		Help: "Documents stored, by file type",
	}, []string{"file_type"})

	documentsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptiverag_documents_skipped_total",
		Help: "Documents skipped during ingestion, by reason",
	}, []string{"reason"})

	chunksStored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptiverag_chunks_stored_total",
		Help: "Chunks stored, by content type and chunking strategy",
	}, []string{"content_type", "strategy"})

	retrievals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptiverag_retrievals_total",
		Help: "Vector searches, by query complexity and whether anything was found",
	}, []string{"complexity", "result"})

	queries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptiverag_queries_total",
		Help: "Questions the model answered, by complexity",
	}, []string{"complexity"})

	retrievalLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adaptiverag_retrieval_latency_ms",
		Help:    "Vector search latency in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"complexity"})

	llmFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptiverag_llm_failures_total",
		Help: "Failed model calls, by kind",
	}, []string{"kind"})

	actionsDetected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptiverag_actions_detected_total",
		Help: "Recognised actions, by detection method",
	}, []string{"method"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(Collectors()...)
	})
}

// Collectors returns every collector, for registering with a custom registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		documentsIngested, documentsSkipped, chunksStored, retrievals,
		queries, retrievalLatency, llmFailures, actionsDetected,
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	ensureRegistered()
	return promhttp.Handler()
}

// Recorder implements ports.Metrics on the package collectors.
type Recorder struct{}

var _ ports.Metrics = Recorder{}

// NewRecorder registers the collectors with the default registry.
func NewRecorder() Recorder {
	ensureRegistered()
	return Recorder{}
}

func (Recorder) DocumentIngested(fileType, contentType, strategy string, chunks int) {
	documentsIngested.WithLabelValues(fileType).Inc()
	chunksStored.WithLabelValues(contentType, strategy).Add(float64(chunks))
}

func (Recorder) DocumentSkipped(reason string) {
	documentsSkipped.WithLabelValues(reason).Inc()
}

func (Recorder) Retrieved(complexity string, hits int, retrieval time.Duration) {
	result := "hits"
	if hits == 0 {
		result = "none"
	}
	retrievals.WithLabelValues(complexity, result).Inc()
	retrievalLatency.WithLabelValues(complexity).Observe(float64(retrieval.Milliseconds()))
}

func (Recorder) QueryAnswered(complexity string) {
	queries.WithLabelValues(complexity).Inc()
}

func (Recorder) LLMFailed(kind string) {
	llmFailures.WithLabelValues(kind).Inc()
}

func (Recorder) ActionDetected(method string) {
	actionsDetected.WithLabelValues(method).Inc()
}
