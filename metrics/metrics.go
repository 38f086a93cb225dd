package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ExtractionMetrics instruments the batch extraction pipeline. It owns its
// registry so tests can build throwaway instances without collisions.
type ExtractionMetrics struct {
	registry *prometheus.Registry

	documentsTotal   *prometheus.CounterVec
	documentDuration *prometheus.HistogramVec
	batchDuration    prometheus.Histogram
	batchSize        prometheus.Histogram
}

func NewExtractionMetrics() *ExtractionMetrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tax",
			Subsystem: "extraction",
			Name:      "documents_total",
			Help:      "Documents processed by kind and status.",
		},
		[]string{"kind", "status"},
	)
	documentDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tax",
			Subsystem: "extraction",
			Name:      "document_duration_seconds",
			Help:      "Per-document decode and locate duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	batchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tax",
			Subsystem: "extraction",
			Name:      "batch_duration_seconds",
			Help:      "End-to-end batch run duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)
	batchSize := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tax",
			Subsystem: "extraction",
			Name:      "batch_size_documents",
			Help:      "Number of documents per batch run.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	registry.MustRegister(documentsTotal, documentDuration, batchDuration, batchSize)

	return &ExtractionMetrics{
		registry:         registry,
		documentsTotal:   documentsTotal,
		documentDuration: documentDuration,
		batchDuration:    batchDuration,
		batchSize:        batchSize,
	}
}

func (m *ExtractionMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ExtractionMetrics) ObserveDocument(kind string, failed bool, duration time.Duration) {
	status := "success"
	if failed {
		status = "failure"
	}
	m.documentsTotal.WithLabelValues(kind, status).Inc()
	m.documentDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *ExtractionMetrics) ObserveBatch(size int, duration time.Duration) {
	m.batchSize.Observe(float64(size))
	m.batchDuration.Observe(duration.Seconds())
}
