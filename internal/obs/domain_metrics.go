package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Export outcomes used as the result label of ExportsTotal.
const (
	ExportResultOK          = "ok"
	ExportResultError       = "error"
	ExportResultRateLimited = "rate_limited"
)

var (
	domainOnce sync.Once

	// ExportsTotal counts PDF export attempts by outcome.
	ExportsTotal *prometheus.CounterVec
	// ExportDuration records PDF generation latency in milliseconds.
	ExportDuration prometheus.Histogram
	// SessionsCreatedTotal counts editing sessions started with a fresh document.
	SessionsCreatedTotal prometheus.Counter
	// ItemOperationsTotal counts line item mutations by operation.
	ItemOperationsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers invoice collectors. Later
// calls are no-ops, so handlers may call it freely.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ExportsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_exports_total",
			Help:      "Count of PDF export attempts by outcome.",
		}, []string{"result"}))
		ExportDuration = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_export_duration_ms",
			Help:      "Latency of PDF generation in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}))
		SessionsCreatedTotal = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_sessions_created_total",
			Help:      "Number of editing sessions started with a fresh invoice.",
		}))
		ItemOperationsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_item_operations_total",
			Help:      "Count of line item operations by kind.",
		}, []string{"op"}))
	})
}

// ObserveExport records one export outcome; safe before registration.
func ObserveExport(result string, durationMS float64) {
	if ExportsTotal != nil {
		ExportsTotal.WithLabelValues(result).Inc()
	}
	if ExportDuration != nil && result == ExportResultOK {
		ExportDuration.Observe(durationMS)
	}
}

// ObserveItemOperation records an add, update or remove; safe before registration.
func ObserveItemOperation(op string) {
	if ItemOperationsTotal != nil {
		ItemOperationsTotal.WithLabelValues(op).Inc()
	}
}

// ObserveSessionCreated records a new editing session; safe before registration.
func ObserveSessionCreated() {
	if SessionsCreatedTotal != nil {
		SessionsCreatedTotal.Inc()
	}
}
