package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_storage_operations_total",
			Help: "Total number of snapshot storage operations",
		},
		[]string{"backend", "operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_storage_operation_duration_seconds",
			Help:    "Snapshot storage operation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 3},
		},
		[]string{"backend", "operation"},
	)

	HeroAssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_hero_assignments_total",
			Help: "Total number of hero assignment requests by outcome",
		},
		[]string{"result"},
	)

	MetaDetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_meta_detections_total",
			Help: "Total number of meta classifications served",
		},
		[]string{"meta_type"},
	)

	StateMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_state_mutations_total",
			Help: "Total number of state-changing planner requests by outcome",
		},
		[]string{"route", "outcome"},
	)

	CatalogHeroes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "planner_catalog_heroes",
			Help: "Number of heroes loaded from the roster file",
		},
	)

	ServiceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "planner_service_info",
			Help: "Squad planner service information",
		},
		[]string{"version"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordStorageOperation(backend, operation, status string, duration float64) {
	StorageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	StorageOperationDuration.WithLabelValues(backend, operation).Observe(duration)
}

func RecordHeroAssignment(result string) {
	HeroAssignmentsTotal.WithLabelValues(result).Inc()
}

// RecordMetaDetection counts classifications; an empty meta type is reported as "none".
func RecordMetaDetection(metaType string) {
	if metaType == "" {
		metaType = "none"
	}
	MetaDetectionsTotal.WithLabelValues(metaType).Inc()
}

func RecordStateMutation(route, outcome string) {
	StateMutationsTotal.WithLabelValues(route, outcome).Inc()
}

func SetCatalogSize(n int) {
	CatalogHeroes.Set(float64(n))
}
