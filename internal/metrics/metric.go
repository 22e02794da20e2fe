package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	ReconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "konvergator_reconcile_duration_seconds",
			Help:    "Duration of reconciliations by resource type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	ReconcileErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "konvergator_reconcile_errors_total",
			Help: "Number of reconcile errors by resource type",
		},
		[]string{"resource"},
	)

	ReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "konvergator_reconciliations_total",
			Help: "Total number of reconciliations by resource type",
		},
		[]string{"resource"},
	)

	ReconcileSuccess = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "konvergator_reconcile_success_total",
			Help: "Number of successful reconciles by resource type",
		},
		[]string{"resource"},
	)

	HealthVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "konvergator_health_verdicts_total",
			Help: "Number of computed health verdicts by verdict",
		},
		[]string{"verdict"},
	)
)

func init() {
	metrics.Registry.MustRegister(ReconcileDuration, ReconcileErrors, ReconcileTotal, ReconcileSuccess, HealthVerdicts)
}
