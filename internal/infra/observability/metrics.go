package observability

import (
	"time"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Dispatch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics for the leads service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration      *prometheus.HistogramVec
	externalErrors       *prometheus.CounterVec
	dispatches           *prometheus.CounterVec
	validationRejections *prometheus.CounterVec
	sessionHits          prometheus.Counter
	sessionMisses        prometheus.Counter
	collectionSize       prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leads_operation_duration_seconds",
				Help:    "Duration of collaborator operations (load, create, update, delete).",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_external_errors_total",
				Help: "Total errors from the persistence collaborator.",
			},
			[]string{"operation"},
		),
		dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_dispatch_total",
				Help: "Mutations dispatched to the persistence collaborator.",
			},
			[]string{"operation", "outcome"},
		),
		validationRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_validation_rejections_total",
				Help: "Submissions rejected locally before dispatch.",
			},
			[]string{"field"},
		),
		sessionHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "leads_session_hits_total",
			Help: "Requests served by an existing view session.",
		}),
		sessionMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "leads_session_misses_total",
			Help: "Requests that had to open a new view session.",
		}),
		collectionSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leads_collection_size",
			Help: "Size of the most recently loaded lead collection.",
		}),
	}
}

// RecordDuration records the duration of a collaborator operation.
func (m *Metrics) RecordDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the collaborator error counter.
func (m *Metrics) IncrExternalError(operation string) {
	m.externalErrors.WithLabelValues(operation).Inc()
}

// IncrDispatch counts a dispatched mutation by outcome.
func (m *Metrics) IncrDispatch(operation, outcome string) {
	m.dispatches.WithLabelValues(operation, outcome).Inc()
}

// IncrValidationRejection counts a submission blocked by validation.
func (m *Metrics) IncrValidationRejection(field string) {
	m.validationRejections.WithLabelValues(field).Inc()
}

// IncrSessionHit / IncrSessionMiss track view session reuse.
func (m *Metrics) IncrSessionHit()  { m.sessionHits.Inc() }
func (m *Metrics) IncrSessionMiss() { m.sessionMisses.Inc() }

// SetCollectionSize records the size of the last loaded collection.
func (m *Metrics) SetCollectionSize(n int) {
	m.collectionSize.Set(float64(n))
}

// GetDispatchSnapshot returns cumulative dispatch figures for the
// GET /v1/metrics/dispatch endpoint.
func (m *Metrics) GetDispatchSnapshot() *domain.DispatchMetrics {
	created := getCounterValue(m.dispatches.WithLabelValues("create", OutcomeSuccess))
	updated := getCounterValue(m.dispatches.WithLabelValues("update", OutcomeSuccess))
	deleted := getCounterValue(m.dispatches.WithLabelValues("delete", OutcomeSuccess))
	failed := getCounterValue(m.dispatches.WithLabelValues("create", OutcomeFailure)) +
		getCounterValue(m.dispatches.WithLabelValues("update", OutcomeFailure)) +
		getCounterValue(m.dispatches.WithLabelValues("delete", OutcomeFailure))
	rejected := getCounterValue(m.validationRejections.WithLabelValues("name")) +
		getCounterValue(m.validationRejections.WithLabelValues("stage")) +
		getCounterValue(m.validationRejections.WithLabelValues("form"))
	loadFailures := getCounterValue(m.externalErrors.WithLabelValues("load"))
	hits := getCounterValue(m.sessionHits)
	misses := getCounterValue(m.sessionMisses)

	failureRate := float64(0)
	if total := created + updated + deleted + failed; total > 0 {
		failureRate = failed / total
	}
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.DispatchMetrics{
		Created:            int64(created),
		Updated:            int64(updated),
		Deleted:            int64(deleted),
		Failed:             int64(failed),
		ValidationRejected: int64(rejected),
		LoadFailures:       int64(loadFailures),
		FailureRate:        failureRate,
		SessionHitRate:     hitRate,
		Period:             "all_time",
	}
}

// getCounterValue extracts the current float64 value from a counter.
func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
