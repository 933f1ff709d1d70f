package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Exporter holds every Prometheus collector the scheduler publishes.
// Registered once at process start. Nothing in the scheduler facade or the
// HTTP layer sets these collectors, so they carry no samples.
type Exporter struct {
	QueueDepth       *prometheus.GaugeVec
	GateInUse        *prometheus.GaugeVec
	GateLimit        *prometheus.GaugeVec
	ReservationState *prometheus.GaugeVec
	RequestLatency   *prometheus.HistogramVec
	RequestsTotal    *prometheus.CounterVec
}

// NewExporter builds and registers the exporter's collectors against reg.
func NewExporter(reg prometheus.Registerer) *Exporter {
	e := &Exporter{
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "queue_depth",
			Help:      "Number of requests currently waiting for a gate slot, by model.",
		}, []string{"model_id"}),
		GateInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "gate_in_use",
			Help:      "Number of gate slots currently held, by model.",
		}, []string{"model_id"}),
		GateLimit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "gate_limit",
			Help:      "Effective concurrency limit, by model.",
		}, []string{"model_id"}),
		ReservationState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "reservation_state",
			Help:      "1 if the system-wide reservation is currently in the given status, else 0.",
		}, []string{"status"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Name:      "request_duration_seconds",
			Help:      "End-to-end request latency, from admission to dispatch completion.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model_id", "outcome"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "requests_total",
			Help:      "Total inference requests handled, by outcome.",
		}, []string{"model_id", "outcome"}),
	}

	reg.MustRegister(e.QueueDepth, e.GateInUse, e.GateLimit, e.ReservationState, e.RequestLatency, e.RequestsTotal)
	return e
}
