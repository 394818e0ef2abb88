// Package observability exports Prometheus metrics for diagnosis workflows.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/present"
	"github.com/lehigh-university-libraries/cropscan/internal/workflow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsPath = "/metrics"

// Metrics holds the collectors. One instance is shared by every client in
// the process.
type Metrics struct {
	registry *prometheus.Registry

	transitionsTotal   *prometheus.CounterVec
	predictionsTotal   *prometheus.CounterVec
	predictionDuration prometheus.Histogram
	diagnosesTotal     *prometheus.CounterVec
	feedbackTotal      *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	activeClients      prometheus.Gauge
}

// NewMetrics registers the collectors with registry. A nil registry gets a
// fresh one.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{registry: registry}

	m.transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropscan_workflow_transitions_total",
			Help: "Workflow state transitions partitioned by source and target state.",
		},
		[]string{"from", "to"},
	)
	m.predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropscan_predictions_total",
			Help: "Prediction requests partitioned by outcome.",
		},
		[]string{"status"}, // status: success, error, abandoned
	)
	m.predictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cropscan_prediction_duration_seconds",
			Help:    "Time from submit to prediction response.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
	m.diagnosesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropscan_diagnoses_total",
			Help: "Top predictions partitioned by class and confidence tier.",
		},
		[]string{"class", "tier"},
	)
	m.feedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropscan_feedback_total",
			Help: "Feedback submissions partitioned by outcome.",
		},
		[]string{"status"},
	)
	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropscan_errors_total",
			Help: "Workflow errors partitioned by kind.",
		},
		[]string{"kind"},
	)
	m.activeClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cropscan_active_clients",
			Help: "Client state machines currently held by the server.",
		},
	)

	for _, c := range []prometheus.Collector{
		m.transitionsTotal,
		m.predictionsTotal,
		m.predictionDuration,
		m.diagnosesTotal,
		m.feedbackTotal,
		m.errorsTotal,
		m.activeClients,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterMetricsHandlers adds the scrape endpoint to mux.
func (m *Metrics) RegisterMetricsHandlers(mux *http.ServeMux) {
	mux.Handle(metricsPath, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// ClientOpened and ClientClosed track the active client gauge.
func (m *Metrics) ClientOpened() { m.activeClients.Inc() }
func (m *Metrics) ClientClosed() { m.activeClients.Dec() }

// Listener returns a workflow listener that records one workflow's
// transitions. Each workflow needs its own listener.
func (m *Metrics) Listener() workflow.Listener {
	var (
		mu      sync.Mutex
		started time.Time
	)
	return func(tr workflow.Transition) {
		m.transitionsTotal.WithLabelValues(tr.From.String(), tr.To.String()).Inc()
		if tr.Err != nil {
			m.errorsTotal.WithLabelValues(string(apperr.KindOf(tr.Err))).Inc()
		}

		switch {
		case tr.To == workflow.Submitting:
			mu.Lock()
			started = time.Now()
			mu.Unlock()

		case tr.From == workflow.Submitting:
			mu.Lock()
			if !started.IsZero() {
				m.predictionDuration.Observe(time.Since(started).Seconds())
				started = time.Time{}
			}
			mu.Unlock()
			switch tr.To {
			case workflow.Resulted:
			case workflow.Idle:
				m.predictionsTotal.WithLabelValues("abandoned").Inc()
				return
			default:
				m.predictionsTotal.WithLabelValues("error").Inc()
				return
			}
			m.predictionsTotal.WithLabelValues("success").Inc()
			if top := tr.Result.Top(); top.Class != "" {
				tier := present.TierFor(present.RoundConfidence(top.Probability))
				m.diagnosesTotal.WithLabelValues(top.Class, string(tier)).Inc()
			}

		case tr.From == workflow.FeedbackSubmitting:
			if tr.To == workflow.FeedbackResolved {
				m.feedbackTotal.WithLabelValues("success").Inc()
			} else {
				m.feedbackTotal.WithLabelValues("error").Inc()
			}
		}
	}
}
