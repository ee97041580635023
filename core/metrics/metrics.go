// Package metrics exposes Prometheus counters for the bot runtime and the intake flow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "intakebot"

// Recorder owns a private registry so several instances can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	updates         *prometheus.CounterVec
	updateDuration  *prometheus.HistogramVec
	sendFailures    *prometheus.CounterVec
	turns           *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	handoffFailures *prometheus.CounterVec
	counterFallback prometheus.Counter
	storeErrors     prometheus.Counter
}

// NewRecorder registers all collectors, including Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		updates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Telegram updates handled by kind and status.",
		}, []string{"kind", "status"}),
		updateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Time spent handling a Telegram update.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		sendFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Outbound Telegram calls that failed after retries.",
		}, []string{"action", "kind"}),
		turns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_transitions_total",
			Help:      "Dialogue state transitions.",
		}, []string{"from", "to"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_rejections_total",
			Help:      "User inputs rejected by validation, by dialogue state.",
		}, []string{"state"}),
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_submissions_total",
			Help:      "Confirmed requests by category and delivery status.",
		}, []string{"category", "status"}),
		handoffFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_handoff_failures_total",
			Help:      "Handoff steps that failed, by step.",
		}, []string{"step"}),
		counterFallback: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_counter_fallbacks_total",
			Help:      "Request numbers issued from the random fallback range.",
		}),
		storeErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_session_store_errors_total",
			Help:      "Turns aborted because the session store failed.",
		}),
	}
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveUpdate records a handled Telegram update.
func (r *Recorder) ObserveUpdate(kind string, err error, took time.Duration) {
	status := "ok"
	if err != nil {
		status = "fail"
	}
	r.updates.WithLabelValues(kind, status).Inc()
	r.updateDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// SendFailed counts an outbound call that exhausted its retries.
func (r *Recorder) SendFailed(action, kind string) {
	r.sendFailures.WithLabelValues(action, kind).Inc()
}

// Transition counts a committed dialogue state change.
func (r *Recorder) Transition(from, to string) {
	r.turns.WithLabelValues(from, to).Inc()
}

// Rejected counts a validation rejection in state.
func (r *Recorder) Rejected(state string) {
	r.rejections.WithLabelValues(state).Inc()
}

// Submitted counts a confirmed request; delivered reports whether the staff summary went out.
func (r *Recorder) Submitted(category string, delivered bool) {
	status := "delivered"
	if !delivered {
		status = "undelivered"
	}
	r.submissions.WithLabelValues(category, status).Inc()
}

// HandoffFailed counts a failed handoff step such as "attachment", "archive" or "event".
func (r *Recorder) HandoffFailed(step string) {
	r.handoffFailures.WithLabelValues(step).Inc()
}

// CounterFallback counts a request number drawn from the random range.
func (r *Recorder) CounterFallback() {
	r.counterFallback.Inc()
}

// StoreFailed counts a turn aborted by a session store error.
func (r *Recorder) StoreFailed() {
	r.storeErrors.Inc()
}
