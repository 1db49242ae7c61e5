package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/batteryform/core/metrics"
)

// PromRecorder records form activity in Prometheus metrics.
type PromRecorder struct {
	events      *prometheus.CounterVec
	submissions *prometheus.CounterVec
	sinkErrors  prometheus.Counter
	sessions    prometheus.Gauge
}

var _ coremetrics.Recorder = (*PromRecorder)(nil)
var _ coremetrics.SessionRecorder = (*PromRecorder)(nil)

// NewPromRecorder registers form metrics on the default Prometheus registerer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromRecorderWithRegistry(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "battery_form_events_total",
		Help: "Total number of form events applied",
	}, []string{"event"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "battery_form_submissions_total",
		Help: "Total number of submit attempts by outcome",
	}, []string{"outcome"})
	sinkErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "battery_form_sink_errors_total",
		Help: "Total number of submissions that could not be reported",
	})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_form_sessions_active",
		Help: "Number of live form sessions",
	})

	var err error
	if events, err = register(reg, events); err != nil {
		return nil, err
	}
	if submissions, err = register(reg, submissions); err != nil {
		return nil, err
	}
	if sinkErrors, err = register(reg, sinkErrors); err != nil {
		return nil, err
	}
	if sessions, err = register(reg, sessions); err != nil {
		return nil, err
	}
	return &PromRecorder{events: events, submissions: submissions, sinkErrors: sinkErrors, sessions: sessions}, nil
}

// register returns the already registered collector when c was registered
// before, so that several recorders can share the default registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordEvent counts an applied event.
func (p *PromRecorder) RecordEvent(name string) {
	p.events.WithLabelValues(name).Inc()
}

// RecordSubmission counts a submit attempt.
func (p *PromRecorder) RecordSubmission(accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	p.submissions.WithLabelValues(outcome).Inc()
}

// RecordSinkError counts a failed emission.
func (p *PromRecorder) RecordSinkError() { p.sinkErrors.Inc() }

// SetActiveSessions sets the session gauge.
func (p *PromRecorder) SetActiveSessions(n int) { p.sessions.Set(float64(n)) }
