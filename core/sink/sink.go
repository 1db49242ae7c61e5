package sink

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/batteryform/core/factory"
)

// Submission is the payload reported when a form is submitted without errors.
type Submission struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Time            time.Time `json:"time"`
	VirtualBattery  bool      `json:"virtualBattery"`
	PhysicalBattery bool      `json:"physicalBattery"`
	SolarPanels     string    `json:"solarPanels"`
}

// BatteryType returns "virtual", "physical" or "none".
func (s Submission) BatteryType() string {
	switch {
	case s.VirtualBattery:
		return "virtual"
	case s.PhysicalBattery:
		return "physical"
	}
	return "none"
}

// Sink receives validated form payloads.
type Sink interface {
	Emit(ctx context.Context, sub Submission) error
	Close() error
}

// NopSink drops every submission.
type NopSink struct{}

func (NopSink) Emit(context.Context, Submission) error { return nil }
func (NopSink) Close() error                           { return nil }

// MultiSink fans submissions out to several sinks. Every sink is tried even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// Emit forwards the submission to all sinks.
func (m *MultiSink) Emit(ctx context.Context, sub Submission) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Emit(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all sinks.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var registry = factory.NewRegistry[Sink]()

// Register adds a sink factory identified by name.
func Register(name string, f factory.Factory[Sink]) error {
	return registry.Register(name, f)
}

// MustRegister is Register for init functions; it panics when name is taken.
func MustRegister(name string, f factory.Factory[Sink]) {
	registry.MustRegister(name, f)
}

// Available lists the registered sink types.
func Available() []string { return registry.Names() }

// New creates a Sink from the provided configuration. An empty list yields a
// NopSink and a single entry is returned unwrapped.
func New(cfgs []factory.ModuleConfig) (Sink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return registry.Create(cfgs[0])
	}
	sinks := make([]Sink, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := registry.Create(c)
		if err != nil {
			_ = NewMultiSink(sinks...).Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}
