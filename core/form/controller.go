package form

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/batteryform/core/logger"
	"github.com/kilianp07/batteryform/core/metrics"
	"github.com/kilianp07/batteryform/core/monitoring"
	"github.com/kilianp07/batteryform/core/sink"
)

// Controller owns the state of one form instance. It is not safe for
// concurrent use; callers serialise access to it.
type Controller struct {
	id   string
	snap Snapshot
	sink sink.Sink
	rec  metrics.Recorder
	log  logger.Logger
	now  func() time.Time
}

// Option customises a Controller.
type Option func(*Controller)

// WithID sets the identifier attached to emitted submissions.
func WithID(id string) Option { return func(c *Controller) { c.id = id } }

// WithRecorder instruments the controller.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.rec = r
		}
	}
}

// WithClock overrides time.Now, used in tests.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// NewController returns a controller in its initial state. A nil sink
// discards submissions.
func NewController(s sink.Sink, log logger.Logger, opts ...Option) *Controller {
	if s == nil {
		s = sink.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	c := &Controller{
		id:   uuid.NewString(),
		snap: Initial(),
		sink: s,
		rec:  metrics.NopRecorder{},
		log:  log,
		now:  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ID returns the controller identifier.
func (c *Controller) ID() string { return c.id }

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	out := c.snap
	out.Errors = make(Errors, len(c.snap.Errors))
	for k, v := range c.snap.Errors {
		out.Errors[k] = v
	}
	return out
}

// Dispatch applies the event and, on a successful submit, reports the
// payload to the sink. Sink failures are logged; they never change the
// outcome of the submission.
func (c *Controller) Dispatch(ctx context.Context, ev Event) Snapshot {
	next, payload := Reduce(c.snap, ev)
	c.snap = next
	c.rec.RecordEvent(ev.Name())
	if ev.Name() == (Submit{}).Name() {
		c.rec.RecordSubmission(next.Errors.Empty())
		if !next.Errors.Empty() {
			c.log.Debugw("form rejected", map[string]any{"session": c.id, "errors": next.Errors})
		}
	}
	if payload != nil {
		c.emit(ctx, *payload)
	}
	return c.Snapshot()
}

// SetBatteryType checks or unchecks a battery checkbox.
func (c *Controller) SetBatteryType(ctx context.Context, kind BatteryKind, checked bool) Snapshot {
	return c.Dispatch(ctx, ToggleBattery{Kind: kind, Checked: checked})
}

// SetSolarPanels replaces the solar panel description verbatim.
func (c *Controller) SetSolarPanels(ctx context.Context, text string) Snapshot {
	return c.Dispatch(ctx, EditSolarPanels{Text: text})
}

// Submit validates the form and reports it when valid.
func (c *Controller) Submit(ctx context.Context) Snapshot {
	return c.Dispatch(ctx, Submit{})
}

func (c *Controller) emit(ctx context.Context, st State) {
	sub := sink.Submission{
		ID:              uuid.NewString(),
		SessionID:       c.id,
		Time:            c.now().UTC(),
		VirtualBattery:  st.VirtualBattery,
		PhysicalBattery: st.PhysicalBattery,
		SolarPanels:     st.SolarPanels,
	}
	if err := c.sink.Emit(ctx, sub); err != nil {
		c.rec.RecordSinkError()
		c.log.Errorf("emit submission %s: %v", sub.ID, err)
		monitoring.CaptureException(err, map[string]string{"module": "form", "session": c.id})
	}
}
