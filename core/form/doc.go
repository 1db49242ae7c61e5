// Package form holds the battery configuration form: its state, the events
// that mutate it and the pure reducer applying them.
//
// A Controller owns one form instance. Every interaction goes through
// Dispatch (or the named helpers) so that validation stays a pure function of
// the current State:
//
//	ctrl := form.NewController(sink.NopSink{}, logger.NopLogger{})
//	ctrl.SetBatteryType(ctx, form.Virtual, true)
//	ctrl.SetSolarPanels(ctx, "12 panneaux 400W")
//	snap := ctrl.Submit(ctx)
package form
