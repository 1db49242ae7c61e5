package form

// Reduce applies ev to snap and returns the next snapshot. The second return
// value is the payload to report when ev is a successful Submit, nil
// otherwise. Reduce never mutates snap.
func Reduce(snap Snapshot, ev Event) (Snapshot, *State) {
	next := Snapshot{State: snap.State, Errors: snap.Errors, Submitted: snap.Submitted}
	switch e := ev.(type) {
	case ToggleBattery:
		next.State = toggle(next.State, e.Kind, e.Checked)
		next.Errors = Errors{}
		next.Submitted = false
	case *ToggleBattery:
		return Reduce(snap, *e)
	case EditSolarPanels:
		next.State.SolarPanels = e.Text
		next.Errors = Errors{}
		next.Submitted = false
	case *EditSolarPanels:
		return Reduce(snap, *e)
	case Submit, *Submit:
		errs := Validate(next.State)
		if !errs.Empty() {
			next.Errors = errs
			next.Submitted = false
			return next, nil
		}
		next.Errors = Errors{}
		next.Submitted = true
		payload := next.State
		return next, &payload
	}
	return next, nil
}

func toggle(s State, kind BatteryKind, checked bool) State {
	switch kind {
	case Virtual:
		s.VirtualBattery = checked
		if checked {
			s.PhysicalBattery = false
		}
	case Physical:
		s.PhysicalBattery = checked
		if checked {
			s.VirtualBattery = false
		}
	}
	return s
}
