package form

// Event is a user interaction applied to the form.
type Event interface {
	// Name is used as a metric label and in logs.
	Name() string
}

// ToggleBattery is emitted when a battery checkbox changes.
type ToggleBattery struct {
	Kind    BatteryKind
	Checked bool
}

// EditSolarPanels is emitted when the solar panel input changes.
type EditSolarPanels struct {
	Text string
}

// Submit is emitted when the form is submitted.
type Submit struct{}

func (ToggleBattery) Name() string   { return "toggle_battery" }
func (EditSolarPanels) Name() string { return "edit_solar_panels" }
func (Submit) Name() string          { return "submit" }
