package web

import (
	"fmt"
	"net/url"

	"github.com/kilianp07/batteryform/core/form"
)

// eventRequest is the JSON body of POST /api/events.
type eventRequest struct {
	Type    string `json:"type"`
	Kind    string `json:"kind,omitempty"`
	Checked bool   `json:"checked,omitempty"`
	Text    string `json:"text,omitempty"`
}

func (r eventRequest) event() (form.Event, error) {
	switch r.Type {
	case form.ToggleBattery{}.Name():
		kind, err := form.ParseBatteryKind(r.Kind)
		if err != nil {
			return nil, err
		}
		return form.ToggleBattery{Kind: kind, Checked: r.Checked}, nil
	case form.EditSolarPanels{}.Name():
		return form.EditSolarPanels{Text: r.Text}, nil
	case form.Submit{}.Name():
		return form.Submit{}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", r.Type)
}

// eventsFromPost turns a native form post into the events a user would
// have produced by editing cur into the posted values, followed by Submit.
// Checkboxes are compared in page order so that when both are newly
// checked the physical battery wins, as with two successive clicks.
func eventsFromPost(cur form.State, values url.Values) []form.Event {
	virtual := values.Has("virtualBattery")
	physical := values.Has("physicalBattery")
	text := values.Get("solarPanels")

	var evs []form.Event
	if virtual != cur.VirtualBattery {
		evs = append(evs, form.ToggleBattery{Kind: form.Virtual, Checked: virtual})
	}
	if physical != cur.PhysicalBattery {
		evs = append(evs, form.ToggleBattery{Kind: form.Physical, Checked: physical})
	}
	if text != cur.SolarPanels {
		evs = append(evs, form.EditSolarPanels{Text: text})
	}
	return append(evs, form.Submit{})
}
