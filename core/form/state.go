package form

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// BatteryKind identifies one of the two mutually exclusive battery checkboxes.
type BatteryKind int

const (
	Virtual BatteryKind = iota
	Physical
)

func (k BatteryKind) String() string {
	switch k {
	case Virtual:
		return "virtual"
	case Physical:
		return "physical"
	default:
		return "unknown"
	}
}

// ParseBatteryKind converts "virtual" or "physical" into a BatteryKind.
func ParseBatteryKind(s string) (BatteryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "virtual":
		return Virtual, nil
	case "physical":
		return Physical, nil
	}
	return 0, fmt.Errorf("unknown battery kind %q", s)
}

// State is the set of values entered in the form.
type State struct {
	VirtualBattery  bool   `json:"virtualBattery"`
	PhysicalBattery bool   `json:"physicalBattery"`
	SolarPanels     string `json:"solarPanels"`
}

// Field names a validated form input.
type Field string

const FieldSolarPanels Field = "solarPanels"

// ErrMissingRequiredField is the only validation failure of the form.
var ErrMissingRequiredField = errors.New("missing required field")

// MsgSolarPanelsRequired is shown under the solar panel input.
const MsgSolarPanelsRequired = "Veuillez spécifier les panneaux solaires pour une batterie virtuelle"

// Errors maps a field to the message displayed next to it.
type Errors map[Field]string

// Empty reports whether no field is in error.
func (e Errors) Empty() bool { return len(e) == 0 }

// Err converts the errors into an error value wrapping
// ErrMissingRequiredField, or nil when empty.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	errs := make([]error, 0, len(e))
	for f, msg := range e {
		errs = append(errs, fmt.Errorf("%s: %s: %w", f, msg, ErrMissingRequiredField))
	}
	return errors.Join(errs...)
}

// Snapshot is the full observable state of a form instance.
type Snapshot struct {
	State     State  `json:"state"`
	Errors    Errors `json:"errors"`
	Submitted bool   `json:"submitted"`
}

// Success reports whether the success banner should be shown.
func (s Snapshot) Success() bool { return s.Submitted && s.Errors.Empty() }

// Initial is the snapshot of a freshly mounted form.
func Initial() Snapshot { return Snapshot{Errors: Errors{}} }

// Validate checks the conditional requirement: a virtual battery needs a
// non-blank solar panel description. No other rule exists.
func Validate(s State) Errors {
	errs := Errors{}
	if s.VirtualBattery && isBlank(s.SolarPanels) {
		errs[FieldSolarPanels] = MsgSolarPanelsRequired
	}
	return errs
}

// isBlank reports whether text is empty once trimmed the way a browser's
// String.prototype.trim does. U+0085 is not whitespace there.
func isBlank(text string) bool {
	return strings.TrimFunc(text, isBrowserSpace) == ""
}

func isBrowserSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
