package controls

import (
	"fmt"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// Fallback thermostat limits for devices that do not advertise theirs.
const (
	defaultMinTemp  = 7.0
	defaultMaxTemp  = 35.0
	defaultTempStep = 0.5
)

// climateAdapter renders and controls thermostats.
//
// The target temperature stepper debounces at 500ms so a burst of taps
// becomes one command carrying the final value, not one per tap.
type climateAdapter struct {
	sink CommandSink
}

func (a *climateAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	text := translateHVAC(snap.State)
	if cur, ok := snap.Attributes.Float("current_temperature"); ok {
		text = fmt.Sprintf("%.1f° · %s", cur, text)
	}
	return Summary{
		Name:      displayName(snap, card),
		StateText: text,
		Icon:      cardIcon(card, "thermometer"),
		Active:    snap.State != "off" && snap.State != "unavailable",
	}
}

// SupportsDetail is false: the thermostat panel opens only when the
// card opts in with advanced_controls.
func (a *climateAdapter) SupportsDetail(*entity.Snapshot) bool { return false }

func (a *climateAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	p := &Panel{
		EntityID: snap.EntityID,
		Title:    displayName(snap, card),
	}

	minT, maxT, step := a.limits(snap)
	deb := NewDebouncer(climateDebounce)
	target := &Control{
		ID:    "target_temp",
		Kind:  KindSlider,
		Label: "Temperatura",
		Unit:  "°C",
		Min:   minT,
		Max:   maxT,
		Step:  step,
		apply: func(v any) error {
			temp, ok := toFloat(v)
			if !ok {
				return fmt.Errorf("%w: target_temp wants number", ErrInvalidValue)
			}
			temp = clamp(temp, minT, maxT)
			deb.Call(func() {
				//nolint:errcheck // Fire-and-forget; hub state closes the loop
				a.sink.CallService("climate", "set_temperature", map[string]any{
					"entity_id":   snap.EntityID,
					"temperature": temp,
				})
			})
			return nil
		},
	}
	p.Controls = append(p.Controls, target)

	if modes := snap.Attributes.StringSlice("hvac_modes"); len(modes) > 0 {
		opts := make([]Option, 0, len(modes))
		for _, m := range modes {
			opts = append(opts, Option{Value: m, Label: translateHVAC(m)})
		}
		p.Controls = append(p.Controls, a.selectControl(snap, "hvac_mode", "Modalità", "set_hvac_mode", "hvac_mode", opts))
	}

	if modes := snap.Attributes.StringSlice("fan_modes"); len(modes) > 0 {
		opts := make([]Option, 0, len(modes))
		for _, m := range modes {
			opts = append(opts, Option{Value: m, Label: m})
		}
		p.Controls = append(p.Controls, a.selectControl(snap, "fan_mode", "Ventola", "set_fan_mode", "fan_mode", opts))
	}

	if modes := snap.Attributes.StringSlice("swing_modes"); len(modes) > 0 {
		opts := make([]Option, 0, len(modes))
		for _, m := range modes {
			opts = append(opts, Option{Value: m, Label: m})
		}
		p.Controls = append(p.Controls, a.selectControl(snap, "swing_mode", "Oscillazione", "set_swing_mode", "swing_mode", opts))
	}

	a.RefreshDetail(p, snap)
	return p
}

// selectControl builds a mode selector bound to one climate service.
func (a *climateAdapter) selectControl(snap *entity.Snapshot, id, label, service, field string, opts []Option) *Control {
	return &Control{
		ID:      id,
		Kind:    KindSelect,
		Label:   label,
		Options: opts,
		apply: func(v any) error {
			mode, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: %s wants string", ErrInvalidValue, id)
			}
			return a.sink.CallService("climate", service, map[string]any{
				"entity_id": snap.EntityID,
				field:       mode,
			})
		},
	}
}

func (a *climateAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	if t, ok := snap.Attributes.Float("temperature"); ok {
		p.refreshValue("target_temp", t)
	}
	p.refreshValue("hvac_mode", snap.State)
	if m, ok := snap.Attributes.String("fan_mode"); ok {
		p.refreshValue("fan_mode", m)
	}
	if m, ok := snap.Attributes.String("swing_mode"); ok {
		p.refreshValue("swing_mode", m)
	}
}

func (a *climateAdapter) limits(snap *entity.Snapshot) (minT, maxT, step float64) {
	minT, maxT, step = defaultMinTemp, defaultMaxTemp, defaultTempStep
	if v, ok := snap.Attributes.Float("min_temp"); ok {
		minT = v
	}
	if v, ok := snap.Attributes.Float("max_temp"); ok {
		maxT = v
	}
	if v, ok := snap.Attributes.Float("target_temp_step"); ok && v > 0 {
		step = v
	}
	return minT, maxT, step
}
