package controls

import (
	"fmt"
	"math"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// lightAdapter renders and controls the light domain.
//
// Brightness is exposed as percent, colour temperature as Kelvin; the
// wire keeps its own units (0..255 brightness, mireds) and conversion
// happens at the boundary.
type lightAdapter struct {
	sink CommandSink
}

func (a *lightAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	on := snap.State == "on"
	text := onOff(on)
	if on {
		if raw, ok := snap.Attributes.Float("brightness"); ok {
			text = fmt.Sprintf("%s · %d%%", text, brightnessPct(raw))
		}
	}
	return Summary{
		Name:      displayName(snap, card),
		StateText: text,
		Icon:      cardIcon(card, "lightbulb"),
		Active:    on,
	}
}

// SupportsDetail is true only for colour-capable lights: a mode in
// {rgb, hs, xy, color_temp}. Brightness-only lights stay tap-to-toggle
// unless the card opts in with advanced_controls.
func (a *lightAdapter) SupportsDetail(snap *entity.Snapshot) bool {
	for _, m := range snap.Attributes.StringSlice("supported_color_modes") {
		switch m {
		case "rgb", "hs", "xy", "color_temp":
			return true
		}
	}
	return false
}

func (a *lightAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	p := &Panel{
		EntityID: snap.EntityID,
		Title:    displayName(snap, card),
	}

	power := &Control{
		ID:    "power",
		Kind:  KindToggle,
		Label: "Alimentazione",
		apply: func(v any) error {
			on, ok := v.(bool)
			if !ok {
				return fmt.Errorf("%w: power wants bool", ErrInvalidValue)
			}
			service := "turn_off"
			if on {
				service = "turn_on"
			}
			return a.sink.CallService("light", service, map[string]any{
				"entity_id": snap.EntityID,
			})
		},
	}
	p.Controls = append(p.Controls, power)

	if a.dimmable(snap) {
		deb := NewDebouncer(colourDebounce)
		brightness := &Control{
			ID:    "brightness",
			Kind:  KindSlider,
			Label: "Luminosità",
			Unit:  "%",
			Min:   0,
			Max:   100,
			Step:  1,
			apply: func(v any) error {
				pct, ok := toFloat(v)
				if !ok {
					return fmt.Errorf("%w: brightness wants number", ErrInvalidValue)
				}
				deb.Call(func() {
					//nolint:errcheck // Fire-and-forget; hub state closes the loop
					a.sink.CallService("light", "turn_on", map[string]any{
						"entity_id":      snap.EntityID,
						"brightness_pct": math.Round(clamp(pct, 0, 100)),
					})
				})
				return nil
			},
		}
		p.Controls = append(p.Controls, brightness)
	}

	if minM, maxM, ok := a.miredRange(snap); ok {
		deb := NewDebouncer(colourDebounce)
		// Mired and Kelvin scales run opposite ways: the highest mired
		// value is the warmest, lowest Kelvin, end of the slider.
		temp := &Control{
			ID:    "color_temp",
			Kind:  KindSlider,
			Label: "Temperatura colore",
			Unit:  "K",
			Min:   float64(KelvinFromMireds(maxM)),
			Max:   float64(KelvinFromMireds(minM)),
			Step:  50,
			apply: func(v any) error {
				kelvin, ok := toFloat(v)
				if !ok {
					return fmt.Errorf("%w: color_temp wants number", ErrInvalidValue)
				}
				deb.Call(func() {
					//nolint:errcheck // Fire-and-forget; hub state closes the loop
					a.sink.CallService("light", "turn_on", map[string]any{
						"entity_id":  snap.EntityID,
						"color_temp": MiredsFromKelvin(int(kelvin)),
					})
				})
				return nil
			},
		}
		p.Controls = append(p.Controls, temp)
	}

	if a.hasColour(snap) {
		deb := NewDebouncer(colourDebounce)
		colour := &Control{
			ID:    "colour",
			Kind:  KindColour,
			Label: "Colore",
			apply: func(v any) error {
				hs, ok := toFloatPair(v)
				if !ok {
					return fmt.Errorf("%w: colour wants [hue, sat]", ErrInvalidValue)
				}
				deb.Call(func() {
					//nolint:errcheck // Fire-and-forget; hub state closes the loop
					a.sink.CallService("light", "turn_on", map[string]any{
						"entity_id": snap.EntityID,
						"hs_color":  []float64{hs[0], hs[1]},
					})
				})
				return nil
			},
		}
		p.Controls = append(p.Controls, colour)
	}

	a.RefreshDetail(p, snap)
	return p
}

func (a *lightAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	p.refreshValue("power", snap.State == "on")
	if raw, ok := snap.Attributes.Float("brightness"); ok {
		p.refreshValue("brightness", float64(brightnessPct(raw)))
	}
	if mireds, ok := snap.Attributes.Float("color_temp"); ok {
		p.refreshValue("color_temp", float64(KelvinFromMireds(mireds)))
	}
	if hs := snap.Attributes.FloatSlice("hs_color"); len(hs) == 2 {
		p.refreshValue("colour", [2]float64{hs[0], hs[1]})
	}
}

func (a *lightAdapter) dimmable(snap *entity.Snapshot) bool {
	modes := snap.Attributes.StringSlice("supported_color_modes")
	for _, m := range modes {
		if m != "onoff" {
			return true
		}
	}
	_, ok := snap.Attributes.Float("brightness")
	return ok
}

func (a *lightAdapter) miredRange(snap *entity.Snapshot) (minM, maxM float64, ok bool) {
	minM, okMin := snap.Attributes.Float("min_mireds")
	maxM, okMax := snap.Attributes.Float("max_mireds")
	if !okMin || !okMax || minM <= 0 || maxM <= minM {
		return 0, 0, false
	}
	return minM, maxM, true
}

func (a *lightAdapter) hasColour(snap *entity.Snapshot) bool {
	for _, m := range snap.Attributes.StringSlice("supported_color_modes") {
		switch m {
		case "hs", "rgb", "rgbw", "rgbww", "xy":
			return true
		}
	}
	return false
}

// brightnessPct converts wire brightness (0..255) to percent.
func brightnessPct(raw float64) int {
	return int(math.Round(clamp(raw, 0, 255) / 255 * 100))
}

// toFloat accepts the numeric types a UI layer plausibly hands over.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// toFloatPair accepts [2]float64 and []float64 of length two.
func toFloatPair(v any) ([2]float64, bool) {
	switch p := v.(type) {
	case [2]float64:
		return p, true
	case []float64:
		if len(p) == 2 {
			return [2]float64{p[0], p[1]}, true
		}
	}
	return [2]float64{}, false
}
