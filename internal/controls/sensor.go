package controls

import (
	"fmt"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// sensorAdapter renders numeric and textual sensors. Passive: no
// commands, no detail panel.
type sensorAdapter struct{}

func (a *sensorAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	text := snap.State
	if unit, ok := snap.Attributes.String("unit_of_measurement"); ok && unit != "" {
		text = fmt.Sprintf("%s %s", snap.State, unit)
	}
	icon := "activity"
	if dc, ok := snap.Attributes.String("device_class"); ok {
		icon = sensorIcon(dc)
	}
	return Summary{
		Name:      displayName(snap, card),
		StateText: text,
		Icon:      cardIcon(card, icon),
	}
}

func (a *sensorAdapter) SupportsDetail(*entity.Snapshot) bool { return false }

func (a *sensorAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	s := a.Summarize(snap, card)
	return &Panel{
		EntityID: snap.EntityID,
		Title:    s.Name,
		Controls: []*Control{{
			ID:    "reading",
			Kind:  KindReadout,
			Label: s.Name,
			value: s.StateText,
		}},
	}
}

func (a *sensorAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	s := a.Summarize(snap, nil)
	p.refreshValue("reading", s.StateText)
}

func sensorIcon(deviceClass string) string {
	switch deviceClass {
	case "temperature":
		return "thermometer"
	case "humidity":
		return "droplets"
	case "power", "energy":
		return "zap"
	case "illuminance":
		return "sun"
	case "battery":
		return "battery"
	case "pressure":
		return "gauge"
	default:
		return "activity"
	}
}

// binarySensorAdapter renders two-state sensors with device-class
// aware wording. Passive like sensorAdapter.
type binarySensorAdapter struct{}

func (a *binarySensorAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	dc, _ := snap.Attributes.String("device_class")
	on := snap.State == "on"
	return Summary{
		Name:      displayName(snap, card),
		StateText: binarySensorText(dc, on),
		Icon:      cardIcon(card, binarySensorIcon(dc)),
		Active:    on,
	}
}

func (a *binarySensorAdapter) SupportsDetail(*entity.Snapshot) bool { return false }

func (a *binarySensorAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	s := a.Summarize(snap, card)
	return &Panel{
		EntityID: snap.EntityID,
		Title:    s.Name,
		Controls: []*Control{{
			ID:    "reading",
			Kind:  KindReadout,
			Label: s.Name,
			value: s.StateText,
		}},
	}
}

func (a *binarySensorAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	s := a.Summarize(snap, nil)
	p.refreshValue("reading", s.StateText)
}

func binarySensorIcon(deviceClass string) string {
	switch deviceClass {
	case "door", "garage_door", "opening":
		return "door-open"
	case "window":
		return "app-window"
	case "motion", "occupancy", "presence":
		return "radar"
	case "moisture":
		return "droplet"
	case "smoke":
		return "flame"
	default:
		return "circle-dot"
	}
}
