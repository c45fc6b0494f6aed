package controls

import (
	"fmt"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// toggleAdapter covers the plain on/off domains (switch,
// input_boolean). These stay tap-to-toggle on the card; the detail
// panel exists only when a card forces it on.
type toggleAdapter struct {
	sink   CommandSink
	domain string
}

func (a *toggleAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	on := snap.State == "on"
	return Summary{
		Name:      displayName(snap, card),
		StateText: onOff(on),
		Icon:      cardIcon(card, "power"),
		Active:    on,
	}
}

func (a *toggleAdapter) SupportsDetail(*entity.Snapshot) bool { return false }

func (a *toggleAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	p := &Panel{
		EntityID: snap.EntityID,
		Title:    displayName(snap, card),
	}
	p.Controls = append(p.Controls, &Control{
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
			return a.sink.CallService(a.domain, service, map[string]any{
				"entity_id": snap.EntityID,
			})
		},
	})
	a.RefreshDetail(p, snap)
	return p
}

func (a *toggleAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	p.refreshValue("power", snap.State == "on")
}

// Toggle flips an on/off entity directly from its card.
func (a *toggleAdapter) Toggle(snap *entity.Snapshot) error {
	return a.sink.CallService(a.domain, "toggle", map[string]any{
		"entity_id": snap.EntityID,
	})
}
