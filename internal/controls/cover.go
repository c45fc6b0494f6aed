package controls

import (
	"fmt"
	"math"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// coverAdapter renders and controls covers (tapparelle, tende, garage).
type coverAdapter struct {
	sink CommandSink
}

func (a *coverAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	text := a.stateText(snap)
	active := snap.State == "open" || snap.State == "opening" || snap.State == "closing"
	return Summary{
		Name:      displayName(snap, card),
		StateText: text,
		Icon:      cardIcon(card, "blinds"),
		Active:    active,
	}
}

func (a *coverAdapter) stateText(snap *entity.Snapshot) string {
	if pos, ok := snap.Attributes.Float("current_position"); ok {
		switch {
		case pos <= 0:
			return "Chiusa"
		case pos >= 100:
			return "Aperta"
		default:
			return fmt.Sprintf("Aperta al %d%%", int(math.Round(pos)))
		}
	}
	switch snap.State {
	case "open":
		return "Aperta"
	case "closed":
		return "Chiusa"
	case "opening":
		return "In apertura"
	case "closing":
		return "In chiusura"
	default:
		return snap.State
	}
}

// SupportsDetail is false: the position panel opens only when the card
// opts in with advanced_controls.
func (a *coverAdapter) SupportsDetail(*entity.Snapshot) bool { return false }

func (a *coverAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	p := &Panel{
		EntityID: snap.EntityID,
		Title:    displayName(snap, card),
	}

	if _, ok := snap.Attributes.Float("current_position"); ok {
		position := &Control{
			ID:    "position",
			Kind:  KindSlider,
			Label: "Posizione",
			Unit:  "%",
			Min:   0,
			Max:   100,
			Step:  1,
			apply: func(v any) error {
				pos, ok := toFloat(v)
				if !ok {
					return fmt.Errorf("%w: position wants number", ErrInvalidValue)
				}
				return a.sink.CallService("cover", "set_cover_position", map[string]any{
					"entity_id": snap.EntityID,
					"position":  math.Round(clamp(pos, 0, 100)),
				})
			},
		}
		p.Controls = append(p.Controls, position)
	}

	motion := &Control{
		ID:   "motion",
		Kind: KindButtonRow,
		Options: []Option{
			{Value: "open_cover", Label: "Apri", Icon: "arrow-up"},
			{Value: "stop_cover", Label: "Stop", Icon: "square"},
			{Value: "close_cover", Label: "Chiudi", Icon: "arrow-down"},
		},
		apply: func(v any) error {
			service, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: motion wants service name", ErrInvalidValue)
			}
			switch service {
			case "open_cover", "stop_cover", "close_cover":
			default:
				return fmt.Errorf("%w: unknown motion %q", ErrInvalidValue, service)
			}
			return a.sink.CallService("cover", service, map[string]any{
				"entity_id": snap.EntityID,
			})
		},
	}
	p.Controls = append(p.Controls, motion)

	a.RefreshDetail(p, snap)
	return p
}

func (a *coverAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	if pos, ok := snap.Attributes.Float("current_position"); ok {
		p.refreshValue("position", math.Round(pos))
	}
}
