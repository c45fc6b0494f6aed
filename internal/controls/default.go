package controls

import (
	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// defaultAdapter is the fallback for unclaimed domains: name plus raw
// state, nothing interactive. An unknown domain renders, it just does
// not control.
type defaultAdapter struct{}

func (a *defaultAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	return Summary{
		Name:      displayName(snap, card),
		StateText: snap.State,
		Icon:      cardIcon(card, "help-circle"),
	}
}

func (a *defaultAdapter) SupportsDetail(*entity.Snapshot) bool { return false }

func (a *defaultAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	s := a.Summarize(snap, card)
	return &Panel{
		EntityID: snap.EntityID,
		Title:    s.Name,
		Controls: []*Control{{
			ID:    "state",
			Kind:  KindReadout,
			Label: s.Name,
			value: snap.State,
		}},
	}
}

func (a *defaultAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	p.refreshValue("state", snap.State)
}
