package controls

import (
	"fmt"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// cameraAdapter renders camera entities as still images. The hub's
// entity_picture already carries an access token; the base URL makes
// it absolute. Tokens rotate with state changes, which doubles as the
// cache buster.
type cameraAdapter struct {
	baseURL string
}

func (a *cameraAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	return Summary{
		Name:      displayName(snap, card),
		StateText: a.stateText(snap),
		Icon:      cardIcon(card, "video"),
		Active:    snap.State == "recording" || snap.State == "streaming",
		ImageURL:  a.imageURL(snap),
	}
}

func (a *cameraAdapter) stateText(snap *entity.Snapshot) string {
	switch snap.State {
	case "recording":
		return "In registrazione"
	case "streaming":
		return "In diretta"
	case "idle":
		return "Inattiva"
	default:
		return snap.State
	}
}

func (a *cameraAdapter) imageURL(snap *entity.Snapshot) string {
	picture, ok := snap.Attributes.String("entity_picture")
	if !ok || picture == "" || a.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s%s", a.baseURL, picture)
}

// SupportsDetail is false: the full-size stream panel opens only when
// the card opts in with advanced_controls.
func (a *cameraAdapter) SupportsDetail(*entity.Snapshot) bool { return false }

func (a *cameraAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	p := &Panel{
		EntityID: snap.EntityID,
		Title:    displayName(snap, card),
		Controls: []*Control{{
			ID:    "image",
			Kind:  KindImage,
			Label: "Anteprima",
		}},
	}
	a.RefreshDetail(p, snap)
	return p
}

func (a *cameraAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	p.refreshValue("image", a.imageURL(snap))
}
