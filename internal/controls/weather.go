package controls

import (
	"fmt"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// weatherAdapter renders weather entities. The condition code is
// translated for display and mapped to an icon; the detail panel shows
// the secondary readings the card has no room for.
type weatherAdapter struct{}

func (a *weatherAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	text := TranslateWeather(snap.State)
	if t, ok := snap.Attributes.Float("temperature"); ok {
		text = fmt.Sprintf("%.1f° · %s", t, text)
	}
	return Summary{
		Name:      displayName(snap, card),
		StateText: text,
		Icon:      WeatherIcon(snap.State),
	}
}

// SupportsDetail is false: the forecast panel opens only when the card
// opts in with advanced_controls.
func (a *weatherAdapter) SupportsDetail(*entity.Snapshot) bool { return false }

func (a *weatherAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	p := &Panel{
		EntityID: snap.EntityID,
		Title:    displayName(snap, card),
		Controls: []*Control{
			{ID: "condition", Kind: KindReadout, Label: "Condizioni"},
			{ID: "temperature", Kind: KindReadout, Label: "Temperatura", Unit: "°C"},
			{ID: "humidity", Kind: KindReadout, Label: "Umidità", Unit: "%"},
			{ID: "wind_speed", Kind: KindReadout, Label: "Vento", Unit: "km/h"},
			{ID: "pressure", Kind: KindReadout, Label: "Pressione", Unit: "hPa"},
		},
	}
	a.RefreshDetail(p, snap)
	return p
}

func (a *weatherAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	p.refreshValue("condition", TranslateWeather(snap.State))
	for _, key := range []string{"temperature", "humidity", "wind_speed", "pressure"} {
		if v, ok := snap.Attributes.Float(key); ok {
			p.refreshValue(key, v)
		}
	}
}
