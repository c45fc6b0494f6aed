package controls

import (
	"fmt"
	"math"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// mediaAdapter renders and controls media players.
//
// Volume crosses the wire as a 0..1 fraction but is shown as percent;
// the conversion lives here and nowhere else.
type mediaAdapter struct {
	sink CommandSink
}

func (a *mediaAdapter) Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary {
	text := a.stateText(snap)
	playing := snap.State == "playing"
	return Summary{
		Name:      displayName(snap, card),
		StateText: text,
		Icon:      cardIcon(card, "speaker"),
		Active:    playing || snap.State == "paused",
	}
}

func (a *mediaAdapter) stateText(snap *entity.Snapshot) string {
	title, _ := snap.Attributes.String("media_title")
	artist, _ := snap.Attributes.String("media_artist")
	switch {
	case title != "" && artist != "":
		return fmt.Sprintf("%s · %s", artist, title)
	case title != "":
		return title
	}
	switch snap.State {
	case "playing":
		return "In riproduzione"
	case "paused":
		return "In pausa"
	case "idle":
		return "Inattivo"
	case "off":
		return "Spento"
	default:
		return snap.State
	}
}

// SupportsDetail is false: the transport panel opens only when the
// card opts in with advanced_controls.
func (a *mediaAdapter) SupportsDetail(*entity.Snapshot) bool { return false }

func (a *mediaAdapter) BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel {
	p := &Panel{
		EntityID: snap.EntityID,
		Title:    displayName(snap, card),
	}

	transport := &Control{
		ID:   "transport",
		Kind: KindButtonRow,
		Options: []Option{
			{Value: "media_previous_track", Label: "Precedente", Icon: "skip-back"},
			{Value: "media_play_pause", Label: "Play/Pausa", Icon: "play"},
			{Value: "media_next_track", Label: "Successivo", Icon: "skip-forward"},
		},
		apply: func(v any) error {
			service, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: transport wants service name", ErrInvalidValue)
			}
			switch service {
			case "media_previous_track", "media_play_pause", "media_next_track":
			default:
				return fmt.Errorf("%w: unknown transport %q", ErrInvalidValue, service)
			}
			return a.sink.CallService("media_player", service, map[string]any{
				"entity_id": snap.EntityID,
			})
		},
	}
	p.Controls = append(p.Controls, transport)

	volume := &Control{
		ID:    "volume",
		Kind:  KindSlider,
		Label: "Volume",
		Unit:  "%",
		Min:   0,
		Max:   100,
		Step:  1,
		apply: func(v any) error {
			pct, ok := toFloat(v)
			if !ok {
				return fmt.Errorf("%w: volume wants number", ErrInvalidValue)
			}
			return a.sink.CallService("media_player", "volume_set", map[string]any{
				"entity_id":    snap.EntityID,
				"volume_level": clamp(pct, 0, 100) / 100,
			})
		},
	}
	p.Controls = append(p.Controls, volume)

	mute := &Control{
		ID:    "mute",
		Kind:  KindToggle,
		Label: "Muto",
		apply: func(v any) error {
			muted, ok := v.(bool)
			if !ok {
				return fmt.Errorf("%w: mute wants bool", ErrInvalidValue)
			}
			return a.sink.CallService("media_player", "volume_mute", map[string]any{
				"entity_id":       snap.EntityID,
				"is_volume_muted": muted,
			})
		},
	}
	p.Controls = append(p.Controls, mute)

	if sources := snap.Attributes.StringSlice("source_list"); len(sources) > 0 {
		opts := make([]Option, 0, len(sources))
		for _, s := range sources {
			opts = append(opts, Option{Value: s, Label: s})
		}
		p.Controls = append(p.Controls, &Control{
			ID:      "source",
			Kind:    KindSelect,
			Label:   "Sorgente",
			Options: opts,
			apply: func(v any) error {
				source, ok := v.(string)
				if !ok {
					return fmt.Errorf("%w: source wants string", ErrInvalidValue)
				}
				return a.sink.CallService("media_player", "select_source", map[string]any{
					"entity_id": snap.EntityID,
					"source":    source,
				})
			},
		})
	}

	if card != nil && card.RemoteID != "" {
		remoteID := card.RemoteID
		p.Controls = append(p.Controls, &Control{
			ID:   "remote",
			Kind: KindButtonRow,
			Options: []Option{
				{Value: "UP", Icon: "chevron-up"},
				{Value: "DOWN", Icon: "chevron-down"},
				{Value: "LEFT", Icon: "chevron-left"},
				{Value: "RIGHT", Icon: "chevron-right"},
				{Value: "SELECT", Label: "OK"},
				{Value: "BACK", Label: "Indietro"},
				{Value: "HOME", Icon: "home"},
			},
			apply: func(v any) error {
				command, ok := v.(string)
				if !ok {
					return fmt.Errorf("%w: remote wants command", ErrInvalidValue)
				}
				return a.sink.CallService("remote", "send_command", map[string]any{
					"entity_id": remoteID,
					"command":   command,
				})
			},
		})
	}

	a.RefreshDetail(p, snap)
	return p
}

func (a *mediaAdapter) RefreshDetail(p *Panel, snap *entity.Snapshot) {
	if frac, ok := snap.Attributes.Float("volume_level"); ok {
		p.refreshValue("volume", math.Round(clamp(frac, 0, 1)*100))
	}
	if muted, ok := snap.Attributes.Bool("is_volume_muted"); ok {
		p.refreshValue("mute", muted)
	}
	if source, ok := snap.Attributes.String("source"); ok {
		p.refreshValue("source", source)
	}
}
