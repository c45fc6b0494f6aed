package dashboard

import (
	"fmt"
	"strings"
	"time"
)

// CardType discriminates the card variants a view can hold.
type CardType string

// Card types.
const (
	CardEntity       CardType = "entity"
	CardWeather      CardType = "weather"
	CardWelcome      CardType = "welcome"
	CardQuickActions CardType = "quick_actions"
)

// CardSize is the display size of an entity card.
type CardSize string

// Card sizes. An empty size means "derive from the entity's domain".
const (
	SizeCompact  CardSize = "compact"
	SizeStandard CardSize = "standard"
	SizeLarge    CardSize = "large"
)

// Layout selects how a view arranges its content.
type Layout string

// View layouts. Grid views hold cards directly; tabs views hold rooms.
const (
	LayoutGrid Layout = "grid"
	LayoutTabs Layout = "tabs"
)

// quickActionLimit caps the entity references on a quick_actions card.
const quickActionLimit = 4

// Card is one tile in a view or room.
//
// The variant is selected by Type: entity and weather cards reference
// exactly one entity in ID; quick_actions references up to four in
// Entities; welcome references none (implicitly the logged-in person).
type Card struct {
	Type CardType `json:"type"`

	// ID is the referenced entity identifier for entity/weather cards,
	// and a synthetic identifier for welcome/quick_actions cards.
	ID string `json:"id,omitempty"`

	// Name and Icon are display overrides for entity cards.
	Name string `json:"name,omitempty"`
	Icon string `json:"icon,omitempty"`

	// Title is the heading of welcome and quick_actions cards.
	Title string `json:"title,omitempty"`

	// Size overrides the domain-derived card size.
	Size CardSize `json:"size,omitempty"`

	// AdvancedControls overrides detail-panel eligibility. Unset means
	// "derive from the referenced entity's capabilities".
	AdvancedControls *bool `json:"advanced_controls,omitempty"`

	// Entities are the quick-action references (scenes, scripts).
	Entities []string `json:"entities,omitempty"`

	// RemoteID optionally points a media card at a remote entity for
	// the directional pad.
	RemoteID string `json:"remote_id,omitempty"`
}

// Room is a named card group inside a tabs view.
type Room struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cards []Card `json:"cards"`

	// LegacyEntities carries the pre-migration card list ("entities").
	// It is read during legacy migration and stripped on every save.
	LegacyEntities []Card `json:"entities,omitempty"`
}

// View is one top-level navigable page section.
// Cards and Rooms are mutually exclusive by Layout.
type View struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Layout Layout `json:"layout"`
	Cards  []Card `json:"cards,omitempty"`
	Rooms  []Room `json:"rooms,omitempty"`
}

// WidgetRef references a sidebar widget.
type WidgetRef struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Document is the user-authored layout document.
//
// After a successful load, Views and SidebarWidgets are always non-nil
// (possibly empty) sequences, and view identifiers are unique.
type Document struct {
	SidebarWidgets []WidgetRef `json:"sidebar_widgets"`
	Views          []View      `json:"views"`
}

// DefaultDocument returns the empty default layout: one grid view
// "Panoramica" and one tabs view "Stanze".
func DefaultDocument() *Document {
	return &Document{
		SidebarWidgets: []WidgetRef{},
		Views: []View{
			{ID: "panoramica", Name: "Panoramica", Icon: "layout-dashboard", Layout: LayoutGrid, Cards: []Card{}},
			{ID: "stanze", Name: "Stanze", Icon: "sofa", Layout: LayoutTabs, Rooms: []Room{}},
		},
	}
}

// Validate checks document invariants: view identifiers must be unique
// and quick_actions cards may reference at most four entities.
func (d *Document) Validate() error {
	seen := make(map[string]bool, len(d.Views))
	for _, v := range d.Views {
		if v.ID == "" {
			return fmt.Errorf("%w: view %q has no id", ErrInvalidDocument, v.Name)
		}
		if seen[v.ID] {
			return fmt.Errorf("%w: duplicate view id %q", ErrInvalidDocument, v.ID)
		}
		seen[v.ID] = true

		for _, c := range v.Cards {
			if err := c.validate(); err != nil {
				return err
			}
		}
		for _, r := range v.Rooms {
			for _, c := range r.Cards {
				if err := c.validate(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *Card) validate() error {
	if c.Type == CardQuickActions && len(c.Entities) > quickActionLimit {
		return fmt.Errorf("%w: quick_actions card %q references %d entities (max %d)",
			ErrInvalidDocument, c.ID, len(c.Entities), quickActionLimit)
	}
	return nil
}

// FindView returns the view with the given id.
func (d *Document) FindView(id string) (*View, bool) {
	for i := range d.Views {
		if d.Views[i].ID == id {
			return &d.Views[i], true
		}
	}
	return nil, false
}

// FindCard returns the first card referencing the given entity id,
// searching grid views and tab rooms in document order.
func (d *Document) FindCard(entityID string) (*Card, bool) {
	for i := range d.Views {
		v := &d.Views[i]
		if v.Layout == LayoutTabs {
			for j := range v.Rooms {
				for k := range v.Rooms[j].Cards {
					if v.Rooms[j].Cards[k].ID == entityID {
						return &v.Rooms[j].Cards[k], true
					}
				}
			}
			continue
		}
		for k := range v.Cards {
			if v.Cards[k].ID == entityID {
				return &v.Cards[k], true
			}
		}
	}
	return nil, false
}

// synthesizeID builds an identifier from a display name plus a
// timestamp, matching the original document format's id scheme.
func synthesizeID(name string, now time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "_")
	return fmt.Sprintf("%s%d", slug, now.UnixMilli())
}
