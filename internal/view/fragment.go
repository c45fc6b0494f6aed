package view

import "github.com/dverna/casaflow-core/internal/dashboard"

// FragmentKind identifies what a fragment renders as. The engine emits
// an abstract tree; the presentation layer maps kinds to whatever
// widget toolkit it has.
type FragmentKind string

// Fragment kinds.
const (
	KindRoot        FragmentKind = "root"
	KindStatus      FragmentKind = "status"
	KindNav         FragmentKind = "nav"
	KindNavItem     FragmentKind = "nav_item"
	KindView        FragmentKind = "view"
	KindGrid        FragmentKind = "grid"
	KindTabs        FragmentKind = "tabs"
	KindTab         FragmentKind = "tab"
	KindCard        FragmentKind = "card"
	KindWelcome     FragmentKind = "welcome"
	KindQuickAction FragmentKind = "quick_action"
	KindPlaceholder FragmentKind = "placeholder"
)

// Fragment is one node of the abstract render tree.
//
// ID is stable across re-renders of the same document, which is what
// lets incremental mutations address a node without a full rebuild.
type Fragment struct {
	Kind FragmentKind
	ID   string

	// EntityID binds the fragment to an entity for incremental updates.
	EntityID string

	Title    string
	Text     string
	Icon     string
	Active   bool
	Hidden   bool
	ImageURL string
	Size     dashboard.CardSize

	Children []*Fragment

	// card is the document card this fragment was rendered from, kept
	// so incremental updates reuse the same overrides. Two cards can
	// reference one entity with different names or icons; a lookup by
	// entity id would collapse them onto the first match.
	card *dashboard.Card
}

// Mutation is one in-place change to an existing fragment, produced by
// an incremental update. The presentation layer applies it to the node
// with the matching ID.
type Mutation struct {
	FragmentID string
	Text       string
	Icon       string
	Active     bool
	ImageURL   string

	// Resolved is set when a placeholder became a live card and the
	// node needs its kind switched, not just its text.
	Resolved bool
}

// find walks the tree for a fragment by id. Render trees are small;
// linear walks are fine.
func (f *Fragment) find(id string) *Fragment {
	if f == nil {
		return nil
	}
	if f.ID == id {
		return f
	}
	for _, c := range f.Children {
		if hit := c.find(id); hit != nil {
			return hit
		}
	}
	return nil
}
