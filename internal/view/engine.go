package view

import (
	"fmt"
	"sync"
	"time"

	"github.com/dverna/casaflow-core/internal/controls"
	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// Connection is the banner-level connection status.
type Connection int

// Connection states shown in the status strip.
const (
	ConnectionConnected Connection = iota
	ConnectionReconnecting
	ConnectionAuthFailed
)

// Logger defines the logging interface used by the Engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Engine reconciles the entity store and the layout document into a
// render tree.
//
// Two render paths with very different costs: RenderApp rebuilds the
// whole tree (startup, reconnect, document reload, view switch), while
// UpdateEntity touches only the fragments bound to one entity and
// returns the mutations. Per state change the work is proportional to
// how many cards show that entity, not to the size of the dashboard.
type Engine struct {
	store    *entity.Store
	manager  *dashboard.Manager
	registry *controls.Registry
	logger   Logger
	now      func() time.Time

	// PersonEntity names the entity greeted by the welcome card.
	personEntity string

	mu         sync.Mutex
	root       *Fragment
	bindings   map[string][]*Fragment
	openPanel  *controls.Panel
	connection Connection
	editMode   bool
}

// NewEngine creates a reconciliation engine over a store, a document
// manager and a control registry.
func NewEngine(store *entity.Store, manager *dashboard.Manager, registry *controls.Registry, personEntity string) *Engine {
	return &Engine{
		store:        store,
		manager:      manager,
		registry:     registry,
		logger:       noopLogger{},
		now:          time.Now,
		personEntity: personEntity,
		bindings:     make(map[string][]*Fragment),
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// SetConnection updates the banner status. The tree patch rides on the
// next RenderApp; callers that want it visible immediately re-render.
func (e *Engine) SetConnection(c Connection) {
	e.mu.Lock()
	e.connection = c
	e.mu.Unlock()
}

// SetEditMode toggles layout editing affordances in the rendered tree.
func (e *Engine) SetEditMode(on bool) {
	e.mu.Lock()
	e.editMode = on
	e.mu.Unlock()
}

// EditMode reports whether edit affordances are rendered.
func (e *Engine) EditMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editMode
}

// RenderApp rebuilds the full render tree from the current document
// and store, replacing all entity bindings.
func (e *Engine) RenderApp() *Fragment {
	doc := e.manager.Document()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.bindings = make(map[string][]*Fragment)
	root := &Fragment{Kind: KindRoot, ID: "root"}
	root.Children = append(root.Children, e.statusFragment())

	if doc == nil {
		// Before the first document load there is nothing to lay out.
		root.Children = append(root.Children, &Fragment{
			Kind: KindStatus, ID: "loading", Text: "Caricamento...",
		})
		e.root = root
		return root
	}

	root.Children = append(root.Children, e.navFragment(doc))

	active := e.manager.ActiveView()
	for i := range doc.Views {
		v := &doc.Views[i]
		vf := &Fragment{
			Kind:   KindView,
			ID:     "view:" + v.ID,
			Title:  v.Name,
			Hidden: v.ID != active,
		}
		if v.Layout == dashboard.LayoutTabs {
			vf.Children = append(vf.Children, e.tabsFragment(v))
		} else {
			vf.Children = append(vf.Children, e.gridFragment(v))
		}
		root.Children = append(root.Children, vf)
	}

	e.root = root
	return root
}

// UpdateEntity folds one entity change into the rendered tree and
// returns the resulting mutations. An entity bound to no fragment is a
// no-op; per-change cost scales with the entity's own cards only.
func (e *Engine) UpdateEntity(entityID string) []Mutation {
	e.mu.Lock()
	bound := e.bindings[entityID]
	panel := e.openPanel
	e.mu.Unlock()

	var muts []Mutation
	if len(bound) > 0 {
		snap, ok := e.store.Get(entityID)
		adapter := e.registry.ForEntity(entityID)

		for _, f := range bound {
			card := f.card

			if !ok {
				f.Kind = KindPlaceholder
				f.Text = "Non disponibile"
				muts = append(muts, Mutation{FragmentID: f.ID, Text: f.Text})
				continue
			}

			resolved := f.Kind == KindPlaceholder
			s := adapter.Summarize(snap, card)
			f.Kind = KindCard
			f.Title = s.Name
			f.Text = s.StateText
			f.Icon = s.Icon
			f.Active = s.Active
			f.ImageURL = s.ImageURL
			muts = append(muts, Mutation{
				FragmentID: f.ID,
				Text:       s.StateText,
				Icon:       s.Icon,
				Active:     s.Active,
				ImageURL:   s.ImageURL,
				Resolved:   resolved,
			})
		}
	}

	if panel != nil && panel.EntityID == entityID {
		if snap, ok := e.store.Get(entityID); ok {
			e.registry.ForEntity(entityID).RefreshDetail(panel, snap)
		}
	}

	return muts
}

// SelectView changes the active view and re-renders.
func (e *Engine) SelectView(id string) (*Fragment, error) {
	if err := e.manager.SetActiveView(id); err != nil {
		return nil, err
	}
	return e.RenderApp(), nil
}

// OpenDetail opens the detail panel for an entity.
//
// Eligibility: the card's advanced_controls flag wins when set,
// otherwise the domain adapter decides from the entity's capabilities.
func (e *Engine) OpenDetail(entityID string) (*controls.Panel, error) {
	snap, ok := e.store.Get(entityID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entityID)
	}

	var card *dashboard.Card
	if doc := e.manager.Document(); doc != nil {
		card, _ = doc.FindCard(entityID)
	}

	adapter := e.registry.ForEntity(entityID)
	eligible := adapter.SupportsDetail(snap)
	if card != nil && card.AdvancedControls != nil {
		eligible = *card.AdvancedControls
	}
	if !eligible {
		return nil, fmt.Errorf("%w: %q", ErrNoDetail, entityID)
	}

	panel := adapter.BuildDetail(snap, card)

	e.mu.Lock()
	e.openPanel = panel
	e.mu.Unlock()

	e.logger.Debug("detail panel opened", "entity_id", entityID)
	return panel, nil
}

// CloseDetail closes any open detail panel.
func (e *Engine) CloseDetail() {
	e.mu.Lock()
	e.openPanel = nil
	e.mu.Unlock()
}

// OpenPanel returns the currently open detail panel, if any.
func (e *Engine) OpenPanel() *controls.Panel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.openPanel
}

// statusFragment renders the connection banner. Connected renders
// empty and hidden; problems render visible text.
func (e *Engine) statusFragment() *Fragment {
	f := &Fragment{Kind: KindStatus, ID: "status"}
	switch e.connection {
	case ConnectionConnected:
		f.Text = "Connesso"
		f.Hidden = true
	case ConnectionReconnecting:
		f.Text = "Disconnesso, riconnessione in corso..."
	case ConnectionAuthFailed:
		f.Text = "Autenticazione fallita, controlla il token di accesso"
	}
	return f
}

// navFragment renders the top navigation strip.
func (e *Engine) navFragment(doc *dashboard.Document) *Fragment {
	nav := &Fragment{Kind: KindNav, ID: "nav"}
	active := e.manager.ActiveView()
	for i := range doc.Views {
		v := &doc.Views[i]
		nav.Children = append(nav.Children, &Fragment{
			Kind:   KindNavItem,
			ID:     "nav:" + v.ID,
			Title:  v.Name,
			Icon:   v.Icon,
			Active: v.ID == active,
		})
	}
	return nav
}

// gridFragment renders a grid view. Hero cards (welcome,
// quick_actions) come first, entity cards follow in document order.
func (e *Engine) gridFragment(v *dashboard.View) *Fragment {
	grid := &Fragment{Kind: KindGrid, ID: "grid:" + v.ID}

	for i := range v.Cards {
		c := &v.Cards[i]
		if c.Type == dashboard.CardWelcome || c.Type == dashboard.CardQuickActions {
			grid.Children = append(grid.Children, e.heroFragment(v.ID, i, c))
		}
	}
	for i := range v.Cards {
		c := &v.Cards[i]
		if c.Type == dashboard.CardWelcome || c.Type == dashboard.CardQuickActions {
			continue
		}
		grid.Children = append(grid.Children, e.cardFragment(fmt.Sprintf("card:%s:%d", v.ID, i), c))
	}
	return grid
}

// tabsFragment renders a tabs view with the first room visible.
func (e *Engine) tabsFragment(v *dashboard.View) *Fragment {
	tabs := &Fragment{Kind: KindTabs, ID: "tabs:" + v.ID}
	for ri := range v.Rooms {
		r := &v.Rooms[ri]
		tab := &Fragment{
			Kind:   KindTab,
			ID:     fmt.Sprintf("tab:%s:%s", v.ID, r.ID),
			Title:  r.Name,
			Hidden: ri != 0,
		}
		for ci := range r.Cards {
			id := fmt.Sprintf("card:%s:%s:%d", v.ID, r.ID, ci)
			tab.Children = append(tab.Children, e.cardFragment(id, &r.Cards[ci]))
		}
		tabs.Children = append(tabs.Children, tab)
	}
	return tabs
}

// heroFragment renders welcome and quick_actions cards.
func (e *Engine) heroFragment(viewID string, idx int, c *dashboard.Card) *Fragment {
	id := fmt.Sprintf("hero:%s:%d", viewID, idx)

	if c.Type == dashboard.CardWelcome {
		return &Fragment{
			Kind:  KindWelcome,
			ID:    id,
			Title: c.Title,
			Text:  e.greeting(),
		}
	}

	qa := &Fragment{Kind: KindCard, ID: id, Title: c.Title}
	for _, ref := range c.Entities {
		action := &Fragment{
			Kind:     KindQuickAction,
			ID:       id + ":" + ref,
			EntityID: ref,
		}
		if snap, ok := e.store.Get(ref); ok {
			s := e.registry.ForEntity(ref).Summarize(snap, nil)
			action.Title = s.Name
			action.Icon = s.Icon
			action.Active = s.Active
		} else {
			action.Title = ref
			action.Icon = "zap"
		}
		e.bindings[ref] = append(e.bindings[ref], action)
		qa.Children = append(qa.Children, action)
	}
	return qa
}

// cardFragment renders one entity card and records the binding. An
// entity missing from the store renders as a placeholder; a later
// state report resolves it in place.
func (e *Engine) cardFragment(id string, c *dashboard.Card) *Fragment {
	f := &Fragment{ID: id, EntityID: c.ID, card: c}

	snap, ok := e.store.Get(c.ID)
	if !ok {
		f.Kind = KindPlaceholder
		f.Title = c.Name
		if f.Title == "" {
			f.Title = c.ID
		}
		f.Text = "Non disponibile"
		f.Size = cardSize(c, "")
	} else {
		s := e.registry.ForEntity(c.ID).Summarize(snap, c)
		f.Kind = KindCard
		f.Title = s.Name
		f.Text = s.StateText
		f.Icon = s.Icon
		f.Active = s.Active
		f.ImageURL = s.ImageURL
		f.Size = cardSize(c, snap.Domain())
	}

	e.bindings[c.ID] = append(e.bindings[c.ID], f)
	return f
}

// greeting returns the time-of-day greeting, personalized when the
// person entity is known.
func (e *Engine) greeting() string {
	var text string
	switch h := e.now().Hour(); {
	case h < 6:
		text = "Buonanotte"
	case h < 13:
		text = "Buongiorno"
	case h < 18:
		text = "Buon pomeriggio"
	default:
		text = "Buonasera"
	}
	if e.personEntity != "" {
		if snap, ok := e.store.Get(e.personEntity); ok {
			return fmt.Sprintf("%s, %s", text, snap.FriendlyName())
		}
	}
	return text
}

// cardSize resolves the display size: explicit override first, then a
// domain default. Cameras want room, plain switches do not.
func cardSize(c *dashboard.Card, domain string) dashboard.CardSize {
	if c != nil && c.Size != "" {
		return c.Size
	}
	switch domain {
	case "camera":
		return dashboard.SizeLarge
	case "switch", "input_boolean", "binary_sensor":
		return dashboard.SizeCompact
	default:
		return dashboard.SizeStandard
	}
}
