package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// defaultSaveWindow is how long after a save the holder entity's echo
// is suppressed. Save acknowledgements arrive back through the state
// stream; within this window they are ignored rather than reloaded.
const defaultSaveWindow = 1500 * time.Millisecond

// State is the manager lifecycle state.
type State int

// Manager states.
const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateSaving
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// Loader fetches the stored document bytes. Implementations return
// ErrNotFound when no document has been saved yet.
type Loader interface {
	Load(ctx context.Context) ([]byte, error)
}

// Persister writes the serialized document to durable storage.
type Persister interface {
	Persist(content []byte) error
}

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager owns the layout document lifecycle: load, legacy migration,
// save, and self-echo suppression on the holder entity.
//
// The manager is safe for concurrent use, but in practice it is driven
// by a single consumer loop (see internal/session) and occasional edit
// calls from the UI layer.
type Manager struct {
	loader    Loader
	persister Persister
	logger    Logger

	window time.Duration
	now    func() time.Time

	mu          sync.Mutex
	state       State
	doc         *Document
	activeView  string
	savingUntil time.Time
}

// NewManager creates a document manager. Loader and persister must not
// be nil.
func NewManager(loader Loader, persister Persister) *Manager {
	return &Manager{
		loader:    loader,
		persister: persister,
		logger:    noopLogger{},
		window:    defaultSaveWindow,
		now:       time.Now,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// SetSaveWindow overrides the self-echo suppression window. Zero or
// negative keeps the default.
func (m *Manager) SetSaveWindow(d time.Duration) {
	if d > 0 {
		m.window = d
	}
}

// Load fetches, migrates and installs the layout document.
//
// Absent, empty and malformed documents all resolve to the default
// layout: a missing document is the first-run case, a broken one must
// never take the dashboard down. A legacy bare-array document is
// migrated in memory and persisted immediately in the current format.
//
// The active view selection survives a reload when the view still
// exists; otherwise it falls back to the first view.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	m.state = StateLoading
	m.mu.Unlock()

	raw, err := m.loader.Load(ctx)
	trimmed := bytes.TrimSpace(raw)

	var doc *Document
	migrated := false

	switch {
	case err != nil:
		if errors.Is(err, ErrNotFound) {
			m.logger.Info("no stored document, using default layout")
		} else {
			m.logger.Warn("document load failed, using default layout", "error", err)
		}
		doc = DefaultDocument()

	case len(trimmed) == 0:
		m.logger.Info("stored document is empty, using default layout")
		doc = DefaultDocument()

	case trimmed[0] == '[':
		doc, err = migrateLegacy(trimmed)
		if err != nil {
			m.logger.Warn("legacy document unreadable, using default layout", "error", err)
			doc = DefaultDocument()
		} else {
			m.logger.Info("legacy document migrated", "views", len(doc.Views))
			migrated = true
		}

	default:
		doc = &Document{}
		if uerr := json.Unmarshal(trimmed, doc); uerr != nil {
			m.logger.Warn("malformed document, using default layout", "error", uerr)
			doc = DefaultDocument()
		}
	}

	backfill(doc)

	if verr := doc.Validate(); verr != nil {
		m.logger.Warn("document failed validation, using default layout", "error", verr)
		doc = DefaultDocument()
	}

	m.mu.Lock()
	m.doc = doc
	if _, ok := doc.FindView(m.activeView); !ok {
		if len(doc.Views) > 0 {
			m.activeView = doc.Views[0].ID
		} else {
			m.activeView = ""
		}
	}
	m.state = StateReady
	m.mu.Unlock()

	m.logger.Info("document loaded", "views", len(doc.Views), "active_view", m.ActiveView())

	if migrated {
		// Persist the migrated form so the legacy path runs once. The
		// save arms the echo window, so the write-back does not trigger
		// a second load.
		if serr := m.Save(); serr != nil {
			m.logger.Warn("persisting migrated document failed", "error", serr)
		}
	}
	return nil
}

// Save serializes the document and hands it to the persister, then arms
// the self-echo window. Legacy room keys are stripped on every save.
func (m *Manager) Save() error {
	m.mu.Lock()
	if m.doc == nil {
		m.mu.Unlock()
		return ErrNotReady
	}
	m.state = StateSaving
	stripLegacy(m.doc)
	content, err := json.MarshalIndent(m.doc, "", "  ")
	m.mu.Unlock()

	if err != nil {
		m.setReady()
		return fmt.Errorf("dashboard: serializing document: %w", err)
	}

	if err := m.persister.Persist(content); err != nil {
		m.setReady()
		return fmt.Errorf("dashboard: persisting document: %w", err)
	}

	m.mu.Lock()
	m.savingUntil = m.now().Add(m.window)
	m.state = StateReady
	m.mu.Unlock()

	m.logger.Info("document saved", "bytes", len(content))
	return nil
}

func (m *Manager) setReady() {
	m.mu.Lock()
	m.state = StateReady
	m.mu.Unlock()
}

// HandleHolderChange reacts to a state change on the holder entity.
// Within the save window the change is the echo of our own write and is
// ignored; outside it the change is an external edit and triggers a
// reload. Returns whether a reload happened.
func (m *Manager) HandleHolderChange(ctx context.Context) (bool, error) {
	m.mu.Lock()
	suppressed := m.now().Before(m.savingUntil)
	m.mu.Unlock()

	if suppressed {
		m.logger.Debug("holder change suppressed (own save echo)")
		return false, nil
	}

	m.logger.Info("holder entity changed externally, reloading document")
	if err := m.Load(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Document returns the installed document, or nil before the first
// load. Callers must treat it as read-only; all mutation goes through
// the edit operations.
func (m *Manager) Document() *Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc
}

// ActiveView returns the id of the currently selected view.
func (m *Manager) ActiveView() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeView
}

// SetActiveView selects a view by id. Unknown ids are rejected.
func (m *Manager) SetActiveView(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return ErrNotReady
	}
	if _, ok := m.doc.FindView(id); !ok {
		return fmt.Errorf("%w: %q", ErrViewNotFound, id)
	}
	m.activeView = id
	return nil
}

// AddView appends a new view and saves. The id is synthesized from the
// name plus a timestamp.
func (m *Manager) AddView(name, icon string, layout Layout) (string, error) {
	m.mu.Lock()
	if m.doc == nil {
		m.mu.Unlock()
		return "", ErrNotReady
	}
	v := View{
		ID:     synthesizeID(name, m.now()),
		Name:   name,
		Icon:   icon,
		Layout: layout,
	}
	if layout == LayoutTabs {
		v.Rooms = []Room{}
	} else {
		v.Cards = []Card{}
	}
	m.doc.Views = append(m.doc.Views, v)
	m.mu.Unlock()

	return v.ID, m.Save()
}

// UpdateView renames a view and saves. Layout changes are not supported;
// the card/room split would be ambiguous.
func (m *Manager) UpdateView(id, name, icon string) error {
	m.mu.Lock()
	if m.doc == nil {
		m.mu.Unlock()
		return ErrNotReady
	}
	v, ok := m.doc.FindView(id)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrViewNotFound, id)
	}
	v.Name = name
	v.Icon = icon
	m.mu.Unlock()

	return m.Save()
}

// DeleteView removes a view and saves. Deleting the active view moves
// the selection to the first remaining view.
func (m *Manager) DeleteView(id string) error {
	m.mu.Lock()
	if m.doc == nil {
		m.mu.Unlock()
		return ErrNotReady
	}
	idx := -1
	for i := range m.doc.Views {
		if m.doc.Views[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrViewNotFound, id)
	}
	m.doc.Views = append(m.doc.Views[:idx], m.doc.Views[idx+1:]...)
	if m.activeView == id {
		if len(m.doc.Views) > 0 {
			m.activeView = m.doc.Views[0].ID
		} else {
			m.activeView = ""
		}
	}
	m.mu.Unlock()

	return m.Save()
}

// AddRoom appends a room to a tabs view and saves.
func (m *Manager) AddRoom(viewID, name string) (string, error) {
	m.mu.Lock()
	if m.doc == nil {
		m.mu.Unlock()
		return "", ErrNotReady
	}
	v, ok := m.doc.FindView(viewID)
	if !ok || v.Layout != LayoutTabs {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: tabs view %q", ErrViewNotFound, viewID)
	}
	r := Room{ID: synthesizeID(name, m.now()), Name: name, Cards: []Card{}}
	v.Rooms = append(v.Rooms, r)
	m.mu.Unlock()

	return r.ID, m.Save()
}

// UpdateRoom renames a room and saves.
func (m *Manager) UpdateRoom(viewID, roomID, name string) error {
	m.mu.Lock()
	r, err := m.findRoomLocked(viewID, roomID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	r.Name = name
	m.mu.Unlock()

	return m.Save()
}

// DeleteRoom removes a room and its cards, then saves.
func (m *Manager) DeleteRoom(viewID, roomID string) error {
	m.mu.Lock()
	if m.doc == nil {
		m.mu.Unlock()
		return ErrNotReady
	}
	v, ok := m.doc.FindView(viewID)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrViewNotFound, viewID)
	}
	idx := -1
	for i := range v.Rooms {
		if v.Rooms[i].ID == roomID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrRoomNotFound, roomID)
	}
	v.Rooms = append(v.Rooms[:idx], v.Rooms[idx+1:]...)
	m.mu.Unlock()

	return m.Save()
}

// AddCard appends a card to a grid view (roomID empty) or to a room in
// a tabs view, validates it, and saves.
func (m *Manager) AddCard(viewID, roomID string, card Card) error {
	if err := card.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	cards, err := m.cardSliceLocked(viewID, roomID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	*cards = append(*cards, card)
	m.mu.Unlock()

	return m.Save()
}

// UpdateCard replaces the card at index and saves.
func (m *Manager) UpdateCard(viewID, roomID string, index int, card Card) error {
	if err := card.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	cards, err := m.cardSliceLocked(viewID, roomID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if index < 0 || index >= len(*cards) {
		m.mu.Unlock()
		return fmt.Errorf("%w: index %d", ErrCardNotFound, index)
	}
	(*cards)[index] = card
	m.mu.Unlock()

	return m.Save()
}

// DeleteCard removes the card at index and saves.
func (m *Manager) DeleteCard(viewID, roomID string, index int) error {
	m.mu.Lock()
	cards, err := m.cardSliceLocked(viewID, roomID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if index < 0 || index >= len(*cards) {
		m.mu.Unlock()
		return fmt.Errorf("%w: index %d", ErrCardNotFound, index)
	}
	*cards = append((*cards)[:index], (*cards)[index+1:]...)
	m.mu.Unlock()

	return m.Save()
}

// findRoomLocked resolves a room pointer. Caller holds m.mu.
func (m *Manager) findRoomLocked(viewID, roomID string) (*Room, error) {
	if m.doc == nil {
		return nil, ErrNotReady
	}
	v, ok := m.doc.FindView(viewID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrViewNotFound, viewID)
	}
	for i := range v.Rooms {
		if v.Rooms[i].ID == roomID {
			return &v.Rooms[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, roomID)
}

// cardSliceLocked resolves the card slice addressed by viewID and an
// optional roomID. Caller holds m.mu.
func (m *Manager) cardSliceLocked(viewID, roomID string) (*[]Card, error) {
	if m.doc == nil {
		return nil, ErrNotReady
	}
	v, ok := m.doc.FindView(viewID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrViewNotFound, viewID)
	}
	if roomID == "" {
		return &v.Cards, nil
	}
	for i := range v.Rooms {
		if v.Rooms[i].ID == roomID {
			return &v.Rooms[i].Cards, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, roomID)
}

// backfill normalizes nil sequences so render code never branches on
// nil, and gives id-less views a synthetic id.
func backfill(d *Document) {
	if d.SidebarWidgets == nil {
		d.SidebarWidgets = []WidgetRef{}
	}
	if d.Views == nil {
		d.Views = []View{}
	}
	for i := range d.Views {
		v := &d.Views[i]
		if v.ID == "" {
			v.ID = fmt.Sprintf("view_%d", i)
		}
		if v.Layout == "" {
			v.Layout = LayoutGrid
		}
		if v.Layout == LayoutTabs && v.Rooms == nil {
			v.Rooms = []Room{}
		}
		if v.Layout == LayoutGrid && v.Cards == nil {
			v.Cards = []Card{}
		}
	}
}

// stripLegacy removes pre-migration keys before serialization.
func stripLegacy(d *Document) {
	for i := range d.Views {
		for j := range d.Views[i].Rooms {
			d.Views[i].Rooms[j].LegacyEntities = nil
		}
	}
}
