package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dverna/casaflow-core/internal/controls"
	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
	"github.com/dverna/casaflow-core/internal/hub"
	"github.com/dverna/casaflow-core/internal/view"
)

const holderID = "input_text.dashboard_ui_config"

type staticLoader struct {
	mu    sync.Mutex
	data  []byte
	calls int
}

func (l *staticLoader) Load(context.Context) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.data == nil {
		return nil, dashboard.ErrNotFound
	}
	return l.data, nil
}

func (l *staticLoader) loadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type nullPersister struct{}

func (nullPersister) Persist([]byte) error { return nil }

type nullSink struct{}

func (nullSink) CallService(string, string, map[string]any) error { return nil }

type recordingRenderer struct {
	mu        sync.Mutex
	fulls     int
	mutations [][]view.Mutation
}

func (r *recordingRenderer) FullRender(*view.Fragment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fulls++
}

func (r *recordingRenderer) ApplyMutations(muts []view.Mutation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, muts)
}

func (r *recordingRenderer) fullCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fulls
}

func (r *recordingRenderer) mutationBatches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mutations)
}

type recordingStateSink struct {
	mu  sync.Mutex
	ids []string
}

func (s *recordingStateSink) RecordState(_ context.Context, snap *entity.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, snap.EntityID)
	return nil
}

func (s *recordingStateSink) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

func gridDoc(t *testing.T, entities ...string) []byte {
	t.Helper()
	cards := make([]dashboard.Card, 0, len(entities))
	for _, id := range entities {
		cards = append(cards, dashboard.Card{Type: dashboard.CardEntity, ID: id})
	}
	doc := &dashboard.Document{Views: []dashboard.View{{
		ID: "home", Name: "Home", Layout: dashboard.LayoutGrid, Cards: cards,
	}}}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	return raw
}

func newTestSession(t *testing.T, loader *staticLoader, sinks ...StateSink) (*Session, *recordingRenderer, *dashboard.Manager, *entity.Store) {
	t.Helper()
	store := entity.NewStore()
	manager := dashboard.NewManager(loader, nullPersister{})
	registry := controls.NewRegistry(nullSink{}, "")
	engine := view.NewEngine(store, manager, registry, "")
	renderer := &recordingRenderer{}
	s := New(Config{HolderEntity: holderID}, store, manager, engine, renderer, sinks...)
	return s, renderer, manager, store
}

func TestInitialStatesBringUpTheApp(t *testing.T) {
	loader := &staticLoader{data: gridDoc(t, "light.soggiorno")}
	s, renderer, manager, store := newTestSession(t, loader)

	s.handle(context.Background(), hub.Event{Kind: hub.EventConnection, ConnState: hub.ConnConnected})
	s.handle(context.Background(), hub.Event{
		Kind: hub.EventInitialStates,
		Snapshots: []entity.Snapshot{
			{EntityID: "light.soggiorno", State: "on", Attributes: entity.Attributes{}},
			{EntityID: "sensor.temp", State: "21.5", Attributes: entity.Attributes{}},
		},
	})

	if store.Len() != 2 {
		t.Errorf("store entities = %d, want 2", store.Len())
	}
	if manager.State() != dashboard.StateReady {
		t.Errorf("manager state = %v, want ready", manager.State())
	}
	if renderer.fullCount() != 1 {
		t.Errorf("full renders = %d, want 1", renderer.fullCount())
	}
}

func TestStateChangeEmitsMutationsAndRecords(t *testing.T) {
	loader := &staticLoader{data: gridDoc(t, "light.soggiorno")}
	sink := &recordingStateSink{}
	s, renderer, _, _ := newTestSession(t, loader, sink)

	s.handle(context.Background(), hub.Event{
		Kind:      hub.EventInitialStates,
		Snapshots: []entity.Snapshot{{EntityID: "light.soggiorno", State: "off", Attributes: entity.Attributes{}}},
	})

	s.handle(context.Background(), hub.Event{
		Kind:     hub.EventStateChanged,
		Snapshot: &entity.Snapshot{EntityID: "light.soggiorno", State: "on", Attributes: entity.Attributes{}},
	})

	if renderer.mutationBatches() != 1 {
		t.Fatalf("mutation batches = %d, want 1", renderer.mutationBatches())
	}
	if got := sink.recorded(); len(got) != 1 || got[0] != "light.soggiorno" {
		t.Errorf("recorded states = %v", got)
	}
}

func TestUnboundStateChangeSkipsRender(t *testing.T) {
	loader := &staticLoader{data: gridDoc(t, "light.soggiorno")}
	sink := &recordingStateSink{}
	s, renderer, _, store := newTestSession(t, loader, sink)

	s.handle(context.Background(), hub.Event{Kind: hub.EventInitialStates, Snapshots: nil})

	s.handle(context.Background(), hub.Event{
		Kind:     hub.EventStateChanged,
		Snapshot: &entity.Snapshot{EntityID: "sensor.cantina", State: "12", Attributes: entity.Attributes{}},
	})

	// Unplaced entities still land in the store and the sinks, they
	// just produce no render work.
	if _, ok := store.Get("sensor.cantina"); !ok {
		t.Error("unbound entity missing from store")
	}
	if renderer.mutationBatches() != 0 {
		t.Errorf("mutation batches = %d, want 0", renderer.mutationBatches())
	}
	if len(sink.recorded()) != 1 {
		t.Errorf("recorded states = %v", sink.recorded())
	}
}

func TestHolderEchoSuppressed(t *testing.T) {
	loader := &staticLoader{data: gridDoc(t, "light.soggiorno")}
	s, renderer, manager, _ := newTestSession(t, loader)
	manager.SetSaveWindow(time.Hour)

	s.handle(context.Background(), hub.Event{Kind: hub.EventInitialStates, Snapshots: nil})
	loadsBefore := loader.loadCount()
	rendersBefore := renderer.fullCount()

	if err := manager.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The echo arrives back through the state stream well inside the
	// window; it must not reload or re-render.
	s.handle(context.Background(), hub.Event{
		Kind:     hub.EventStateChanged,
		Snapshot: &entity.Snapshot{EntityID: holderID, State: "updated", Attributes: entity.Attributes{}},
	})

	if loader.loadCount() != loadsBefore {
		t.Errorf("loads = %d, want %d (echo suppressed)", loader.loadCount(), loadsBefore)
	}
	if renderer.fullCount() != rendersBefore {
		t.Errorf("full renders = %d, want %d", renderer.fullCount(), rendersBefore)
	}
}

func TestHolderExternalEditReloads(t *testing.T) {
	loader := &staticLoader{data: gridDoc(t, "light.soggiorno")}
	s, renderer, _, _ := newTestSession(t, loader)

	s.handle(context.Background(), hub.Event{Kind: hub.EventInitialStates, Snapshots: nil})
	loadsBefore := loader.loadCount()
	rendersBefore := renderer.fullCount()

	// No save in flight: the change is an external edit.
	s.handle(context.Background(), hub.Event{
		Kind:     hub.EventStateChanged,
		Snapshot: &entity.Snapshot{EntityID: holderID, State: "edited elsewhere", Attributes: entity.Attributes{}},
	})

	if loader.loadCount() != loadsBefore+1 {
		t.Errorf("loads = %d, want %d", loader.loadCount(), loadsBefore+1)
	}
	if renderer.fullCount() != rendersBefore+1 {
		t.Errorf("full renders = %d, want %d", renderer.fullCount(), rendersBefore+1)
	}
}

func TestDisconnectRendersBanner(t *testing.T) {
	loader := &staticLoader{data: gridDoc(t)}
	s, renderer, _, _ := newTestSession(t, loader)

	s.handle(context.Background(), hub.Event{Kind: hub.EventInitialStates, Snapshots: nil})
	before := renderer.fullCount()

	s.handle(context.Background(), hub.Event{Kind: hub.EventConnection, ConnState: hub.ConnDisconnected})
	if renderer.fullCount() != before+1 {
		t.Errorf("full renders = %d, want %d", renderer.fullCount(), before+1)
	}
}

func TestRunDeliversInWireOrder(t *testing.T) {
	loader := &staticLoader{data: gridDoc(t, "light.a")}
	sink := &recordingStateSink{}
	s, _, _, store := newTestSession(t, loader, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		//nolint:errcheck // Run returns ctx.Err() on cancel
		s.Run(ctx)
	}()

	handler := s.HubHandler()
	handler(hub.Event{Kind: hub.EventInitialStates, Snapshots: nil})
	for _, state := range []string{"on", "off", "on"} {
		handler(hub.Event{
			Kind:     hub.EventStateChanged,
			Snapshot: &entity.Snapshot{EntityID: "light.a", State: state, Attributes: entity.Attributes{}},
		})
	}

	deadline := time.After(2 * time.Second)
	for len(sink.recorded()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("recorded %d states, want 3", len(sink.recorded()))
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	// Last write wins: the final state must be the last one sent.
	snap, ok := store.Get("light.a")
	if !ok || snap.State != "on" {
		t.Errorf("final state = %+v, want on", snap)
	}
}
