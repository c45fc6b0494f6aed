package session

import (
	"context"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
	"github.com/dverna/casaflow-core/internal/hub"
	"github.com/dverna/casaflow-core/internal/view"
)

// eventBuffer sizes the handoff channel between the hub read pump and
// the session loop. When full the pump blocks, which keeps ordering
// and pushes backpressure onto the socket instead of dropping events.
const eventBuffer = 256

// Logger defines the logging interface used by the Session.
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

// RenderSink receives render output. The presentation layer implements
// it; both methods are called from the session loop only.
type RenderSink interface {
	FullRender(root *view.Fragment)
	ApplyMutations(muts []view.Mutation)
}

// StateSink receives every accepted state change, for recording
// pipelines (history, telemetry). Errors are logged, never fatal.
type StateSink interface {
	RecordState(ctx context.Context, snap *entity.Snapshot) error
}

// Config holds session settings.
type Config struct {
	// HolderEntity is the entity whose state carries the layout
	// document; its changes route to the document manager, not the
	// store.
	HolderEntity string
}

// Session is the single consumer of hub events.
//
// All mutation of the store, the document manager and the engine
// happens on the session loop, in wire order. Everything downstream
// can therefore stay lock-light: the loop is the one writer.
type Session struct {
	cfg      Config
	store    *entity.Store
	manager  *dashboard.Manager
	engine   *view.Engine
	renderer RenderSink
	sinks    []StateSink
	logger   Logger

	events  chan hub.Event
	started bool
}

// New creates a session. The renderer must not be nil; state sinks are
// optional.
func New(cfg Config, store *entity.Store, manager *dashboard.Manager, engine *view.Engine, renderer RenderSink, sinks ...StateSink) *Session {
	return &Session{
		cfg:      cfg,
		store:    store,
		manager:  manager,
		engine:   engine,
		renderer: renderer,
		sinks:    sinks,
		logger:   noopLogger{},
		events:   make(chan hub.Event, eventBuffer),
	}
}

// SetLogger sets the logger for the session.
func (s *Session) SetLogger(logger Logger) {
	s.logger = logger
}

// HubHandler returns the handler to wire into hub.NewClient. It blocks
// when the loop falls behind, preserving event order.
func (s *Session) HubHandler() hub.Handler {
	return func(ev hub.Event) {
		s.events <- ev
	}
}

// Run consumes events until the context is cancelled. It renders the
// initial "connecting" frame immediately so the UI is never blank.
func (s *Session) Run(ctx context.Context) error {
	s.engine.SetConnection(view.ConnectionReconnecting)
	s.renderer.FullRender(s.engine.RenderApp())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session loop stopping")
			return ctx.Err()
		case ev := <-s.events:
			s.handle(ctx, ev)
		}
	}
}

// handle processes one hub event on the loop goroutine.
func (s *Session) handle(ctx context.Context, ev hub.Event) {
	switch ev.Kind {
	case hub.EventConnection:
		s.handleConnection(ev.ConnState)

	case hub.EventInitialStates:
		s.handleInitialStates(ctx, ev.Snapshots)

	case hub.EventStateChanged:
		s.handleStateChanged(ctx, ev.Snapshot)

	default:
		s.logger.Debug("unhandled event kind", "kind", ev.Kind)
	}
}

// handleConnection updates the banner. The connected banner waits for
// the bulk snapshot; reconnecting and auth failure render right away.
func (s *Session) handleConnection(state hub.ConnState) {
	switch state {
	case hub.ConnConnected:
		s.logger.Info("hub connected, awaiting snapshot")
	case hub.ConnDisconnected:
		s.engine.SetConnection(view.ConnectionReconnecting)
		s.renderer.FullRender(s.engine.RenderApp())
	case hub.ConnAuthFailed:
		s.engine.SetConnection(view.ConnectionAuthFailed)
		s.renderer.FullRender(s.engine.RenderApp())
	}
}

// handleInitialStates installs the bulk snapshot and brings the app up:
// store first, then the document, then one full render. On a reconnect
// the same path refreshes everything the outage may have missed.
func (s *Session) handleInitialStates(ctx context.Context, snaps []entity.Snapshot) {
	s.store.ApplyBulk(snaps)

	if err := s.manager.Load(ctx); err != nil {
		s.logger.Error("document load failed", "error", err)
	}

	s.engine.SetConnection(view.ConnectionConnected)
	s.renderer.FullRender(s.engine.RenderApp())
	s.logger.Info("initial render complete", "entities", s.store.Len())
}

// handleStateChanged routes one state change. The holder entity feeds
// the document manager; everything else feeds the store, the engine
// and the recording sinks.
func (s *Session) handleStateChanged(ctx context.Context, snap *entity.Snapshot) {
	if snap == nil {
		return
	}

	if snap.EntityID == s.cfg.HolderEntity {
		reloaded, err := s.manager.HandleHolderChange(ctx)
		if err != nil {
			s.logger.Error("holder reload failed", "error", err)
			return
		}
		if reloaded {
			s.renderer.FullRender(s.engine.RenderApp())
		}
		return
	}

	s.store.Apply(snap)

	if muts := s.engine.UpdateEntity(snap.EntityID); len(muts) > 0 {
		s.renderer.ApplyMutations(muts)
	}

	for _, sink := range s.sinks {
		if err := sink.RecordState(ctx, snap); err != nil {
			s.logger.Warn("state sink failed", "entity_id", snap.EntityID, "error", err)
		}
	}
}

// SetEditMode toggles layout editing and re-renders.
func (s *Session) SetEditMode(on bool) {
	s.engine.SetEditMode(on)
	s.renderer.FullRender(s.engine.RenderApp())
}

// SelectView switches the visible view and re-renders.
func (s *Session) SelectView(id string) error {
	root, err := s.engine.SelectView(id)
	if err != nil {
		return err
	}
	s.renderer.FullRender(root)
	return nil
}
