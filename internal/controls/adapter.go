package controls

import (
	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

// CommandSink is the outbound command primitive adapters use.
// *hub.Client satisfies it.
type CommandSink interface {
	CallService(domain, service string, data map[string]any) error
}

// Logger defines the logging interface used by the registry.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Summary is the card-level rendering of an entity: what a tile shows
// without opening the detail panel.
type Summary struct {
	// Name is the display name, card override first, then the entity's
	// friendly name, then the raw object id.
	Name string

	// StateText is the localized state line ("Accesa · 80%").
	StateText string

	// Icon is the icon identifier for the card.
	Icon string

	// Active marks the card visually lit (a light that is on, a cover
	// in motion).
	Active bool

	// ImageURL is set for camera summaries.
	ImageURL string
}

// Adapter renders and controls one entity domain. Summarize must be
// cheap; it runs on every state change of a bound entity. BuildDetail
// runs once per panel open, RefreshDetail on every change while open.
type Adapter interface {
	// Summarize produces the card summary for a snapshot. The card
	// carries user overrides and may be nil for unplaced entities.
	Summarize(snap *entity.Snapshot, card *dashboard.Card) Summary

	// SupportsDetail reports whether the domain offers controls beyond
	// the card tap, making the entity detail-eligible by default.
	SupportsDetail(snap *entity.Snapshot) bool

	// BuildDetail constructs the detail panel for a snapshot.
	BuildDetail(snap *entity.Snapshot, card *dashboard.Card) *Panel

	// RefreshDetail folds a new snapshot into an open panel, skipping
	// controls the user currently holds.
	RefreshDetail(panel *Panel, snap *entity.Snapshot)
}

// Registry maps entity domains to adapters, with a passive fallback
// for domains nobody claimed.
type Registry struct {
	sink     CommandSink
	logger   Logger
	adapters map[string]Adapter
	fallback Adapter
}

// NewRegistry creates a registry with all built-in domain adapters
// registered. CameraBaseURL is the hub's HTTP base for camera
// snapshots; empty disables camera images.
func NewRegistry(sink CommandSink, cameraBaseURL string) *Registry {
	r := &Registry{
		sink:     sink,
		logger:   noopLogger{},
		adapters: make(map[string]Adapter),
		fallback: &defaultAdapter{},
	}

	r.Register("light", &lightAdapter{sink: sink})
	r.Register("switch", &toggleAdapter{sink: sink, domain: "switch"})
	r.Register("input_boolean", &toggleAdapter{sink: sink, domain: "input_boolean"})
	r.Register("cover", &coverAdapter{sink: sink})
	r.Register("climate", &climateAdapter{sink: sink})
	r.Register("media_player", &mediaAdapter{sink: sink})
	r.Register("sensor", &sensorAdapter{})
	r.Register("binary_sensor", &binarySensorAdapter{})
	r.Register("weather", &weatherAdapter{})
	r.Register("camera", &cameraAdapter{baseURL: cameraBaseURL})
	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Register installs an adapter for a domain, replacing any existing one.
func (r *Registry) Register(domain string, a Adapter) {
	r.adapters[domain] = a
}

// ForDomain returns the adapter for a domain, or the passive default.
func (r *Registry) ForDomain(domain string) Adapter {
	if a, ok := r.adapters[domain]; ok {
		return a
	}
	r.logger.Debug("no adapter for domain, using default", "domain", domain)
	return r.fallback
}

// ForEntity returns the adapter for an entity id.
func (r *Registry) ForEntity(entityID string) Adapter {
	return r.ForDomain(entity.DomainOf(entityID))
}

// displayName resolves the card-level display name.
func displayName(snap *entity.Snapshot, card *dashboard.Card) string {
	if card != nil && card.Name != "" {
		return card.Name
	}
	return snap.FriendlyName()
}

// cardIcon resolves the card-level icon override.
func cardIcon(card *dashboard.Card, fallback string) string {
	if card != nil && card.Icon != "" {
		return card.Icon
	}
	return fallback
}
