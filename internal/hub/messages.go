package hub

import (
	"encoding/json"

	"github.com/dverna/casaflow-core/internal/entity"
)

// Hub protocol envelope types.
const (
	// Inbound.
	msgAuthRequired = "auth_required"
	msgAuthOK       = "auth_ok"
	msgAuthInvalid  = "auth_invalid"
	msgEvent        = "event"
	msgResult       = "result"

	// Outbound.
	msgAuth            = "auth"
	msgSubscribeEvents = "subscribe_events"
	msgGetStates       = "get_states"
	msgCallService     = "call_service"

	// The only event type this client subscribes to.
	eventStateChanged = "state_changed"
)

// envelope is the JSON frame exchanged with the hub. One struct covers
// both directions; unused fields stay zero and are omitted on encode.
type envelope struct {
	ID   int64  `json:"id,omitempty"`
	Type string `json:"type"`

	// Outbound auth.
	AccessToken string `json:"access_token,omitempty"`

	// Outbound subscribe_events.
	EventType string `json:"event_type,omitempty"`

	// Outbound call_service.
	Domain      string         `json:"domain,omitempty"`
	Service     string         `json:"service,omitempty"`
	ServiceData map[string]any `json:"service_data,omitempty"`

	// Inbound auth_invalid.
	Message string `json:"message,omitempty"`

	// Inbound event.
	Event *wireEvent `json:"event,omitempty"`

	// Inbound result.
	Success *bool           `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
}

// wireEvent wraps a state_changed payload.
type wireEvent struct {
	EventType string        `json:"event_type"`
	Data      wireEventData `json:"data"`
}

// wireEventData carries the old and new snapshots of a state change.
// NewState is nil when an entity is removed from the hub.
type wireEventData struct {
	EntityID string           `json:"entity_id"`
	OldState *entity.Snapshot `json:"old_state"`
	NewState *entity.Snapshot `json:"new_state"`
}

// wireError is the error object attached to a failed result.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnState describes the connection lifecycle as seen by subscribers.
type ConnState string

// Connection states emitted with EventConnection.
const (
	ConnConnected    ConnState = "connected"
	ConnDisconnected ConnState = "disconnected"
	ConnAuthFailed   ConnState = "auth_failed"
)

// EventKind classifies the abstract events the transport emits.
type EventKind int

// Abstract event kinds. Everything inbound reduces to these three;
// unknown or malformed envelopes are dropped before reaching subscribers.
const (
	// EventConnection signals a connection-state transition.
	EventConnection EventKind = iota

	// EventStateChanged carries one replaced entity snapshot.
	EventStateChanged

	// EventInitialStates carries the bulk snapshot of all entities.
	EventInitialStates
)

// Event is the abstract event delivered to the transport subscriber.
type Event struct {
	Kind EventKind

	// ConnState is set for EventConnection.
	ConnState ConnState

	// Snapshot is set for EventStateChanged.
	Snapshot *entity.Snapshot

	// Snapshots is set for EventInitialStates.
	Snapshots []entity.Snapshot
}

// Handler receives abstract events in strict arrival order.
type Handler func(Event)
