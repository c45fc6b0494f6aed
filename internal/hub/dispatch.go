package hub

import (
	"encoding/json"

	"github.com/dverna/casaflow-core/internal/entity"
)

// dispatchResult tells the read pump whether a frame ended the session.
type dispatchResult int

const (
	dispatchOK dispatchResult = iota
	dispatchAuthFailed
)

// dispatch classifies one inbound frame and forwards it to the
// subscriber. Unknown and malformed frames are dropped with a warning
// log, never fatal.
func (c *Client) dispatch(data []byte) dispatchResult {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("malformed frame dropped", "error", err)
		return dispatchOK
	}

	switch env.Type {
	case msgAuthRequired:
		c.handleAuthRequired()

	case msgAuthOK:
		c.handleAuthOK()

	case msgAuthInvalid:
		c.logger.Error("hub rejected authentication", "message", env.Message)
		return dispatchAuthFailed

	case msgEvent:
		c.handleEvent(env.Event)

	case msgResult:
		c.handleResult(env)

	default:
		c.logger.Debug("unknown frame dropped", "type", env.Type)
	}

	return dispatchOK
}

// handleAuthRequired answers the handshake challenge with the token.
func (c *Client) handleAuthRequired() {
	err := c.send(envelope{Type: msgAuth, AccessToken: c.cfg.Token})
	if err != nil {
		c.logger.Error("sending auth failed", "error", err)
	}
}

// handleAuthOK marks the channel open and performs the mandatory
// post-auth sequence: emit connected, subscribe to the change stream,
// request the bulk snapshot, in that order.
func (c *Client) handleAuthOK() {
	c.mu.Lock()
	c.open = true
	c.mu.Unlock()

	c.logger.Info("hub authentication succeeded")
	c.emit(Event{Kind: EventConnection, ConnState: ConnConnected})

	if err := c.send(envelope{
		ID:        c.nextID.Add(1),
		Type:      msgSubscribeEvents,
		EventType: eventStateChanged,
	}); err != nil {
		c.logger.Error("subscribing to events failed", "error", err)
	}

	if err := c.send(envelope{ID: c.nextID.Add(1), Type: msgGetStates}); err != nil {
		c.logger.Error("requesting bulk snapshot failed", "error", err)
	}
}

// handleEvent forwards a state_changed event. Events without a new
// state (entity removed upstream) are dropped; removal is a future
// extension point, not a current signal.
func (c *Client) handleEvent(ev *wireEvent) {
	if ev == nil || ev.EventType != eventStateChanged {
		return
	}
	if ev.Data.NewState == nil {
		c.logger.Debug("state_changed without new_state dropped", "entity_id", ev.Data.EntityID)
		return
	}
	c.emit(Event{Kind: EventStateChanged, Snapshot: ev.Data.NewState})
}

// handleResult forwards a successful get_states result as the bulk
// snapshot. Command acknowledgements and failed results are logged
// only; the client never correlates them back to a caller.
func (c *Client) handleResult(env envelope) {
	if env.Success == nil || !*env.Success {
		if env.Error != nil {
			c.logger.Warn("hub reported command error", "id", env.ID, "code", env.Error.Code, "message", env.Error.Message)
		}
		return
	}
	if len(env.Result) == 0 || env.Result[0] != '[' {
		// Plain command acknowledgement; nothing to forward.
		return
	}

	var snaps []entity.Snapshot
	if err := json.Unmarshal(env.Result, &snaps); err != nil {
		c.logger.Warn("malformed bulk result dropped", "error", err)
		return
	}
	c.emit(Event{Kind: EventInitialStates, Snapshots: snaps})
}
