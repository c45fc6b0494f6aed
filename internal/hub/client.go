package hub

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// defaultReconnectDelay is the fixed pause before a reconnect attempt.
// Attempts are independent: there is no backoff and no retry counter, so
// a persistent outage degrades to one attempt per interval.
const defaultReconnectDelay = 5 * time.Second

// Logger defines the logging interface used by the Client.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config contains hub connection settings.
type Config struct {
	// URL is the websocket endpoint of the hub (ws:// or wss://).
	URL string

	// Token is the long-lived access token presented during the
	// authentication handshake.
	Token string

	// ReconnectDelay overrides the fixed 5s reconnect pause. Zero keeps
	// the default.
	ReconnectDelay time.Duration
}

// Client owns the single duplex connection to the hub.
//
// Lifecycle per connection: dial, wait for auth_required, send auth.
// On auth_ok the client emits ConnConnected, subscribes to the
// state_changed event stream and requests the bulk snapshot, in that
// order. On auth_invalid it emits ConnAuthFailed and stays closed; an
// invalid token never retries. Any other close emits ConnDisconnected
// and schedules exactly one reconnect attempt.
//
// Outbound commands are fire-and-forget: each carries a monotonically
// increasing request id but the client never waits for the matching
// result. Correctness relies on the subsequent state_changed closing
// the loop.
type Client struct {
	cfg     Config
	logger  Logger
	handler Handler

	nextID atomic.Int64

	mu        sync.Mutex
	conn      *websocket.Conn
	open      bool // auth handshake completed
	closed    bool // Close called; no further reconnects
	reconnect *time.Timer
	dialer    *websocket.Dialer
}

// NewClient creates a hub client. The handler receives abstract events
// in strict arrival order; it must not be nil.
func NewClient(cfg Config, handler Handler) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	return &Client{
		cfg:     cfg,
		logger:  noopLogger{},
		handler: handler,
		dialer:  websocket.DefaultDialer,
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// Connect dials the hub and starts the read pump. The authentication
// handshake completes asynchronously; subscribers learn the outcome via
// connection-state events. A dial failure schedules a reconnect and is
// also returned so startup can log it.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	dialer := c.dialer
	c.mu.Unlock()

	c.logger.Info("connecting to hub", "url", c.cfg.URL)

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		c.logger.Warn("hub dial failed", "error", err)
		c.emit(Event{Kind: EventConnection, ConnState: ConnDisconnected})
		c.scheduleReconnect()
		return ErrConnectionFailed
	}

	c.mu.Lock()
	c.conn = conn
	c.open = false
	c.mu.Unlock()

	go c.readPump(conn)
	return nil
}

// Close shuts the connection down permanently: pending reconnect timers
// are cancelled and no further attempts are made.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	conn := c.conn
	c.conn = nil
	c.open = false
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected reports whether the channel is open and authenticated.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// CallService sends a command to the hub. Commands are best-effort:
// when the channel is not open the command is logged and lost; no
// queuing, no backpressure. The authoritative outcome is whatever state
// the hub next reports.
func (c *Client) CallService(domain, service string, data map[string]any) error {
	env := envelope{
		ID:          c.nextID.Add(1),
		Type:        msgCallService,
		Domain:      domain,
		Service:     service,
		ServiceData: data,
	}

	if err := c.send(env); err != nil {
		c.logger.Error("command dropped", "domain", domain, "service", service, "error", err)
		return err
	}

	c.logger.Debug("command sent", "id", env.ID, "domain", domain, "service", service)
	return nil
}

// send marshals and writes an envelope under the connection lock.
func (c *Client) send(env envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || (!c.open && env.Type != msgAuth) {
		return ErrNotConnected
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// readPump reads frames until the connection drops, dispatching each
// one. On exit it emits the appropriate connection state and, unless
// authentication was rejected or Close was called, schedules a single
// reconnect attempt.
func (c *Client) readPump(conn *websocket.Conn) {
	authFailed := false

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("hub connection lost", "error", err)
			} else {
				c.logger.Debug("hub connection closed", "error", err)
			}
			break
		}
		if c.dispatch(data) == dispatchAuthFailed {
			authFailed = true
			conn.Close()
		}
	}

	c.mu.Lock()
	// A stale pump (superseded by a newer connection) must not touch state.
	current := c.conn == conn
	if current {
		c.conn = nil
		c.open = false
	}
	closed := c.closed
	c.mu.Unlock()

	if !current {
		return
	}

	if authFailed {
		// Distinct from transport drops: no retry.
		c.emit(Event{Kind: EventConnection, ConnState: ConnAuthFailed})
		return
	}

	c.emit(Event{Kind: EventConnection, ConnState: ConnDisconnected})
	if !closed {
		c.scheduleReconnect()
	}
}

// scheduleReconnect arms a single reconnect attempt after the fixed
// delay. Last writer wins: an already pending timer is replaced, never
// stacked, so retry cadence stays at one attempt per interval.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.reconnect != nil {
		c.reconnect.Stop()
	}
	c.logger.Info("reconnect scheduled", "delay", c.cfg.ReconnectDelay)
	c.reconnect = time.AfterFunc(c.cfg.ReconnectDelay, func() {
		//nolint:errcheck // Failure emits events and re-schedules internally
		c.Connect(context.Background())
	})
}

// emit delivers an event to the subscriber.
func (c *Client) emit(ev Event) {
	if c.handler != nil {
		c.handler(ev)
	}
}
