package presence

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/dverna/casaflow-core/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// reconnectInitialDelay and reconnectMaxDelay bound the paho backoff.
	reconnectInitialDelay = 1 * time.Second
	reconnectMaxDelay     = 60 * time.Second

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// Announcer publishes the dashboard's online/offline status to an MQTT
// broker so other home services can tell a dead panel from a dark one.
//
// The status message is retained: a subscriber always sees the last
// known state. An unexpected drop is covered by the broker through the
// Last Will message configured at connect time.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Announcer struct {
	client pahomqtt.Client
	cfg    config.PresenceConfig

	connected bool
	mu        sync.RWMutex
}

// Connect establishes a connection to the MQTT broker and announces
// the dashboard as online.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS)
//  2. Configures Last Will and Testament for crash detection
//  3. Sets up auto-reconnect with exponential backoff
//  4. Attempts initial connection with timeout
//  5. Publishes retained online status to the presence topic
//
// Parameters:
//   - cfg: Presence configuration from config.yaml
//
// Returns:
//   - *Announcer: Connected announcer ready for use
//   - error: If presence is disabled or connection fails within timeout
func Connect(cfg config.PresenceConfig) (*Announcer, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	a := &Announcer{cfg: cfg}
	opts := buildClientOptions(cfg)

	// Every reconnect re-announces online: the retained offline from
	// the Will must not outlive a recovered connection.
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		a.mu.Lock()
		a.connected = true
		a.mu.Unlock()
		a.publishStatus(statusOnline)
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, _ error) {
		a.mu.Lock()
		a.connected = false
		a.mu.Unlock()
	})

	a.client = pahomqtt.NewClient(opts)
	token := a.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously and may not have fired
	// yet; set the flag here so IsConnected() is true on return.
	a.mu.Lock()
	a.connected = true
	a.mu.Unlock()

	return a, nil
}

// Close announces a graceful offline and disconnects from the broker.
//
// The graceful offline payload differs from the Will payload, so
// subscribers can distinguish a shutdown from a crash.
//
// Returns:
//   - error: nil (disconnecting an already closed client is not an error)
func (a *Announcer) Close() error {
	if a.client == nil {
		return nil
	}

	if a.IsConnected() {
		token := a.publishStatus(statusOffline)
		token.WaitTimeout(defaultPublishTimeout)
	}

	a.client.Disconnect(defaultDisconnectQuiesce)

	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()

	return nil
}

// HealthCheck verifies the broker connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (a *Announcer) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("presence health check: %w", ctx.Err())
	default:
	}

	if !a.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
func (a *Announcer) IsConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connected && a.client.IsConnected()
}

// publishStatus publishes a retained status payload to the presence topic.
func (a *Announcer) publishStatus(status string) pahomqtt.Token {
	payload := buildStatusPayload(status, a.cfg.Broker.ClientID, "")
	return a.client.Publish(a.cfg.Topic, byte(a.cfg.QoS), true, payload)
}

// buildClientOptions creates paho MQTT options from presence config.
func buildClientOptions(cfg config.PresenceConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(reconnectInitialDelay)
	opts.SetMaxReconnectInterval(reconnectMaxDelay)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	// The broker publishes this if the client vanishes without a
	// graceful Close. QoS 1 and retained so it is not missed.
	opts.SetWill(cfg.Topic, buildStatusPayload(statusOffline, cfg.Broker.ClientID, reasonUnexpected), 1, true)

	return opts
}

const (
	statusOnline  = "online"
	statusOffline = "offline"

	reasonUnexpected = "unexpected_disconnect"
)

// buildStatusPayload creates the JSON payload for status messages.
func buildStatusPayload(status, clientID, reason string) string {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	if reason != "" {
		return fmt.Sprintf(
			`{"status":%q,"client_id":%q,"reason":%q,"timestamp":%q}`,
			status, clientID, reason, timestamp,
		)
	}
	return fmt.Sprintf(
		`{"status":%q,"client_id":%q,"timestamp":%q}`,
		status, clientID, timestamp,
	)
}
