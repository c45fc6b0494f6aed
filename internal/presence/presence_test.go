package presence

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dverna/casaflow-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.PresenceConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestBuildStatusPayload(t *testing.T) {
	payload := buildStatusPayload(statusOnline, "casaflow-core", "")

	var msg map[string]string
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if msg["status"] != "online" {
		t.Errorf("status = %q, want online", msg["status"])
	}
	if msg["client_id"] != "casaflow-core" {
		t.Errorf("client_id = %q", msg["client_id"])
	}
	if _, ok := msg["reason"]; ok {
		t.Error("online payload should not carry a reason")
	}
	if msg["timestamp"] == "" {
		t.Error("timestamp missing")
	}
}

func TestBuildStatusPayloadWithReason(t *testing.T) {
	payload := buildStatusPayload(statusOffline, "casaflow-core", reasonUnexpected)

	var msg map[string]string
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if msg["status"] != "offline" {
		t.Errorf("status = %q, want offline", msg["status"])
	}
	if msg["reason"] != "unexpected_disconnect" {
		t.Errorf("reason = %q", msg["reason"])
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.PresenceConfig{
		Enabled: true,
		Broker: config.PresenceBroker{
			Host:     "broker.local",
			Port:     1883,
			ClientID: "casaflow-core",
		},
		Auth:  config.PresenceAuthConfig{Username: "casa", Password: "flow"},
		Topic: "casaflow/status",
		QoS:   1,
	}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://broker.local:1883" {
		t.Errorf("broker URL = %v, want tcp://broker.local:1883", opts.Servers)
	}
	if opts.ClientID != "casaflow-core" {
		t.Errorf("client id = %q", opts.ClientID)
	}
	if opts.Username != "casa" {
		t.Errorf("username = %q", opts.Username)
	}
	if !opts.WillEnabled {
		t.Fatal("Will not configured")
	}
	if opts.WillTopic != "casaflow/status" {
		t.Errorf("Will topic = %q", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("Will should be retained")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := config.PresenceConfig{
		Enabled: true,
		Broker: config.PresenceBroker{
			Host:     "broker.local",
			Port:     8883,
			TLS:      true,
			ClientID: "casaflow-core",
		},
		Topic: "casaflow/status",
	}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].Scheme != "ssl" {
		t.Errorf("broker scheme = %v, want ssl", opts.Servers)
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLS config not set")
	}
}
