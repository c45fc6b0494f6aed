package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Casaflow Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Hub       HubConfig       `yaml:"hub"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Database  DatabaseConfig  `yaml:"database"`
	History   HistoryConfig   `yaml:"history"`
	Presence  PresenceConfig  `yaml:"presence"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HubConfig contains hub websocket connection settings.
type HubConfig struct {
	// URL is the websocket endpoint of the hub.
	URL string `yaml:"url"`

	// Token is the long-lived access token for the auth handshake.
	Token string `yaml:"token"`

	// BaseURL is the hub's HTTP base, used for camera snapshots and
	// the layout document endpoint. Derived from URL when empty.
	BaseURL string `yaml:"base_url"`

	// ReconnectDelay is the fixed pause between reconnect attempts,
	// in seconds.
	ReconnectDelay int `yaml:"reconnect_delay"`
}

// DashboardConfig contains layout document settings.
type DashboardConfig struct {
	// ConfigPath is the document path on the hub's HTTP server.
	ConfigPath string `yaml:"config_path"`

	// HolderEntity is the entity whose state carries the document.
	HolderEntity string `yaml:"holder_entity"`

	// PersonEntity is greeted by the welcome card. Optional.
	PersonEntity string `yaml:"person_entity"`

	// SaveWindow is the self-echo suppression window in milliseconds.
	SaveWindow int `yaml:"save_window"`

	// EditMode starts the session with layout editing enabled.
	EditMode bool `yaml:"edit_mode"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// HistoryConfig contains local state history settings.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	// RetentionDays bounds how far back history is kept. 0 keeps all.
	RetentionDays int `yaml:"retention_days"`
}

// PresenceConfig contains MQTT presence announcement settings.
type PresenceConfig struct {
	Enabled bool               `yaml:"enabled"`
	Broker  PresenceBroker     `yaml:"broker"`
	Auth    PresenceAuthConfig `yaml:"auth"`

	// Topic is where online/offline is published, retained.
	Topic string `yaml:"topic"`
	QoS   int    `yaml:"qos"`
}

// PresenceBroker contains MQTT broker connection details.
type PresenceBroker struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// PresenceAuthConfig contains MQTT authentication credentials.
type PresenceAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TelemetryConfig contains InfluxDB telemetry settings.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CASAFLOW_SECTION_KEY
// For example: CASAFLOW_HUB_TOKEN, CASAFLOW_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Hub: HubConfig{
			URL:            "ws://homeassistant.local:8123/api/websocket",
			ReconnectDelay: 5,
		},
		Dashboard: DashboardConfig{
			ConfigPath:   "/local/dashboard_config.json",
			HolderEntity: "input_text.dashboard_ui_config",
			PersonEntity: "person.user",
			SaveWindow:   1500,
		},
		Database: DatabaseConfig{
			Path:        "./data/casaflow.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
		Presence: PresenceConfig{
			Broker: PresenceBroker{
				Host:     "localhost",
				Port:     1883,
				ClientID: "casaflow-core",
			},
			Topic: "casaflow/status",
			QoS:   1,
		},
		Telemetry: TelemetryConfig{
			Bucket:        "casaflow",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CASAFLOW_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Hub
	if v := os.Getenv("CASAFLOW_HUB_URL"); v != "" {
		cfg.Hub.URL = v
	}
	if v := os.Getenv("CASAFLOW_HUB_TOKEN"); v != "" {
		cfg.Hub.Token = v
	}
	if v := os.Getenv("CASAFLOW_HUB_BASE_URL"); v != "" {
		cfg.Hub.BaseURL = v
	}

	// Database
	if v := os.Getenv("CASAFLOW_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Presence
	if v := os.Getenv("CASAFLOW_PRESENCE_HOST"); v != "" {
		cfg.Presence.Broker.Host = v
	}
	if v := os.Getenv("CASAFLOW_PRESENCE_USERNAME"); v != "" {
		cfg.Presence.Auth.Username = v
	}
	if v := os.Getenv("CASAFLOW_PRESENCE_PASSWORD"); v != "" {
		cfg.Presence.Auth.Password = v
	}

	// Telemetry
	if v := os.Getenv("CASAFLOW_TELEMETRY_TOKEN"); v != "" {
		cfg.Telemetry.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Hub validation. The token is the one secret the core cannot run
	// without: every frame after the handshake depends on it.
	if c.Hub.URL == "" {
		errs = append(errs, "hub.url is required")
	} else if !strings.HasPrefix(c.Hub.URL, "ws://") && !strings.HasPrefix(c.Hub.URL, "wss://") {
		errs = append(errs, "hub.url must be a ws:// or wss:// endpoint")
	}
	if c.Hub.Token == "" {
		errs = append(errs, "hub.token is required (set CASAFLOW_HUB_TOKEN environment variable)")
	}
	if c.Hub.ReconnectDelay < 1 {
		errs = append(errs, "hub.reconnect_delay must be at least 1 second")
	}

	// Dashboard validation
	if c.Dashboard.HolderEntity == "" {
		errs = append(errs, "dashboard.holder_entity is required")
	}
	if c.Dashboard.ConfigPath == "" {
		errs = append(errs, "dashboard.config_path is required")
	}
	if c.Dashboard.SaveWindow < 0 {
		errs = append(errs, "dashboard.save_window must not be negative")
	}

	// Database validation
	if c.History.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when history is enabled")
	}

	// Presence validation
	if c.Presence.QoS < 0 || c.Presence.QoS > 2 {
		errs = append(errs, "presence.qos must be 0, 1, or 2")
	}
	if c.Presence.Enabled && c.Presence.Topic == "" {
		errs = append(errs, "presence.topic is required when presence is enabled")
	}

	// Telemetry validation
	if c.Telemetry.Enabled {
		if c.Telemetry.URL == "" {
			errs = append(errs, "telemetry.url is required when telemetry is enabled")
		}
		if c.Telemetry.Token == "" {
			errs = append(errs, "telemetry.token is required when telemetry is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// HubBaseURL returns the hub's HTTP base URL, deriving it from the
// websocket endpoint when not set explicitly.
func (c *Config) HubBaseURL() string {
	if c.Hub.BaseURL != "" {
		return strings.TrimSuffix(c.Hub.BaseURL, "/")
	}
	base := c.Hub.URL
	base = strings.Replace(base, "wss://", "https://", 1)
	base = strings.Replace(base, "ws://", "http://", 1)
	return strings.TrimSuffix(strings.TrimSuffix(base, "/api/websocket"), "/")
}

// DocumentURL returns the absolute URL of the layout document.
func (c *Config) DocumentURL() string {
	return c.HubBaseURL() + c.Dashboard.ConfigPath
}

// GetReconnectDelay returns the hub reconnect delay as a Duration.
func (c *Config) GetReconnectDelay() time.Duration {
	return time.Duration(c.Hub.ReconnectDelay) * time.Second
}

// GetSaveWindow returns the save suppression window as a Duration.
func (c *Config) GetSaveWindow() time.Duration {
	return time.Duration(c.Dashboard.SaveWindow) * time.Millisecond
}

// GetFlushInterval returns the telemetry flush interval as a Duration.
func (c *Config) GetFlushInterval() time.Duration {
	return time.Duration(c.Telemetry.FlushInterval) * time.Second
}
