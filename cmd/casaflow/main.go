// Casaflow Core - Home Dashboard Synchronisation Engine
//
// This is the main entry point for the Casaflow Core application.
// Casaflow keeps a wall-mounted dashboard in lockstep with a home
// automation hub: live entity state over websocket, a layout document
// stored on the hub itself, and per-domain controls for lights,
// climate, covers, media and more.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/dverna/casaflow-core/migrations"

	"github.com/dverna/casaflow-core/internal/controls"
	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
	"github.com/dverna/casaflow-core/internal/history"
	"github.com/dverna/casaflow-core/internal/hub"
	"github.com/dverna/casaflow-core/internal/infrastructure/config"
	"github.com/dverna/casaflow-core/internal/infrastructure/database"
	"github.com/dverna/casaflow-core/internal/infrastructure/logging"
	"github.com/dverna/casaflow-core/internal/presence"
	"github.com/dverna/casaflow-core/internal/session"
	"github.com/dverna/casaflow-core/internal/telemetry"
	"github.com/dverna/casaflow-core/internal/view"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// historyPruneInterval is how often expired history rows are swept.
const historyPruneInterval = time.Hour

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Casaflow Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// State sinks: every accepted state change is offered to each of
	// these after the view has been patched.
	var sinks []session.StateSink

	// Local state history (optional)
	if cfg.History.Enabled {
		repo := history.NewRepository(db.DB)
		sinks = append(sinks, repo)

		if cfg.History.RetentionDays > 0 {
			retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
			go repo.RunPruner(ctx, retention, historyPruneInterval)
			log.Info("history recording enabled", "retention_days", cfg.History.RetentionDays)
		} else {
			log.Info("history recording enabled", "retention", "unbounded")
		}
	} else {
		log.Info("history recording disabled")
	}

	// InfluxDB telemetry (optional)
	if cfg.Telemetry.Enabled {
		telemetryClient, telErr := telemetry.Connect(cfg.Telemetry, func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		if telErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", telErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := telemetryClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		sinks = append(sinks, telemetryClient)
		log.Info("InfluxDB connected",
			"url", cfg.Telemetry.URL,
			"org", cfg.Telemetry.Org,
			"bucket", cfg.Telemetry.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// MQTT presence announcements (optional)
	if cfg.Presence.Enabled {
		announcer, presErr := presence.Connect(cfg.Presence)
		if presErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", presErr)
		}
		defer func() {
			log.Info("announcing offline and disconnecting from MQTT")
			if closeErr := announcer.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("presence announced",
			"broker", fmt.Sprintf("%s:%d", cfg.Presence.Broker.Host, cfg.Presence.Broker.Port),
			"topic", cfg.Presence.Topic,
		)
	} else {
		log.Info("presence disabled")
	}

	// Hub client. The event handler is bound after the session exists;
	// nothing arrives before Connect, which runs last.
	var handle hub.Handler
	client := hub.NewClient(hub.Config{
		URL:            cfg.Hub.URL,
		Token:          cfg.Hub.Token,
		ReconnectDelay: cfg.GetReconnectDelay(),
	}, func(ev hub.Event) {
		handle(ev)
	})
	client.SetLogger(log)
	defer func() {
		log.Info("closing hub connection")
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing hub connection", "error", closeErr)
		}
	}()

	// Core state: entity store, layout document manager, control
	// registry and the view engine that ties them together.
	store := entity.NewStore()

	manager := dashboard.NewManager(
		dashboard.NewHTTPLoader(cfg.DocumentURL()),
		dashboard.NewServicePersister(client),
	)
	manager.SetLogger(log)
	manager.SetSaveWindow(cfg.GetSaveWindow())

	registry := controls.NewRegistry(client, cfg.HubBaseURL())
	registry.SetLogger(log)

	engine := view.NewEngine(store, manager, registry, cfg.Dashboard.PersonEntity)
	engine.SetLogger(log)

	renderer := &renderLog{log: log}

	sess := session.New(session.Config{
		HolderEntity: cfg.Dashboard.HolderEntity,
	}, store, manager, engine, renderer, sinks...)
	sess.SetLogger(log)
	if cfg.Dashboard.EditMode {
		sess.SetEditMode(true)
	}
	handle = sess.HubHandler()

	// Connect to the hub. A failed dial is logged, not fatal: the
	// client schedules its own reconnect and the session shows the
	// reconnecting banner meanwhile.
	if connErr := client.Connect(ctx); connErr != nil {
		log.Warn("initial hub connection failed, retrying", "error", connErr)
	}

	log.Info("initialisation complete, running session loop")

	// The session loop blocks until the context is cancelled.
	// Deferred Close() calls then run in reverse order:
	// 1. Hub connection
	// 2. MQTT (if enabled)
	// 3. InfluxDB (if enabled)
	// 4. Database
	err = sess.Run(ctx)

	log.Info("Casaflow Core stopped")
	return err
}

// getConfigPath returns the configuration file path.
// Uses CASAFLOW_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CASAFLOW_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// renderLog is the headless render sink. The core is UI-agnostic; a
// frontend embeds the session and supplies its own sink, while the
// standalone binary just logs frame activity.
type renderLog struct {
	log *logging.Logger
}

// FullRender implements session.RenderSink.
func (r *renderLog) FullRender(root *view.Fragment) {
	r.log.Debug("full render", "fragments", countFragments(root))
}

// ApplyMutations implements session.RenderSink.
func (r *renderLog) ApplyMutations(muts []view.Mutation) {
	r.log.Debug("applying mutations", "count", len(muts))
}

// countFragments walks the fragment tree.
func countFragments(f *view.Fragment) int {
	if f == nil {
		return 0
	}
	count := 1
	for _, child := range f.Children {
		count += countFragments(child)
	}
	return count
}
