// ledmatrixd supervises the led-image-viewer process that drives an LED
// matrix panel, and exposes an HTTP/JSON control surface with a small
// embedded web UI, a WebSocket status stream and an optional MQTT
// status announcer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixelforge/ledmatrixd/internal/api"
	"github.com/pixelforge/ledmatrixd/internal/catalog"
	"github.com/pixelforge/ledmatrixd/internal/display"
	"github.com/pixelforge/ledmatrixd/internal/history"
	"github.com/pixelforge/ledmatrixd/internal/infrastructure/config"
	"github.com/pixelforge/ledmatrixd/internal/infrastructure/database"
	"github.com/pixelforge/ledmatrixd/internal/infrastructure/logging"
	"github.com/pixelforge/ledmatrixd/internal/infrastructure/mqtt"
	"github.com/pixelforge/ledmatrixd/migrations"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting ledmatrixd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	// Database + migrations
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

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	historyRepo := history.NewSQLiteRepository(db.DB)

	// Asset catalog
	cat := catalog.New(cfg.Display.AssetDir)
	cat.SetLogger(log.With("component", "catalog"))
	log.Info("asset catalog initialised",
		"dir", cfg.Display.AssetDir,
		"assets", len(cat.List()),
	)

	// Display supervisor. Close must always run so no viewer outlives
	// the service.
	supervisor := display.New(display.Config{
		ViewerBinary:      cfg.Display.ViewerBinary,
		Rows:              cfg.Display.Rows,
		Cols:              cfg.Display.Cols,
		DefaultBrightness: cfg.Display.DefaultBrightness,
		GracePeriod:       cfg.GracePeriod(),
	}, cat)
	supervisor.SetLogger(log.With("component", "display"))
	defer func() {
		log.Info("stopping display")
		if closeErr := supervisor.Close(); closeErr != nil {
			log.Error("error stopping display", "error", closeErr)
		}
	}()

	// Optional MQTT status announcer
	var announcer *mqtt.Announcer
	if cfg.MQTT.Enabled {
		announcer, err = mqtt.Connect(cfg.MQTT, log.With("component", "mqtt"))
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := announcer.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT announcer disabled")
	}

	// API server
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log,
		Supervisor: supervisor,
		Catalog:    cat,
		History:    historyRepo,
		DB:         db,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Fan status changes out to WebSocket clients and the announcer.
	supervisor.SetOnChange(func(st display.Status) {
		server.Hub().Broadcast(api.EventDisplayStatus, st)
		if announcer != nil {
			if pubErr := announcer.AnnounceStatus(st); pubErr != nil {
				log.Warn("status announce failed", "error", pubErr)
			}
		}
	})

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses the LEDMATRIXD_CONFIG environment variable if set.
func getConfigPath() string {
	if path := os.Getenv("LEDMATRIXD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
