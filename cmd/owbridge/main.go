// Gray Logic 1-Wire Bridge
//
// This is the main entry point for the 1-Wire bridge daemon. The bridge
// connects a 1-Wire bus (via owserver) to the Gray Logic platform:
//   - Periodic bus scans with multisensor classification and association
//   - Sensor readings published to MQTT and recorded in InfluxDB
//   - A REST API for inventory, scan control and metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-logic-onewire/migrations"

	"github.com/nerrad567/gray-logic-onewire/internal/api"
	"github.com/nerrad567/gray-logic-onewire/internal/discovery"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-onewire/internal/owserver"
	"github.com/nerrad567/gray-logic-onewire/internal/readings"
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

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic 1-Wire Bridge",
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
	if migrateErr := db.Migrate(ctx, migrations.Files); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// owserver client
	bus := owserver.New(owserver.Config{
		Address:        cfg.Owserver.Address,
		ConnectTimeout: cfg.OwserverConnectTimeout(),
		RequestTimeout: cfg.OwserverRequestTimeout(),
	})
	bus.SetLogger(log.Component("owserver"))

	if err := bus.Ping(ctx); err != nil {
		log.Warn("owserver not reachable at startup, continuing",
			"address", cfg.Owserver.Address, "error", err)
	} else {
		log.Info("owserver connected", "address", cfg.Owserver.Address)
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Discovery scanner
	repo := discovery.NewSQLiteRepository(db.DB)

	var announcer discovery.Announcer
	if mqttClient != nil {
		announcer = discovery.NewMQTTAnnouncer(mqttClient, byte(cfg.MQTT.QoS))
	}

	scanner := discovery.NewScanner(bus, repo, announcer)
	scanner.SetLogger(log.Component("scanner"))
	if influxClient != nil {
		scanner.SetMetrics(influxClient)
	}

	// Scans can also be requested over MQTT, mirroring the REST endpoint.
	if mqttClient != nil {
		scanTopic := mqtt.Topics{}.ScanCommand()
		subErr := mqttClient.Subscribe(scanTopic, byte(cfg.MQTT.QoS), func(_ string, _ []byte) error {
			if _, scanErr := scanner.Scan(ctx); scanErr != nil {
				if errors.Is(scanErr, discovery.ErrScanInProgress) {
					log.Debug("scan command ignored, scan already running")
					return nil
				}
				return scanErr
			}
			return nil
		})
		if subErr != nil {
			return fmt.Errorf("subscribing to scan commands: %w", subErr)
		}
		log.Info("scan command subscription active", "topic", scanTopic)
	}

	if cfg.Discovery.ScanOnStartup {
		if _, scanErr := scanner.Scan(ctx); scanErr != nil {
			log.Warn("startup scan failed", "error", scanErr)
		}
	}

	go scanner.Run(ctx, cfg.ScanInterval())
	log.Info("discovery scanner started", "interval", cfg.ScanInterval())

	// Readings poller (optional)
	var poller *readings.Poller
	if cfg.Readings.Enabled {
		var pub readings.Publisher
		if mqttClient != nil {
			pub = mqttClient
		}
		var metrics readings.MetricsWriter
		if influxClient != nil {
			metrics = influxClient
		}

		poller = readings.NewPoller(bus, repo, pub, metrics, byte(cfg.MQTT.QoS))
		poller.SetLogger(log.Component("poller"))
		go poller.Run(ctx, cfg.PollInterval())
		log.Info("readings poller started", "interval", cfg.PollInterval())
	} else {
		log.Info("readings poller disabled")
	}

	// API server
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log.Component("api"),
		Repo:    repo,
		Scanner: scanner,
		Poller:  poller,
		Bus:     bus,
		MQTT:    mqttClient,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Gray Logic 1-Wire Bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and influxClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
