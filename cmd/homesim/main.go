// Home device simulator.
//
// This is the main entry point for the simulator. It holds a set of simulated
// home appliances in memory, serves them to a browser panel over a REST and
// WebSocket API, and optionally mirrors every change to an MQTT broker and
// records it as telemetry in InfluxDB.
//
// Nothing is persisted: every start begins from the seed devices in the
// configuration file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/homesim-core/internal/activity"
	"github.com/nerrad567/homesim-core/internal/api"
	"github.com/nerrad567/homesim-core/internal/device"
	"github.com/nerrad567/homesim-core/internal/infrastructure/config"
	"github.com/nerrad567/homesim-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/homesim-core/internal/infrastructure/logging"
	"github.com/nerrad567/homesim-core/internal/infrastructure/mqtt"
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
	// Cancel on Ctrl+C or SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting home device simulator",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	registry := device.NewRegistry(activity.NewLog(cfg.Activity.Capacity))
	registry.SetLogger(log.With("component", "registry"))

	// Cancelling on every return stops the group's goroutines on early failures.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// MQTT mirror (optional). A broker that cannot be reached is logged and
	// the simulator carries on without it.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("MQTT mirror unavailable, continuing without it", "error", err)
			mqttClient = nil
		} else {
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			mqttClient.SetOnDisconnect(func(err error) {
				log.Warn("MQTT disconnected", "error", err)
			})

			mirror := mqtt.NewMirror(mqttClient, mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}, byte(cfg.MQTT.QoS))
			mirror.SetLogger(log.With("component", "mqtt-mirror"))
			registry.AddNotifier(mirror)
			g.Go(func() error { return mirror.Run(gctx) })

			log.Info("MQTT mirror connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"topic_prefix", cfg.MQTT.TopicPrefix,
			)
		}
	} else {
		log.Info("MQTT mirror disabled")
	}

	// InfluxDB telemetry (optional, export-only)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			log.Warn("InfluxDB telemetry unavailable, continuing without it", "error", err)
			influxClient = nil
		} else {
			defer func() {
				log.Info("closing InfluxDB connection")
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			registry.AddNotifier(influxdb.NewRecorder(influxClient))

			log.Info("InfluxDB telemetry connected",
				"url", cfg.InfluxDB.URL,
				"bucket", cfg.InfluxDB.Bucket,
			)
		}
	} else {
		log.Info("InfluxDB telemetry disabled")
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log.With("component", "api"),
		Registry: registry,
		PanelDir: cfg.Panel.Dir,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(gctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Seed after notifiers are attached so the mirror, recorder and panel see the devices.
	seeded, err := seedDevices(registry, cfg.Devices)
	if err != nil {
		return fmt.Errorf("seeding devices: %w", err)
	}
	log.Info("device registry initialised", "devices", seeded)

	if err := healthCheck(ctx, server, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal", "address", server.Addr())

	g.Go(func() error {
		select {
		case err := <-server.Errors():
			return fmt.Errorf("API server: %w", err)
		case <-gctx.Done():
			return nil
		}
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("home device simulator stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOMESIM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMESIM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig reads path, falling back to built-in defaults when the file
// does not exist. Any other read, parse or validation error is returned.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default()
	}
	return cfg, err
}

// seedDevices adds the configured startup devices in order and returns how
// many were added.
func seedDevices(registry *device.Registry, seeds []config.SeedDevice) (int, error) {
	for i, s := range seeds {
		name := strings.TrimSpace(s.Name)
		if err := device.ValidateName(name); err != nil {
			return i, fmt.Errorf("device %d: %w", i, err)
		}
		conn, err := device.ParseConnectivity(s.Connectivity)
		if err != nil {
			return i, fmt.Errorf("device %d: %w", i, err)
		}
		registry.AddDevice(name, device.ParseDeviceType(s.Type), conn)
	}
	return len(seeds), nil
}

// healthCheck verifies the started components are healthy.
// mqttClient and influxClient are nil when disabled or unavailable.
func healthCheck(ctx context.Context, server *api.Server, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
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
