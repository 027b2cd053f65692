package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/lightkit/cmd"
	"github.com/smazurov/lightkit/internal/config"
	"github.com/smazurov/lightkit/internal/devices"
	"github.com/smazurov/lightkit/internal/events"
	"github.com/smazurov/lightkit/internal/logging"
	"github.com/smazurov/lightkit/internal/metrics"
	"github.com/smazurov/lightkit/internal/metrics/collectors"
	"github.com/smazurov/lightkit/internal/metrics/exporters"
	"github.com/smazurov/lightkit/internal/panel"
	"github.com/smazurov/lightkit/internal/scene"
	"github.com/smazurov/lightkit/internal/systemd"
	"github.com/smazurov/lightkit/pkg/lights"
	"github.com/spf13/cobra"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Scene settings
	SceneFile string `help:"Scene file played at startup and replayed on change" default:"" toml:"scene.file" env:"SCENE_FILE"`

	// Metrics settings
	MetricsAddr     string `help:"Prometheus metrics listen address (empty disables)" default:":9090" toml:"metrics.addr" env:"METRICS_ADDR"`
	MetricsNodePoll bool   `help:"Poll the backlight node for read-back metrics" default:"true" toml:"metrics.node_poll" env:"METRICS_NODE_POLL"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLights  string `help:"Lights shim logging level" default:"info" toml:"logging.lights" env:"LOGGING_LIGHTS"`
	LoggingScene   string `help:"Scene playback logging level" default:"info" toml:"logging.scene" env:"LOGGING_SCENE"`
	LoggingPanel   string `help:"Panel logging level" default:"info" toml:"logging.panel" env:"LOGGING_PANEL"`
	LoggingMetrics string `help:"Metrics logging level" default:"info" toml:"logging.metrics" env:"LOGGING_METRICS"`
}

func main() {
	var rootCmd *cobra.Command

	// Create Huma CLI
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, rootCmd); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"lights":  opts.LoggingLights,
				"scene":   opts.LoggingScene,
				"panel":   opts.LoggingPanel,
				"metrics": opts.LoggingMetrics,
			},
		})

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Board probe is advisory; the daemon still runs when nodes are
		// missing so the metrics and CLI surfaces stay reachable.
		report := devices.Probe()
		logger.Info("Board probe",
			"board", report.BoardModel,
			"supported", report.Supported)
		for _, node := range report.Nodes {
			if !node.Present || !node.Writable {
				logger.Warn("Light control node unavailable",
					"endpoint", node.Endpoint,
					"path", node.Path,
					"present", node.Present,
					"writable", node.Writable)
			}
		}

		// Light module and panel
		module := lights.New(lights.WithLogger(logging.GetLogger("lights")))
		info := module.Info()
		logger.Info("Light module ready", "name", info.Name, "version", info.Version)

		pnl, err := panel.New(module, eventBus, logging.GetLogger("panel"))
		if err != nil {
			logger.Error("Failed to open light panel", "error", err)
			os.Exit(1)
		}

		// Metrics recorder translates bus events into Prometheus gauges
		recorder := metrics.NewRecorder(eventBus)

		// Scene player drives the panel
		player := scene.NewPlayer(pnl, eventBus, logging.GetLogger("scene"))

		startScene := func(sc scene.Scene) {
			eventBus.Publish(events.SceneLoadedEvent{
				Name:      sc.Name,
				Path:      opts.SceneFile,
				Steps:     len(sc.Steps),
				Timestamp: time.Now().Format(time.RFC3339),
			})
			player.Start(sc)
		}

		// The store provides the initial scene and tolerates a missing
		// file; the watcher re-applies whenever the file changes.
		var initialScene *scene.Scene
		var watcher *config.Watcher[scene.Scene]
		if opts.SceneFile != "" {
			sceneLogger := logging.GetLogger("scene")

			store := scene.NewTOML(opts.SceneFile)
			if loadErr := store.Load(); loadErr != nil {
				sceneLogger.Warn("Failed to load scene file",
					"path", opts.SceneFile,
					"error", loadErr)
			} else if sc := store.Scene(); len(sc.Steps) > 0 {
				if validateErr := sc.Validate(); validateErr != nil {
					sceneLogger.Warn("Ignoring invalid scene file",
						"path", opts.SceneFile,
						"error", validateErr)
				} else {
					initialScene = &sc
				}
			}

			watcher = config.NewFileWatcher(
				opts.SceneFile,
				scene.LoadFile,
				sceneLogger,
				config.WithErrorHandler[scene.Scene](func(loadErr error) {
					sceneLogger.Warn("Scene reload failed, keeping current playback", "error", loadErr)
				}),
			)
			watcher.OnReload(startScene)
		}

		// Read back what the backlight driver actually applied
		var nodeCollector *collectors.NodeCollector
		if opts.MetricsNodePoll {
			nodeCollector = collectors.NewNodeCollector(lights.BacklightControlPath)
		}

		var metricsServer *http.Server
		if opts.MetricsAddr != "" {
			metricsServer = exporters.NewServer(opts.MetricsAddr)
		}

		stopped := make(chan struct{})

		hooks.OnStart(func() {
			recorder.Start()

			if initialScene != nil {
				startScene(*initialScene)
			}

			if nodeCollector != nil {
				if startErr := nodeCollector.Start(context.Background()); startErr != nil {
					logger.Warn("Failed to start node collector", "error", startErr)
				}
			}

			if watcher != nil {
				if startErr := watcher.Start(); startErr != nil {
					logger.Warn("Failed to start scene watcher",
						"path", opts.SceneFile,
						"error", startErr)
				}
			}

			stopWatchdog := systemd.StartWatchdog()
			defer stopWatchdog()

			systemd.NotifyReady()
			logger.Info("lightkit started",
				"scene", opts.SceneFile,
				"metrics", opts.MetricsAddr)

			if metricsServer != nil {
				if serveErr := metricsServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
					logger.Error("Metrics server failed", "error", serveErr)
					os.Exit(1)
				}
				return
			}

			<-stopped
		})

		hooks.OnStop(func() {
			systemd.NotifyStopping()
			logger.Info("Shutting down")

			player.Stop()

			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping scene watcher", "error", stopErr)
				}
			}

			if nodeCollector != nil {
				if stopErr := nodeCollector.Stop(); stopErr != nil {
					logger.Warn("Error stopping node collector", "error", stopErr)
				}
			}

			recorder.Stop()

			if metricsServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if shutdownErr := metricsServer.Shutdown(ctx); shutdownErr != nil {
					logger.Warn("Error stopping metrics server", "error", shutdownErr)
				}
			}

			close(stopped)

			if closeErr := pnl.Close(); closeErr != nil {
				logger.Warn("Error closing light panel", "error", closeErr)
			}
		})
	})

	cli.Root().AddCommand(
		cmd.CreateSetCmd(),
		cmd.CreateBlinkCmd(),
		cmd.CreatePlayCmd(),
		cmd.CreateValidateCmd(),
		cmd.CreateDetectCmd(),
		cmd.CreateUpdateCmd(),
		cmd.CreateVersionCmd(),
	)

	rootCmd = cli.Root()

	// Run the CLI
	cli.Run()
}
