package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/pkg/browser"
	"github.com/smazurov/camctl/cmd"
	"github.com/smazurov/camctl/internal/api"
	"github.com/smazurov/camctl/internal/camera"
	"github.com/smazurov/camctl/internal/config"
	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/ffmpeg"
	"github.com/smazurov/camctl/internal/hotplug"
	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/internal/metrics/exporters"
	"github.com/smazurov/camctl/internal/mjpeg"
	"github.com/smazurov/camctl/internal/presets"
	"github.com/smazurov/camctl/internal/snapshot"
	"github.com/smazurov/camctl/internal/stream"
	"github.com/smazurov/camctl/internal/updater"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"camctl.toml"`

	// Server settings
	Listen      string `help:"Address to listen on" short:"l" default:"localhost:5000" toml:"server.listen" env:"SERVER_LISTEN"`
	CORSOrigin  string `name:"cors-origin" help:"Access-Control-Allow-Origin value" default:"*" toml:"server.cors_origin" env:"SERVER_CORS_ORIGIN"`
	OpenBrowser bool   `help:"Open the control panel in a browser once listening" default:"false" toml:"server.open_browser" env:"SERVER_OPEN_BROWSER"`

	// Camera settings
	CameraName    string `help:"Camera friendly name to match" default:"Elgato Facecam" toml:"camera.name" env:"CAMERA_NAME"`
	CameraTimeout string `help:"Timeout for one control command" default:"5s" toml:"camera.timeout" env:"CAMERA_TIMEOUT"`
	CameraMock    bool   `help:"Use an in-memory camera and the ffmpeg test pattern" default:"false" toml:"camera.mock" env:"CAMERA_MOCK"`

	// Stream settings
	FFmpegPath string `name:"ffmpeg" help:"ffmpeg executable, searched in PATH when empty" default:"" toml:"stream.ffmpeg" env:"STREAM_FFMPEG"`

	// Storage settings
	PresetsFile  string `help:"Presets JSON file, under the user config dir when empty" default:"" toml:"presets.file" env:"PRESETS_FILE"`
	SnapshotsDir string `help:"Snapshot folder, the user's Pictures folder when empty" default:"" toml:"snapshots.dir" env:"SNAPSHOTS_DIR"`

	// Observability settings
	MetricsEnabled bool `help:"Expose Prometheus metrics on /metrics" default:"true" toml:"metrics.prometheus_enabled" env:"METRICS_PROMETHEUS_ENABLED"`

	// Update settings
	UpdateRepository string `help:"GitHub repository for self-update" default:"smazurov/camctl" toml:"update.repository" env:"UPDATE_REPOSITORY"`
	UpdatePrerelease bool   `help:"Include prereleases in self-update" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingAPI     string `name:"logging-api" help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingCamera  string `help:"Camera logging level" default:"info" toml:"logging.camera" env:"LOGGING_CAMERA"`
	LoggingStream  string `help:"Stream logging level" default:"info" toml:"logging.stream" env:"LOGGING_STREAM"`
	LoggingFFmpeg  string `name:"logging-ffmpeg" help:"ffmpeg output logging level" default:"warn" toml:"logging.ffmpeg" env:"LOGGING_FFMPEG"`
	LoggingPresets string `help:"Presets logging level" default:"info" toml:"logging.presets" env:"LOGGING_PRESETS"`
}

func main() {
	var (
		cli    humacli.CLI
		device camera.Device
		store  *presets.Store
	)

	env := &cmd.Env{
		Device:  func() camera.Device { return device },
		Presets: func() *presets.Store { return store },
	}

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"api":     opts.LoggingAPI,
				"camera":  opts.LoggingCamera,
				"stream":  opts.LoggingStream,
				"ffmpeg":  opts.LoggingFFmpeg,
				"presets": opts.LoggingPresets,
			},
		})
		logger := logging.GetLogger("main")

		timeout, err := time.ParseDuration(opts.CameraTimeout)
		if err != nil {
			logger.Warn("Invalid camera timeout, using default", "value", opts.CameraTimeout, "error", err)
		}
		device = camera.New(camera.Config{
			MatchName: opts.CameraName,
			Timeout:   timeout,
			Mock:      opts.CameraMock,
		}, logging.GetLogger("camera"))

		presetsPath := opts.PresetsFile
		if presetsPath == "" {
			if presetsPath, err = presets.DefaultPath(); err != nil {
				logger.Error("Failed to resolve presets path", "error", err)
				os.Exit(1)
			}
		}
		store = presets.NewStore(presetsPath, logging.GetLogger("presets"))

		env.Updater = func() (updater.Service, error) {
			return updater.NewService(&updater.Options{
				Repository: opts.UpdateRepository,
				Prerelease: opts.UpdatePrerelease,
			})
		}

		app := &app{opts: opts, device: device, store: store, updater: env.Updater, logger: logger}
		hooks.OnStart(app.start)
		hooks.OnStop(app.stop)
	})

	cli.Root().Use = "camctl"
	cli.Root().Short = "Control surface for a USB webcam"

	cli.Root().AddCommand(cmd.CreateControlCmd(env))
	cli.Root().AddCommand(cmd.CreateDeviceCmd(env))
	cli.Root().AddCommand(cmd.CreateFormatsCmd(env))
	cli.Root().AddCommand(cmd.CreatePresetCmd(env))
	cli.Root().AddCommand(cmd.CreateUpdateCmd(env))
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	// Run the CLI
	cli.Run()
}

// app is the running server and everything it started.
type app struct {
	opts    *Options
	device  camera.Device
	store   *presets.Store
	updater func() (updater.Service, error)
	logger  *slog.Logger

	cancel   context.CancelFunc
	server   *api.Server
	streams  *stream.Manager
	watcher  interface{ Stop() error }
	exporter *exporters.SSEExporter
	monitor  *hotplug.Monitor
	stopOnce sync.Once
}

func (a *app) start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	opts := a.opts
	logger := a.logger

	eventBus := events.New()
	if history := logging.GetHistory(); history != nil {
		history.OnEntry(func(e logging.Entry) { eventBus.Publish(api.LogEvent(e)) })
	}

	a.applyBootPreset(ctx)

	if w, err := presets.Watch(a.store, eventBus, logging.GetLogger("presets")); err != nil {
		logger.Warn("Presets file will not be watched", "path", a.store.Path(), "error", err)
	} else {
		a.watcher = w
	}

	ffmpegPath, err := ffmpeg.Find(opts.FFmpegPath)
	if err != nil {
		logger.Warn("ffmpeg not found, live preview will fail until it is installed", "error", err)
		ffmpegPath = "ffmpeg"
	}

	frames := mjpeg.NewFrameCache()
	a.streams = stream.NewManager(stream.Config{
		Binary: ffmpegPath,
		Input:  a.device.CaptureBackend(),
		Cache:  frames,
		Bus:    eventBus,
	}, logging.GetLogger("stream"))

	a.exporter = exporters.NewSSEExporter(eventBus)
	a.exporter.Start(ctx)

	if mon, err := hotplug.NewMonitor(); err != nil {
		logger.Debug("Hotplug monitoring unavailable", "error", err)
	} else {
		a.monitor = mon
		go func() {
			watcher := hotplug.NewWatcher(mon, a.device, eventBus, logging.GetLogger("hotplug"))
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("Hotplug monitor stopped", "error", err)
			}
		}()
	}

	updateService, err := a.updater()
	if err != nil {
		logger.Warn("Update service unavailable", "error", err)
		updateService = updater.NewDisabledService(err.Error())
	}

	apiOpts := &api.Options{
		Device:        a.device,
		Streams:       a.streams,
		Presets:       a.store,
		Frames:        frames,
		Snapshots:     snapshot.NewSaver(opts.SnapshotsDir),
		EventBus:      eventBus,
		UpdateService: updateService,
		CORSOrigin:    opts.CORSOrigin,
	}
	if opts.MetricsEnabled {
		apiOpts.PrometheusHandler = exporters.HTTPHandler()
	}
	a.server = api.NewServer(apiOpts)

	listener, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		logger.Error("Failed to listen", "addr", opts.Listen, "error", err)
		os.Exit(1)
	}

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Debug("sd_notify failed", "error", err)
	}

	if opts.OpenBrowser {
		url := fmt.Sprintf("http://%s/", listener.Addr())
		if err := browser.OpenURL(url); err != nil {
			logger.Warn("Failed to open browser", "url", url, "error", err)
		}
	}

	if err := a.server.Serve(listener); err != nil {
		logger.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}

// applyBootPreset moves the camera to preset "A" when both exist.
func (a *app) applyBootPreset(ctx context.Context) {
	state, ok := a.store.Load("A")
	if !ok {
		return
	}
	if _, err := a.device.FindDevice(ctx); err != nil {
		a.logger.Info("Camera not connected, skipping boot preset", "error", err)
		return
	}
	if err := presets.Apply(ctx, a.device, state); err != nil {
		a.logger.Warn("Failed to apply boot preset", "error", err)
		return
	}
	a.logger.Info("Applied boot preset", "id", "A", "zoom", state.Zoom, "pan", state.Pan, "tilt", state.Tilt)
}

func (a *app) stop() {
	a.stopOnce.Do(func() {
		a.logger.Info("Shutting down")
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

		// Stop ffmpeg first so open stream responses end and the HTTP
		// shutdown does not wait on them.
		if a.streams != nil {
			a.streams.StopActive()
		}
		if a.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := a.server.Shutdown(ctx); err != nil {
				a.logger.Error("Error stopping HTTP server", "error", err)
			}
			cancel()
		}
		if a.watcher != nil {
			_ = a.watcher.Stop()
		}
		if a.exporter != nil {
			a.exporter.Stop()
		}
		if a.cancel != nil {
			a.cancel()
		}
		if a.monitor != nil {
			_ = a.monitor.Close()
		}
		if closer, ok := a.device.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	})
}
