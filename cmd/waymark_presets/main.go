package main

import "C" // required for c-shared builds

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/codec"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/config"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/dispatcher"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/gamemem"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/handlers"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/influx"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/library"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/monitor"
	intOtel "github.com/sourpuh/WaymarkPresetPlugin/internal/otel"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/storage"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/util"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/zoneinfo"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/hostinterface"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentPluginVersion string = "1.0.0"
	BuildDate            string = "unknown"

	PluginName string = "waymark_presets"
)

// file paths
var (
	// ModuleFolder holds the plugin library, its config and its data files.
	ModuleFolder string

	LogFilePath string
	LogFile     *os.File
)

// global variables
var (
	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	ZeroLogger   zerolog.Logger
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	gelfCloser      io.Closer
	mirror          *gamemem.Mirror
	telemetry       *influx.Manager
	storageBackend  storage.Backend
	handlerService  *handlers.Service
	monitorService  *monitor.Service
	eventDispatcher *dispatcher.Dispatcher
)

// init is run automatically when the module is loaded
func init() {
	ModuleFolder = hostinterface.ModuleDir()

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(ModuleFolder); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	setupLogging()

	hostinterface.SetName(PluginName)
	hostinterface.SetVersion(CurrentPluginVersion)

	if err := setupPlugin(); err != nil {
		Logger.Error("Failed to set up plugin!", "error", err)
		panic(err)
	}
	Logger.Info("Plugin ready", "version", CurrentPluginVersion, "folder", ModuleFolder)
}

// resolvePath anchors relative config paths at the plugin folder.
func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ModuleFolder, p)
}

func setupLogging() {
	logsDir := resolvePath(viper.GetString("logsDir"))
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs dir", "error", err, "path", logsDir)
	}

	LogFilePath = logging.LogFilePath(logsDir, PluginName, SessionStartTime)
	if _, err := os.Stat(LogFilePath); err == nil {
		_ = os.Rename(LogFilePath, LogFilePath+".old")
	}

	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
		LogFile = nil
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    LogFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		}
	}

	var extra []slog.Handler
	if gl := config.GetGraylogConfig(); gl.Enabled {
		h, closer, err := logging.NewGELFHandler(gl.Address, viper.GetString("logLevel"))
		if err != nil {
			Logger.Error("Failed to set up GELF logging", "error", err)
		} else {
			extra = append(extra, h)
			gelfCloser = closer
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	var file io.Writer
	if LogFile != nil {
		file = LogFile
	}
	SlogManager.Setup(file, viper.GetString("logLevel"), otelLogProvider, extra...)
	Logger = SlogManager.Logger()

	level, err := zerolog.ParseLevel(viper.GetString("logLevel"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	var out io.Writer = os.Stdout
	if LogFile != nil {
		out = zerolog.MultiLevelWriter(
			zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339},
			zerolog.ConsoleWriter{Out: LogFile, TimeFormat: time.RFC3339, NoColor: true},
		)
	}
	ZeroLogger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	Logger.Info("Logging to file", "path", LogFilePath)
}

func setupPlugin() error {
	libCfg := config.GetLibraryConfig()

	zones, err := loadZones(libCfg.ZonesDataFile)
	if err != nil {
		return err
	}

	storageCfg := config.GetStorageConfig()
	storageCfg.Memory.OutputDir = resolvePath(storageCfg.Memory.OutputDir)
	storageCfg.SQLite.Path = resolvePath(storageCfg.SQLite.Path)
	storageBackend, err = storage.NewBackend(storageCfg, storage.Dependencies{
		LogManager: SlogManager,
		Logger:     ZeroLogger,
	})
	if err != nil {
		return err
	}
	if err := storageBackend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}

	telemetryCfg := config.GetTelemetryConfig()
	telemetryCfg.BackupDir = resolvePath(telemetryCfg.BackupDir)
	if telemetryCfg.BackupDir == "" {
		telemetryCfg.BackupDir = ModuleFolder
	}
	telemetry = influx.NewManager(ZeroLogger, telemetryCfg)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := telemetry.Connect(ctx); err != nil && !errors.Is(err, influx.ErrDisabled) {
			Logger.Warn("Usage telemetry unavailable", "error", err)
		}
	}()

	mirror = gamemem.NewMirror(hostinterface.Notifier{})
	handlerService = handlers.NewService(handlers.Dependencies{
		Library:    library.New(zones),
		Zones:      zones,
		Store:      gamemem.NewGuarded(mirror, libCfg.StoreLockTimeout),
		Backend:    storageBackend,
		LogManager: SlogManager,
		Telemetry:  telemetry,
		Config:     libCfg,
	})
	SlogManager.SetStateAttrs(handlerService.LogAttrs)
	if err := handlerService.Load(); err != nil {
		Logger.Error("Failed to load preset library", "error", err)
	}

	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(ZeroLogger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	registerLifecycleHandlers(eventDispatcher)
	registerHostStateHandlers(eventDispatcher, mirror)
	handlerService.RegisterHandlers(eventDispatcher)
	hostinterface.SetDispatcher(eventDispatcher)

	if monCfg := config.GetMonitorConfig(); monCfg.Enabled {
		monitorService = monitor.NewService(monitor.Dependencies{
			Source:        handlerService,
			Backend:       storageBackend,
			LogManager:    SlogManager,
			Folder:        ModuleFolder,
			Interval:      monCfg.Interval,
			BackupOnStart: monCfg.BackupOnStart,
		})
		if err := monitorService.Start(context.Background()); err != nil {
			Logger.Error("Failed to start status monitor", "error", err)
		}
	}
	return nil
}

func loadZones(dataFile string) (*zoneinfo.Index, error) {
	if dataFile == "" {
		return zoneinfo.Default()
	}
	zones, err := zoneinfo.Load(resolvePath(dataFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load zone data: %w", err)
	}
	return zones, nil
}

func registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return []string{CurrentPluginVersion, BuildDate}, nil
	})

	d.Register(":GETDIR:MODULE:", func(e dispatcher.Event) (any, error) {
		return ModuleFolder, nil
	})

	d.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return LogFilePath, nil
	})

	d.Register(":BACKUP:", func(e dispatcher.Event) (any, error) {
		return storageBackend.Backup()
	}, dispatcher.Logged())

	d.Register(":SHUTDOWN:", func(e dispatcher.Event) (any, error) {
		Logger.Info("Received :SHUTDOWN: command, saving library")
		return "ok", shutdown()
	})
}

// registerHostStateHandlers lets the host push its slot table and the
// markers currently on the field into the mirror. Both take slot records
// as hex.
func registerHostStateHandlers(d *dispatcher.Dispatcher, m *gamemem.Mirror) {
	d.Register(":SLOT:SET:", func(e dispatcher.Event) (any, error) {
		if len(e.Args) < 2 {
			return nil, fmt.Errorf("%s: expected slot and data", e.Command)
		}
		slot, err := strconv.Atoi(util.CleanArg(e.Args[0]))
		if err != nil {
			return nil, fmt.Errorf("%s: slot: %w", e.Command, err)
		}
		data, err := hex.DecodeString(util.CleanArg(e.Args[1]))
		if err != nil {
			return nil, fmt.Errorf("%s: data: %w", e.Command, err)
		}
		return true, m.SetSlotData(slot, data)
	})

	d.Register(":WAYMARKS:CURRENT:", func(e dispatcher.Event) (any, error) {
		if len(e.Args) < 1 {
			return nil, fmt.Errorf("%s: expected data", e.Command)
		}
		data, err := hex.DecodeString(util.CleanArg(e.Args[0]))
		if err != nil {
			return nil, fmt.Errorf("%s: data: %w", e.Command, err)
		}
		p, err := codec.DecodeSlot(data)
		if err != nil {
			return nil, err
		}
		m.SetCurrentWaymarks(p.Waymarks())
		return true, nil
	})
}

func shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if monitorService != nil {
		monitorService.Stop()
	}
	if handlerService != nil {
		errs = append(errs, handlerService.Shutdown(ctx, eventDispatcher))
	} else if eventDispatcher != nil {
		errs = append(errs, eventDispatcher.Close(ctx))
	}
	if storageBackend != nil {
		errs = append(errs, storageBackend.Close())
	}
	if telemetry != nil {
		errs = append(errs, telemetry.Close())
	}
	if OTelProvider != nil {
		errs = append(errs, OTelProvider.Shutdown(ctx))
	}
	if gelfCloser != nil {
		errs = append(errs, gelfCloser.Close())
	}
	return errors.Join(errs...)
}

func main() {}
