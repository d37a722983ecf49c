// Command waymarkctl inspects and edits a preset library offline, using
// the same config file and storage backend as the plugin.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/config"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/handlers"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/library"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/storage"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/zoneinfo"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/zonesort"
)

// DirEnv overrides the directory holding the config and library files.
const DirEnv = "WAYMARK_PRESETS_DIR"

const usage = `usage: waymarkctl <command> [args]

  list [basic|alphabetical|custom] [desc]
  export <index> [-t]
  exportall [-t]
  import <json>
  delete <index>
  move <from> <to> [after]
  zone-order
  zones [query]
  backup`

var errUsage = errors.New(usage)

func main() {
	dir := os.Getenv(DirEnv)
	if dir == "" {
		dir, _ = os.Getwd()
	}

	logManager := logging.NewSlogManager()
	logManager.Setup(nil, "warn", nil)
	logger := logManager.Logger()

	if err := config.Load(dir); err != nil {
		logger.Warn("Failed to load config, using defaults!", "error", err)
	}

	var (
		zones *zoneinfo.Index
		err   error
	)
	if f := viper.GetString("zones.dataFile"); f != "" {
		zones, err = zoneinfo.Load(resolve(dir, f))
	} else {
		zones, err = zoneinfo.Default()
	}
	if err != nil {
		fail(err)
	}

	storageCfg := config.GetStorageConfig()
	storageCfg.Memory.OutputDir = resolve(dir, storageCfg.Memory.OutputDir)
	storageCfg.SQLite.Path = resolve(dir, storageCfg.SQLite.Path)
	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		LogManager: logManager,
		Logger:     zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel),
	})
	if err != nil {
		fail(err)
	}
	if err := backend.Init(); err != nil {
		fail(err)
	}
	defer backend.Close()

	svc := handlers.NewService(handlers.Dependencies{
		Library:    library.New(zones),
		Zones:      zones,
		Backend:    backend,
		LogManager: logManager,
		Config:     config.GetLibraryConfig(),
	})
	if err := svc.Load(); err != nil {
		fail(err)
	}

	if err := run(os.Args[1:], os.Stdout, svc, backend); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func run(args []string, out io.Writer, svc *handlers.Service, backend storage.Backend) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "list":
		return list(out, svc, rest)

	case "export":
		if len(rest) == 0 {
			return errUsage
		}
		index, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}
		s, err := svc.ExportPreset(index, hasFlag(rest[1:], "-t"))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)

	case "exportall":
		s, err := svc.ExportAll(hasFlag(rest, "-t"))
		if err != nil {
			return err
		}
		fmt.Fprint(out, s)

	case "import":
		if len(rest) == 0 {
			return errUsage
		}
		i, err := svc.ImportText(strings.Join(rest, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Imported preset %d.\n", i)

	case "delete":
		if len(rest) == 0 {
			return errUsage
		}
		index, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}
		if err := svc.DeletePreset(index); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted preset %d.\n", index)

	case "move":
		if len(rest) < 2 {
			return errUsage
		}
		from, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}
		to, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}
		i, err := svc.MovePreset(from, to, hasFlag(rest[2:], "after"))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Preset %d is now at %d.\n", from, i)

	case "zone-order":
		order, err := backend.LoadZoneSortOrder()
		if err != nil {
			return err
		}
		if len(order) == 0 {
			fmt.Fprintln(out, "No custom zone order.")
		}
		for i, zone := range order {
			fmt.Fprintf(out, "%3d  %s\n", i, svc.ZoneDisplayName(zone))
		}

	case "zones":
		for _, z := range svc.SearchZones(strings.Join(rest, " ")) {
			fmt.Fprintf(out, "%5d  %s\n", z.ZoneID, z.Name)
		}

	case "backup":
		path, err := backend.Backup()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Backup written to %s\n", path)

	default:
		return errUsage
	}
	return nil
}

func list(out io.Writer, svc *handlers.Service, args []string) error {
	var sortType zonesort.SortType
	if len(args) > 0 && !strings.EqualFold(args[0], "desc") {
		t, err := zonesort.ParseSortType(args[0])
		if err != nil {
			return err
		}
		sortType = t
	}
	svc.SetViewOptions(sortType, hasFlag(args, "desc"))

	for _, g := range svc.LibraryView() {
		if g.ZoneName != "" {
			fmt.Fprintln(out, g.ZoneName)
		}
		for _, p := range g.Presets {
			fmt.Fprintf(out, "  %3d  %s\n", p.Index, p.Name)
		}
	}
	return nil
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}
