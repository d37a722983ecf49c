// Package postgres implements the storage.Backend interface on PostgreSQL.
// When the server cannot be reached at Init the backend falls back to the
// local SQLite file, the same way the database manager does.
package postgres

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/config"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/database"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	gormstorage "github.com/sourpuh/WaymarkPresetPlugin/internal/storage/gorm"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/util"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
)

const (
	// BackupDirName is created next to the SQLite fallback file.
	BackupDirName = "Backups"
	// BackupFileName is the base name of JSON exports taken from Postgres.
	BackupFileName = "WaymarkPresetLibrary_postgres.json"
)

// Dependencies holds all dependencies for the Postgres storage backend.
type Dependencies struct {
	LogManager *logging.SlogManager
	Logger     zerolog.Logger
}

// backupDocument is the JSON export written by Backup when connected to
// Postgres.
type backupDocument struct {
	Presets       []core.Preset `json:"presets"`
	ZoneSortOrder []uint16      `json:"zoneSortOrder"`
}

// Backend wraps the GORM backend with a managed Postgres connection.
type Backend struct {
	*gormstorage.Backend
	cfg      config.DBConfig
	fallback string
	deps     Dependencies
	manager  *database.Manager
	now      func() time.Time
}

// New creates a Postgres backend. fallback is the SQLite file used when the
// server is unavailable; an empty fallback makes Init fail instead.
func New(cfg config.DBConfig, fallback string, deps Dependencies) *Backend {
	return &Backend{
		Backend:  gormstorage.New(gormstorage.Dependencies{LogManager: deps.LogManager}),
		cfg:      cfg,
		fallback: fallback,
		deps:     deps,
		manager:  database.NewManager(deps.Logger, fallback),
		now:      time.Now,
	}
}

// Init connects and migrates the schema.
func (b *Backend) Init() error {
	if err := b.manager.Connect(b.cfg); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b.SetDB(b.manager.DB)
	return b.Backend.Init()
}

// UsingFallback reports whether Init fell back to the SQLite file.
func (b *Backend) UsingFallback() bool {
	return b.manager.ShouldSaveLocal
}

func (b *Backend) backupDir() string {
	if b.fallback == "" {
		return BackupDirName
	}
	return filepath.Join(filepath.Dir(b.fallback), BackupDirName)
}

// Backup snapshots the fallback file with VACUUM INTO, or exports the
// library as JSON when connected to Postgres.
func (b *Backend) Backup() (string, error) {
	if b.DB() == nil {
		return "", gormstorage.ErrNoDatabase
	}

	dir := b.backupDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	if b.UsingFallback() {
		dst := util.BackupPath(dir, filepath.Base(b.fallback), b.now())
		if err := database.VacuumInto(b.DB(), dst); err != nil {
			return "", err
		}
		b.deps.Logger.Info().Str("path", dst).Msg("Backed up SQLite fallback")
		return dst, nil
	}

	presets, err := b.LoadLibrary()
	if err != nil {
		return "", err
	}
	order, err := b.LoadZoneSortOrder()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(backupDocument{Presets: presets, ZoneSortOrder: order}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}

	dst := util.BackupPath(dir, BackupFileName, b.now())
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	b.deps.Logger.Info().Str("path", dst).Int("presets", len(presets)).Msg("Exported Postgres library")
	return dst, nil
}
