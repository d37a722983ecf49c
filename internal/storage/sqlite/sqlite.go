// Package sqlitestorage implements the storage.Backend interface on a SQLite
// file. It wraps the GORM backend; the only SQLite-specific concerns are
// opening the file and taking backups via VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/database"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	gormstorage "github.com/sourpuh/WaymarkPresetPlugin/internal/storage/gorm"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/util"
)

// BackupDirName is created next to the database file.
const BackupDirName = "Backups"

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	path string
	log  *logging.SlogManager
	now  func() time.Time
}

// New creates a SQLite backend for the database file at path. An empty path
// uses a private in-memory database. The file is opened by Init.
func New(path string, logManager *logging.SlogManager) *Backend {
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{LogManager: logManager}),
		path:    path,
		log:     logManager,
		now:     time.Now,
	}
}

// Path returns the database file path.
func (b *Backend) Path() string {
	return b.path
}

// Init opens the database file and migrates the schema.
func (b *Backend) Init() error {
	if b.DB() == nil {
		db, err := database.OpenSqlite(b.path)
		if err != nil {
			return fmt.Errorf("failed to open SQLite DB: %w", err)
		}
		b.SetDB(db)
	}
	return b.Backend.Init()
}

// Backup writes a snapshot of the database to the Backups directory next to
// the database file.
func (b *Backend) Backup() (string, error) {
	if b.DB() == nil {
		return "", gormstorage.ErrNoDatabase
	}
	if b.path == "" {
		return "", fmt.Errorf("in-memory database has no backup location")
	}

	dir := filepath.Join(filepath.Dir(b.path), BackupDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	dst := util.BackupPath(dir, filepath.Base(b.path), b.now())
	start := time.Now()
	if err := database.VacuumInto(b.DB(), dst); err != nil {
		return "", err
	}
	if b.log != nil {
		b.log.WriteLog("sqlite:Backup", fmt.Sprintf("Backed up to %s in %s", dst, time.Since(start)), "DEBUG")
	}
	return dst, nil
}
