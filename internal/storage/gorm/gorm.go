// Package gormstorage implements the storage.Backend interface on any GORM
// connection. The SQLite and Postgres backends wrap it.
package gormstorage

import (
	"errors"
	"fmt"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/database"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/model"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/model/convert"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"

	"gorm.io/gorm"
)

// ErrNoDatabase is returned by operations run before a connection exists.
var ErrNoDatabase = errors.New("database not connected")

// Dependencies holds everything the backend needs.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
}

// Backend stores the library in the presets and zone_sort_entries tables.
type Backend struct {
	deps Dependencies
}

func New(deps Dependencies) *Backend {
	return &Backend{deps: deps}
}

// DB returns the connection in use.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// SetDB replaces the connection. Wrappers that connect lazily call it from
// their Init.
func (b *Backend) SetDB(db *gorm.DB) {
	b.deps.DB = db
}

func (b *Backend) writeLog(functionName, data, level string) {
	if b.deps.LogManager != nil {
		b.deps.LogManager.WriteLog(functionName, data, level)
	}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}
	return database.Migrate(b.deps.DB)
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *Backend) LoadLibrary() ([]core.Preset, error) {
	if b.deps.DB == nil {
		return nil, ErrNoDatabase
	}

	var records []model.PresetRecord
	if err := b.deps.DB.Order("position").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	presets, err := convert.PresetRecordsToCore(records)
	if err != nil {
		return nil, err
	}

	b.writeLog("gorm:LoadLibrary", fmt.Sprintf("Loaded %d presets", len(presets)), "DEBUG")
	return presets, nil
}

// SaveLibrary replaces every stored preset in one transaction.
func (b *Backend) SaveLibrary(presets []core.Preset) error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}

	records := convert.CoreToPresetRecords(presets)
	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.PresetRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(&records, 500).Error
	})
	if err != nil {
		return fmt.Errorf("save presets: %w", err)
	}

	b.writeLog("gorm:SaveLibrary", fmt.Sprintf("Saved %d presets", len(records)), "DEBUG")
	return nil
}

func (b *Backend) LoadZoneSortOrder() ([]uint16, error) {
	if b.deps.DB == nil {
		return nil, ErrNoDatabase
	}

	var entries []model.ZoneSortEntry
	if err := b.deps.DB.Order("position").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load zone sort order: %w", err)
	}
	return convert.EntriesToZoneOrder(entries), nil
}

// SaveZoneSortOrder replaces the stored order; an empty order leaves the
// table empty.
func (b *Backend) SaveZoneSortOrder(order []uint16) error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}

	entries := convert.ZoneOrderToEntries(order)
	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.ZoneSortEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return fmt.Errorf("save zone sort order: %w", err)
	}
	return nil
}

// Backup is not supported for a generic connection; dialect wrappers
// override it.
func (b *Backend) Backup() (string, error) {
	return "", fmt.Errorf("backup not supported for %s", b.dialect())
}

func (b *Backend) dialect() string {
	if b.deps.DB == nil {
		return "unconnected database"
	}
	return b.deps.DB.Dialector.Name()
}
