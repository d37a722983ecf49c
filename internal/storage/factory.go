// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/config"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/logging"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/storage/memory"
	postgresstorage "github.com/sourpuh/WaymarkPresetPlugin/internal/storage/postgres"
	sqlitestorage "github.com/sourpuh/WaymarkPresetPlugin/internal/storage/sqlite"
)

// Dependencies holds the loggers handed to the backend. Logger is used by
// the database manager behind the postgres backend.
type Dependencies struct {
	LogManager *logging.SlogManager
	Logger     zerolog.Logger
}

// NewBackend creates a storage backend based on configuration. Init has not
// been called on the result.
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgresstorage.New(cfg.DB, cfg.SQLite.Path, postgresstorage.Dependencies{
			LogManager: deps.LogManager,
			Logger:     deps.Logger,
		}), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite.Path, deps.LogManager), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
