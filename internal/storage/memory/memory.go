// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/config"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
)

// File names inside the output directory.
const (
	LibraryFileName   = "WaymarkPresetLibrary.json"
	SortOrderFileName = "LibraryZoneSortData_v1.json"
	BackupDirName     = "Backups"
)

// Backend keeps the library in JSON documents in the plugin directory.
// Reads and writes of the documents are serialized.
type Backend struct {
	cfg config.MemoryConfig

	mu sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// LoadLibrary reads the preset list. A missing file is an empty library.
func (b *Backend) LoadLibrary() ([]core.Preset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var presets []core.Preset
	if _, err := b.readJSON(LibraryFileName, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// SaveLibrary writes the preset list.
func (b *Backend) SaveLibrary(presets []core.Preset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if presets == nil {
		presets = []core.Preset{}
	}
	return b.writeJSON(LibraryFileName, presets)
}

// LoadZoneSortOrder reads the custom zone order. A missing file is an
// empty order.
func (b *Backend) LoadZoneSortOrder() ([]uint16, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var order []uint16
	if _, err := b.readJSON(SortOrderFileName, &order); err != nil {
		return nil, err
	}
	return order, nil
}

// SaveZoneSortOrder writes the order, or deletes the file when it is empty.
func (b *Backend) SaveZoneSortOrder(order []uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(order) == 0 {
		return b.remove(SortOrderFileName)
	}
	return b.writeJSON(SortOrderFileName, order)
}
