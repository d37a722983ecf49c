// internal/storage/storage.go
package storage

import "github.com/sourpuh/WaymarkPresetPlugin/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// The preset list and the custom zone order are persisted independently.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Preset library, in library order
	LoadLibrary() ([]core.Preset, error)
	SaveLibrary(presets []core.Preset) error

	// Custom zone order, stored ascending. Saving an empty order removes
	// the stored one.
	LoadZoneSortOrder() ([]uint16, error)
	SaveZoneSortOrder(order []uint16) error

	// Backup copies the persisted state aside and returns where it went.
	Backup() (string, error)
}
