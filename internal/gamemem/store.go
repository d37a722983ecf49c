// Package gamemem is the boundary to the game's waymark preset storage.
//
// The host owns the real slot table; this package only sees it through the
// Store interface.
package gamemem

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/fieldmarker"
)

// MaxPresetSlotNum is the number of preset slots the game provides.
// Slots are numbered from 1.
const MaxPresetSlotNum = 30

var (
	ErrInvalidSlot = errors.New("invalid preset slot")
	ErrStoreBusy   = errors.New("game preset store busy")
)

// Store reads and writes the game's preset slots and places waymarks.
type Store interface {
	ReadSlot(ctx context.Context, slot int) (fieldmarker.FieldMarkerPreset, error)
	WriteSlot(ctx context.Context, slot int, p fieldmarker.FieldMarkerPreset) error
	Place(ctx context.Context, p fieldmarker.FieldMarkerPreset) error
	CurrentWaymarks(ctx context.Context) ([core.WaymarkCount]core.Waymark, error)
}

// CheckSlot returns ErrInvalidSlot unless slot is in 1..MaxPresetSlotNum.
func CheckSlot(slot int) error {
	if slot < 1 || slot > MaxPresetSlotNum {
		return fmt.Errorf("%w: %d (valid 1-%d)", ErrInvalidSlot, slot, MaxPresetSlotNum)
	}
	return nil
}
