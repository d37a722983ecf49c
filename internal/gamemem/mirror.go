package gamemem

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/codec"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/fieldmarker"
)

// Host callback function names emitted by Mirror.
const (
	NotifyWriteSlot = "writeSlot"
	NotifyPlace     = "placePreset"
)

// Notifier forwards changes to the host. args are JSON encodable.
type Notifier interface {
	Notify(function string, args ...any) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(function string, args ...any) error

func (f NotifierFunc) Notify(function string, args ...any) error {
	return f(function, args...)
}

// Mirror keeps a copy of the host's slot table as raw slot records. The
// host pushes its state with SetSlotData and SetCurrentWaymarks; writes and
// placements are sent to the host through the Notifier, with the record hex
// encoded, and applied locally only once the host accepted them.
type Mirror struct {
	mu       sync.RWMutex
	slots    [MaxPresetSlotNum][fieldmarker.SlotSize]byte
	current  [core.WaymarkCount]core.Waymark
	notifier Notifier
}

// NewMirror creates a mirror with every slot zeroed. notifier may be nil.
func NewMirror(notifier Notifier) *Mirror {
	m := &Mirror{notifier: notifier}
	for i := range m.current {
		m.current[i].ID = core.WaymarkID(i)
	}
	return m
}

// SetSlotData stores a record pushed by the host without notifying it.
func (m *Mirror) SetSlotData(slot int, data []byte) error {
	if err := CheckSlot(slot); err != nil {
		return err
	}
	var gp fieldmarker.FieldMarkerPreset
	if err := gp.UnmarshalBinary(data); err != nil {
		return err
	}

	m.mu.Lock()
	copy(m.slots[slot-1][:], data)
	m.mu.Unlock()
	return nil
}

// SetCurrentWaymarks records the markers currently on the field.
func (m *Mirror) SetCurrentWaymarks(ws [core.WaymarkCount]core.Waymark) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range ws {
		ws[i].ID = core.WaymarkID(i)
	}
	m.current = ws
}

func (m *Mirror) ReadSlot(_ context.Context, slot int) (fieldmarker.FieldMarkerPreset, error) {
	var gp fieldmarker.FieldMarkerPreset
	if err := CheckSlot(slot); err != nil {
		return gp, err
	}

	m.mu.RLock()
	raw := m.slots[slot-1]
	m.mu.RUnlock()

	err := gp.UnmarshalBinary(raw[:])
	return gp, err
}

func (m *Mirror) WriteSlot(_ context.Context, slot int, p fieldmarker.FieldMarkerPreset) error {
	if err := CheckSlot(slot); err != nil {
		return err
	}
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}

	if err := m.notify(NotifyWriteSlot, slot, hex.EncodeToString(data)); err != nil {
		return err
	}

	m.mu.Lock()
	copy(m.slots[slot-1][:], data)
	m.mu.Unlock()
	return nil
}

func (m *Mirror) Place(_ context.Context, p fieldmarker.FieldMarkerPreset) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}

	if err := m.notify(NotifyPlace, hex.EncodeToString(data)); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = codec.Parse(p).Waymarks()
	m.mu.Unlock()
	return nil
}

func (m *Mirror) CurrentWaymarks(context.Context) ([core.WaymarkCount]core.Waymark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

func (m *Mirror) notify(function string, args ...any) error {
	if m.notifier == nil {
		return nil
	}
	if err := m.notifier.Notify(function, args...); err != nil {
		return fmt.Errorf("notify host %s: %w", function, err)
	}
	return nil
}
