// Package library holds the user's ordered preset collection and the custom
// zone order used to group it.
//
// A Library is not safe for concurrent use; callers serialise access.
package library

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/codec"
	"github.com/sourpuh/WaymarkPresetPlugin/internal/zonesort"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/fieldmarker"
)

// ImportedPresetName is given to presets copied out of a game slot.
const ImportedPresetName = "Imported"

// ErrIndexOutOfRange is returned for a library index outside 0..Len()-1.
var ErrIndexOutOfRange = errors.New("library index out of range")

// Library is an ordered list of presets. Indices are contiguous and shift
// on Delete and Move.
type Library struct {
	presets []core.Preset

	numeric    zonesort.Numeric
	alpha      zonesort.AlphabeticalOrder
	custom     *zonesort.CustomOrder
	descending bool
}

// New creates an empty library. names may be nil, in which case every zone
// is unknown to alphabetical sorting.
func New(names zonesort.ZoneNamer) *Library {
	return &Library{
		alpha:  zonesort.AlphabeticalOrder{Names: names},
		custom: zonesort.NewCustomOrder(nil),
	}
}

// Load replaces the whole state, typically with what storage returned.
func (l *Library) Load(presets []core.Preset, customOrder []uint16) {
	l.presets = slices.Clone(presets)
	l.custom.Set(customOrder, false)
}

func (l *Library) Len() int {
	return len(l.presets)
}

func (l *Library) checkIndex(i int) error {
	if i < 0 || i >= len(l.presets) {
		return fmt.Errorf("%w: %d (library has %d presets)", ErrIndexOutOfRange, i, len(l.presets))
	}
	return nil
}

// Preset returns a copy of the preset at index i.
func (l *Library) Preset(i int) (core.Preset, error) {
	if err := l.checkIndex(i); err != nil {
		return core.Preset{}, err
	}
	return l.presets[i], nil
}

// Presets returns a copy of the list.
func (l *Library) Presets() []core.Preset {
	return slices.Clone(l.presets)
}

// Import appends a copy of p and returns its index. When a custom zone
// order is established and lacks p's zone, the zone is appended to it.
func (l *Library) Import(p core.Preset) int {
	l.presets = append(l.presets, p.Clone())
	l.registerZone(p.ZoneID())
	return len(l.presets) - 1
}

// ImportGamePreset appends a preset read from a game slot.
func (l *Library) ImportGamePreset(gp fieldmarker.FieldMarkerPreset) int {
	p := codec.Parse(gp)
	p.SetName(ImportedPresetName)
	return l.Import(p)
}

// ImportJSON decodes s and appends it. On failure the library is unchanged.
func (l *Library) ImportJSON(s string) (int, error) {
	p, err := codec.ImportJSON(s)
	if err != nil {
		return -1, err
	}
	return l.Import(p), nil
}

// Delete removes the preset at index i. If no other preset uses its zone,
// the zone is dropped from the custom order.
func (l *Library) Delete(i int) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	zone := l.presets[i].ZoneID()
	l.presets = slices.Delete(l.presets, i, i+1)
	l.releaseZone(zone)
	return nil
}

// Move relocates the preset at index to newPos and returns its final
// index. newPos addresses the list before removal; placeAfter puts the
// preset after that position instead of before it.
func (l *Library) Move(index, newPos int, placeAfter bool) (int, error) {
	if newPos == index {
		return index, nil
	}

	limit := len(l.presets)
	if placeAfter {
		limit--
	}
	if index < 0 || index >= len(l.presets) || newPos < 0 || newPos > limit {
		return -1, fmt.Errorf("%w: move %d to %d (after=%t, library has %d presets)",
			ErrIndexOutOfRange, index, newPos, placeAfter, len(l.presets))
	}

	p := l.presets[index]
	l.presets = slices.Delete(l.presets, index, index+1)
	if newPos > index {
		newPos--
	}
	if placeAfter {
		newPos++
	}
	l.presets = slices.Insert(l.presets, newPos, p)
	return newPos, nil
}

// Replace overwrites the preset at index i, as the editor does on save.
func (l *Library) Replace(i int, p core.Preset) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	old := l.presets[i].ZoneID()
	l.presets[i] = p.Clone()
	if old != p.ZoneID() {
		l.zoneChanged(old, p.ZoneID())
	}
	return nil
}

// SetPresetName renames the preset at index i.
func (l *Library) SetPresetName(i int, name string) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	l.presets[i].SetName(name)
	return nil
}

// SetPresetZone moves the preset at index i to another zone.
func (l *Library) SetPresetZone(i int, zone uint16) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	old := l.presets[i].ZoneID()
	if l.presets[i].SetZoneID(zone) {
		l.zoneChanged(old, zone)
	}
	return nil
}

func (l *Library) zoneChanged(old, updated uint16) {
	l.registerZone(updated)
	l.releaseZone(old)
}

func (l *Library) registerZone(zone uint16) {
	if l.custom.Len() != 0 && !l.custom.Contains(zone) {
		l.custom.AddOrChange(zone, zonesort.EndOfOrder)
	}
}

func (l *Library) releaseZone(zone uint16) {
	if !slices.ContainsFunc(l.presets, func(p core.Preset) bool { return p.ZoneID() == zone }) {
		l.custom.Remove(zone)
	}
}

// FindEqual returns the index of the first preset equal to p, or -1.
func (l *Library) FindEqual(p core.Preset) int {
	return slices.IndexFunc(l.presets, p.Equal)
}

// IndexOfName returns the first preset whose name matches case-insensitively,
// or -1.
func (l *Library) IndexOfName(name string) int {
	return slices.IndexFunc(l.presets, func(p core.Preset) bool {
		return strings.EqualFold(p.Name(), name)
	})
}

// IndexOfNameInZone is IndexOfName restricted to one zone. Zone 0 never
// matches.
func (l *Library) IndexOfNameInZone(name string, zone uint16) int {
	if zone == core.UnknownZone {
		return -1
	}
	return slices.IndexFunc(l.presets, func(p core.Preset) bool {
		return p.ZoneID() == zone && strings.EqualFold(p.Name(), name)
	})
}

// IndicesForZone lists, in library order, the presets bound to zone. Zone 0
// yields nothing.
func (l *Library) IndicesForZone(zone uint16) []int {
	var out []int
	if zone == core.UnknownZone {
		return out
	}
	for i, p := range l.presets {
		if p.ZoneID() == zone {
			out = append(out, i)
		}
	}
	return out
}
