// Package fieldmarker describes the host's fixed-size field marker preset
// record and reads/writes it byte for byte.
package fieldmarker

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Record layout, little endian.
const (
	markerSize     = 12
	markersOffset  = 0x00
	flagsOffset    = 0x60
	reservedOffset = 0x61
	zoneOffset     = 0x62
	timeOffset     = 0x64

	// SlotSize is the size in bytes of one preset slot in host memory.
	SlotSize = 0x68

	// MarkerCount is the number of markers in a slot.
	MarkerCount = 8
)

// ErrMalformedSlotData is returned when a buffer is not exactly SlotSize bytes.
var ErrMalformedSlotData = errors.New("malformed slot data")

// GamePresetPoint is a marker position in thousandths of a world unit.
type GamePresetPoint struct {
	X int32
	Y int32
	Z int32
}

// FieldMarkerPreset mirrors one preset slot of the host.
type FieldMarkerPreset struct {
	Markers                  [MarkerCount]GamePresetPoint
	ActiveMarkers            BitField8
	ContentFinderConditionID uint16
	Timestamp                int32
}

// MarshalBinary encodes the slot in host layout. The reserved byte is zero.
func (p FieldMarkerPreset) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SlotSize)
	for i, m := range p.Markers {
		off := markersOffset + i*markerSize
		binary.LittleEndian.PutUint32(buf[off:], uint32(m.X))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(m.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], uint32(m.Z))
	}
	buf[flagsOffset] = byte(p.ActiveMarkers)
	buf[reservedOffset] = 0
	binary.LittleEndian.PutUint16(buf[zoneOffset:], p.ContentFinderConditionID)
	binary.LittleEndian.PutUint32(buf[timeOffset:], uint32(p.Timestamp))
	return buf, nil
}

// UnmarshalBinary decodes a slot. On a size mismatch the receiver is left
// unchanged.
func (p *FieldMarkerPreset) UnmarshalBinary(data []byte) error {
	if len(data) != SlotSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedSlotData, len(data), SlotSize)
	}
	var out FieldMarkerPreset
	for i := range out.Markers {
		off := markersOffset + i*markerSize
		out.Markers[i] = GamePresetPoint{
			X: int32(binary.LittleEndian.Uint32(data[off:])),
			Y: int32(binary.LittleEndian.Uint32(data[off+4:])),
			Z: int32(binary.LittleEndian.Uint32(data[off+8:])),
		}
	}
	out.ActiveMarkers = BitField8(data[flagsOffset])
	out.ContentFinderConditionID = binary.LittleEndian.Uint16(data[zoneOffset:])
	out.Timestamp = int32(binary.LittleEndian.Uint32(data[timeOffset:]))
	*p = out
	return nil
}

// IsEmpty reports whether the slot holds no data at all.
func (p FieldMarkerPreset) IsEmpty() bool {
	return p == FieldMarkerPreset{}
}

func (p FieldMarkerPreset) String() string {
	var b strings.Builder
	for i, m := range p.Markers {
		fmt.Fprintf(&b, "Marker %d: %d, %d, %d\n", i, m.X, m.Y, m.Z)
	}
	fmt.Fprintf(&b, "Active Flags: %s\n", p.ActiveMarkers)
	fmt.Fprintf(&b, "ContentFinderCondition: %d\n", p.ContentFinderConditionID)
	fmt.Fprintf(&b, "Timestamp: %d", p.Timestamp)
	return b.String()
}
