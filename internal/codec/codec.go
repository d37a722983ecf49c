// Package codec converts presets to and from the host slot record and the
// JSON interchange strings.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/fieldmarker"
)

// ErrImportParse is returned when an interchange string cannot be decoded.
var ErrImportParse = errors.New("could not parse preset")

// fixed-point scale of slot coordinates
const coordScale = 1000.0

// Parse converts a slot record into a preset named core.DefaultPresetName.
func Parse(gp fieldmarker.FieldMarkerPreset) core.Preset {
	p := core.NewPreset(core.DefaultPresetName)
	var ws [core.WaymarkCount]core.Waymark
	for i, m := range gp.Markers {
		ws[i] = core.Waymark{
			X:      float32(m.X) / coordScale,
			Y:      float32(m.Y) / coordScale,
			Z:      float32(m.Z) / coordScale,
			ID:     core.WaymarkID(i),
			Active: gp.ActiveMarkers.Get(i),
		}
	}
	p.SetWaymarks(ws)
	p.SetZoneID(gp.ContentFinderConditionID)
	p.SetTime(time.Unix(int64(gp.Timestamp), 0))
	return p
}

// ToGamePreset converts a preset into a slot record. Inactive markers are
// written as the origin whatever coordinates they hold.
func ToGamePreset(p core.Preset) fieldmarker.FieldMarkerPreset {
	var gp fieldmarker.FieldMarkerPreset
	for i, w := range p.Waymarks() {
		gp.ActiveMarkers.Set(i, w.Active)
		if !w.Active {
			continue
		}
		gp.Markers[i] = fieldmarker.GamePresetPoint{
			X: toFixed(w.X),
			Y: toFixed(w.Y),
			Z: toFixed(w.Z),
		}
	}
	gp.ContentFinderConditionID = p.ZoneID()
	gp.Timestamp = int32(p.Time().Unix())
	return gp
}

// toFixed scales and truncates toward zero, saturating at the int32 range.
func toFixed(v float32) int32 {
	f := float64(v) * coordScale
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

// DecodeSlot parses a raw slot buffer.
func DecodeSlot(data []byte) (core.Preset, error) {
	var gp fieldmarker.FieldMarkerPreset
	if err := gp.UnmarshalBinary(data); err != nil {
		return core.Preset{}, err
	}
	return Parse(gp), nil
}

// EncodeSlot produces the raw slot buffer for a preset.
func EncodeSlot(p core.Preset) []byte {
	data, _ := ToGamePreset(p).MarshalBinary()
	return data
}

// ExportJSON renders the interchange string. Without includeTime the
// timestamp is omitted, which is the form shared between players.
func ExportJSON(p core.Preset, includeTime bool) (string, error) {
	data, err := json.Marshal(p.Document(includeTime))
	if err != nil {
		return "", fmt.Errorf("encoding preset %q: %w", p.Name(), err)
	}
	return string(data), nil
}

// ExportAll renders one interchange string per line.
func ExportAll(presets []core.Preset, includeTime bool) (string, error) {
	var b strings.Builder
	for _, p := range presets {
		s, err := ExportJSON(p, includeTime)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		b.WriteString("\r\n")
	}
	return b.String(), nil
}

// ImportJSON decodes an interchange string. Both the timestamped and the
// short form are accepted; a short form is stamped with the import time.
func ImportJSON(s string) (core.Preset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Preset{}, fmt.Errorf("%w: empty input", ErrImportParse)
	}
	var p core.Preset
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return core.Preset{}, fmt.Errorf("%w: %v", ErrImportParse, err)
	}
	return p, nil
}
