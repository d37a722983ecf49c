// pkg/core/preset.go
package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// UnknownZone is the zone id used when a preset's zone is not known.
const UnknownZone uint16 = 0

// DefaultPresetName is assigned to presets that were not given a name.
const DefaultPresetName = "New Preset"

// ErrWaymarkIndex is returned when a waymark is addressed outside 0..7.
var ErrWaymarkIndex = errors.New("waymark index out of range")

// Preset is a named set of eight waymarks bound to a zone.
type Preset struct {
	name     string
	zoneID   uint16
	time     time.Time
	waymarks [WaymarkCount]Waymark
}

// NewPreset creates an empty preset stamped with the current time.
func NewPreset(name string) Preset {
	p := Preset{
		name: name,
		time: time.Now().UTC().Truncate(time.Second),
	}
	for i := range p.waymarks {
		p.waymarks[i].ID = WaymarkID(i)
	}
	return p
}

// ClampZoneID maps any integer onto the zone id domain. Values that do not
// fit in 16 bits become UnknownZone.
func ClampZoneID(v int64) uint16 {
	if v < 0 || v > math.MaxUint16 {
		return UnknownZone
	}
	return uint16(v)
}

func (p Preset) Name() string { return p.name }

func (p *Preset) SetName(name string) { p.name = name }

func (p Preset) ZoneID() uint16 { return p.zoneID }

// SetZoneID assigns the zone and reports whether it differed from the
// previous value. Callers that index presets by zone must react to a true
// result.
func (p *Preset) SetZoneID(zone uint16) (changed bool) {
	changed = p.zoneID != zone
	p.zoneID = zone
	return changed
}

// Time is the last-modified time in UTC.
func (p Preset) Time() time.Time { return p.time }

// SetTime stores t in UTC at whole-second resolution.
func (p *Preset) SetTime(t time.Time) {
	p.time = t.UTC().Truncate(time.Second)
}

// Touch stamps the preset with the current time.
func (p *Preset) Touch() {
	p.SetTime(time.Now())
}

// Waymark returns the marker at index id.
func (p Preset) Waymark(id WaymarkID) (Waymark, error) {
	if !id.Valid() {
		return Waymark{}, fmt.Errorf("%w: %d", ErrWaymarkIndex, int(id))
	}
	return p.waymarks[id], nil
}

// SetWaymark replaces the marker at index id. The stored ID always matches
// the index regardless of w.ID.
func (p *Preset) SetWaymark(id WaymarkID, w Waymark) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrWaymarkIndex, int(id))
	}
	w.ID = id
	p.waymarks[id] = w
	return nil
}

// Waymarks returns a copy of all eight markers in index order.
func (p Preset) Waymarks() [WaymarkCount]Waymark {
	return p.waymarks
}

// SetWaymarks replaces all eight markers, normalising their IDs.
func (p *Preset) SetWaymarks(ws [WaymarkCount]Waymark) {
	for i := range ws {
		ws[i].ID = WaymarkID(i)
	}
	p.waymarks = ws
}

// SwapWaymarks exchanges position and active state of two markers. Each
// index keeps its own ID.
func (p *Preset) SwapWaymarks(i, j WaymarkID) error {
	if !i.Valid() || !j.Valid() {
		return fmt.Errorf("%w: %d, %d", ErrWaymarkIndex, int(i), int(j))
	}
	p.waymarks[i], p.waymarks[j] = p.waymarks[j], p.waymarks[i]
	p.waymarks[i].ID = i
	p.waymarks[j].ID = j
	return nil
}

// Clone returns an independent copy.
func (p Preset) Clone() Preset {
	return p
}

// Equal compares the eight waymarks and the zone id. Name and time are
// ignored so that renamed copies of the same layout still match.
func (p Preset) Equal(o Preset) bool {
	if p.zoneID != o.zoneID {
		return false
	}
	for i := range p.waymarks {
		if !p.waymarks[i].Equal(o.waymarks[i]) {
			return false
		}
	}
	return true
}

// DataString is the multi-line human-readable form shown in chat and the
// info pane.
func (p Preset) DataString(zoneName string) string {
	var b strings.Builder
	for i, w := range p.waymarks {
		fmt.Fprintf(&b, "%s: %s\n", WaymarkID(i).Label(false), w.DataString())
	}
	fmt.Fprintf(&b, "Zone: %s\n", zoneName)
	fmt.Fprintf(&b, "Last Modified: %s", p.time.Format(time.RFC1123))
	return b.String()
}

func (p Preset) String() string {
	return fmt.Sprintf("%q (zone %d)", p.name, p.zoneID)
}
