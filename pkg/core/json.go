// pkg/core/json.go
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// WaymarkDocument is the interchange form of a single waymark.
type WaymarkDocument struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Z      float32 `json:"z"`
	ID     int     `json:"id"`
	Active bool    `json:"active"`
}

// PresetDocument is the JSON interchange form of a preset. Field matching
// is case-insensitive, so documents written with capitalised keys
// ("Name", "A", "X", ...) decode as well. MapID and Time are accepted as
// legacy aliases for zoneId and timestamp and are never written.
type PresetDocument struct {
	Name      *string          `json:"name,omitempty"`
	ZoneID    *ZoneIDValue     `json:"zoneId,omitempty"`
	MapID     *ZoneIDValue     `json:"MapID,omitempty"`
	Timestamp *Timestamp       `json:"timestamp,omitempty"`
	Time      *Timestamp       `json:"Time,omitempty"`
	A         *WaymarkDocument `json:"a,omitempty"`
	B         *WaymarkDocument `json:"b,omitempty"`
	C         *WaymarkDocument `json:"c,omitempty"`
	D         *WaymarkDocument `json:"d,omitempty"`
	One       *WaymarkDocument `json:"one,omitempty"`
	Two       *WaymarkDocument `json:"two,omitempty"`
	Three     *WaymarkDocument `json:"three,omitempty"`
	Four      *WaymarkDocument `json:"four,omitempty"`
}

func (d *PresetDocument) slots() [WaymarkCount]**WaymarkDocument {
	return [WaymarkCount]**WaymarkDocument{&d.A, &d.B, &d.C, &d.D, &d.One, &d.Two, &d.Three, &d.Four}
}

// Document converts the preset to its interchange form. The timestamp is
// left out when includeTime is false.
func (p Preset) Document(includeTime bool) PresetDocument {
	name := p.name
	zone := ZoneIDValue(p.zoneID)
	doc := PresetDocument{
		Name:   &name,
		ZoneID: &zone,
	}
	if includeTime {
		ts := Timestamp(p.time)
		doc.Timestamp = &ts
	}
	for i, slot := range doc.slots() {
		w := p.waymarks[i]
		*slot = &WaymarkDocument{X: w.X, Y: w.Y, Z: w.Z, ID: i, Active: w.Active}
	}
	return doc
}

// Preset builds a preset from the document. Missing fields fall back to
// the defaults of NewPreset; missing waymarks are inactive at the origin.
func (d PresetDocument) Preset() Preset {
	p := NewPreset(DefaultPresetName)
	if d.Name != nil {
		p.name = *d.Name
	}
	switch {
	case d.ZoneID != nil:
		p.zoneID = uint16(*d.ZoneID)
	case d.MapID != nil:
		p.zoneID = uint16(*d.MapID)
	}
	switch {
	case d.Timestamp != nil:
		p.SetTime(time.Time(*d.Timestamp))
	case d.Time != nil:
		p.SetTime(time.Time(*d.Time))
	}
	for i, slot := range d.slots() {
		if *slot == nil {
			continue
		}
		w := **slot
		p.waymarks[i] = Waymark{X: w.X, Y: w.Y, Z: w.Z, ID: WaymarkID(i), Active: w.Active}
	}
	return p
}

// MarshalJSON writes the full document including the timestamp.
func (p Preset) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Document(true))
}

// UnmarshalJSON accepts any document PresetDocument can decode.
func (p *Preset) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("preset document is null")
	}
	var doc PresetDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*p = doc.Preset()
	return nil
}

// ZoneIDValue decodes any JSON number into the zone id domain using
// ClampZoneID.
type ZoneIDValue uint16

func (z *ZoneIDValue) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*z = ZoneIDValue(ClampZoneID(i))
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("zone id %s is not a number", s)
	}
	if math.IsNaN(f) || f < 0 || f > math.MaxUint16 {
		*z = ZoneIDValue(UnknownZone)
		return nil
	}
	*z = ZoneIDValue(ClampZoneID(int64(f)))
	return nil
}

// Timestamp is written as an RFC 3339 string and read from either an
// RFC 3339 string or a number of Unix seconds.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
		*t = Timestamp(parsed)
		return nil
	}
	secs, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return fmt.Errorf("timestamp %s is neither a string nor a number", data)
		}
		secs = int64(f)
	}
	*t = Timestamp(time.Unix(secs, 0))
	return nil
}
