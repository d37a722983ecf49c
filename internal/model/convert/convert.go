package convert

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/model"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
)

// PresetRecordToCore converts a GORM model.PresetRecord to a core.Preset.
// Waymark entries with an id outside 0..7 are ignored; missing ones stay
// inactive at the origin.
func PresetRecordToCore(r model.PresetRecord) (core.Preset, error) {
	p := core.NewPreset(r.Name)
	p.SetZoneID(r.ZoneID)
	p.SetTime(r.LastModified)

	if len(r.Waymarks) == 0 {
		return p, nil
	}

	var ws []model.WaymarkJSON
	if err := json.Unmarshal(r.Waymarks, &ws); err != nil {
		return core.Preset{}, fmt.Errorf("preset %d (%q): decode waymarks: %w", r.ID, r.Name, err)
	}
	for _, w := range ws {
		id := core.WaymarkID(w.ID)
		if !id.Valid() {
			continue
		}
		_ = p.SetWaymark(id, core.Waymark{X: w.X, Y: w.Y, Z: w.Z, Active: w.Active})
	}
	return p, nil
}

// PresetRecordsToCore converts records into a library list ordered by
// Position.
func PresetRecordsToCore(records []model.PresetRecord) ([]core.Preset, error) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.PresetRecord) int {
		return a.Position - b.Position
	})

	presets := make([]core.Preset, 0, len(sorted))
	for _, r := range sorted {
		p, err := PresetRecordToCore(r)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// EntriesToZoneOrder converts table rows back to a custom zone order.
func EntriesToZoneOrder(entries []model.ZoneSortEntry) []uint16 {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b model.ZoneSortEntry) int {
		return a.Position - b.Position
	})

	order := make([]uint16, len(sorted))
	for i, e := range sorted {
		order[i] = e.ZoneID
	}
	return order
}
