// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/model"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"gorm.io/datatypes"
)

// waymarksToJSON converts the eight waymarks to datatypes.JSON for DB storage.
func waymarksToJSON(ws [core.WaymarkCount]core.Waymark) datatypes.JSON {
	out := make([]model.WaymarkJSON, len(ws))
	for i, w := range ws {
		out[i] = model.WaymarkJSON{ID: i, X: w.X, Y: w.Y, Z: w.Z, Active: w.Active}
	}
	data, _ := json.Marshal(out)
	return datatypes.JSON(data)
}

// CoreToPresetRecord converts a core.Preset at library index position to a
// GORM model.PresetRecord.
func CoreToPresetRecord(p core.Preset, position int) model.PresetRecord {
	return model.PresetRecord{
		Position:     position,
		Name:         p.Name(),
		ZoneID:       p.ZoneID(),
		LastModified: p.Time(),
		Waymarks:     waymarksToJSON(p.Waymarks()),
	}
}

// CoreToPresetRecords converts a whole library in order.
func CoreToPresetRecords(presets []core.Preset) []model.PresetRecord {
	records := make([]model.PresetRecord, len(presets))
	for i, p := range presets {
		records[i] = CoreToPresetRecord(p, i)
	}
	return records
}

// ZoneOrderToEntries converts a stored custom zone order to table rows.
func ZoneOrderToEntries(order []uint16) []model.ZoneSortEntry {
	entries := make([]model.ZoneSortEntry, len(order))
	for i, z := range order {
		entries[i] = model.ZoneSortEntry{Position: i, ZoneID: z}
	}
	return entries
}
