package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// SchemaVersion is written to PluginInfo on first migration.
const SchemaVersion = 1

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&PluginInfo{},
	&PresetRecord{},
	&ZoneSortEntry{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// PluginInfo records which schema version created the database.
type PluginInfo struct {
	gorm.Model
	SchemaVersion int    `json:"schemaVersion"`
	Description   string `json:"description" gorm:"size:255"`
}

func (*PluginInfo) TableName() string {
	return "plugin_infos"
}

////////////////////////
// LIBRARY MODELS
////////////////////////

// PresetRecord is one library entry. Position is its library index and is
// rewritten on every save.
type PresetRecord struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	Position     int            `json:"position" gorm:"index:idx_preset_position;not null"`
	Name         string         `json:"name" gorm:"size:255"`
	ZoneID       uint16         `json:"zoneId" gorm:"index:idx_preset_zone_id"`
	LastModified time.Time      `json:"lastModified"`
	Waymarks     datatypes.JSON `json:"waymarks"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (*PresetRecord) TableName() string {
	return "presets"
}

// WaymarkJSON is one element of PresetRecord.Waymarks.
type WaymarkJSON struct {
	ID     int     `json:"id"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Z      float32 `json:"z"`
	Active bool    `json:"active"`
}

// ZoneSortEntry is one element of the custom zone order, stored ascending.
type ZoneSortEntry struct {
	ID       uint   `json:"id" gorm:"primarykey"`
	Position int    `json:"position" gorm:"uniqueIndex:idx_zone_sort_position;not null"`
	ZoneID   uint16 `json:"zoneId" gorm:"uniqueIndex:idx_zone_sort_zone_id"`
}

func (*ZoneSortEntry) TableName() string {
	return "zone_sort_entries"
}
