package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/internal/model"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func samplePreset(t *testing.T) core.Preset {
	t.Helper()
	p := core.NewPreset("Boss")
	p.SetZoneID(788)
	p.SetTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, p.SetWaymark(core.C, core.Waymark{X: 100.5, Y: 0, Z: -88.25, Active: true}))
	require.NoError(t, p.SetWaymark(core.Four, core.Waymark{X: 1, Y: 2, Z: 3, Active: true}))
	return p
}

// Round-trip: Core → GORM → Core
func TestPresetRoundTrip(t *testing.T) {
	p := samplePreset(t)

	rec := CoreToPresetRecord(p, 4)
	assert.Equal(t, 4, rec.Position)
	assert.Equal(t, "Boss", rec.Name)
	assert.Equal(t, uint16(788), rec.ZoneID)

	var ws []model.WaymarkJSON
	require.NoError(t, json.Unmarshal(rec.Waymarks, &ws))
	require.Len(t, ws, core.WaymarkCount)
	assert.Equal(t, model.WaymarkJSON{ID: 2, X: 100.5, Z: -88.25, Active: true}, ws[2])

	back, err := PresetRecordToCore(rec)
	require.NoError(t, err)
	assert.True(t, back.Equal(p))
	assert.Equal(t, p.Name(), back.Name())
	assert.Equal(t, p.Time(), back.Time())
}

func TestPresetRecordToCore_PartialWaymarks(t *testing.T) {
	rec := model.PresetRecord{
		Name:     "partial",
		ZoneID:   1,
		Waymarks: datatypes.JSON(`[{"id":1,"x":5,"y":6,"z":7,"active":true},{"id":42,"x":1}]`),
	}

	p, err := PresetRecordToCore(rec)
	require.NoError(t, err)

	b, _ := p.Waymark(core.B)
	assert.Equal(t, core.Waymark{X: 5, Y: 6, Z: 7, ID: core.B, Active: true}, b)
	a, _ := p.Waymark(core.A)
	assert.False(t, a.Active)
}

func TestPresetRecordToCore_BadJSON(t *testing.T) {
	_, err := PresetRecordToCore(model.PresetRecord{ID: 9, Waymarks: datatypes.JSON(`{`)})
	assert.ErrorContains(t, err, "decode waymarks")
}

func TestPresetRecordsOrderedByPosition(t *testing.T) {
	a := core.NewPreset("a")
	b := core.NewPreset("b")
	c := core.NewPreset("c")

	records := CoreToPresetRecords([]core.Preset{a, b, c})
	records[0], records[2] = records[2], records[0]

	presets, err := PresetRecordsToCore(records)
	require.NoError(t, err)
	require.Len(t, presets, 3)
	assert.Equal(t, "a", presets[0].Name())
	assert.Equal(t, "c", presets[2].Name())
}

func TestZoneOrderEntries(t *testing.T) {
	entries := ZoneOrderToEntries([]uint16{30, 10, 20})
	assert.Equal(t, model.ZoneSortEntry{Position: 1, ZoneID: 10}, entries[1])

	entries[0], entries[2] = entries[2], entries[0]
	assert.Equal(t, []uint16{30, 10, 20}, EntriesToZoneOrder(entries))
	assert.Empty(t, EntriesToZoneOrder(nil))
}
