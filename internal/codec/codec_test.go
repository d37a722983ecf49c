package codec

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/fieldmarker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePreset() core.Preset {
	p := core.NewPreset("Sample")
	p.SetZoneID(563)
	p.SetTime(time.Date(2023, 7, 14, 20, 0, 0, 0, time.UTC))
	_ = p.SetWaymark(core.A, core.Waymark{X: 100.5, Y: 0.001, Z: -95.25, Active: true})
	_ = p.SetWaymark(core.C, core.Waymark{X: 81.125, Y: 2, Z: 100, Active: true})
	_ = p.SetWaymark(core.Three, core.Waymark{X: -1.999, Y: 0, Z: 12.75, Active: true})
	return p
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := samplePreset()

	got, err := DecodeSlot(EncodeSlot(p))
	require.NoError(t, err)

	assert.True(t, p.Equal(got))
	assert.Equal(t, p.Time(), got.Time())
	assert.Equal(t, core.DefaultPresetName, got.Name(), "names are not carried in slots")
}

func TestToGamePresetZeroesInactive(t *testing.T) {
	p := core.NewPreset("stale")
	_ = p.SetWaymark(core.B, core.Waymark{X: 55, Y: 66, Z: 77, Active: false})

	gp := ToGamePreset(p)
	assert.Equal(t, fieldmarker.GamePresetPoint{}, gp.Markers[core.B])
	assert.False(t, gp.ActiveMarkers.Get(int(core.B)))

	decoded := Parse(gp)
	b, _ := decoded.Waymark(core.B)
	assert.Equal(t, float32(0), b.X)
	assert.Equal(t, float32(0), b.Y)
	assert.Equal(t, float32(0), b.Z)
	assert.False(t, b.Active)
}

func TestToGamePresetFixedPoint(t *testing.T) {
	p := samplePreset()
	gp := ToGamePreset(p)

	assert.Equal(t, fieldmarker.GamePresetPoint{X: 100500, Y: 1, Z: -95250}, gp.Markers[core.A])
	assert.Equal(t, fieldmarker.GamePresetPoint{X: 81125, Y: 2000, Z: 100000}, gp.Markers[core.C])
	assert.Equal(t, fieldmarker.BitField8(0x45), gp.ActiveMarkers)
	assert.Equal(t, uint16(563), gp.ContentFinderConditionID)
	assert.Equal(t, int32(p.Time().Unix()), gp.Timestamp)
}

func TestToFixedTruncatesTowardZero(t *testing.T) {
	assert.Equal(t, int32(1), toFixed(0.0019))
	assert.Equal(t, int32(-1), toFixed(-0.0019))
	assert.Equal(t, int32(math.MaxInt32), toFixed(1e10))
	assert.Equal(t, int32(math.MinInt32), toFixed(-1e10))
	assert.Equal(t, int32(0), toFixed(float32(math.NaN())))
}

func TestParseFlags(t *testing.T) {
	var gp fieldmarker.FieldMarkerPreset
	gp.ActiveMarkers = 0x81
	gp.Markers[7] = fieldmarker.GamePresetPoint{X: -500, Y: 250, Z: 1}
	gp.ContentFinderConditionID = 9
	gp.Timestamp = 1600000000

	p := Parse(gp)
	for i, w := range p.Waymarks() {
		assert.Equal(t, i == 0 || i == 7, w.Active, "waymark %d", i)
	}
	four, _ := p.Waymark(core.Four)
	assert.Equal(t, float32(-0.5), four.X)
	assert.Equal(t, float32(0.25), four.Y)
	assert.Equal(t, uint16(9), p.ZoneID())
	assert.Equal(t, int64(1600000000), p.Time().Unix())
}

func TestDecodeSlotMalformed(t *testing.T) {
	_, err := DecodeSlot(make([]byte, 10))
	assert.ErrorIs(t, err, fieldmarker.ErrMalformedSlotData)
}

func TestExportImportJSON(t *testing.T) {
	p := samplePreset()

	t.Run("with time", func(t *testing.T) {
		s, err := ExportJSON(p, true)
		require.NoError(t, err)
		assert.Contains(t, s, `"timestamp":"2023-07-14T20:00:00Z"`)

		got, err := ImportJSON(s)
		require.NoError(t, err)
		assert.True(t, p.Equal(got))
		assert.Equal(t, "Sample", got.Name())
		assert.Equal(t, p.Time(), got.Time())
	})

	t.Run("short form", func(t *testing.T) {
		s, err := ExportJSON(p, false)
		require.NoError(t, err)
		assert.NotContains(t, s, "timestamp")

		got, err := ImportJSON(s)
		require.NoError(t, err)
		assert.True(t, p.Equal(got))
		assert.WithinDuration(t, time.Now(), got.Time(), 5*time.Second)
	})
}

func TestImportJSONErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "not json", "[1,2]", "null", `{"zoneId":"x"}`} {
		_, err := ImportJSON(input)
		assert.ErrorIs(t, err, ErrImportParse, "input %q", input)
	}
}

func TestExportAll(t *testing.T) {
	a := samplePreset()
	b := core.NewPreset("Second")

	s, err := ExportAll([]core.Preset{a, b}, false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(s), "\r\n")
	require.Len(t, lines, 2)
	first, err := ImportJSON(lines[0])
	require.NoError(t, err)
	assert.Equal(t, "Sample", first.Name())
	second, err := ImportJSON(lines[1])
	require.NoError(t, err)
	assert.Equal(t, "Second", second.Name())
}
