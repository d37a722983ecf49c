package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPreset(zone uint16) Preset {
	p := NewPreset("Test")
	p.SetZoneID(zone)
	_ = p.SetWaymark(A, Waymark{X: 100.5, Y: 0, Z: 95.25, Active: true})
	_ = p.SetWaymark(One, Waymark{X: -12.25, Y: 1.5, Z: 80, Active: true})
	return p
}

func TestWaymarkLabel(t *testing.T) {
	tests := []struct {
		id    WaymarkID
		short string
		long  string
	}{
		{A, "A", "A"},
		{D, "D", "D"},
		{One, "1", "One"},
		{Four, "4", "Four"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.short, tt.id.Label(false))
		assert.Equal(t, tt.long, tt.id.Label(true))
	}
	assert.Equal(t, "Waymark(9)", WaymarkID(9).Label(false))
}

func TestWaymarkEqual(t *testing.T) {
	base := Waymark{X: 10, Y: 20, Z: 30, Active: true}

	tests := []struct {
		name  string
		other Waymark
		want  bool
	}{
		{"identical", base, true},
		{"within tolerance", Waymark{X: 10.009, Y: 19.995, Z: 30.005, Active: true}, true},
		{"outside tolerance", Waymark{X: 10.02, Y: 20, Z: 30, Active: true}, false},
		{"active differs", Waymark{X: 10, Y: 20, Z: 30, Active: false}, false},
		{"id ignored", Waymark{X: 10, Y: 20, Z: 30, ID: Three, Active: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
		})
	}
}

func TestWaymarkDataString(t *testing.T) {
	assert.Equal(t, "Unused", Waymark{X: 1}.DataString())
	assert.Equal(t, " 100.50,    0.00,  -95.25", Waymark{X: 100.5, Z: -95.25, Active: true}.DataString())
}

func TestNewPreset(t *testing.T) {
	p := NewPreset("Fresh")

	assert.Equal(t, "Fresh", p.Name())
	assert.Equal(t, UnknownZone, p.ZoneID())
	assert.Equal(t, time.UTC, p.Time().Location())
	assert.Zero(t, p.Time().Nanosecond())
	for i, w := range p.Waymarks() {
		assert.Equal(t, WaymarkID(i), w.ID)
		assert.False(t, w.Active)
	}
}

func TestSetZoneIDReportsChange(t *testing.T) {
	p := NewPreset("p")
	assert.True(t, p.SetZoneID(42))
	assert.False(t, p.SetZoneID(42))
	assert.True(t, p.SetZoneID(0))
}

func TestSetWaymarkForcesID(t *testing.T) {
	p := NewPreset("p")
	require.NoError(t, p.SetWaymark(C, Waymark{X: 1, ID: Four, Active: true}))

	w, err := p.Waymark(C)
	require.NoError(t, err)
	assert.Equal(t, C, w.ID)
	assert.Equal(t, float32(1), w.X)

	assert.ErrorIs(t, p.SetWaymark(8, Waymark{}), ErrWaymarkIndex)
	_, err = p.Waymark(-1)
	assert.ErrorIs(t, err, ErrWaymarkIndex)
}

func TestSwapWaymarks(t *testing.T) {
	p := testPreset(1)
	require.NoError(t, p.SwapWaymarks(A, Four))

	a, _ := p.Waymark(A)
	four, _ := p.Waymark(Four)
	assert.False(t, a.Active)
	assert.Equal(t, A, a.ID)
	assert.True(t, four.Active)
	assert.Equal(t, float32(100.5), four.X)
	assert.Equal(t, Four, four.ID)

	assert.ErrorIs(t, p.SwapWaymarks(A, 12), ErrWaymarkIndex)
}

func TestPresetEqual(t *testing.T) {
	p := testPreset(10)

	renamed := p.Clone()
	renamed.SetName("Other")
	renamed.SetTime(time.Unix(0, 0))
	assert.True(t, p.Equal(renamed), "name and time are not part of equality")

	otherZone := p.Clone()
	otherZone.SetZoneID(11)
	assert.False(t, p.Equal(otherZone))

	moved := p.Clone()
	_ = moved.SetWaymark(B, Waymark{Active: true})
	assert.False(t, p.Equal(moved))
}

func TestCloneIsIndependent(t *testing.T) {
	p := testPreset(3)
	c := p.Clone()
	_ = c.SetWaymark(A, Waymark{})

	a, _ := p.Waymark(A)
	assert.True(t, a.Active)
}

func TestClampZoneID(t *testing.T) {
	assert.Equal(t, uint16(0), ClampZoneID(-1))
	assert.Equal(t, uint16(0), ClampZoneID(65536))
	assert.Equal(t, uint16(65535), ClampZoneID(65535))
	assert.Equal(t, uint16(777), ClampZoneID(777))
}

func TestPresetDataString(t *testing.T) {
	p := testPreset(5)
	p.SetTime(time.Date(2024, 3, 9, 18, 4, 5, 0, time.FixedZone("CET", 3600)))
	s := p.DataString("The Aery")

	assert.Contains(t, s, "A:  100.50,    0.00,   95.25\n")
	assert.Contains(t, s, "B: Unused\n")
	assert.Contains(t, s, "1:  -12.25,    1.50,   80.00\n")
	assert.Contains(t, s, "Zone: The Aery\n")
	assert.True(t, strings.HasSuffix(s, "\nLast Modified: Sat, 09 Mar 2024 17:04:05 UTC"), s)
}
