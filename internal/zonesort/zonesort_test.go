package zonesort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNames map[uint16]string

func (f fakeNames) ZoneName(zone uint16) (string, bool) {
	n, ok := f[zone]
	return n, ok
}

func TestParseSortType(t *testing.T) {
	tests := []struct {
		in   string
		want SortType
	}{
		{"basic", Basic},
		{"Numeric", Basic},
		{"ALPHABETICAL", Alphabetical},
		{" custom ", Custom},
	}
	for _, tt := range tests {
		got, err := ParseSortType(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustParse(t, got.String()))
	}

	_, err := ParseSortType("random")
	assert.Error(t, err)
}

func mustParse(t *testing.T, s string) SortType {
	t.Helper()
	st, err := ParseSortType(s)
	require.NoError(t, err)
	return st
}

func TestNumeric(t *testing.T) {
	assert.Negative(t, Numeric{}.Compare(1, 2))
	assert.Positive(t, Numeric{}.Compare(3, 2))
	assert.Zero(t, Numeric{}.Compare(2, 2))
	assert.Positive(t, Numeric{Descending: true}.Compare(1, 2))
}

func TestAlphabetical(t *testing.T) {
	names := fakeNames{10: "the Aery", 20: "Sastasha", 30: "aetherochemical research facility"}
	asc := AlphabeticalOrder{Names: names}
	desc := AlphabeticalOrder{Names: names, Descending: true}

	assert.Negative(t, asc.Compare(30, 10), "case-insensitive compare")
	assert.Negative(t, asc.Compare(20, 10))
	assert.Negative(t, asc.Compare(0, 10), "unknown first")
	assert.Positive(t, asc.Compare(10, 99))
	assert.Zero(t, asc.Compare(0, 99), "two unknown zones tie")
	assert.Positive(t, desc.Compare(0, 10))
	assert.Zero(t, AlphabeticalOrder{}.Compare(1, 2), "no names means everything is unknown")
}

func TestCustomMembershipRule(t *testing.T) {
	c := NewCustomOrder([]uint16{1, 3, 5})

	assert.Negative(t, c.Compare(5, 7), "listed zone before unlisted")
	assert.Positive(t, c.Compare(7, 5))
	assert.Negative(t, c.Compare(3, 5), "list position")
	assert.Positive(t, c.Compare(5, 1))
	assert.Negative(t, c.Compare(7, 9), "unlisted fall back to numeric")

	c.Descending = true
	assert.Positive(t, c.Compare(5, 7), "membership rule negated too")
	assert.Negative(t, c.Compare(7, 5))
	assert.Positive(t, c.Compare(3, 5))
	assert.Positive(t, c.Compare(7, 9))
}

func TestAddOrChange(t *testing.T) {
	tests := []struct {
		name        string
		start       []uint16
		zone        uint16
		placeBefore uint16
		want        []uint16
	}{
		{"append to empty", nil, 5, EndOfOrder, []uint16{5}},
		{"same zone no-op", []uint16{1, 2}, 2, 2, []uint16{1, 2}},
		{"missing target appends", []uint16{1, 2}, 3, 9, []uint16{1, 2, 3}},
		{"existing moves to end", []uint16{1, 2, 3}, 1, EndOfOrder, []uint16{2, 3, 1}},
		{"insert before", []uint16{1, 2, 3}, 4, 2, []uint16{1, 4, 2, 3}},
		{"move forward", []uint16{1, 2, 3, 4}, 4, 2, []uint16{1, 4, 2, 3}},
		{"move backward adjusts target", []uint16{1, 2, 3, 4}, 1, 4, []uint16{2, 3, 1, 4}},
		{"move to front", []uint16{1, 2, 3}, 3, 1, []uint16{3, 1, 2}},
		{"adjacent before already", []uint16{1, 2, 3}, 1, 2, []uint16{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCustomOrder(tt.start)
			c.AddOrChange(tt.zone, tt.placeBefore)
			assert.Equal(t, tt.want, c.Order())
		})
	}
}

func TestCustomSetDropsRepeats(t *testing.T) {
	c := NewCustomOrder([]uint16{4, 2, 4, 9, 2})
	assert.Equal(t, []uint16{4, 2, 9}, c.Order())

	c.Set([]uint16{5, 7, 5, 5}, false)
	assert.Equal(t, []uint16{5, 7}, c.Order())

	c.Set([]uint16{5, 7, 5}, true)
	assert.Equal(t, []uint16{7, 5}, c.Order())

	c.Remove(5)
	assert.False(t, c.Contains(5), "one remove clears the zone")
}

func TestCustomSetRemoveClear(t *testing.T) {
	c := NewCustomOrder(nil)
	c.Set([]uint16{1, 2, 3}, true)
	assert.Equal(t, []uint16{3, 2, 1}, c.Order())

	input := []uint16{7, 8}
	c.Set(input, false)
	input[0] = 99
	assert.Equal(t, []uint16{7, 8}, c.Order(), "stored list is a copy")

	c.Remove(7)
	c.Remove(42)
	assert.Equal(t, []uint16{8}, c.Order())
	assert.True(t, c.Contains(8))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestGroupByZone(t *testing.T) {
	zones := []uint16{10, 10, 20}

	groups := GroupByZone(zones, NewCustomOrder(nil))
	require.Len(t, groups, 2)
	assert.Equal(t, Group{ZoneID: 10, Indices: []int{0, 1}}, groups[0])
	assert.Equal(t, Group{ZoneID: 20, Indices: []int{2}}, groups[1])

	custom := NewCustomOrder(nil)
	custom.AddOrChange(20, 10)
	assert.Equal(t, []uint16{20, 10}, Zones(GroupByZone(zones, custom)))
}

func TestGroupByZoneStable(t *testing.T) {
	zones := []uint16{5, 99, 7, 5, 98, 7}
	groups := GroupByZone(zones, AlphabeticalOrder{Names: fakeNames{5: "b", 7: "a"}})

	assert.Equal(t, []uint16{99, 98, 7, 5}, Zones(groups), "unknown zones tie and keep first-seen order")
	assert.Equal(t, []int{2, 5}, groups[2].Indices)
	assert.Equal(t, []int{0, 3}, groups[3].Indices)
}

func TestGroupByZoneEmpty(t *testing.T) {
	assert.Empty(t, GroupByZone(nil, Numeric{}))
}
