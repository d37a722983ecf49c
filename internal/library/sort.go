package library

import (
	"github.com/sourpuh/WaymarkPresetPlugin/internal/zonesort"
)

// AddOrChangeCustomSortEntry places zone immediately before placeBefore in
// the custom order, or at its end for zonesort.EndOfOrder.
func (l *Library) AddOrChangeCustomSortEntry(zone, placeBefore uint16) {
	l.custom.AddOrChange(zone, placeBefore)
}

func (l *Library) RemoveCustomSortEntry(zone uint16) {
	l.custom.Remove(zone)
}

func (l *Library) ClearCustomSortOrder() {
	l.custom.Clear()
}

// SetCustomSortOrder replaces the custom order. A list given in descending
// sense is reversed before it is stored.
func (l *Library) SetCustomSortOrder(order []uint16, descending bool) {
	l.custom.Set(order, descending)
}

// CustomSortOrder returns a copy of the stored custom order.
func (l *Library) CustomSortOrder() []uint16 {
	return l.custom.Order()
}

// SetZoneSortDescending flips the direction of every zone comparator.
func (l *Library) SetZoneSortDescending(descending bool) {
	l.descending = descending
	l.numeric.Descending = descending
	l.alpha.Descending = descending
	l.custom.Descending = descending
}

func (l *Library) ZoneSortDescending() bool {
	return l.descending
}

func (l *Library) comparer(t zonesort.SortType) zonesort.Comparer {
	switch t {
	case zonesort.Alphabetical:
		return l.alpha
	case zonesort.Custom:
		return l.custom
	default:
		return l.numeric
	}
}

// SortedIndices groups preset indices by zone using the current direction.
func (l *Library) SortedIndices(t zonesort.SortType) []zonesort.Group {
	zones := make([]uint16, len(l.presets))
	for i, p := range l.presets {
		zones[i] = p.ZoneID()
	}
	return zonesort.GroupByZone(zones, l.comparer(t))
}

// SortedIndicesDirection sets the direction and then groups.
func (l *Library) SortedIndicesDirection(t zonesort.SortType, descending bool) []zonesort.Group {
	l.SetZoneSortDescending(descending)
	return l.SortedIndices(t)
}

// SeedCustomSortOrder captures the currently displayed custom view as the
// stored order. It does nothing once an order exists.
func (l *Library) SeedCustomSortOrder() {
	if l.custom.Len() != 0 {
		return
	}
	l.custom.Set(zonesort.Zones(l.SortedIndices(zonesort.Custom)), l.descending)
}

// MoveZone is the zone drag-and-drop: the first move seeds the custom order
// from the grouping visible in the given direction, then zone is placed
// before placeBefore.
func (l *Library) MoveZone(zone, placeBefore uint16, descending bool) {
	l.SetZoneSortDescending(descending)
	l.SeedCustomSortOrder()
	l.custom.AddOrChange(zone, placeBefore)
}
