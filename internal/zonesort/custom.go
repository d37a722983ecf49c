package zonesort

import (
	"cmp"
	"slices"
)

// CustomOrder orders zones by their position in a user-maintained list.
// Zones missing from the list sort after listed ones and among themselves
// numerically; Descending negates every result, including that rule.
//
// The stored list is always kept in ascending sense.
type CustomOrder struct {
	order      []uint16
	Descending bool
}

// NewCustomOrder copies list as the initial order.
func NewCustomOrder(list []uint16) *CustomOrder {
	return &CustomOrder{order: withoutRepeats(list)}
}

func (c *CustomOrder) Compare(a, b uint16) int {
	aPos := slices.Index(c.order, a)
	bPos := slices.Index(c.order, b)

	var r int
	switch {
	case aPos < 0 && bPos < 0:
		r = compareNumeric(a, b)
	case aPos < 0:
		r = 1
	case bPos < 0:
		r = -1
	default:
		r = cmp.Compare(aPos, bPos)
	}
	return applyDirection(r, c.Descending)
}

// AddOrChange moves zone so that it sits immediately before placeBefore.
// When placeBefore is EndOfOrder or not in the list, zone goes to the end.
func (c *CustomOrder) AddOrChange(zone, placeBefore uint16) {
	if zone == placeBefore {
		return
	}

	moveTo := -1
	if placeBefore != EndOfOrder {
		moveTo = slices.Index(c.order, placeBefore)
	}

	current := slices.Index(c.order, zone)
	if moveTo < 0 {
		if current >= 0 {
			c.order = slices.Delete(c.order, current, current+1)
		}
		c.order = append(c.order, zone)
		return
	}

	if current >= 0 {
		c.order = slices.Delete(c.order, current, current+1)
		if current < moveTo {
			moveTo--
		}
	}
	c.order = slices.Insert(c.order, moveTo, zone)
}

// Remove drops zone from the list if present.
func (c *CustomOrder) Remove(zone uint16) {
	if i := slices.Index(c.order, zone); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// Clear empties the list.
func (c *CustomOrder) Clear() {
	c.order = nil
}

// Set replaces the list. A list given in descending sense is reversed
// before it is stored. Only the first occurrence of a zone is kept.
func (c *CustomOrder) Set(list []uint16, descending bool) {
	order := withoutRepeats(list)
	if descending {
		slices.Reverse(order)
	}
	c.order = order
}

// Order returns a copy of the stored list.
func (c *CustomOrder) Order() []uint16 {
	return slices.Clone(c.order)
}

func (c *CustomOrder) Contains(zone uint16) bool {
	return slices.Contains(c.order, zone)
}

func (c *CustomOrder) Len() int {
	return len(c.order)
}

func withoutRepeats(list []uint16) []uint16 {
	if len(list) == 0 {
		return nil
	}
	seen := make(map[uint16]struct{}, len(list))
	out := make([]uint16, 0, len(list))
	for _, z := range list {
		if _, ok := seen[z]; ok {
			continue
		}
		seen[z] = struct{}{}
		out = append(out, z)
	}
	return out
}
