package zonesort

import "slices"

// Group is one zone bucket of the library view.
type Group struct {
	ZoneID  uint16
	Indices []int
}

// GroupByZone buckets indices by zone. zones[i] is the zone of the preset at
// library index i. Buckets are ordered by c; zones that compare equal keep
// the order in which they first appear. Inside a bucket, indices keep
// library order.
func GroupByZone(zones []uint16, c Comparer) []Group {
	pos := make(map[uint16]int)
	var groups []Group
	for i, z := range zones {
		g, ok := pos[z]
		if !ok {
			g = len(groups)
			pos[z] = g
			groups = append(groups, Group{ZoneID: z})
		}
		groups[g].Indices = append(groups[g].Indices, i)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		return c.Compare(a.ZoneID, b.ZoneID)
	})
	return groups
}

// Zones lists the bucket keys in order.
func Zones(groups []Group) []uint16 {
	out := make([]uint16, len(groups))
	for i, g := range groups {
		out[i] = g.ZoneID
	}
	return out
}
