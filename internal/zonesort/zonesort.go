// Package zonesort orders zone ids for the grouped library view.
package zonesort

import (
	"cmp"
	"fmt"
	"math"
	"strings"
)

// SortType selects the zone comparator.
type SortType int

const (
	Basic SortType = iota
	Alphabetical
	Custom
)

func (s SortType) String() string {
	switch s {
	case Basic:
		return "basic"
	case Alphabetical:
		return "alphabetical"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("SortType(%d)", int(s))
	}
}

// ParseSortType accepts the names produced by String, case-insensitively.
// "numeric" is accepted as an alias of basic.
func ParseSortType(s string) (SortType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "numeric", "":
		return Basic, nil
	case "alphabetical", "alpha":
		return Alphabetical, nil
	case "custom":
		return Custom, nil
	default:
		return Basic, fmt.Errorf("unknown sort type: %s", s)
	}
}

// EndOfOrder as a placeBefore argument appends to the end of a custom order.
const EndOfOrder uint16 = math.MaxUint16

// Comparer is a total order over zone ids. Compare returns a negative
// number when a sorts before b.
type Comparer interface {
	Compare(a, b uint16) int
}

// ZoneNamer resolves the display name used for alphabetical ordering.
type ZoneNamer interface {
	// ZoneName returns the name and whether the zone is known.
	ZoneName(zone uint16) (string, bool)
}

// Numeric orders by zone id.
type Numeric struct {
	Descending bool
}

func (n Numeric) Compare(a, b uint16) int {
	return applyDirection(compareNumeric(a, b), n.Descending)
}

// AlphabeticalOrder orders known zones by case-insensitive name. Unknown
// zones sort first.
type AlphabeticalOrder struct {
	Names      ZoneNamer
	Descending bool
}

func (o AlphabeticalOrder) Compare(a, b uint16) int {
	var r int
	nameA, knownA := o.lookup(a)
	nameB, knownB := o.lookup(b)
	switch {
	case !knownA && !knownB:
		r = 0
	case !knownA:
		r = -1
	case !knownB:
		r = 1
	default:
		r = strings.Compare(strings.ToLower(nameA), strings.ToLower(nameB))
	}
	return applyDirection(r, o.Descending)
}

func (o AlphabeticalOrder) lookup(zone uint16) (string, bool) {
	if o.Names == nil {
		return "", false
	}
	return o.Names.ZoneName(zone)
}

func compareNumeric(a, b uint16) int {
	return cmp.Compare(a, b)
}

func applyDirection(r int, descending bool) int {
	if descending {
		return -r
	}
	return r
}
