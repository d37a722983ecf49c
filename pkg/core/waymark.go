// pkg/core/waymark.go
package core

import (
	"fmt"
	"math"
)

// WaymarkID identifies one of the eight field markers. The value doubles as
// the marker's index within a preset and its bit in the active-flag byte.
type WaymarkID int

const (
	A WaymarkID = iota
	B
	C
	D
	One
	Two
	Three
	Four
)

// WaymarkCount is the number of markers in every preset.
const WaymarkCount = 8

// MaxEqualCoordDifference is the per-axis tolerance used by Waymark.Equal.
const MaxEqualCoordDifference = 0.01

var (
	shortLabels = [WaymarkCount]string{"A", "B", "C", "D", "1", "2", "3", "4"}
	longLabels  = [WaymarkCount]string{"A", "B", "C", "D", "One", "Two", "Three", "Four"}
)

// Valid reports whether id addresses one of the eight markers.
func (id WaymarkID) Valid() bool {
	return id >= A && id <= Four
}

// Label returns the canonical marker label ("A".."D", "1".."4"), or the
// spelled-out number when long is set.
func (id WaymarkID) Label(long bool) string {
	if !id.Valid() {
		return fmt.Sprintf("Waymark(%d)", int(id))
	}
	if long {
		return longLabels[id]
	}
	return shortLabels[id]
}

func (id WaymarkID) String() string {
	return id.Label(true)
}

// Waymark is a single field marker position.
type Waymark struct {
	X      float32
	Y      float32
	Z      float32
	ID     WaymarkID
	Active bool
}

// Equal compares position within MaxEqualCoordDifference on each axis and
// requires matching active flags. The ID is not compared.
func (w Waymark) Equal(o Waymark) bool {
	return w.Active == o.Active &&
		closeEnough(w.X, o.X) &&
		closeEnough(w.Y, o.Y) &&
		closeEnough(w.Z, o.Z)
}

func closeEnough(a, b float32) bool {
	return math.Abs(float64(a)-float64(b)) <= MaxEqualCoordDifference
}

// DataString renders the marker for human display.
func (w Waymark) DataString() string {
	if !w.Active {
		return "Unused"
	}
	return fmt.Sprintf("%7.2f, %7.2f, %7.2f", w.X, w.Y, w.Z)
}

// SetCoords moves the marker without touching its active flag.
func (w *Waymark) SetCoords(x, y, z float32) {
	w.X, w.Y, w.Z = x, y, z
}
