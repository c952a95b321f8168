package model

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Point is a 2-D coordinate. It shares its layout with orb.Point so the
// two convert freely.
type Point [2]float64

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{x, y}
}

// X returns the horizontal coordinate.
func (p Point) X() float64 { return p[0] }

// Y returns the vertical coordinate.
func (p Point) Y() float64 { return p[1] }

// Orb converts p to an orb.Point.
func (p Point) Orb() orb.Point { return orb.Point(p) }

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) &&
		!math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p[0], p[1])
}

// ClonePoints returns a copy of points.
func ClonePoints(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// Bounds returns the bounding box of points. The zero Bound is returned for
// an empty slice.
func Bounds(points []Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = p.Orb()
	}
	return mp.Bound()
}
