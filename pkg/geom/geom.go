// Geometric primitives for edge schematics.
// Angles, rotation about a center, and open-sector selection around a node.

package geom

import (
	"math"
	"sort"
)

// DefaultLoopAngle is returned by LargestAngularSpace when no direction is
// occupied. Zero points the loop to the right.
const DefaultLoopAngle = 0.0

// gapEpsilon treats gaps within this tolerance as equal so tie-breaking
// does not depend on float noise.
const gapEpsilon = 1e-9

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Angle returns the direction in radians from a to b, in (-π, π].
// Angle(p, p) is 0.
func Angle(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// RotatePoint rotates p around center by angle radians.
func RotatePoint(p, center Point, angle float64) Point {
	sin, cos := math.Sincos(angle)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Point{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}

// Offset moves p by distance along angle.
func Offset(p Point, angle, distance float64) Point {
	sin, cos := math.Sincos(angle)
	return Point{p.X + cos*distance, p.Y + sin*distance}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// NormalizeAngle maps a into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// LargestAngularSpace returns the angle bisecting the widest unoccupied
// sector around origin, where each point in occupied marks one taken
// direction. Equal gaps resolve to the one starting at the smallest angle;
// the wrap-around gap loses ties.
func LargestAngularSpace(origin Point, occupied []Point) float64 {
	if len(occupied) == 0 {
		return DefaultLoopAngle
	}

	angles := make([]float64, len(occupied))
	for i, p := range occupied {
		angles[i] = Angle(origin, p)
	}
	sort.Float64s(angles)

	bestStart := 0.0
	bestGap := -1.0
	for i := 0; i < len(angles)-1; i++ {
		gap := angles[i+1] - angles[i]
		if gap > bestGap+gapEpsilon {
			bestGap = gap
			bestStart = angles[i]
		}
	}

	// Wrap from the largest angle back round to the smallest.
	last := angles[len(angles)-1]
	wrap := angles[0] + 2*math.Pi - last
	if wrap > bestGap+gapEpsilon {
		bestGap = wrap
		bestStart = last
	}

	return NormalizeAngle(bestStart + bestGap/2)
}
