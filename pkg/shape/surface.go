// Package shape draws diagram shapes onto a Surface using only path,
// fill and stroke operations plus the geom primitives.
package shape

import (
	"image/color"

	"github.com/ha1tch/nodegraph/pkg/geom"
)

// Surface is the drawing capability shapes are rendered onto.
//
// Path operations accumulate into a current path which Fill and Stroke
// consume. Arc appends a circular arc; when a current point exists a
// straight segment joins it to the arc start. Angles follow screen
// orientation (y grows downwards), so a counterclockwise arc runs from
// start towards decreasing angles.
type Surface interface {
	Clear(c color.Color)
	MoveTo(p geom.Point)
	LineTo(p geom.Point)
	Arc(center geom.Point, radius, start, end float64, counterClockwise bool)
	ClosePath()
	Fill(c color.Color)
	Stroke(c color.Color, width float64)
	// Text draws s centered on at.
	Text(s string, at geom.Point, size float64, c color.Color)
}

// Shape is anything that can render itself in one pass.
type Shape interface {
	Draw(s Surface)
}
