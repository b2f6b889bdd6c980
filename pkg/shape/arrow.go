package shape

import (
	"image/color"
	"math"

	"github.com/ha1tch/nodegraph/pkg/geom"
)

const (
	// ArrowHeadHeight is the distance from an arrowhead's apex to its base.
	ArrowHeadHeight = 25.0
	// ArrowHeadHalfWidth is the perpendicular offset of each base corner.
	ArrowHeadHalfWidth = ArrowHeadHeight / 1.75
)

// Arrow is a straight shaft ending in a triangular head at End.
type Arrow struct {
	Start, End geom.Point
	Color      color.Color
	Width      float64
}

// ArrowGeometry holds the computed points of an arrow. The shaft runs from
// Start to Epicenter so it stops at the head's base.
type ArrowGeometry struct {
	Start     geom.Point
	Epicenter geom.Point
	Apex      geom.Point
	Left      geom.Point
	Right     geom.Point
}

// Geometry computes the arrow's shaft and head points.
func (a Arrow) Geometry() ArrowGeometry {
	return arrowHead(a.Start, a.End, geom.Angle(a.Start, a.End))
}

// arrowHead builds a head with its apex at end, pointing along theta.
func arrowHead(start, end geom.Point, theta float64) ArrowGeometry {
	epicenter := geom.Offset(end, theta+math.Pi, ArrowHeadHeight)
	return ArrowGeometry{
		Start:     start,
		Epicenter: epicenter,
		Apex:      end,
		Left:      geom.Offset(epicenter, theta+math.Pi/2, ArrowHeadHalfWidth),
		Right:     geom.Offset(epicenter, theta-math.Pi/2, ArrowHeadHalfWidth),
	}
}

// Draw renders the shaft then the head.
func (a Arrow) Draw(s Surface) {
	a.Geometry().draw(s, a.Color, a.Width)
}

func (g ArrowGeometry) draw(s Surface, c color.Color, width float64) {
	Line{Start: g.Start, End: g.Epicenter, Color: c, Width: width}.Draw(s)
	Triangle{A: g.Apex, B: g.Left, C: g.Right, Color: c}.Draw(s)
}

// UTurnArrow is the loop drawn for an edge from a node to itself. At
// Angle 0 it leaves Center to the right along the upper lane, turns through
// a half circle and comes back along the lower lane.
type UTurnArrow struct {
	Center       geom.Point
	Spacing      float64
	UpDistance   float64
	DownDistance float64
	Angle        float64
	Color        color.Color
	Width        float64
}

// UTurnGeometry holds the computed parts of a U-turn, already rotated by
// the arrow's angle.
type UTurnGeometry struct {
	OutStart, OutEnd   geom.Point
	BackStart, BackEnd geom.Point
	ArcCenter          geom.Point
	ArcRadius          float64
	// ArcStart and ArcEnd are swept counterclockwise.
	ArcStart, ArcEnd float64
	Head             ArrowGeometry
}

// Geometry lays out the loop at angle 0 and rotates it about Center.
func (u UTurnArrow) Geometry() UTurnGeometry {
	c := u.Center
	rot := func(x, y float64) geom.Point {
		return geom.RotatePoint(geom.Pt(x, y), c, u.Angle)
	}

	g := UTurnGeometry{
		OutStart:  rot(c.X, c.Y-u.Spacing),
		OutEnd:    rot(c.X+u.UpDistance, c.Y-u.Spacing),
		BackStart: rot(c.X+u.UpDistance, c.Y+u.Spacing),
		BackEnd:   rot(c.X+u.UpDistance-u.DownDistance, c.Y+u.Spacing),
		ArcCenter: rot(c.X+u.UpDistance, c.Y),
		ArcRadius: u.Spacing,
		ArcStart:  math.Pi/2 + u.Angle,
		ArcEnd:    -math.Pi/2 + u.Angle,
	}
	// The return lane points back towards the node.
	g.Head = arrowHead(g.BackStart, g.BackEnd, u.Angle+math.Pi)
	return g
}

// Draw renders both lanes, the turn and the arrowhead.
func (u UTurnArrow) Draw(s Surface) {
	g := u.Geometry()
	Line{Start: g.OutStart, End: g.OutEnd, Color: u.Color, Width: u.Width}.Draw(s)
	Arc{
		Center:           g.ArcCenter,
		Radius:           g.ArcRadius,
		Start:            g.ArcStart,
		End:              g.ArcEnd,
		CounterClockwise: true,
		Color:            u.Color,
		Width:            u.Width,
	}.Draw(s)
	g.Head.draw(s, u.Color, u.Width)
}
