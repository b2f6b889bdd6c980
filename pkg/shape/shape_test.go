package shape_test

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/shape"
	"github.com/ha1tch/nodegraph/pkg/surface"
)

const tolerance = 1e-9

var ink = color.NRGBA{10, 20, 30, 255}

func assertPoint(t *testing.T, want, got geom.Point) {
	t.Helper()
	assert.InDeltaf(t, want.X, got.X, 1e-6, "x: want %v got %v", want, got)
	assert.InDeltaf(t, want.Y, got.Y, 1e-6, "y: want %v got %v", want, got)
}

func kinds(r *surface.Recorder) []surface.OpKind {
	out := make([]surface.OpKind, len(r.Ops))
	for i, op := range r.Ops {
		out[i] = op.Kind
	}
	return out
}

func TestCircle(t *testing.T) {
	r := surface.NewRecorder()
	shape.Circle{
		At:          geom.Pt(10, 10),
		Radius:      35,
		Fill:        ink,
		Stroke:      color.Black,
		StrokeWidth: 2,
		Label:       "A",
		LabelSize:   14,
		LabelColor:  color.Black,
	}.Draw(r)

	assert.Equal(t, []surface.OpKind{
		surface.OpArc, surface.OpClosePath, surface.OpFill,
		surface.OpArc, surface.OpClosePath, surface.OpStroke,
		surface.OpText,
	}, kinds(r))
	assert.Equal(t, 35.0, r.Ops[0].Radius)
	assert.InDelta(t, 2*math.Pi, r.Ops[0].End-r.Ops[0].Start, tolerance)
	assert.Equal(t, "A", r.Ops[6].Text)
}

func TestCircleWithoutOptionalParts(t *testing.T) {
	r := surface.NewRecorder()
	shape.Circle{At: geom.Pt(0, 0), Radius: 5, Fill: ink}.Draw(r)
	assert.Equal(t, 1, r.Count(surface.OpFill))
	assert.Equal(t, 0, r.Count(surface.OpStroke))
	assert.Equal(t, 0, r.Count(surface.OpText))
}

func TestSquare(t *testing.T) {
	r := surface.NewRecorder()
	shape.Square{At: geom.Pt(50, 50), Size: 20, Fill: ink, Label: "S", LabelSize: 10, LabelColor: ink}.Draw(r)

	require.Equal(t, []surface.OpKind{
		surface.OpMoveTo, surface.OpLineTo, surface.OpLineTo, surface.OpLineTo,
		surface.OpClosePath, surface.OpFill, surface.OpText,
	}, kinds(r))
	assert.Equal(t, geom.Pt(40, 40), r.Ops[0].Points[0])
	assert.Equal(t, geom.Pt(60, 40), r.Ops[1].Points[0])
	assert.Equal(t, geom.Pt(60, 60), r.Ops[2].Points[0])
	assert.Equal(t, geom.Pt(40, 60), r.Ops[3].Points[0])
}

func TestTriangleHasNoStroke(t *testing.T) {
	r := surface.NewRecorder()
	shape.Triangle{A: geom.Pt(0, 0), B: geom.Pt(1, 0), C: geom.Pt(0, 1), Color: ink}.Draw(r)
	assert.Equal(t, 1, r.Count(surface.OpFill))
	assert.Equal(t, 0, r.Count(surface.OpStroke))
}

func TestArrowGeometry(t *testing.T) {
	a := shape.Arrow{Start: geom.Pt(0, 0), End: geom.Pt(100, 0)}
	g := a.Geometry()

	assertPoint(t, geom.Pt(0, 0), g.Start)
	assertPoint(t, geom.Pt(75, 0), g.Epicenter)
	assertPoint(t, geom.Pt(100, 0), g.Apex)
	assertPoint(t, geom.Pt(75, 25/1.75), g.Left)
	assertPoint(t, geom.Pt(75, -25/1.75), g.Right)
}

func TestArrowGeometryRotated(t *testing.T) {
	a := shape.Arrow{Start: geom.Pt(10, 10), End: geom.Pt(10, 110)}
	g := a.Geometry()

	assertPoint(t, geom.Pt(10, 85), g.Epicenter)
	// Head base is perpendicular to the shaft and centred on it.
	assert.InDelta(t, 2*shape.ArrowHeadHalfWidth, geom.Distance(g.Left, g.Right), 1e-6)
	assert.InDelta(t, 85, g.Left.Y, 1e-6)
	assert.InDelta(t, 85, g.Right.Y, 1e-6)
}

func TestArrowDraw(t *testing.T) {
	r := surface.NewRecorder()
	shape.Arrow{Start: geom.Pt(0, 0), End: geom.Pt(100, 0), Color: ink, Width: 3}.Draw(r)

	require.Equal(t, []surface.OpKind{
		surface.OpMoveTo, surface.OpLineTo, surface.OpStroke,
		surface.OpMoveTo, surface.OpLineTo, surface.OpLineTo, surface.OpClosePath, surface.OpFill,
	}, kinds(r))
	// Shaft stops at the epicenter
	assertPoint(t, geom.Pt(75, 0), r.Ops[1].Points[0])
	assert.Equal(t, 3.0, r.Ops[2].Width)
	// Head apex is the arrow end
	assertPoint(t, geom.Pt(100, 0), r.Ops[3].Points[0])
}

func TestUTurnGeometryAtZero(t *testing.T) {
	u := shape.UTurnArrow{Center: geom.Pt(100, 100), Spacing: 12, UpDistance: 80, DownDistance: 25}
	g := u.Geometry()

	assertPoint(t, geom.Pt(100, 88), g.OutStart)
	assertPoint(t, geom.Pt(180, 88), g.OutEnd)
	assertPoint(t, geom.Pt(180, 112), g.BackStart)
	assertPoint(t, geom.Pt(155, 112), g.BackEnd)
	assertPoint(t, geom.Pt(180, 100), g.ArcCenter)
	assert.Equal(t, 12.0, g.ArcRadius)
	assert.InDelta(t, math.Pi/2, g.ArcStart, tolerance)
	assert.InDelta(t, -math.Pi/2, g.ArcEnd, tolerance)

	// Arrowhead points back along the return lane.
	assertPoint(t, geom.Pt(155, 112), g.Head.Apex)
	assertPoint(t, geom.Pt(180, 112), g.Head.Epicenter)
}

func TestUTurnArcJoinsLanes(t *testing.T) {
	for _, angle := range []float64{0, math.Pi / 3, math.Pi, -2.5} {
		u := shape.UTurnArrow{Center: geom.Pt(-40, 70), Spacing: 12, UpDistance: 80, DownDistance: 25, Angle: angle}
		g := u.Geometry()
		assertPoint(t, g.BackStart, geom.Offset(g.ArcCenter, g.ArcStart, g.ArcRadius))
		assertPoint(t, g.OutEnd, geom.Offset(g.ArcCenter, g.ArcEnd, g.ArcRadius))

		// The turn bulges away from the node.
		mid := geom.Offset(g.ArcCenter, angle, g.ArcRadius)
		assert.InDelta(t, 80+12, geom.Distance(u.Center, mid), 1e-6)
	}
}

func TestUTurnRotation(t *testing.T) {
	center := geom.Pt(0, 0)
	base := shape.UTurnArrow{Center: center, Spacing: 12, UpDistance: 80, DownDistance: 25}
	turned := base
	turned.Angle = -math.Pi / 2

	g0, g1 := base.Geometry(), turned.Geometry()
	assertPoint(t, geom.RotatePoint(g0.OutEnd, center, -math.Pi/2), g1.OutEnd)
	assertPoint(t, geom.RotatePoint(g0.BackEnd, center, -math.Pi/2), g1.BackEnd)
	assertPoint(t, geom.RotatePoint(g0.Head.Left, center, -math.Pi/2), g1.Head.Left)
	// Facing up, the loop extends to negative y.
	assertPoint(t, geom.Pt(0, -80), g1.ArcCenter)
}

func TestUTurnDraw(t *testing.T) {
	r := surface.NewRecorder()
	shape.UTurnArrow{Center: geom.Pt(0, 0), Spacing: 12, UpDistance: 80, DownDistance: 25, Color: ink, Width: 2}.Draw(r)

	assert.Equal(t, 1, r.Count(surface.OpArc))
	assert.Equal(t, 3, r.Count(surface.OpStroke))
	assert.Equal(t, 1, r.Count(surface.OpFill))

	for _, op := range r.Ops {
		if op.Kind == surface.OpArc {
			assert.True(t, op.CounterClockwise)
			assert.Equal(t, 12.0, op.Radius)
		}
	}
}
