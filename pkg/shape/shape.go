package shape

import (
	"image/color"
	"math"

	"github.com/ha1tch/nodegraph/pkg/geom"
)

// Circle is a filled disc with optional outline and centered label.
type Circle struct {
	At          geom.Point
	Radius      float64
	Fill        color.Color
	Stroke      color.Color // nil for no outline
	StrokeWidth float64
	Label       string
	LabelSize   float64
	LabelColor  color.Color
}

// Draw renders the circle.
func (c Circle) Draw(s Surface) {
	if c.Fill != nil {
		circlePath(s, c.At, c.Radius)
		s.Fill(c.Fill)
	}
	if c.Stroke != nil && c.StrokeWidth > 0 {
		circlePath(s, c.At, c.Radius)
		s.Stroke(c.Stroke, c.StrokeWidth)
	}
	drawLabel(s, c.Label, c.At, c.LabelSize, c.LabelColor)
}

func circlePath(s Surface, at geom.Point, r float64) {
	s.Arc(at, r, 0, 2*math.Pi, false)
	s.ClosePath()
}

// Square is an axis-aligned square centered on At. Size is the side length.
type Square struct {
	At          geom.Point
	Size        float64
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth float64
	Label       string
	LabelSize   float64
	LabelColor  color.Color
}

// Draw renders the square.
func (q Square) Draw(s Surface) {
	if q.Fill != nil {
		q.path(s)
		s.Fill(q.Fill)
	}
	if q.Stroke != nil && q.StrokeWidth > 0 {
		q.path(s)
		s.Stroke(q.Stroke, q.StrokeWidth)
	}
	drawLabel(s, q.Label, q.At, q.LabelSize, q.LabelColor)
}

func (q Square) path(s Surface) {
	h := q.Size / 2
	s.MoveTo(geom.Pt(q.At.X-h, q.At.Y-h))
	s.LineTo(geom.Pt(q.At.X+h, q.At.Y-h))
	s.LineTo(geom.Pt(q.At.X+h, q.At.Y+h))
	s.LineTo(geom.Pt(q.At.X-h, q.At.Y+h))
	s.ClosePath()
}

func drawLabel(s Surface, text string, at geom.Point, size float64, c color.Color) {
	if text == "" || c == nil || size <= 0 {
		return
	}
	s.Text(text, at, size, c)
}

// Line is a single stroked segment.
type Line struct {
	Start, End geom.Point
	Color      color.Color
	Width      float64
}

// Draw renders the line.
func (l Line) Draw(s Surface) {
	s.MoveTo(l.Start)
	s.LineTo(l.End)
	s.Stroke(l.Color, l.Width)
}

// Triangle is a filled polygon over three points. It has no outline.
type Triangle struct {
	A, B, C geom.Point
	Color   color.Color
}

// Draw renders the triangle.
func (t Triangle) Draw(s Surface) {
	s.MoveTo(t.A)
	s.LineTo(t.B)
	s.LineTo(t.C)
	s.ClosePath()
	s.Fill(t.Color)
}

// Arc is a stroked circular arc. Angles are in radians.
type Arc struct {
	Center           geom.Point
	Radius           float64
	Start, End       float64
	CounterClockwise bool
	Color            color.Color
	Width            float64
}

// Draw renders the arc.
func (a Arc) Draw(s Surface) {
	s.Arc(a.Center, a.Radius, a.Start, a.End, a.CounterClockwise)
	s.Stroke(a.Color, a.Width)
}
