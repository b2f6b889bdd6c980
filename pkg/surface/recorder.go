// Package surface provides drawing surfaces for diagram shapes: a
// supersampled raster image, an SVG document, a terminal screen and a
// recorder that keeps the calls it receives.
package surface

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/shape"
)

// OpKind identifies a recorded surface call.
type OpKind string

const (
	OpClear     OpKind = "clear"
	OpMoveTo    OpKind = "moveto"
	OpLineTo    OpKind = "lineto"
	OpArc       OpKind = "arc"
	OpClosePath OpKind = "close"
	OpFill      OpKind = "fill"
	OpStroke    OpKind = "stroke"
	OpText      OpKind = "text"
)

// Op is one recorded call. Only the fields relevant to Kind are set.
type Op struct {
	Kind             OpKind
	Points           []geom.Point
	Radius           float64
	Start, End       float64
	CounterClockwise bool
	Color            color.Color
	Width            float64
	Text             string
	Size             float64
}

// Recorder is a Surface that stores every call in order.
type Recorder struct {
	Ops []Op
}

var _ shape.Surface = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Clear(c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpClear, Color: c})
}

func (r *Recorder) MoveTo(p geom.Point) {
	r.Ops = append(r.Ops, Op{Kind: OpMoveTo, Points: []geom.Point{p}})
}

func (r *Recorder) LineTo(p geom.Point) {
	r.Ops = append(r.Ops, Op{Kind: OpLineTo, Points: []geom.Point{p}})
}

func (r *Recorder) Arc(center geom.Point, radius, start, end float64, ccw bool) {
	r.Ops = append(r.Ops, Op{
		Kind:             OpArc,
		Points:           []geom.Point{center},
		Radius:           radius,
		Start:            start,
		End:              end,
		CounterClockwise: ccw,
	})
}

func (r *Recorder) ClosePath() {
	r.Ops = append(r.Ops, Op{Kind: OpClosePath})
}

func (r *Recorder) Fill(c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Color: c})
}

func (r *Recorder) Stroke(c color.Color, width float64) {
	r.Ops = append(r.Ops, Op{Kind: OpStroke, Color: c, Width: width})
}

func (r *Recorder) Text(s string, at geom.Point, size float64, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Points: []geom.Point{at}, Text: s, Size: size, Color: c})
}

// Reset drops all recorded ops.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// String formats the op for the ops listing.
func (op Op) String() string {
	var sb strings.Builder
	sb.WriteString(string(op.Kind))
	for _, p := range op.Points {
		sb.WriteString(fmt.Sprintf(" (%.2f,%.2f)", p.X, p.Y))
	}
	switch op.Kind {
	case OpArc:
		sb.WriteString(fmt.Sprintf(" r=%.2f %.4f->%.4f ccw=%t", op.Radius, op.Start, op.End, op.CounterClockwise))
	case OpStroke:
		sb.WriteString(fmt.Sprintf(" w=%.2f", op.Width))
	case OpText:
		sb.WriteString(fmt.Sprintf(" %q size=%.1f", op.Text, op.Size))
	}
	if op.Color != nil {
		sb.WriteString(" " + hexColor(op.Color))
	}
	return sb.String()
}

// WriteTo writes one op per line.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, op := range r.Ops {
		n, err := fmt.Fprintln(w, op.String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// hexColor formats c as #rrggbb, with an alpha suffix when not opaque.
func hexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
