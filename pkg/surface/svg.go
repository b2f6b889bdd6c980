package surface

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/shape"
)

// SVGOptions controls SVG output.
type SVGOptions struct {
	Width      int    // canvas width in pixels
	Height     int    // canvas height in pixels
	FontFamily string // family for text elements
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      800,
		Height:     600,
		FontFamily: "Arial, sans-serif",
	}
}

// SVG is a Surface that builds an SVG document.
type SVG struct {
	opts SVGOptions
	body strings.Builder
	path strings.Builder

	// current point and subpath start, for arcs and ClosePath
	cur, first geom.Point
	hasCurrent bool
}

var _ shape.Surface = (*SVG)(nil)

// NewSVG creates an SVG surface. Zero option fields take defaults.
func NewSVG(opts SVGOptions) *SVG {
	def := DefaultSVGOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.FontFamily == "" {
		opts.FontFamily = def.FontFamily
	}
	return &SVG{opts: opts}
}

func (s *SVG) Clear(c color.Color) {
	s.body.Reset()
	s.clearPath()
	fill, opacity := svgColor(c)
	s.body.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"%s/>
`, fill, opacity))
}

func (s *SVG) MoveTo(p geom.Point) {
	s.path.WriteString(fmt.Sprintf("M%.1f,%.1f ", p.X, p.Y))
	s.cur, s.first, s.hasCurrent = p, p, true
}

func (s *SVG) LineTo(p geom.Point) {
	if !s.hasCurrent {
		s.MoveTo(p)
		return
	}
	s.path.WriteString(fmt.Sprintf("L%.1f,%.1f ", p.X, p.Y))
	s.cur = p
}

func (s *SVG) Arc(center geom.Point, radius, start, end float64, ccw bool) {
	from := geom.Offset(center, start, radius)
	if s.hasCurrent {
		s.LineTo(from)
	} else {
		s.MoveTo(from)
	}

	delta := end - start
	if ccw {
		delta = start - end
	}
	delta = math.Mod(delta, 2*math.Pi)
	if delta < 0 {
		delta += 2 * math.Pi
	}
	if delta == 0 && end != start {
		delta = 2 * math.Pi
	}

	// SVG cannot draw a full circle as one arc.
	if delta > 2*math.Pi-1e-9 {
		s.arcSegment(center, radius, start, delta/2, ccw)
		s.arcSegment(center, radius, s.angleAfter(start, delta/2, ccw), delta/2, ccw)
		return
	}
	s.arcSegment(center, radius, start, delta, ccw)
}

func (s *SVG) angleAfter(start, delta float64, ccw bool) float64 {
	if ccw {
		return start - delta
	}
	return start + delta
}

func (s *SVG) arcSegment(center geom.Point, radius, start, delta float64, ccw bool) {
	to := geom.Offset(center, s.angleAfter(start, delta, ccw), radius)
	large := 0
	if delta > math.Pi {
		large = 1
	}
	// With y pointing down, sweep-flag 1 runs towards increasing angles.
	sweepFlag := 1
	if ccw {
		sweepFlag = 0
	}
	s.path.WriteString(fmt.Sprintf("A%.1f,%.1f 0 %d %d %.1f,%.1f ", radius, radius, large, sweepFlag, to.X, to.Y))
	s.cur = to
}

func (s *SVG) ClosePath() {
	if !s.hasCurrent {
		return
	}
	s.path.WriteString("Z ")
	s.cur = s.first
}

func (s *SVG) Fill(c color.Color) {
	fill, opacity := svgColor(c)
	s.body.WriteString(fmt.Sprintf(`<path d="%s" fill="%s"%s stroke="none"/>
`, strings.TrimSpace(s.path.String()), fill, strings.Replace(opacity, "opacity", "fill-opacity", 1)))
	s.clearPath()
}

func (s *SVG) Stroke(c color.Color, width float64) {
	stroke, opacity := svgColor(c)
	s.body.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s"%s stroke-width="%.1f" stroke-linecap="round"/>
`, strings.TrimSpace(s.path.String()), stroke, strings.Replace(opacity, "opacity", "stroke-opacity", 1), width))
	s.clearPath()
}

func (s *SVG) Text(text string, at geom.Point, size float64, c color.Color) {
	fill, opacity := svgColor(c)
	s.body.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-family="%s" font-size="%.1f" fill="%s"%s text-anchor="middle" dominant-baseline="central">%s</text>
`, at.X, at.Y, html.EscapeString(s.opts.FontFamily), size, fill, opacity, html.EscapeString(text)))
}

func (s *SVG) clearPath() {
	s.path.Reset()
	s.hasCurrent = false
}

// String returns the complete SVG document.
func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.opts.Width, s.opts.Height, s.opts.Width, s.opts.Height))
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteTo writes the complete SVG document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

// svgColor returns the hex colour and an opacity attribute when c is not
// fully opaque.
func svgColor(c color.Color) (string, string) {
	if c == nil {
		return "none", ""
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	hex := fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	if n.A == 255 {
		return hex, ""
	}
	return hex, fmt.Sprintf(` opacity="%.3f"`, float64(n.A)/255)
}
