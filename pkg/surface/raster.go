// Raster rendering for diagrams.
// Draws at a supersampled size with gg and downsamples on output.

package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/shape"
)

// RasterOptions configures raster rendering.
type RasterOptions struct {
	Width       int
	Height      int
	Supersample int // render multiplier, downsampled on output
}

// DefaultRasterOptions returns sensible defaults for raster rendering.
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{
		Width:       800,
		Height:      600,
		Supersample: 4,
	}
}

// Raster is a Surface backed by an in-memory image.
type Raster struct {
	opts  RasterOptions
	dc    *gg.Context
	scale float64
	font  *opentype.Font
	faces map[float64]font.Face
}

var _ shape.Surface = (*Raster)(nil)

// NewRaster creates a raster surface. Zero option fields take defaults.
func NewRaster(opts RasterOptions) (*Raster, error) {
	def := DefaultRasterOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Supersample <= 0 {
		opts.Supersample = def.Supersample
	}

	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	return &Raster{
		opts:  opts,
		dc:    gg.NewContext(opts.Width*opts.Supersample, opts.Height*opts.Supersample),
		scale: float64(opts.Supersample),
		font:  fnt,
		faces: make(map[float64]font.Face),
	}, nil
}

// Options returns the effective options.
func (r *Raster) Options() RasterOptions {
	return r.opts
}

func (r *Raster) px(p geom.Point) (float64, float64) {
	return p.X * r.scale, p.Y * r.scale
}

func (r *Raster) Clear(c color.Color) {
	r.dc.ClearPath()
	r.dc.SetColor(c)
	r.dc.Clear()
}

func (r *Raster) MoveTo(p geom.Point) {
	r.dc.MoveTo(r.px(p))
}

func (r *Raster) LineTo(p geom.Point) {
	r.dc.LineTo(r.px(p))
}

func (r *Raster) Arc(center geom.Point, radius, start, end float64, ccw bool) {
	start, end = sweep(start, end, ccw)
	x, y := r.px(center)
	r.dc.DrawArc(x, y, radius*r.scale, start, end)
}

// sweep rewrites end so that interpolating from start to end travels in
// the requested direction.
func sweep(start, end float64, ccw bool) (float64, float64) {
	if ccw {
		for end > start {
			end -= 2 * math.Pi
		}
	} else {
		for end < start {
			end += 2 * math.Pi
		}
	}
	return start, end
}

func (r *Raster) ClosePath() {
	r.dc.ClosePath()
}

func (r *Raster) Fill(c color.Color) {
	r.dc.SetColor(c)
	r.dc.Fill()
}

func (r *Raster) Stroke(c color.Color, width float64) {
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width * r.scale)
	r.dc.SetLineCapRound()
	r.dc.Stroke()
}

func (r *Raster) Text(s string, at geom.Point, size float64, c color.Color) {
	face, err := r.face(size)
	if err != nil {
		return
	}
	x, y := r.px(at)
	r.dc.SetFontFace(face)
	r.dc.SetColor(c)
	r.dc.DrawStringAnchored(s, x, y, 0.5, 0.35)
}

// face returns a font face for size points at the supersampled scale.
func (r *Raster) face(size float64) (font.Face, error) {
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size * r.scale,
		DPI:     72,
		Hinting: font.HintingNone, // supersampling smooths glyphs
	})
	if err != nil {
		return nil, err
	}
	r.faces[size] = f
	return f, nil
}

// Image returns the rendered image downsampled to the target size.
func (r *Raster) Image() image.Image {
	large := r.dc.Image()
	if r.opts.Supersample == 1 {
		return large
	}
	final := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return final
}

// EncodePNG writes the downsampled image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Image())
}
