package config

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"

	"github.com/ha1tch/nodegraph/pkg/graph"
)

// Palette keywords accepted in place of a colour.
const (
	PaletteByID     = "by-id"
	PaletteBySource = "by-source"
)

// goldenAngle spreads consecutive hues far apart.
const goldenAngle = 137.50776405003785

// colorSpec is a parsed colour field: a fixed colour or a palette.
type colorSpec struct {
	fixed   color.Color
	palette string
}

func parseColorSpec(s string) (colorSpec, error) {
	switch s {
	case PaletteByID, PaletteBySource:
		return colorSpec{palette: s}, nil
	}
	c, err := ParseColor(s)
	if err != nil {
		return colorSpec{}, err
	}
	return colorSpec{fixed: c}, nil
}

// ParseColor parses any CSS colour string.
func ParseColor(s string) (color.Color, error) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parsing colour %q: %w", s, err)
	}
	return color.NRGBA{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: channel(c.A),
	}, nil
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Hue returns a well separated hue in degrees for the n-th item.
func Hue(n int) float64 {
	return math.Mod(float64(n)*goldenAngle, 360)
}

// PaletteColor returns the palette colour for the n-th item. Lightness is
// in [0, 1]; fills use a light tone and outlines a darker one.
func PaletteColor(n int, lightness float64) color.Color {
	return colorful.Hcl(Hue(n), 0.35, lightness).Clamped()
}

func labelHash(label string) int {
	h := fnv.New32a()
	h.Write([]byte(label))
	return int(h.Sum32() % 4096)
}

func nodeColor(value string, lightness float64) (graph.Option[graph.Node, color.Color], error) {
	cs, err := parseColorSpec(value)
	if err != nil {
		return graph.Option[graph.Node, color.Color]{}, err
	}
	if cs.palette == "" {
		return graph.Literal[graph.Node](cs.fixed), nil
	}
	if cs.palette == PaletteBySource {
		return graph.Computed(func(n graph.Node) color.Color {
			return PaletteColor(labelHash(n.Label), lightness)
		}), nil
	}
	return graph.Computed(func(n graph.Node) color.Color {
		return PaletteColor(n.ID, lightness)
	}), nil
}

func edgeColor(value string) (graph.Option[graph.Edge, color.Color], error) {
	cs, err := parseColorSpec(value)
	if err != nil {
		return graph.Option[graph.Edge, color.Color]{}, err
	}
	if cs.palette == "" {
		return graph.Literal[graph.Edge](cs.fixed), nil
	}
	// Edges have no ID of their own; both palettes key on the source.
	return graph.Computed(func(e graph.Edge) color.Color {
		return PaletteColor(labelHash(e.From), 0.45)
	}), nil
}

// Options converts the style sections into diagram options.
func (f File) Options() (graph.Options, error) {
	opts := graph.DefaultOptions()

	opts.NodeSize = graph.Literal[graph.Node](f.Node.Size)
	opts.NodeBorderWidth = graph.Literal[graph.Node](f.Node.BorderWidth)
	if f.Node.Shape != "" {
		opts.NodeShape = graph.Literal[graph.Node](graph.NodeShape(f.Node.Shape))
	}
	opts.EdgeWidth = graph.Literal[graph.Edge](f.Edge.Width)
	opts.LabelSize = graph.Literal[graph.Node](f.Label.Size)

	var err error
	if f.Node.Fill != "" {
		if opts.NodeFill, err = nodeColor(f.Node.Fill, 0.92); err != nil {
			return opts, fmt.Errorf("node fill: %w", err)
		}
	}
	if f.Node.Stroke != "" {
		if opts.NodeStroke, err = nodeColor(f.Node.Stroke, 0.45); err != nil {
			return opts, fmt.Errorf("node stroke: %w", err)
		}
	}
	if f.Edge.Color != "" {
		if opts.EdgeColor, err = edgeColor(f.Edge.Color); err != nil {
			return opts, fmt.Errorf("edge color: %w", err)
		}
	}
	if f.Label.Color != "" {
		if opts.LabelColor, err = nodeColor(f.Label.Color, 0.25); err != nil {
			return opts, fmt.Errorf("label color: %w", err)
		}
	}
	if f.Canvas.Background != "" {
		bg, err := parseColorSpec(f.Canvas.Background)
		if err != nil {
			return opts, fmt.Errorf("background: %w", err)
		}
		if bg.fixed != nil {
			opts.Background = bg.fixed
		}
	}

	switch f.Label.Text {
	case "id":
		opts.LabelText = graph.Computed(func(n graph.Node) string { return strconv.Itoa(n.ID) })
	case "none":
		opts.LabelText = graph.Literal[graph.Node]("")
	}
	return opts, nil
}
