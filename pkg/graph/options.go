package graph

import "image/color"

// Option is a style value that is either fixed or computed from the node
// or edge being drawn. The zero Option resolves to the zero T.
type Option[C, T any] struct {
	value    T
	compute  func(C) T
	computed bool
}

// Literal returns an option that always resolves to v.
func Literal[C, T any](v T) Option[C, T] {
	return Option[C, T]{value: v}
}

// Computed returns an option that resolves by calling fn.
func Computed[C, T any](fn func(C) T) Option[C, T] {
	return Option[C, T]{compute: fn, computed: fn != nil}
}

// Resolve returns the effective value for ctx.
func (o Option[C, T]) Resolve(ctx C) T {
	if o.computed {
		return o.compute(ctx)
	}
	return o.value
}

// IsComputed reports whether the option depends on its context.
func (o Option[C, T]) IsComputed() bool {
	return o.computed
}

// NodeShape selects how a node is drawn.
type NodeShape string

const (
	ShapeCircle NodeShape = "circle"
	ShapeSquare NodeShape = "square"
)

// Options holds the style of a diagram.
type Options struct {
	NodeSize        Option[Node, float64] // radius, or half the side of a square
	NodeBorderWidth Option[Node, float64]
	NodeFill        Option[Node, color.Color]
	NodeStroke      Option[Node, color.Color]
	NodeShape       Option[Node, NodeShape]
	EdgeWidth       Option[Edge, float64]
	EdgeColor       Option[Edge, color.Color]
	LabelText       Option[Node, string]
	LabelSize       Option[Node, float64]
	LabelColor      Option[Node, color.Color]
	Background      color.Color
}

// Colors used by the default style
var (
	colorWhite  = color.NRGBA{255, 255, 255, 255}
	colorBlack  = color.NRGBA{51, 51, 51, 255}   // #333
	colorGray   = color.NRGBA{102, 102, 102, 255} // #666
	colorNode   = color.NRGBA{227, 242, 253, 255} // #e3f2fd
	colorBorder = color.NRGBA{21, 101, 192, 255}  // #1565c0
)

// DefaultOptions returns the default diagram style: 35 unit circles
// labelled with their label.
func DefaultOptions() Options {
	return Options{
		NodeSize:        Literal[Node](35.0),
		NodeBorderWidth: Literal[Node](2.0),
		NodeFill:        Literal[Node, color.Color](colorNode),
		NodeStroke:      Literal[Node, color.Color](colorBorder),
		NodeShape:       Literal[Node](ShapeCircle),
		EdgeWidth:       Literal[Edge](2.0),
		EdgeColor:       Literal[Edge, color.Color](colorGray),
		LabelText:       Computed(func(n Node) string { return n.Label }),
		LabelSize:       Literal[Node](14.0),
		LabelColor:      Literal[Node, color.Color](colorBlack),
		Background:      colorWhite,
	}
}
