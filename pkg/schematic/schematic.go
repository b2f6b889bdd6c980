// Package schematic computes the drawable geometry of diagram edges.
//
// An edge between two distinct nodes becomes a Straight arrow clipped
// short of its destination; an edge from a node to itself becomes a
// SelfLoop pointed into the widest gap between the node's other edges.
package schematic

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/graph"
	"github.com/ha1tch/nodegraph/pkg/shape"
)

// Layout constants.
const (
	// Clearance is the gap between a destination node's edge and the
	// arrow tip.
	Clearance = 10.0
	// LaneSpacing separates the two lanes of a bidirectional pair.
	LaneSpacing = 12.0

	// Self-loop shape.
	LoopUpDistance   = 80.0
	LoopDownDistance = 25.0
	LoopSpacing      = 12.0
)

// ErrUnknownNode is returned when an edge names a label with no node.
var ErrUnknownNode = errors.New("unknown node")

// Schematic is the drawable form of an edge: *Straight or *SelfLoop.
type Schematic interface {
	shape.Shape
	isSchematic()
}

// Straight is an arrow between two distinct nodes.
type Straight struct {
	Start         geom.Point
	End           geom.Point
	Color         color.Color
	Width         float64
	Bidirectional bool
}

// SelfLoop is a U-turn leaving and returning to one node.
type SelfLoop struct {
	Spacing      float64
	Center       geom.Point
	UpDistance   float64
	DownDistance float64
	Angle        float64
	LineWidth    float64
	Color        color.Color
}

func (*Straight) isSchematic() {}
func (*SelfLoop) isSchematic() {}

// Arrow returns the shape drawn for s.
func (s *Straight) Arrow() shape.Arrow {
	return shape.Arrow{Start: s.Start, End: s.End, Color: s.Color, Width: s.Width}
}

// Draw renders s as an arrow.
func (s *Straight) Draw(surf shape.Surface) {
	s.Arrow().Draw(surf)
}

// UTurn returns the shape drawn for l.
func (l *SelfLoop) UTurn() shape.UTurnArrow {
	return shape.UTurnArrow{
		Center:       l.Center,
		Spacing:      l.Spacing,
		UpDistance:   l.UpDistance,
		DownDistance: l.DownDistance,
		Angle:        l.Angle,
		Color:        l.Color,
		Width:        l.LineWidth,
	}
}

// Draw renders l as a U-turn arrow.
func (l *SelfLoop) Draw(surf shape.Surface) {
	l.UTurn().Draw(surf)
}

// Build computes the schematic for edge given the full node and edge sets.
// It returns ErrUnknownNode if either label does not resolve.
func Build(edge graph.Edge, nodes []graph.Node, edges []graph.Edge, opts graph.Options) (Schematic, error) {
	return NewBuilder(nodes, edges, opts).Build(edge)
}

// Builder computes schematics against one snapshot of the diagram. It
// indexes the nodes once so a full redraw resolves each label in O(1).
type Builder struct {
	index graph.Index
	edges []graph.Edge
	opts  graph.Options
}

// NewBuilder prepares a builder for a snapshot.
func NewBuilder(nodes []graph.Node, edges []graph.Edge, opts graph.Options) *Builder {
	return &Builder{index: graph.NewIndex(nodes), edges: edges, opts: opts}
}

// Build computes the schematic for one edge.
func (b *Builder) Build(edge graph.Edge) (Schematic, error) {
	from, ok := b.index.Lookup(edge.From)
	if !ok {
		return nil, fmt.Errorf("edge %s->%s: %w %q", edge.From, edge.To, ErrUnknownNode, edge.From)
	}
	to, ok := b.index.Lookup(edge.To)
	if !ok {
		return nil, fmt.Errorf("edge %s->%s: %w %q", edge.From, edge.To, ErrUnknownNode, edge.To)
	}

	if from.ID == to.ID {
		return b.selfLoop(edge, from), nil
	}
	return b.straight(edge, from, to), nil
}

func (b *Builder) straight(edge graph.Edge, from, to graph.Node) *Straight {
	theta := geom.Angle(from.Pos(), to.Pos())
	radius := boundary(b.opts.NodeShape.Resolve(to), b.opts.NodeSize.Resolve(to), theta) + Clearance

	s := &Straight{
		Start:         from.Pos(),
		End:           geom.Offset(to.Pos(), theta+math.Pi, radius),
		Color:         b.opts.EdgeColor.Resolve(edge),
		Width:         b.opts.EdgeWidth.Resolve(edge),
		Bidirectional: b.hasReverse(from, to),
	}
	if s.Bidirectional {
		// Each direction shifts to its own right-hand side, so the pair
		// ends up on opposite sides of the centre line.
		s.Start = geom.Offset(s.Start, theta+math.Pi/2, LaneSpacing)
		s.End = geom.Offset(s.End, theta+math.Pi/2, LaneSpacing)
	}
	return s
}

// boundary returns the distance from a node's centre to its outline along
// direction theta. size is the radius, or half the side of a square.
func boundary(kind graph.NodeShape, size, theta float64) float64 {
	if kind != graph.ShapeSquare {
		return size
	}
	return size / math.Max(math.Abs(math.Cos(theta)), math.Abs(math.Sin(theta)))
}

// hasReverse reports whether some edge runs from to back to from.
func (b *Builder) hasReverse(from, to graph.Node) bool {
	for _, e := range b.edges {
		f, ok := b.index.Lookup(e.From)
		if !ok || f.ID != to.ID {
			continue
		}
		t, ok := b.index.Lookup(e.To)
		if ok && t.ID == from.ID {
			return true
		}
	}
	return false
}

func (b *Builder) selfLoop(edge graph.Edge, node graph.Node) *SelfLoop {
	return &SelfLoop{
		Spacing:      LoopSpacing,
		Center:       node.Pos(),
		UpDistance:   LoopUpDistance,
		DownDistance: LoopDownDistance,
		Angle:        geom.LargestAngularSpace(node.Pos(), b.occupied(node)),
		LineWidth:    b.opts.EdgeWidth.Resolve(edge),
		Color:        b.opts.EdgeColor.Resolve(edge),
	}
}

// occupied returns the far endpoint of every other edge at node. Self-loops
// and edges that do not resolve are ignored.
func (b *Builder) occupied(node graph.Node) []geom.Point {
	var points []geom.Point
	for _, e := range b.edges {
		if b.index.IsSelfLoop(e) {
			continue
		}
		from, fok := b.index.Lookup(e.From)
		to, tok := b.index.Lookup(e.To)
		if !fok || !tok {
			continue
		}
		switch node.ID {
		case from.ID:
			points = append(points, to.Pos())
		case to.ID:
			points = append(points, from.Pos())
		}
	}
	return points
}
