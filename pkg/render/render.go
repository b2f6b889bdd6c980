// Package render draws whole diagrams: edges first, then nodes on top.
package render

import (
	"context"
	"time"

	"cdr.dev/slog"

	"github.com/ha1tch/nodegraph/pkg/graph"
	"github.com/ha1tch/nodegraph/pkg/log"
	"github.com/ha1tch/nodegraph/pkg/metrics"
	"github.com/ha1tch/nodegraph/pkg/schematic"
	"github.com/ha1tch/nodegraph/pkg/shape"
)

// Stats summarises one frame.
type Stats struct {
	Nodes   int
	Edges   int
	Skipped int
}

// Draw clears s and draws every edge then every node. Edges whose labels
// do not resolve are skipped and logged; they never abort the frame.
func Draw(ctx context.Context, s shape.Surface, nodes []graph.Node, edges []graph.Edge, opts graph.Options) Stats {
	s.Clear(opts.Background)

	var st Stats
	b := schematic.NewBuilder(nodes, edges, opts)
	for _, e := range edges {
		sch, err := b.Build(e)
		if err != nil {
			log.Warn(ctx, "skipping edge", slog.F("from", e.From), slog.F("to", e.To), slog.Error(err))
			st.Skipped++
			continue
		}
		sch.Draw(s)
		st.Edges++
	}

	for _, n := range nodes {
		NodeShape(n, opts).Draw(s)
		st.Nodes++
	}
	return st
}

// NodeShape returns the shape a node is drawn as.
func NodeShape(n graph.Node, opts graph.Options) shape.Shape {
	size := opts.NodeSize.Resolve(n)
	switch opts.NodeShape.Resolve(n) {
	case graph.ShapeSquare:
		return shape.Square{
			At:          n.Pos(),
			Size:        size * 2,
			Fill:        opts.NodeFill.Resolve(n),
			Stroke:      opts.NodeStroke.Resolve(n),
			StrokeWidth: opts.NodeBorderWidth.Resolve(n),
			Label:       opts.LabelText.Resolve(n),
			LabelSize:   opts.LabelSize.Resolve(n),
			LabelColor:  opts.LabelColor.Resolve(n),
		}
	default:
		return shape.Circle{
			At:          n.Pos(),
			Radius:      size,
			Fill:        opts.NodeFill.Resolve(n),
			Stroke:      opts.NodeStroke.Resolve(n),
			StrokeWidth: opts.NodeBorderWidth.Resolve(n),
			Label:       opts.LabelText.Resolve(n),
			LabelSize:   opts.LabelSize.Resolve(n),
			LabelColor:  opts.LabelColor.Resolve(n),
		}
	}
}

// Renderer redraws a diagram onto a surface whenever the diagram changes.
type Renderer struct {
	Diagram *graph.Diagram
	Surface shape.Surface
	Options graph.Options
	Metrics *metrics.Registry // optional

	dirty  bool
	frames int
	cancel func()
}

// New creates a renderer. The first Render always draws.
func New(d *graph.Diagram, s shape.Surface, opts graph.Options) *Renderer {
	return &Renderer{Diagram: d, Surface: s, Options: opts, dirty: true}
}

// Watch subscribes to the diagram so every mutation marks the renderer
// dirty. Calling Watch again replaces the earlier subscription.
func (r *Renderer) Watch() {
	r.Unwatch()
	r.cancel = r.Diagram.Subscribe(func(c graph.Change) {
		if r.Metrics != nil {
			r.Metrics.RecordMutation(string(c.Op))
		}
		r.MarkDirty()
	})
}

// Unwatch removes the subscription made by Watch.
func (r *Renderer) Unwatch() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// MarkDirty schedules a redraw on the next Render.
func (r *Renderer) MarkDirty() {
	r.dirty = true
}

// Dirty reports whether a redraw is pending.
func (r *Renderer) Dirty() bool {
	return r.dirty
}

// Frames returns how many redraws have run.
func (r *Renderer) Frames() int {
	return r.frames
}

// Render redraws the whole diagram if it changed since the last frame.
// It reports whether a frame was drawn.
func (r *Renderer) Render(ctx context.Context) bool {
	if !r.dirty {
		return false
	}
	r.dirty = false

	start := time.Now()
	st := Draw(ctx, r.Surface, r.Diagram.Nodes(), r.Diagram.Edges(), r.Options)
	elapsed := time.Since(start)
	r.frames++

	log.Debug(ctx, "redraw",
		slog.F("frame", r.frames),
		slog.F("nodes", st.Nodes),
		slog.F("edges", st.Edges),
		slog.F("skipped", st.Skipped),
		slog.F("elapsed", elapsed),
	)
	if r.Metrics != nil {
		r.Metrics.RecordRedraw(elapsed, st.Nodes, st.Edges, st.Skipped)
	}
	return true
}
