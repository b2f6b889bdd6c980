// Package interact turns pointer input into diagram mutations: double-click
// to add a node, press-move-release to drag one.
package interact

import (
	"errors"
	"fmt"

	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/graph"
)

// Drag is an active drag session. Offset is the press point relative to
// the node centre, kept so the node does not jump under the pointer.
type Drag struct {
	NodeID int
	Offset geom.Point
}

// Controller applies pointer gestures to a diagram. It owns the drag
// session; nothing else may hold a reference to the dragged node.
type Controller struct {
	Diagram *graph.Diagram
	Options graph.Options

	drag *Drag
}

// NewController creates a controller. Options supply node hit radii.
func NewController(d *graph.Diagram, opts graph.Options) *Controller {
	return &Controller{Diagram: d, Options: opts}
}

func (c *Controller) hitRadius(n graph.Node) float64 {
	return c.Options.NodeSize.Resolve(n)
}

// NodeAt returns the topmost node under p.
func (c *Controller) NodeAt(p geom.Point) (graph.Node, bool) {
	return c.Diagram.NodeAt(p, c.hitRadius)
}

// DoubleClick adds a node at p unless one is already there. It returns the
// node at p and whether it was created.
func (c *Controller) DoubleClick(p geom.Point) (graph.Node, bool, error) {
	if n, ok := c.NodeAt(p); ok {
		return n, false, nil
	}
	n, err := c.Diagram.AddNode(p.X, p.Y, "")
	if err != nil {
		return graph.Node{}, false, err
	}
	return n, true, nil
}

// Press starts a drag if p is over a node. Any earlier session is
// dropped first, covering a release the host never delivered.
func (c *Controller) Press(p geom.Point) bool {
	c.drag = nil
	n, ok := c.NodeAt(p)
	if !ok {
		return false
	}
	c.drag = &Drag{NodeID: n.ID, Offset: p.Sub(n.Pos())}
	return true
}

// Move drags the active node to follow p. Without a session it does
// nothing. If the node has vanished the session ends.
func (c *Controller) Move(p geom.Point) error {
	if c.drag == nil {
		return nil
	}
	to := p.Sub(c.drag.Offset)
	err := c.Diagram.MoveNode(c.drag.NodeID, to.X, to.Y)
	if errors.Is(err, graph.ErrNodeNotFound) {
		c.drag = nil
	}
	return err
}

// Release ends the drag session.
func (c *Controller) Release() {
	c.drag = nil
}

// Cancel abandons the drag session, for example when the pointer leaves
// the surface while pressed.
func (c *Controller) Cancel() {
	c.drag = nil
}

// Drag returns the active session, or nil.
func (c *Controller) Drag() *Drag {
	if c.drag == nil {
		return nil
	}
	d := *c.drag
	return &d
}

// Connect adds an edge between two labels.
func (c *Controller) Connect(from, to string) error {
	_, err := c.Diagram.AddEdge(from, to)
	return err
}

// Disconnect removes the edge between two labels.
func (c *Controller) Disconnect(from, to string) error {
	return c.Diagram.RemoveEdge(from, to)
}

// Remove deletes the node under p along with its edges. It reports
// whether a node was removed.
func (c *Controller) Remove(p geom.Point) (bool, error) {
	n, ok := c.NodeAt(p)
	if !ok {
		return false, nil
	}
	return true, c.RemoveNode(n.ID)
}

// RemoveNode deletes a node by ID, ending any drag of it.
func (c *Controller) RemoveNode(id int) error {
	if c.drag != nil && c.drag.NodeID == id {
		c.drag = nil
	}
	if err := c.Diagram.RemoveNode(id); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
