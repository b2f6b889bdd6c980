// Package graph provides the diagram store: positioned nodes, directed
// edges between node labels, and change notification.
package graph

import (
	"errors"
	"fmt"

	"github.com/ha1tch/nodegraph/pkg/geom"
)

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrUnknownLabel   = errors.New("unknown label")
)

// Node is a positioned vertex. ID never changes once assigned; Label is
// the key edges refer to.
type Node struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Pos returns the node's position.
func (n Node) Pos() geom.Point {
	return geom.Pt(n.X, n.Y)
}

// Edge is a directed reference between two node labels.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Reverse returns the edge pointing the other way.
func (e Edge) Reverse() Edge {
	return Edge{From: e.To, To: e.From}
}

// Op names a store mutation.
type Op string

const (
	OpAddNode    Op = "add_node"
	OpMoveNode   Op = "move_node"
	OpRemoveNode Op = "remove_node"
	OpAddEdge    Op = "add_edge"
	OpRemoveEdge Op = "remove_edge"
)

// Change describes one mutation.
type Change struct {
	Op   Op
	Node *Node // set for node operations
	Edge *Edge // set for edge operations
}

// Diagram holds the nodes and edges of one diagram. It is not safe for
// concurrent use; callers sharing a Diagram serialise access.
type Diagram struct {
	nodes  []Node
	edges  []Edge
	nextID int

	subs   map[int]func(Change)
	subSeq int
}

// New creates an empty diagram.
func New() *Diagram {
	return &Diagram{
		nodes:  make([]Node, 0),
		edges:  make([]Edge, 0),
		nextID: 1,
		subs:   make(map[int]func(Change)),
	}
}

// Subscribe registers fn to be called after every mutation. The returned
// function removes the subscription.
func (d *Diagram) Subscribe(fn func(Change)) (cancel func()) {
	d.subSeq++
	id := d.subSeq
	d.subs[id] = fn
	return func() { delete(d.subs, id) }
}

func (d *Diagram) notify(c Change) {
	for i := 1; i <= d.subSeq; i++ {
		if fn, ok := d.subs[i]; ok {
			fn(c)
		}
	}
}

// AddNode places a new node. An empty label is replaced by "n<ID>"; IDs
// whose automatic label is already taken are skipped.
func (d *Diagram) AddNode(x, y float64, label string) (Node, error) {
	if label == "" {
		for {
			label = fmt.Sprintf("n%d", d.nextID)
			if _, ok := d.NodeByLabel(label); !ok {
				break
			}
			d.nextID++
		}
	} else if _, ok := d.NodeByLabel(label); ok {
		return Node{}, fmt.Errorf("adding node %q: %w", label, ErrDuplicateLabel)
	}
	id := d.nextID
	d.nextID++

	n := Node{ID: id, X: x, Y: y, Label: label}
	d.nodes = append(d.nodes, n)
	d.notify(Change{Op: OpAddNode, Node: &n})
	return n, nil
}

// MoveNode sets a node's position.
func (d *Diagram) MoveNode(id int, x, y float64) error {
	i := d.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("moving node %d: %w", id, ErrNodeNotFound)
	}
	d.nodes[i].X = x
	d.nodes[i].Y = y
	n := d.nodes[i]
	d.notify(Change{Op: OpMoveNode, Node: &n})
	return nil
}

// RemoveNode deletes a node and every edge touching its label.
func (d *Diagram) RemoveNode(id int) error {
	i := d.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("removing node %d: %w", id, ErrNodeNotFound)
	}
	n := d.nodes[i]
	d.nodes = append(d.nodes[:i], d.nodes[i+1:]...)

	key := labelKey(n.Label)
	kept := d.edges[:0]
	for _, e := range d.edges {
		if labelKey(e.From) == key || labelKey(e.To) == key {
			continue
		}
		kept = append(kept, e)
	}
	d.edges = kept

	d.notify(Change{Op: OpRemoveNode, Node: &n})
	return nil
}

// AddEdge connects two existing labels. Duplicates are kept.
func (d *Diagram) AddEdge(from, to string) (Edge, error) {
	if _, ok := d.NodeByLabel(from); !ok {
		return Edge{}, fmt.Errorf("adding edge %s->%s: from %q: %w", from, to, from, ErrUnknownLabel)
	}
	if _, ok := d.NodeByLabel(to); !ok {
		return Edge{}, fmt.Errorf("adding edge %s->%s: to %q: %w", from, to, to, ErrUnknownLabel)
	}
	e := Edge{From: from, To: to}
	d.edges = append(d.edges, e)
	d.notify(Change{Op: OpAddEdge, Edge: &e})
	return e, nil
}

// RemoveEdge deletes every edge equal to the exact (from, to) pair.
func (d *Diagram) RemoveEdge(from, to string) error {
	target := Edge{From: from, To: to}
	kept := d.edges[:0]
	removed := 0
	for _, e := range d.edges {
		if SameLabel(e.From, from) && SameLabel(e.To, to) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	d.edges = kept
	if removed == 0 {
		return fmt.Errorf("removing edge %s->%s: %w", from, to, ErrEdgeNotFound)
	}
	d.notify(Change{Op: OpRemoveEdge, Edge: &target})
	return nil
}

// Nodes returns a copy of the nodes in insertion order.
func (d *Diagram) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Edges returns a copy of the edges in insertion order.
func (d *Diagram) Edges() []Edge {
	out := make([]Edge, len(d.edges))
	copy(out, d.edges)
	return out
}

// Node returns the node with the given ID.
func (d *Diagram) Node(id int) (Node, bool) {
	i := d.nodeIndex(id)
	if i < 0 {
		return Node{}, false
	}
	return d.nodes[i], true
}

// NodeByLabel returns the node with the given label.
func (d *Diagram) NodeByLabel(label string) (Node, bool) {
	key := labelKey(label)
	for _, n := range d.nodes {
		if labelKey(n.Label) == key {
			return n, true
		}
	}
	return Node{}, false
}

// NodeAt returns the topmost node whose disc contains p. radius gives each
// node's hit radius.
func (d *Diagram) NodeAt(p geom.Point, radius func(Node) float64) (Node, bool) {
	// Later nodes are drawn on top.
	for i := len(d.nodes) - 1; i >= 0; i-- {
		n := d.nodes[i]
		if geom.Distance(p, n.Pos()) <= radius(n) {
			return n, true
		}
	}
	return Node{}, false
}

func (d *Diagram) nodeIndex(id int) int {
	for i, n := range d.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
