package interact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/graph"
)

func newController() *Controller {
	return NewController(graph.New(), graph.DefaultOptions())
}

func TestDoubleClickAddsNode(t *testing.T) {
	c := newController()

	n, created, err := c.DoubleClick(geom.Pt(100, 100))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "n1", n.Label)
	assert.Equal(t, geom.Pt(100, 100), n.Pos())

	// Double-clicking on an existing node returns it
	again, created, err := c.DoubleClick(geom.Pt(110, 95))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, n.ID, again.ID)
	assert.Len(t, c.Diagram.Nodes(), 1)
}

func TestDoubleClickAfterExplicitLabel(t *testing.T) {
	c := newController()
	_, err := c.Diagram.AddNode(500, 500, "n1")
	require.NoError(t, err)

	n, created, err := c.DoubleClick(geom.Pt(100, 100))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "n2", n.Label)
	assert.Len(t, c.Diagram.Nodes(), 2)
}

func TestDragKeepsOffset(t *testing.T) {
	c := newController()
	n, _, _ := c.DoubleClick(geom.Pt(100, 100))

	require.True(t, c.Press(geom.Pt(110, 105)))
	require.NotNil(t, c.Drag())
	assert.Equal(t, geom.Pt(10, 5), c.Drag().Offset)

	require.NoError(t, c.Move(geom.Pt(210, 305)))
	got, _ := c.Diagram.Node(n.ID)
	assert.Equal(t, geom.Pt(200, 300), got.Pos())

	c.Release()
	assert.Nil(t, c.Drag())

	// Moves after release do nothing
	require.NoError(t, c.Move(geom.Pt(0, 0)))
	got, _ = c.Diagram.Node(n.ID)
	assert.Equal(t, geom.Pt(200, 300), got.Pos())
}

func TestPressOnEmptySpace(t *testing.T) {
	c := newController()
	c.DoubleClick(geom.Pt(100, 100))

	assert.False(t, c.Press(geom.Pt(500, 500)))
	assert.Nil(t, c.Drag())
}

func TestPressReplacesStaleSession(t *testing.T) {
	c := newController()
	a, _, _ := c.DoubleClick(geom.Pt(0, 0))
	b, _, _ := c.DoubleClick(geom.Pt(300, 0))

	require.True(t, c.Press(geom.Pt(0, 0)))
	// Release was lost; the next press starts fresh.
	require.True(t, c.Press(geom.Pt(300, 0)))
	require.NoError(t, c.Move(geom.Pt(300, 50)))

	gotA, _ := c.Diagram.Node(a.ID)
	gotB, _ := c.Diagram.Node(b.ID)
	assert.Equal(t, geom.Pt(0, 0), gotA.Pos())
	assert.Equal(t, geom.Pt(300, 50), gotB.Pos())
}

func TestCancel(t *testing.T) {
	c := newController()
	c.DoubleClick(geom.Pt(0, 0))
	c.Press(geom.Pt(0, 0))
	c.Cancel()
	assert.Nil(t, c.Drag())
}

func TestMoveAfterNodeRemovedEndsDrag(t *testing.T) {
	c := newController()
	n, _, _ := c.DoubleClick(geom.Pt(0, 0))
	c.Press(geom.Pt(0, 0))

	// Removed behind the controller's back
	require.NoError(t, c.Diagram.RemoveNode(n.ID))

	err := c.Move(geom.Pt(10, 10))
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
	assert.Nil(t, c.Drag())
}

func TestRemove(t *testing.T) {
	c := newController()
	a, _, _ := c.DoubleClick(geom.Pt(0, 0))
	c.DoubleClick(geom.Pt(200, 0))
	require.NoError(t, c.Connect("n1", "n2"))
	require.NoError(t, c.Connect("n2", "n1"))
	require.NoError(t, c.Connect("n2", "n2"))

	c.Press(geom.Pt(0, 0))
	removed, err := c.Remove(geom.Pt(5, 5))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Nil(t, c.Drag(), "removing the dragged node ends the drag")

	assert.Equal(t, []graph.Edge{{From: "n2", To: "n2"}}, c.Diagram.Edges())
	_, ok := c.Diagram.Node(a.ID)
	assert.False(t, ok)

	removed, err = c.Remove(geom.Pt(1000, 1000))
	require.NoError(t, err)
	assert.False(t, removed)

	assert.ErrorIs(t, c.RemoveNode(a.ID), graph.ErrNodeNotFound)
}

func TestConnectDisconnect(t *testing.T) {
	c := newController()
	c.DoubleClick(geom.Pt(0, 0))

	assert.ErrorIs(t, c.Connect("n1", "nope"), graph.ErrUnknownLabel)
	require.NoError(t, c.Connect("n1", "n1"))
	require.NoError(t, c.Disconnect("n1", "n1"))
	assert.ErrorIs(t, c.Disconnect("n1", "n1"), graph.ErrEdgeNotFound)
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestClickTracker(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := NewClickTracker()
	tr.Now = clock.now

	tests := []struct {
		name string
		wait time.Duration
		at   geom.Point
		want bool
	}{
		{"first click", 0, geom.Pt(10, 10), false},
		{"quick second click", 200 * time.Millisecond, geom.Pt(11, 10), true},
		{"third click starts over", 100 * time.Millisecond, geom.Pt(11, 10), false},
		{"too slow", 500 * time.Millisecond, geom.Pt(11, 10), false},
		{"quick but too far", 100 * time.Millisecond, geom.Pt(50, 50), false},
		{"quick and close", 399 * time.Millisecond, geom.Pt(52, 51), true},
	}

	for _, tc := range tests {
		clock.advance(tc.wait)
		assert.Equal(t, tc.want, tr.Click(tc.at), tc.name)
	}
}

func TestClickTrackerReset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	tr := NewClickTracker()
	tr.Now = clock.now

	tr.Click(geom.Pt(0, 0))
	tr.Reset()
	clock.advance(50 * time.Millisecond)
	assert.False(t, tr.Click(geom.Pt(0, 0)))
}
