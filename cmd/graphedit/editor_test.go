package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/nodegraph/pkg/config"
	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/graph"
	"github.com/ha1tch/nodegraph/pkg/log"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestEditor(t *testing.T) (*Editor, *fakeClock) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	cfg := config.Default()
	cfg.Editor.LastDir = t.TempDir()
	ctx := log.WithTB(context.Background(), t, nil)
	ed, err := newEditor(ctx, screen, cfg, filepath.Join(t.TempDir(), "nodegraph.yaml"))
	require.NoError(t, err)

	clock := &fakeClock{t: time.Unix(1000, 0)}
	ed.clicks.Now = clock.now
	return ed, clock
}

func click(ed *Editor, x, y int) {
	ed.handleMouse(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	ed.handleMouse(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func key(ed *Editor, r rune) bool {
	return ed.handleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func row(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestDoubleClickAddsNode(t *testing.T) {
	ed, _ := newTestEditor(t)

	click(ed, 10, 5)
	assert.Empty(t, ed.diagram.Nodes(), "a single click adds nothing")
	click(ed, 10, 5)

	nodes := ed.diagram.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, geom.Pt(105, 110), nodes[0].Pos())
	assert.Equal(t, nodes[0].ID, ed.selected)
}

func TestSlowClicksDoNotAdd(t *testing.T) {
	ed, clock := newTestEditor(t)

	click(ed, 10, 5)
	clock.t = clock.t.Add(time.Second)
	click(ed, 10, 5)
	assert.Empty(t, ed.diagram.Nodes())
}

func TestDragMovesNode(t *testing.T) {
	ed, _ := newTestEditor(t)
	click(ed, 10, 5)
	click(ed, 10, 5)

	ed.handleMouse(tcell.NewEventMouse(10, 5, tcell.Button1, tcell.ModNone))
	require.NotNil(t, ed.ctrl.Drag())
	assert.Equal(t, "MOVE", ed.modeString())

	ed.handleMouse(tcell.NewEventMouse(20, 8, tcell.Button1, tcell.ModNone))
	ed.handleMouse(tcell.NewEventMouse(20, 8, tcell.ButtonNone, tcell.ModNone))
	assert.Nil(t, ed.ctrl.Drag())

	n, ok := ed.diagram.Node(1)
	require.True(t, ok)
	assert.Equal(t, geom.Pt(205, 170), n.Pos())
}

func TestConnectLoopDelete(t *testing.T) {
	ed, _ := newTestEditor(t)
	click(ed, 10, 5)
	click(ed, 10, 5)
	click(ed, 40, 5)
	click(ed, 40, 5)
	require.Len(t, ed.diagram.Nodes(), 2)

	// Select n1 and connect it to n2.
	click(ed, 10, 5)
	require.Equal(t, 1, ed.selected)
	assert.False(t, key(ed, 'e'))
	assert.Equal(t, ModeConnect, ed.mode)
	click(ed, 40, 5)
	assert.Equal(t, ModeCanvas, ed.mode)

	assert.False(t, key(ed, 'l'))
	assert.Equal(t, []graph.Edge{{From: "n1", To: "n2"}, {From: "n1", To: "n1"}}, ed.diagram.Edges())

	assert.False(t, key(ed, 'd'))
	assert.Empty(t, ed.diagram.Edges(), "deleting a node removes its edges")
	assert.Len(t, ed.diagram.Nodes(), 1)
	assert.Zero(t, ed.selected)
}

func TestConnectNeedsSelection(t *testing.T) {
	ed, _ := newTestEditor(t)
	key(ed, 'e')
	assert.Equal(t, ModeCanvas, ed.mode)
	assert.Equal(t, MsgWarning, ed.messageType)
}

func TestStatusBar(t *testing.T) {
	ed, _ := newTestEditor(t)
	click(ed, 10, 5)
	click(ed, 10, 5)
	ed.draw()

	_, h := ed.screen.Size()
	assert.Contains(t, row(ed.screen, h-1), "1 nodes  0 edges")
	assert.Contains(t, row(ed.screen, h-1), "Added n1")
	assert.Contains(t, row(ed.screen, h-2), "e: connect")

	// The node label is drawn at its center cell.
	assert.Contains(t, row(ed.screen, 5), "n1")
}

func TestClicksOnStatusRowsIgnored(t *testing.T) {
	ed, _ := newTestEditor(t)
	_, h := ed.screen.Size()
	click(ed, 10, h-1)
	click(ed, 10, h-1)
	assert.Empty(t, ed.diagram.Nodes())
}

func TestExport(t *testing.T) {
	ed, _ := newTestEditor(t)
	click(ed, 10, 5)
	click(ed, 10, 5)

	ed.config.Editor.FileType = "svg"
	ed.export()
	assert.Equal(t, MsgSuccess, ed.messageType, ed.message)

	matches, err := filepath.Glob(filepath.Join(ed.config.Editor.LastDir, "diagram-*.svg"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), ">n1</text>")
}

func TestToggleFileTypeSavesConfig(t *testing.T) {
	ed, _ := newTestEditor(t)
	key(ed, 't')
	assert.Equal(t, "svg", ed.config.Editor.FileType)

	saved, err := config.Load(ed.configPath)
	require.NoError(t, err)
	assert.Equal(t, "svg", saved.Editor.FileType)
}

func TestQuitKeys(t *testing.T) {
	ed, _ := newTestEditor(t)
	assert.True(t, key(ed, 'q'))
	assert.True(t, ed.handleKey(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)))
}

// TestFlashPhaseCalculation verifies the phase logic for message flashing
func TestFlashPhaseCalculation(t *testing.T) {
	// Flash pattern: normal(0-125) -> inverted(125-250) -> normal(250-375) -> inverted(375-500) -> normal(500+)
	tests := []struct {
		elapsed      int64
		wantInverted bool
		description  string
	}{
		{-1, false, "clock went backwards - normal"},
		{0, false, "start of flash - normal"},
		{124, false, "end of phase 0 - normal"},
		{125, true, "start of phase 1 - inverted"},
		{249, true, "end of phase 1 - inverted"},
		{250, false, "start of phase 2 - normal"},
		{375, true, "start of phase 3 - inverted"},
		{499, true, "end of phase 3 - inverted"},
		{500, false, "after flash period - normal"},
		{1000, false, "long after flash - normal"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.wantInverted, flashInverted(tt.elapsed), "elapsed=%d", tt.elapsed)
		})
	}
}

// TestFlashMessageTypes verifies which message types should flash
func TestFlashMessageTypes(t *testing.T) {
	assert.False(t, flashes(MsgInfo))
	assert.True(t, flashes(MsgError))
	assert.True(t, flashes(MsgSuccess))
	assert.True(t, flashes(MsgWarning))
}

func TestMessageStyleInvertsWhileFlashing(t *testing.T) {
	ed, _ := newTestEditor(t)
	ed.showMessage("boom", MsgError)

	_, _, attrs := ed.messageStyle(ed.messageFlashStart.Load() + 130).Decompose()
	assert.NotZero(t, attrs&tcell.AttrReverse)
	_, _, attrs = ed.messageStyle(ed.messageFlashStart.Load() + 600).Decompose()
	assert.Zero(t, attrs&tcell.AttrReverse)
}

func TestRefreshWhileFlashing(t *testing.T) {
	var start atomic.Int64
	var posts atomic.Int32
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		refreshWhileFlashing(done, &start, 5*time.Millisecond, func() { posts.Add(1) })
	}()

	// Nothing shown yet, nothing posted.
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, posts.Load())

	start.Store(time.Now().UnixMilli())
	assert.Eventually(t, func() bool { return posts.Load() > 0 }, 2*time.Second, 5*time.Millisecond)

	close(done)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh goroutine did not stop")
	}
}

func TestRefreshStopsAfterFlash(t *testing.T) {
	var start atomic.Int64
	start.Store(time.Now().Add(-time.Second).UnixMilli())
	var posts atomic.Int32
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		refreshWhileFlashing(done, &start, 5*time.Millisecond, func() { posts.Add(1) })
	}()

	time.Sleep(30 * time.Millisecond)
	close(done)
	<-stopped
	assert.Zero(t, posts.Load())
}
