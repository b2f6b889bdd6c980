// Command graphedit is a terminal editor for node diagrams.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/nodegraph/pkg/config"
	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/graph"
	"github.com/ha1tch/nodegraph/pkg/interact"
	"github.com/ha1tch/nodegraph/pkg/log"
	"github.com/ha1tch/nodegraph/pkg/render"
	"github.com/ha1tch/nodegraph/pkg/surface"
)

// Mode represents editor mode
type Mode int

const (
	ModeCanvas  Mode = iota
	ModeConnect // waiting for the target of a new edge
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // Diagram changes, flash
	MsgWarning                    // Warnings, flash
)

// statusRows are the rows below the canvas: help bar and status bar.
const statusRows = 2

// Editor holds all editor state
type Editor struct {
	ctx        context.Context
	screen     tcell.Screen
	surface    *surface.Terminal
	diagram    *graph.Diagram
	ctrl       *interact.Controller
	clicks     *interact.ClickTracker
	renderer   *render.Renderer
	opts       graph.Options
	config     config.File
	configPath string

	mode        Mode
	selected    int    // node ID, 0 when nothing is selected
	connectFrom string // source label in ModeConnect
	pressed     bool

	message           string
	messageType       MessageType
	messageFlashStart atomic.Int64 // unix ms, read by the refresh goroutine
}

func newEditor(ctx context.Context, screen tcell.Screen, cfg config.File, cfgPath string) (*Editor, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	d := graph.New()
	term := surface.NewTerminal(screen)

	ed := &Editor{
		ctx:        ctx,
		screen:     screen,
		surface:    term,
		diagram:    d,
		ctrl:       interact.NewController(d, opts),
		clicks:     interact.NewClickTracker(),
		renderer:   render.New(d, term, opts),
		opts:       opts,
		config:     cfg,
		configPath: cfgPath,
	}
	ed.renderer.Watch()
	return ed, nil
}

func main() {
	ctx := log.Discard(context.Background())
	if log.Debugging() {
		// The screen owns stderr, so debug output goes to a file.
		f, err := os.Create("graphedit.log")
		if err == nil {
			defer f.Close()
			ctx = log.With(ctx, slog.Make(sloghuman.Sink(f)).Leveled(slog.LevelDebug))
		}
	}

	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	// Initialize screen
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()

	ed, err := newEditor(ctx, screen, cfg, cfgPath)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ed.showMessage("Double-click to add a node. ? for help", MsgInfo)

	// Main loop
	ed.run()

	screen.Fini()
}

func (ed *Editor) run() {
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		refreshWhileFlashing(done, &ed.messageFlashStart, 50*time.Millisecond, func() {
			ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
		})
	}()
	// The screen is finalized after run returns; nothing may post to it.
	defer func() {
		close(done)
		<-stopped
	}()

	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
			ed.renderer.MarkDirty()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			// Refresh event for flash animation - just redraw
		case nil:
			return
		}
	}
}

// handleKey applies one key press. It returns true to quit.
func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		if ed.mode == ModeConnect {
			ed.mode = ModeCanvas
			ed.showMessage("Connect cancelled", MsgInfo)
		} else {
			ed.selectNode(0)
		}
		return false
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.deleteSelected()
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case 'e':
		ed.startConnect()
	case 'l':
		ed.addSelfLoop()
	case 'd':
		ed.deleteSelected()
	case 'x':
		ed.export()
	case 't':
		ed.toggleFileType()
	case '?':
		ed.showMessage("e connect  l loop  d delete  x export  t file type  q quit", MsgInfo)
	}
	return false
}

// pointAt returns the world point under cell (x, y).
func (ed *Editor) pointAt(x, y int) geom.Point {
	return ed.surface.World(x, y)
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	_, h := ed.screen.Size()
	down := ev.Buttons()&tcell.Button1 != 0
	p := ed.pointAt(x, y)

	switch {
	case down && !ed.pressed:
		ed.pressed = true
		if y >= h-statusRows {
			return
		}
		ed.mouseDown(p)
	case down && ed.pressed:
		if err := ed.ctrl.Move(p); err != nil {
			ed.showMessage(err.Error(), MsgError)
		}
	case !down && ed.pressed:
		ed.pressed = false
		ed.ctrl.Release()
	}
}

func (ed *Editor) mouseDown(p geom.Point) {
	if ed.mode == ModeConnect {
		ed.completeConnect(p)
		return
	}

	if ed.clicks.Click(p) {
		ed.ctrl.Cancel()
		n, created, err := ed.ctrl.DoubleClick(p)
		if err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		ed.selectNode(n.ID)
		if created {
			ed.showMessage(fmt.Sprintf("Added %s", n.Label), MsgSuccess)
		}
		return
	}

	if ed.ctrl.Press(p) {
		ed.selectNode(ed.ctrl.Drag().NodeID)
	} else {
		ed.selectNode(0)
	}
}

func (ed *Editor) selectNode(id int) {
	if ed.selected != id {
		ed.selected = id
		ed.renderer.MarkDirty()
	}
}

func (ed *Editor) selectedNode() (graph.Node, bool) {
	if ed.selected == 0 {
		return graph.Node{}, false
	}
	return ed.diagram.Node(ed.selected)
}

func (ed *Editor) startConnect() {
	n, ok := ed.selectedNode()
	if !ok {
		ed.showMessage("Select a node first", MsgWarning)
		return
	}
	ed.mode = ModeConnect
	ed.connectFrom = n.Label
	ed.showMessage(fmt.Sprintf("Connect %s to: click a node", n.Label), MsgInfo)
}

func (ed *Editor) completeConnect(p geom.Point) {
	ed.mode = ModeCanvas
	to, ok := ed.ctrl.NodeAt(p)
	if !ok {
		ed.showMessage("No node there", MsgWarning)
		return
	}
	if err := ed.ctrl.Connect(ed.connectFrom, to.Label); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage(fmt.Sprintf("Connected %s -> %s", ed.connectFrom, to.Label), MsgSuccess)
}

func (ed *Editor) addSelfLoop() {
	n, ok := ed.selectedNode()
	if !ok {
		ed.showMessage("Select a node first", MsgWarning)
		return
	}
	if err := ed.ctrl.Connect(n.Label, n.Label); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage(fmt.Sprintf("Added loop on %s", n.Label), MsgSuccess)
}

func (ed *Editor) deleteSelected() {
	n, ok := ed.selectedNode()
	if !ok {
		ed.showMessage("Nothing selected", MsgWarning)
		return
	}
	if err := ed.ctrl.RemoveNode(n.ID); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.selected = 0
	ed.showMessage(fmt.Sprintf("Deleted %s", n.Label), MsgSuccess)
}

func (ed *Editor) toggleFileType() {
	if ed.config.Editor.FileType == "svg" {
		ed.config.Editor.FileType = "png"
	} else {
		ed.config.Editor.FileType = "svg"
	}
	if err := config.Save(ed.configPath, ed.config); err != nil {
		ed.showMessage(fmt.Sprintf("Saving config: %v", err), MsgError)
		return
	}
	ed.showMessage("File type: "+ed.config.Editor.FileType, MsgInfo)
}

// export writes the diagram at the canvas size to the last used directory.
func (ed *Editor) export() {
	w, h := ed.screen.Size()
	width := int(float64(w) * ed.surface.CellWidth)
	height := int(float64(h-statusRows) * ed.surface.CellHeight)

	dir := ed.config.Editor.LastDir
	if dir == "" {
		dir = "."
	}
	name := fmt.Sprintf("diagram-%s.%s", time.Now().Format("20060102-150405"), ed.config.Editor.FileType)
	path := filepath.Join(dir, name)

	if err := ed.exportTo(path, width, height); err != nil {
		ed.showMessage(fmt.Sprintf("Export failed: %v", err), MsgError)
		return
	}
	ed.showMessage("Exported "+path, MsgSuccess)
}

func (ed *Editor) exportTo(path string, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	nodes, edges := ed.diagram.Nodes(), ed.diagram.Edges()
	if filepath.Ext(path) == ".svg" {
		s := surface.NewSVG(surface.SVGOptions{Width: width, Height: height})
		render.Draw(ed.ctx, s, nodes, edges, ed.opts)
		if _, err := s.WriteTo(f); err != nil {
			return err
		}
	} else {
		r, err := surface.NewRaster(surface.RasterOptions{Width: width, Height: height})
		if err != nil {
			return err
		}
		render.Draw(ed.ctx, r, nodes, edges, ed.opts)
		if err := r.EncodePNG(f); err != nil {
			return err
		}
	}
	return f.Close()
}

// refreshWhileFlashing calls post on every tick while the message shown at
// start is still flashing, until done is closed.
func refreshWhileFlashing(done <-chan struct{}, start *atomic.Int64, tick time.Duration, post func()) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			shown := start.Load()
			if shown == 0 {
				continue
			}
			// One extra tick past the period so the final phase is drawn.
			elapsed := now.UnixMilli() - shown
			if elapsed >= 0 && elapsed < flashPeriod+tick.Milliseconds() {
				post()
			}
		}
	}
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart.Store(time.Now().UnixMilli())
	// Trigger immediate refresh for flash animation
	if ed.screen != nil {
		ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}
