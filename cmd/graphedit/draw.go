package main

import (
	"fmt"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/nodegraph/pkg/shape"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray) // Help bar on default background
)

// selectionColor outlines the selected node.
var selectionColor = color.NRGBA{0xff, 0x8f, 0x00, 0xff}

// flashPeriod is how long a message flashes after it is shown.
const flashPeriod = 500

func (ed *Editor) draw() {
	w, h := ed.screen.Size()

	if ed.renderer.Render(ed.ctx) {
		ed.drawSelection()
	}
	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawSelection() {
	n, ok := ed.selectedNode()
	if !ok {
		return
	}
	shape.Circle{
		At:          n.Pos(),
		Radius:      ed.opts.NodeSize.Resolve(n) + ed.surface.CellWidth,
		Stroke:      selectionColor,
		StrokeWidth: 1,
	}.Draw(ed.surface)
}

// flashInverted reports whether a message shown elapsed milliseconds ago
// is in an inverted phase. The pattern is normal, inverted, normal,
// inverted in 125ms steps, then normal for good.
func flashInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= flashPeriod {
		return false
	}
	phase := elapsed / 125
	return phase == 1 || phase == 3
}

// flashes reports whether messages of type t flash.
func flashes(t MessageType) bool {
	switch t {
	case MsgError, MsgSuccess, MsgWarning:
		return true
	}
	return false
}

func (ed *Editor) messageStyle(now int64) tcell.Style {
	style := styleMsgInfo
	switch ed.messageType {
	case MsgError:
		style = styleMsgError
	case MsgSuccess:
		style = styleMsgSuccess
	case MsgWarning:
		style = styleMsgWarning
	}
	if flashes(ed.messageType) && flashInverted(now-ed.messageFlashStart.Load()) {
		style = style.Reverse(true)
	}
	return style
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	// Background
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	info := fmt.Sprintf("%d nodes  %d edges", len(ed.diagram.Nodes()), len(ed.diagram.Edges()))
	ed.drawString(1, y, info, styleStatus)

	// Mode
	modeStr := ed.modeString()
	ed.drawString(w/2-runewidth.StringWidth(modeStr)/2, y, modeStr, styleStatus)

	// Message
	if ed.message != "" {
		style := ed.messageStyle(time.Now().UnixMilli())
		ed.drawString(w-runewidth.StringWidth(ed.message)-2, y, ed.message, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		ed.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func (ed *Editor) modeString() string {
	if ed.ctrl.Drag() != nil {
		return "MOVE"
	}
	switch ed.mode {
	case ModeConnect:
		return "CONNECT"
	}
	return ""
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeConnect:
		return "Click target node | Esc: cancel"
	}
	if ed.selected != 0 {
		return "e: connect | l: loop | d: delete | x: export | Esc: deselect | q: quit"
	}
	return "Double-click: add node | Drag: move | x: export | t: file type | q: quit"
}
