package surface

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/shape"
)

// Terminal is a Surface that draws onto a tcell screen. World units map
// to cells through CellWidth and CellHeight; Origin is the world point
// shown in the top-left cell.
type Terminal struct {
	Screen     tcell.Screen
	CellWidth  float64
	CellHeight float64
	Origin     geom.Point

	subpaths [][]geom.Point
	closed   []bool
}

var _ shape.Surface = (*Terminal)(nil)

// NewTerminal wraps screen with the default cell size of 10x20 world
// units, roughly the aspect of a terminal cell.
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{Screen: screen, CellWidth: 10, CellHeight: 20}
}

// Cell maps a world point to the cell containing it.
func (t *Terminal) Cell(p geom.Point) (int, int) {
	return int(math.Floor((p.X - t.Origin.X) / t.CellWidth)),
		int(math.Floor((p.Y - t.Origin.Y) / t.CellHeight))
}

// World returns the world point at the center of cell (x, y).
func (t *Terminal) World(x, y int) geom.Point {
	return geom.Pt(
		t.Origin.X+(float64(x)+0.5)*t.CellWidth,
		t.Origin.Y+(float64(y)+0.5)*t.CellHeight,
	)
}

func (t *Terminal) Clear(c color.Color) {
	t.clearPath()
	t.Screen.Fill(' ', tcell.StyleDefault.Background(tcell.FromImageColor(c)))
}

func (t *Terminal) MoveTo(p geom.Point) {
	t.subpaths = append(t.subpaths, []geom.Point{p})
	t.closed = append(t.closed, false)
}

func (t *Terminal) LineTo(p geom.Point) {
	if len(t.subpaths) == 0 {
		t.MoveTo(p)
		return
	}
	last := len(t.subpaths) - 1
	t.subpaths[last] = append(t.subpaths[last], p)
}

func (t *Terminal) Arc(center geom.Point, radius, start, end float64, ccw bool) {
	start, end = sweep(start, end, ccw)
	// One segment per cell of arc length keeps the outline connected.
	steps := int(math.Ceil(math.Abs(end-start) * radius / math.Min(t.CellWidth, t.CellHeight)))
	if steps < 8 {
		steps = 8
	}
	for i := 0; i <= steps; i++ {
		a := start + (end-start)*float64(i)/float64(steps)
		p := geom.Offset(center, a, radius)
		if i == 0 && len(t.subpaths) == 0 {
			t.MoveTo(p)
			continue
		}
		t.LineTo(p)
	}
}

func (t *Terminal) ClosePath() {
	if len(t.subpaths) == 0 {
		return
	}
	t.closed[len(t.closed)-1] = true
}

// Fill paints every cell whose center lies inside the path, using the
// even-odd rule.
func (t *Terminal) Fill(c color.Color) {
	defer t.clearPath()
	if len(t.subpaths) == 0 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sp := range t.subpaths {
		for _, p := range sp {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	x0, y0 := t.Cell(geom.Pt(minX, minY))
	x1, y1 := t.Cell(geom.Pt(maxX, maxY))
	bg := tcell.FromImageColor(c)

	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			if t.inside(t.World(cx, cy)) {
				t.setBackground(cx, cy, bg)
			}
		}
	}
}

func (t *Terminal) inside(p geom.Point) bool {
	in := false
	for _, sp := range t.subpaths {
		n := len(sp)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, b := sp[i], sp[j]
			if (a.Y > p.Y) != (b.Y > p.Y) &&
				p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
				in = !in
			}
		}
	}
	return in
}

// Stroke draws each segment of the path as a run of line-drawing runes.
// Width is ignored; a cell is the thinnest mark a terminal can make.
func (t *Terminal) Stroke(c color.Color, width float64) {
	defer t.clearPath()
	fg := tcell.FromImageColor(c)
	for i, sp := range t.subpaths {
		for j := 1; j < len(sp); j++ {
			t.segment(sp[j-1], sp[j], fg)
		}
		if t.closed[i] && len(sp) > 2 {
			t.segment(sp[len(sp)-1], sp[0], fg)
		}
	}
}

// segment walks the cells between a and b with Bresenham's algorithm.
func (t *Terminal) segment(a, b geom.Point, fg tcell.Color) {
	ch := lineRune(a, b)
	x0, y0 := t.Cell(a)
	x1, y1 := t.Cell(b)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		t.setRune(x0, y0, ch, fg)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// lineRune picks the drawing rune closest to the segment's direction.
func lineRune(a, b geom.Point) rune {
	deg := geom.Angle(a, b) * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	switch {
	case deg < 22.5 || deg >= 157.5:
		return '─'
	case deg < 67.5:
		return '╲'
	case deg < 112.5:
		return '│'
	default:
		return '╱'
	}
}

// Text writes s centered on at, keeping each cell's background.
func (t *Terminal) Text(s string, at geom.Point, size float64, c color.Color) {
	cx, cy := t.Cell(at)
	x := cx - runewidth.StringWidth(s)/2
	fg := tcell.FromImageColor(c)
	for _, r := range s {
		_, _, style, _ := t.Screen.GetContent(x, cy)
		t.Screen.SetContent(x, cy, r, nil, style.Foreground(fg))
		x += runewidth.RuneWidth(r)
	}
}

func (t *Terminal) setRune(x, y int, r rune, fg tcell.Color) {
	_, _, style, _ := t.Screen.GetContent(x, y)
	t.Screen.SetContent(x, y, r, nil, style.Foreground(fg))
}

func (t *Terminal) setBackground(x, y int, bg tcell.Color) {
	_, _, style, _ := t.Screen.GetContent(x, y)
	t.Screen.SetContent(x, y, ' ', nil, style.Background(bg))
}

func (t *Terminal) clearPath() {
	t.subpaths = t.subpaths[:0]
	t.closed = t.closed[:0]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
