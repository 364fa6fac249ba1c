package render

import (
	"errors"
	"math"
	"strings"

	"incimap/internal/incident"
	"incimap/internal/layout"
)

const (
	// CellWidth and CellHeight are the map units covered by one cell.
	CellWidth  = layout.GridSize
	CellHeight = 20

	margin = 2

	// MaxCells caps the area of a canvas built by Full.
	MaxCells = 1 << 22
)

// ErrTooLarge is returned when a map needs more than MaxCells cells.
var ErrTooLarge = errors.New("map too large to draw")

// Scene is everything that gets drawn.
type Scene struct {
	Nodes       []incident.Node
	Edges       []incident.Edge
	Barriers    []incident.Barrier
	SelectionID string
	EditingID   string
	ShowDetails bool
}

// Box is a node card in cell coordinates relative to the canvas.
type Box struct {
	ID   string
	X, Y int
	W, H int
}

// Contains reports whether cell x, y lies on the card.
func (b Box) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.W && y >= b.Y && y < b.Y+b.H
}

// CardSize returns the card size in cells.
func CardSize(showDetails bool) (w, h int) {
	mw, mh := layout.Footprint(layout.Item{}, showDetails)
	return int(mw / CellWidth), int(mh / CellHeight)
}

// ToCell converts a map position to a cell, with origin at cell 0, 0.
func ToCell(p, origin layout.Point) (x, y int) {
	return int(math.Floor((p.X - origin.X) / CellWidth)), int(math.Floor((p.Y - origin.Y) / CellHeight))
}

// ToMap converts a cell back to the map position of its top-left corner.
func ToMap(x, y int, origin layout.Point) layout.Point {
	return layout.Point{X: origin.X + float64(x)*CellWidth, Y: origin.Y + float64(y)*CellHeight}
}

// Bounds returns the map rectangle covered by all cards. ok is false for an
// empty map.
func Bounds(nodes []incident.Node, showDetails bool) (min, max layout.Point, ok bool) {
	if len(nodes) == 0 {
		return layout.Point{}, layout.Point{}, false
	}
	w, h := layout.Footprint(layout.Item{}, showDetails)
	min = layout.Point{X: math.Inf(1), Y: math.Inf(1)}
	max = layout.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, n := range nodes {
		min.X = math.Min(min.X, n.Position.X)
		min.Y = math.Min(min.Y, n.Position.Y)
		max.X = math.Max(max.X, n.Position.X+w)
		max.Y = math.Max(max.Y, n.Position.Y+h)
	}
	return min, max, true
}

// Draw paints sc onto c with the map point origin at the top-left cell.
// Edges go underneath cards. The card boxes are returned for hit testing.
func Draw(c *Canvas, sc Scene, origin layout.Point) []Box {
	w, h := CardSize(sc.ShowDetails)
	boxes := make([]Box, len(sc.Nodes))
	byID := make(map[string]Box, len(sc.Nodes))
	for i, n := range sc.Nodes {
		x, y := ToCell(n.Position, origin)
		boxes[i] = Box{ID: n.ID, X: x, Y: y, W: w, H: h}
		byID[n.ID] = boxes[i]
	}

	for _, e := range sc.Edges {
		from, okFrom := byID[e.FromID]
		to, okTo := byID[e.ToID]
		if !okFrom || !okTo {
			continue
		}
		path := route(from, to)
		drawPath(c, path, StyleEdge)
		if b, ok := barrierOn(sc.Barriers, e); ok {
			drawBarrier(c, path, b, b.ID == sc.SelectionID)
		}
	}

	for i, n := range sc.Nodes {
		style := StyleNode
		switch n.ID {
		case sc.EditingID:
			style = StyleEditing
		case sc.SelectionID:
			style = StyleSelected
		}
		drawCard(c, boxes[i], n, style, sc.ShowDetails)
	}
	return boxes
}

// Full renders the whole map on a canvas just large enough to hold it.
func Full(sc Scene) (*Canvas, error) {
	min, max, ok := Bounds(sc.Nodes, sc.ShowDetails)
	if !ok {
		return NewCanvas(1, 1), nil
	}
	w := (max.X-min.X)/CellWidth + 2*margin + 1
	h := (max.Y-min.Y)/CellHeight + 2*margin + 1
	if !(w*h <= MaxCells) {
		return nil, ErrTooLarge
	}
	origin := min.Add(-margin*CellWidth, -margin*CellHeight)
	x, y := ToCell(max, origin)
	c := NewCanvas(x+margin+1, y+margin+1)
	Draw(c, sc, origin)
	return c, nil
}

func barrierOn(barriers []incident.Barrier, e incident.Edge) (incident.Barrier, bool) {
	for _, b := range barriers {
		if b.Guards(e) {
			return b, true
		}
	}
	return incident.Barrier{}, false
}

type cell struct{ x, y int }

// route returns the corner points of an orthogonal path from one card to
// another. Cards stacked vertically connect bottom to top; cards side by
// side connect edge to edge.
func route(from, to Box) []cell {
	overlapY := to.Y < from.Y+from.H && from.Y < to.Y+to.H
	if overlapY {
		sy, ey := from.Y+from.H/2, to.Y+to.H/2
		var sx, ex int
		if to.X >= from.X {
			sx, ex = from.X+from.W, to.X-1
		} else {
			sx, ex = from.X-1, to.X+to.W
		}
		mx := (sx + ex) / 2
		return compact([]cell{{sx, sy}, {mx, sy}, {mx, ey}, {ex, ey}})
	}

	var sy, ey int
	if to.Y >= from.Y {
		sy, ey = from.Y+from.H, to.Y-1
	} else {
		sy, ey = from.Y-1, to.Y+to.H
	}
	sx, ex := from.X+from.W/2, to.X+to.W/2
	my := (sy + ey) / 2
	return compact([]cell{{sx, sy}, {sx, my}, {ex, my}, {ex, ey}})
}

func compact(pts []cell) []cell {
	out := pts[:1]
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// expand lists every cell along the path in order.
func expand(path []cell) []cell {
	cells := []cell{path[0]}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		dx, dy := sign(b.x-a.x), sign(b.y-a.y)
		for p := a; p != b; {
			p = cell{p.x + dx, p.y + dy}
			cells = append(cells, p)
		}
	}
	return cells
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func drawPath(c *Canvas, path []cell, st Style) {
	cells := expand(path)
	for i, p := range cells {
		var r rune
		switch {
		case i == len(cells)-1:
			r = arrowHead(cells)
		case i > 0 && cornerAt(cells, i):
			r = cornerRune(cells[i-1], p, cells[i+1])
		default:
			r = lineRune(cells, i)
		}
		c.Set(p.x, p.y, r, st)
	}
}

func cornerAt(cells []cell, i int) bool {
	prev, next := cells[i-1], cells[i+1]
	return prev.x != next.x && prev.y != next.y
}

func lineRune(cells []cell, i int) rune {
	var other cell
	if i+1 < len(cells) {
		other = cells[i+1]
	} else if i > 0 {
		other = cells[i-1]
	} else {
		return '│'
	}
	if other.y == cells[i].y {
		return '─'
	}
	return '│'
}

func arrowHead(cells []cell) rune {
	last := cells[len(cells)-1]
	if len(cells) == 1 {
		return '▼'
	}
	prev := cells[len(cells)-2]
	switch {
	case last.y > prev.y:
		return '▼'
	case last.y < prev.y:
		return '▲'
	case last.x > prev.x:
		return '►'
	default:
		return '◄'
	}
}

func cornerRune(prev, cur, next cell) rune {
	if prev.x != cur.x {
		// horizontal in, vertical out
		switch {
		case prev.x < cur.x && cur.y < next.y:
			return '┐'
		case prev.x < cur.x:
			return '┘'
		case cur.y < next.y:
			return '┌'
		default:
			return '└'
		}
	}
	switch {
	case prev.y < cur.y && cur.x < next.x:
		return '└'
	case prev.y < cur.y:
		return '┘'
	case cur.x < next.x:
		return '┌'
	default:
		return '┐'
	}
}

// BarrierLabel is the marker drawn on a guarded edge.
func BarrierLabel(b incident.Barrier) string {
	if b.Breached {
		return "[X]"
	}
	return "[=]"
}

func drawBarrier(c *Canvas, path []cell, b incident.Barrier, selected bool) {
	cells := expand(path)
	mid := cells[len(cells)/2]
	st := StyleHolding
	if b.Breached {
		st = StyleBreached
	}
	if selected {
		st = StyleSelected
	}
	label := BarrierLabel(b)
	if b.Description != "" {
		label += " " + b.Description
	}
	c.Text(mid.x-1, mid.y, label, 24, st)
}

func drawCard(c *Canvas, b Box, n incident.Node, st Style, details bool) {
	corner, horizontal, vertical := '+', '-', '|'
	switch st {
	case StyleSelected:
		corner, horizontal, vertical = '#', '#', '#'
	case StyleEditing:
		corner, horizontal, vertical = '*', '=', '‖'
	}

	for y := b.Y; y < b.Y+b.H; y++ {
		for x := b.X; x < b.X+b.W; x++ {
			top, bottom := y == b.Y, y == b.Y+b.H-1
			left, right := x == b.X, x == b.X+b.W-1
			switch {
			case (top || bottom) && (left || right):
				c.Set(x, y, corner, st)
			case top || bottom:
				c.Set(x, y, horizontal, st)
			case left || right:
				c.Set(x, y, vertical, st)
			default:
				c.Set(x, y, ' ', st)
			}
		}
	}

	inner := b.W - 2
	for i, line := range CardLines(n, details) {
		row := b.Y + 1 + i
		if row >= b.Y+b.H-1 {
			break
		}
		c.Text(b.X+1, row, line, inner, st)
	}
}

// CardLines returns the text shown inside a node card.
func CardLines(n incident.Node, details bool) []string {
	lines := []string{n.Title}
	var meta []string
	if n.Owner != "" {
		meta = append(meta, "@"+n.Owner)
	}
	if n.Timestamp != "" {
		meta = append(meta, n.Timestamp)
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, " "))
	}
	if !details {
		return lines
	}
	if n.Description != "" {
		lines = append(lines, strings.Split(n.Description, "\n")...)
	}
	for _, p := range n.PositiveConsequences {
		lines = append(lines, "+ "+p)
	}
	for _, m := range n.NegativeConsequences {
		lines = append(lines, "- "+m)
	}
	return lines
}
