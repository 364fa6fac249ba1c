package tui

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"incimap/internal/layout"
	"incimap/internal/render"
)

// canvasHeight leaves room for the status line.
func (m Model) canvasHeight() int {
	h := m.height - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) canvasWidth() int {
	if m.width < 1 {
		return 1
	}
	return m.width
}

// recentre puts the selected card, or the middle of the map, in the middle
// of the window.
func (m *Model) recentre() {
	m.seenLayout = m.store.LayoutVersion()
	w, h := render.CardSize(m.store.ShowDetails())
	var centre layout.Point
	if n, ok := m.store.Node(m.store.SelectionID()); ok {
		centre = n.Position.Add(float64(w*render.CellWidth)/2, float64(h*render.CellHeight)/2)
	} else if min, max, ok := render.Bounds(m.store.Nodes(), m.store.ShowDetails()); ok {
		centre = layout.Point{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2}
	}
	m.origin = alignToCells(layout.Point{
		X: centre.X - float64(m.canvasWidth()*render.CellWidth)/2,
		Y: centre.Y - float64(m.canvasHeight()*render.CellHeight)/2,
	})
}

func alignToCells(p layout.Point) layout.Point {
	return layout.Point{
		X: math.Floor(p.X/render.CellWidth) * render.CellWidth,
		Y: math.Floor(p.Y/render.CellHeight) * render.CellHeight,
	}
}

// ensureVisible scrolls the smallest distance that brings card id fully
// into the window.
func (m *Model) ensureVisible(id string) {
	n, ok := m.store.Node(id)
	if !ok {
		return
	}
	w, h := render.CardSize(m.store.ShowDetails())
	x, y := render.ToCell(n.Position, m.origin)
	cw, ch := m.canvasWidth(), m.canvasHeight()
	dx, dy := 0, 0
	switch {
	case x < 0:
		dx = x
	case x+w > cw && w <= cw:
		dx = x + w - cw
	case x+w > cw:
		dx = x
	}
	switch {
	case y < 0:
		dy = y
	case y+h > ch && h <= ch:
		dy = y + h - ch
	case y+h > ch:
		dy = y
	}
	m.pan(dx, dy)
}

// pan shifts the window by dx, dy cells.
func (m *Model) pan(dx, dy int) {
	m.origin = m.origin.Add(float64(dx*render.CellWidth), float64(dy*render.CellHeight))
}

func (m *Model) handlePan(key string, speed int) {
	switch key {
	case "left", "shift+left", "h", "H":
		m.pan(-speed, 0)
	case "right", "shift+right", "l", "L":
		m.pan(speed, 0)
	case "up", "shift+up", "k", "K":
		m.pan(0, -speed)
	case "down", "shift+down", "j", "J":
		m.pan(0, speed)
	}
}

// nodeAt returns the topmost card under cell x, y.
func (m Model) nodeAt(x, y int) (string, bool) {
	w, h := render.CardSize(m.store.ShowDetails())
	nodes := m.store.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		cx, cy := render.ToCell(nodes[i].Position, m.origin)
		b := render.Box{ID: nodes[i].ID, X: cx, Y: cy, W: w, H: h}
		if b.Contains(x, y) {
			return b.ID, true
		}
	}
	return "", false
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.mode != ModeNormal || m.help {
		return
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if msg.Y >= m.canvasHeight() {
		return
	}
	if id, ok := m.nodeAt(msg.X, msg.Y); ok {
		m.store.Select(id)
		return
	}
	m.store.ClearSelection()
}
