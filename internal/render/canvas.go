// Package render draws incident maps onto a grid of character cells. The
// editor paints the visible window of the grid; text export paints all of it.
package render

import "strings"

// Style tags a cell so the caller can colour it.
type Style uint8

const (
	StylePlain Style = iota
	StyleNode
	StyleSelected
	StyleEditing
	StyleEdge
	StyleHolding
	StyleBreached
)

// Canvas is a fixed-size grid of runes with a style per cell.
type Canvas struct {
	width  int
	height int
	cells  [][]rune
	styles [][]Style
}

// NewCanvas returns a blank canvas, at least one cell in each direction.
func NewCanvas(width, height int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &Canvas{width: width, height: height}
	c.cells = make([][]rune, height)
	c.styles = make([][]Style, height)
	for y := range c.cells {
		c.cells[y] = make([]rune, width)
		c.styles[y] = make([]Style, width)
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

// Set writes r at x, y. Cells outside the canvas are ignored.
func (c *Canvas) Set(x, y int, r rune, s Style) {
	if !c.inside(x, y) {
		return
	}
	c.cells[y][x] = r
	c.styles[y][x] = s
}

// At returns the cell at x, y; outside cells read as blank.
func (c *Canvas) At(x, y int) (rune, Style) {
	if !c.inside(x, y) {
		return ' ', StylePlain
	}
	return c.cells[y][x], c.styles[y][x]
}

// Text writes s from x, y to the right, stopping at limit columns.
func (c *Canvas) Text(x, y int, s string, limit int, st Style) {
	i := 0
	for _, r := range s {
		if limit >= 0 && i >= limit {
			return
		}
		c.Set(x+i, y, r, st)
		i++
	}
}

// Lines returns each row with trailing blanks removed.
func (c *Canvas) Lines() []string {
	out := make([]string, c.height)
	for y, row := range c.cells {
		out[y] = strings.TrimRight(string(row), " ")
	}
	return out
}

// String joins Lines with newlines and drops trailing empty rows.
func (c *Canvas) String() string {
	lines := c.Lines()
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Runs splits row y into maximal spans of one style, for colouring.
func (c *Canvas) Runs(y int) []Run {
	if y < 0 || y >= c.height {
		return nil
	}
	var runs []Run
	start := 0
	for x := 1; x <= c.width; x++ {
		if x == c.width || c.styles[y][x] != c.styles[y][start] {
			runs = append(runs, Run{Text: string(c.cells[y][start:x]), Style: c.styles[y][start]})
			start = x
		}
	}
	return runs
}

// Run is a span of cells sharing a style.
type Run struct {
	Text  string
	Style Style
}
