package render

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incimap/internal/incident"
	"incimap/internal/layout"
)

func TestCanvasBasics(t *testing.T) {
	c := NewCanvas(0, 0)
	assert.Equal(t, 1, c.Width())
	assert.Equal(t, 1, c.Height())

	c = NewCanvas(5, 2)
	c.Set(1, 0, 'x', StyleNode)
	c.Set(10, 10, 'y', StyleNode)
	c.Text(2, 1, "hello", 2, StylePlain)

	r, st := c.At(1, 0)
	assert.Equal(t, 'x', r)
	assert.Equal(t, StyleNode, st)
	r, _ = c.At(-1, 0)
	assert.Equal(t, ' ', r)
	assert.Equal(t, []string{" x", "  he"}, c.Lines())
	assert.Equal(t, " x\n  he\n", c.String())
}

func TestCanvasRuns(t *testing.T) {
	c := NewCanvas(4, 1)
	c.Set(1, 0, 'a', StyleEdge)
	c.Set(2, 0, 'b', StyleEdge)
	assert.Equal(t, []Run{
		{Text: " ", Style: StylePlain},
		{Text: "ab", Style: StyleEdge},
		{Text: " ", Style: StylePlain},
	}, c.Runs(0))
	assert.Nil(t, c.Runs(3))
}

func TestCardSize(t *testing.T) {
	w, h := CardSize(false)
	assert.Equal(t, 30, w)
	assert.Equal(t, 7, h)
	_, h = CardSize(true)
	assert.Equal(t, 14, h)
}

func TestCellConversion(t *testing.T) {
	origin := layout.Point{X: -16, Y: -40}
	x, y := ToCell(layout.Point{X: 0, Y: 0}, origin)
	assert.Equal(t, 2, x)
	assert.Equal(t, 2, y)
	assert.Equal(t, layout.Point{X: 0, Y: 0}, ToMap(2, 2, origin))
}

func TestBounds(t *testing.T) {
	_, _, ok := Bounds(nil, false)
	assert.False(t, ok)

	min, max, ok := Bounds(incident.SampleMap().Nodes, false)
	require.True(t, ok)
	assert.Equal(t, layout.Point{X: 0, Y: 0}, min)
	assert.Equal(t, layout.Point{X: 240, Y: 300}, max)
}

func TestDrawCardsAndEdge(t *testing.T) {
	sc := Scene{
		Nodes: []incident.Node{
			{ID: "a", Title: "Seal wear", Owner: "ops", Position: layout.Point{X: 0, Y: 0}},
			{ID: "b", Title: "Leak", Position: layout.Point{X: 0, Y: 400}},
		},
		Edges:       []incident.Edge{{ID: "e", FromID: "a", ToID: "b"}},
		SelectionID: "b",
	}
	c := NewCanvas(40, 40)
	boxes := Draw(c, sc, layout.Point{})

	require.Len(t, boxes, 2)
	assert.Equal(t, Box{ID: "a", X: 0, Y: 0, W: 30, H: 7}, boxes[0])
	assert.Equal(t, Box{ID: "b", X: 0, Y: 20, W: 30, H: 7}, boxes[1])
	assert.True(t, boxes[1].Contains(5, 22))
	assert.False(t, boxes[1].Contains(30, 22))

	lines := c.Lines()
	assert.True(t, strings.HasPrefix(lines[0], "+----"), lines[0])
	assert.Contains(t, lines[1], "Seal wear")
	assert.Contains(t, lines[2], "@ops")
	assert.True(t, strings.HasPrefix(lines[20], "####"), "selected card uses a heavy border")

	r, st := c.At(15, 19)
	assert.Equal(t, '▼', r)
	assert.Equal(t, StyleEdge, st)
	r, _ = c.At(15, 10)
	assert.Equal(t, '│', r)
}

func TestDrawBarrierMarker(t *testing.T) {
	sc := Scene{
		Nodes: []incident.Node{
			{ID: "a", Title: "A", Position: layout.Point{X: 0, Y: 0}},
			{ID: "b", Title: "B", Position: layout.Point{X: 0, Y: 400}},
		},
		Edges:    []incident.Edge{{ID: "e", FromID: "a", ToID: "b"}},
		Barriers: []incident.Barrier{{ID: "x", UpstreamNodeID: "a", DownstreamNodeID: "b", Breached: true}},
	}
	c := NewCanvas(40, 40)
	Draw(c, sc, layout.Point{})
	assert.Contains(t, c.String(), "[X]")

	_, st := c.At(15, 13)
	assert.Equal(t, StyleBreached, st)

	sc.Barriers[0].Breached = false
	sc.Barriers[0].Description = "Inspection"
	c = NewCanvas(40, 40)
	Draw(c, sc, layout.Point{})
	assert.Contains(t, c.String(), "[=] Inspection")
}

func TestDrawSideBySide(t *testing.T) {
	sc := Scene{
		Nodes: []incident.Node{
			{ID: "a", Title: "A", Position: layout.Point{X: 0, Y: 0}},
			{ID: "b", Title: "B", Position: layout.Point{X: 400, Y: 0}},
		},
		Edges: []incident.Edge{{ID: "e", FromID: "a", ToID: "b"}},
	}
	c := NewCanvas(90, 10)
	Draw(c, sc, layout.Point{})
	r, _ := c.At(49, 3)
	assert.Equal(t, '►', r)
	r, _ = c.At(35, 3)
	assert.Equal(t, '─', r)
}

func TestFullFitsMap(t *testing.T) {
	sc := Scene{Nodes: incident.SampleMap().Nodes, Edges: incident.SampleMap().Edges, ShowDetails: false}
	c, err := Full(sc)
	require.NoError(t, err)
	out := c.String()
	assert.Contains(t, out, "Root Event")
	assert.Contains(t, out, "Follow-up Event")

	empty, err := Full(Scene{})
	require.NoError(t, err)
	assert.Equal(t, "", empty.String())
}

func TestFullRefusesHugeMaps(t *testing.T) {
	for name, pos := range map[string]layout.Point{
		"far":      {X: layout.MaxCoordinate, Y: layout.MaxCoordinate},
		"overflow": {X: 1e300, Y: 0},
		"nan":      {X: math.NaN(), Y: 0},
	} {
		t.Run(name, func(t *testing.T) {
			sc := Scene{Nodes: []incident.Node{
				{ID: "a", Title: "A", Position: layout.Point{X: -layout.MaxCoordinate}},
				{ID: "b", Title: "B", Position: pos},
			}}
			c, err := Full(sc)
			assert.ErrorIs(t, err, ErrTooLarge)
			assert.Nil(t, c)
		})
	}
}

func TestCardLines(t *testing.T) {
	n := incident.Node{
		Title:                "Leak",
		Description:          "line one\nline two",
		Timestamp:            "2024-05-01T10:00:00Z",
		PositiveConsequences: []string{"alarm"},
		NegativeConsequences: []string{"downtime"},
	}
	assert.Equal(t, []string{"Leak", "2024-05-01T10:00:00Z"}, CardLines(n, false))
	assert.Equal(t, []string{
		"Leak", "2024-05-01T10:00:00Z", "line one", "line two", "+ alarm", "- downtime",
	}, CardLines(n, true))
}
