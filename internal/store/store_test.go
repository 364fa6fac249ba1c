package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incimap/internal/history"
	"incimap/internal/incident"
	"incimap/internal/layout"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	opts = append([]Option{WithHistoryOptions(history.WithClock(clock.now))}, opts...)
	return New(opts...), clock
}

func requireEdgesResolve(t *testing.T, s *Store) {
	t.Helper()
	ids := map[string]bool{}
	for _, n := range s.Nodes() {
		ids[n.ID] = true
	}
	for _, e := range s.Edges() {
		require.True(t, ids[e.FromID], "edge %s has dangling fromId %s", e.ID, e.FromID)
		require.True(t, ids[e.ToID], "edge %s has dangling toId %s", e.ID, e.ToID)
	}
}

func TestNewStoreStartsEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Empty(t, s.Nodes())
	assert.Equal(t, incident.DefaultTitle, s.Title())
	assert.Equal(t, Idle, s.State())
	assert.False(t, s.CanUndo())
}

func TestScenarioAddFirstNode(t *testing.T) {
	s, _ := newTestStore(t)
	s.NewMap()
	id := s.AddChild("")

	require.NotEmpty(t, id)
	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Edges())
	assert.Equal(t, id, s.SelectionID())
	assert.Equal(t, id, s.EditingID())
	assert.Equal(t, Editing, s.State())

	n, ok := s.Node(id)
	require.True(t, ok)
	assert.Equal(t, PlaceholderTitle, n.Title)
	assert.Equal(t, layout.Point{}, n.Position)
}

func TestScenarioAddChild(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddChild("")
	b := s.AddChild(a)

	edges := s.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, a, edges[0].FromID)
	assert.Equal(t, b, edges[0].ToID)
}

func TestAddChildFallsBackToSelection(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddChild("")
	b := s.AddChild("")

	edges := s.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, incident.Edge{ID: edges[0].ID, FromID: a, ToID: b}, edges[0])
}

func TestAddChildUnknownParent(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddChild("missing")
	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Edges())
	assert.Equal(t, id, s.SelectionID())
}

func TestScenarioAddSibling(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddChild("")
	b := s.AddChild(a)
	c := s.AddSibling(b)
	require.NotEmpty(t, c)

	children := map[string]bool{}
	for _, e := range s.Edges() {
		if e.FromID == a {
			children[e.ToID] = true
		}
	}
	assert.Equal(t, map[string]bool{b: true, c: true}, children)
	assert.Equal(t, c, s.EditingID())
	requireEdgesResolve(t, s)
}

func TestAddSiblingWithoutParent(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddChild("")
	c := s.AddSibling(a)

	assert.Len(t, s.Nodes(), 2)
	assert.Empty(t, s.Edges())
	na, _ := s.Node(a)
	nc, _ := s.Node(c)
	assert.Greater(t, nc.Position.X, na.Position.X)
}

func TestAddSiblingFallbacks(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Empty(t, s.AddSibling("missing"))
	assert.Empty(t, s.Nodes())

	id := s.AddSibling("")
	require.NotEmpty(t, id, "nothing selected behaves like addChild")
	assert.Len(t, s.Nodes(), 1)
}

func TestScenarioRenameEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddChild("")

	changed, err := s.RenameNode(id, "   ")
	assert.False(t, changed)
	assert.True(t, errors.Is(err, ErrEmptyTitle))

	n, _ := s.Node(id)
	assert.Equal(t, PlaceholderTitle, n.Title)
}

func TestRenameTrimsAndSkipsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddChild("")

	changed, err := s.RenameNode(id, "  Pump seal wear ")
	require.NoError(t, err)
	assert.True(t, changed)
	n, _ := s.Node(id)
	assert.Equal(t, "Pump seal wear", n.Title)

	past, _ := s.HistoryDepth()
	changed, err = s.RenameNode(id, "Pump seal wear")
	require.NoError(t, err)
	assert.False(t, changed)
	after, _ := s.HistoryDepth()
	assert.Equal(t, past, after, "unchanged title is not an undo step")

	changed, err = s.RenameNode("missing", "x")
	assert.NoError(t, err)
	assert.False(t, changed)
}

func TestScenarioCascadeDelete(t *testing.T) {
	s, _ := newTestStore(t)
	parent := s.AddChild("")
	child := s.AddChild(parent)
	s.AddChild(child)

	require.True(t, s.DeleteNode(parent))
	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.Edges())
	assert.Equal(t, Idle, s.State())
}

func TestDeleteKeepsUnreachable(t *testing.T) {
	s, _ := newTestStore(t)
	root := s.AddChild("")
	left := s.AddChild(root)
	right := s.AddSibling(left)
	leaf := s.AddChild(left)

	s.Select(right)
	require.True(t, s.DeleteNode(left))

	_, ok := s.Node(leaf)
	assert.False(t, ok)
	_, ok = s.Node(root)
	assert.True(t, ok)
	_, ok = s.Node(right)
	assert.True(t, ok)
	assert.Equal(t, right, s.SelectionID(), "selection outside the subtree is kept")
	requireEdgesResolve(t, s)
}

func TestDeleteIsCycleSafe(t *testing.T) {
	s, _ := newTestStore(t)
	doc := incident.Document{
		Nodes: []incident.Node{
			{ID: "a", Title: "A", Position: layout.Point{X: 0, Y: 0}},
			{ID: "b", Title: "B", Position: layout.Point{X: 400, Y: 0}},
			{ID: "c", Title: "C", Position: layout.Point{X: 800, Y: 0}},
			{ID: "d", Title: "D", Position: layout.Point{X: 0, Y: 800}},
		},
		Edges: []incident.Edge{
			{ID: "ab", FromID: "a", ToID: "b"},
			{ID: "bc", FromID: "b", ToID: "c"},
			{ID: "ca", FromID: "c", ToID: "a"},
			{ID: "dc", FromID: "d", ToID: "c"},
		},
	}
	s.LoadMap(doc)

	require.True(t, s.DeleteNode("b"))
	nodes := s.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "d", nodes[0].ID)
	assert.Empty(t, s.Edges())
}

func TestDeleteUnknownIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddChild("")
	past, _ := s.HistoryDepth()
	assert.False(t, s.DeleteNode("missing"))
	after, _ := s.HistoryDepth()
	assert.Equal(t, past, after)
}

func TestDeleteSelection(t *testing.T) {
	s, _ := newTestStore(t)
	assert.False(t, s.DeleteSelection())

	a := s.AddChild("")
	s.AddChild(a)
	barrier := s.AddBarrierForFirstDownstream(a)
	require.NotEmpty(t, barrier)

	require.True(t, s.DeleteSelection())
	assert.Empty(t, s.Barriers())
	assert.Len(t, s.Nodes(), 2, "a selected barrier is removed, not its nodes")

	s.Select(a)
	require.True(t, s.DeleteSelection())
	assert.Empty(t, s.Nodes())
}

func TestScenarioRejectedLoad(t *testing.T) {
	s, _ := newTestStore(t)
	s.LoadMap(incident.SampleMap())
	before := s.Document()
	sel := s.SelectionID()

	raw := `{"schemaVersion": 2, "nodes": [], "edges": []}`
	err := s.LoadData([]byte(raw), incident.FormatJSON)

	var se *incident.SchemaError
	require.True(t, errors.As(err, &se))
	assert.True(t, before.Equal(s.Document()))
	assert.Equal(t, sel, s.SelectionID())
}

func TestLoadMap(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddChild("")
	version := s.LayoutVersion()

	s.LoadMap(incident.SampleMap())
	assert.Equal(t, "root", s.SelectionID())
	assert.Equal(t, Selected, s.State())
	assert.False(t, s.CanUndo(), "loading is not undoable")
	assert.Greater(t, s.LayoutVersion(), version)
	assert.Equal(t, "Sample Incident Chain", s.Title())

	s.LoadMap(incident.Document{})
	assert.Equal(t, Idle, s.State())
	assert.NotNil(t, s.Barriers())
}

func TestLoadDataYAML(t *testing.T) {
	s, _ := newTestStore(t)
	data, err := incident.SerializeYAML(incident.SampleMap())
	require.NoError(t, err)

	require.NoError(t, s.LoadData(data, incident.FormatYAML))
	assert.Len(t, s.Nodes(), 2)
}

func TestNewMapKeepsDetailsMode(t *testing.T) {
	s, _ := newTestStore(t, WithShowDetails(false))
	s.LoadMap(incident.SampleMap())
	s.AddChild("root")

	s.NewMap()
	assert.Empty(t, s.Nodes())
	assert.False(t, s.ShowDetails())
	assert.False(t, s.CanUndo())
	assert.Equal(t, incident.DefaultTitle, s.Title())
	assert.Equal(t, Idle, s.State())
}

func TestRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddChild("")
	b := s.AddChild(a)
	s.AddSibling(b)
	_, err := s.RenameNode(a, "Root cause")
	require.NoError(t, err)
	owner := "ops"
	s.UpdateNodeData(b, NodePatch{Owner: &owner, NegativeConsequences: []string{"downtime"}})
	bar := s.AddBarrierForFirstDownstream(a)
	s.UpdateBarrierData(bar, BarrierPatch{BreachedItems: []string{"alarm muted"}})
	s.SetMapTitle("Pump incident")

	doc := s.Document()
	data, err := incident.Serialize(doc)
	require.NoError(t, err)
	parsed, err := incident.Parse(data)
	require.NoError(t, err)
	assert.True(t, doc.Equal(parsed))
}

func TestMoveNode(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddChild("")

	require.True(t, s.MoveNode(id, layout.Point{X: 101, Y: 37}))
	n, _ := s.Node(id)
	assert.Equal(t, layout.Point{X: 104, Y: 40}, n.Position)

	assert.False(t, s.MoveNode(id, layout.Point{X: 103, Y: 39}), "same snapped cell")
	assert.False(t, s.MoveNode("missing", layout.Point{}))

	past, _ := s.HistoryDepth()
	s.MoveNode(id, layout.Point{X: 200, Y: 200})
	s.MoveNode(id, layout.Point{X: 208, Y: 200})
	after, _ := s.HistoryDepth()
	assert.Equal(t, past+2, after, "moves are not coalesced")
}

func TestMoveNodeClampsToRange(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddChild("")

	require.True(t, s.MoveNode(id, layout.Point{X: 1e300, Y: -5e6}))
	n, _ := s.Node(id)
	assert.Equal(t, layout.Point{X: layout.MaxCoordinate, Y: -layout.MaxCoordinate}, n.Position)
	assert.False(t, s.NudgeNodeBy(id, layout.GridSize, 0), "already at the edge")

	_, err := incident.Serialize(s.Document())
	assert.NoError(t, err)
}

func TestNudgeSnaps(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddChild("")

	assert.False(t, s.NudgeNodeBy(id, 3, 0), "rounds back to the same cell")
	require.True(t, s.NudgeNodeBy(id, layout.GridSize, -layout.GridSize))
	n, _ := s.Node(id)
	assert.Equal(t, layout.Point{X: 8, Y: -8}, n.Position)
}

func TestDebounceLaw(t *testing.T) {
	s, clock := newTestStore(t)
	id := s.AddChild("")
	base, _ := s.HistoryDepth()

	for i := 0; i < 10; i++ {
		require.True(t, s.NudgeNodeBy(id, layout.GridSize, 0))
		clock.advance(20 * time.Millisecond)
	}
	past, _ := s.HistoryDepth()
	assert.Equal(t, base+1, past, "one burst is one entry")

	clock.advance(history.DefaultWindow + time.Millisecond)
	require.True(t, s.NudgeNodeBy(id, layout.GridSize, 0))
	past, _ = s.HistoryDepth()
	assert.Equal(t, base+2, past)

	n, _ := s.Node(id)
	require.True(t, s.Undo())
	moved, _ := s.Node(id)
	assert.Equal(t, n.Position.X-layout.GridSize, moved.Position.X)
	require.True(t, s.Undo())
	start, _ := s.Node(id)
	assert.Equal(t, float64(0), start.Position.X)
}

func TestUndoRedoLaw(t *testing.T) {
	ops := map[string]func(s *Store, a, b string){
		"addChild":   func(s *Store, a, _ string) { s.AddChild(a) },
		"addSibling": func(s *Store, _, b string) { s.AddSibling(b) },
		"rename":     func(s *Store, a, _ string) { _, _ = s.RenameNode(a, "Renamed") },
		"move":       func(s *Store, _, b string) { s.MoveNode(b, layout.Point{X: 900, Y: 900}) },
		"nudge":      func(s *Store, a, _ string) { s.NudgeNodeBy(a, 0, -layout.GridSize) },
		"delete":     func(s *Store, a, _ string) { s.DeleteNode(a) },
		"update": func(s *Store, a, _ string) {
			d := "details"
			s.UpdateNodeData(a, NodePatch{Description: &d})
		},
		"addBarrier": func(s *Store, a, _ string) { s.AddBarrierForFirstDownstream(a) },
		"title":      func(s *Store, _, _ string) { s.SetMapTitle("Another") },
		"clearTitle": func(s *Store, _, _ string) { s.SetMapTitle("  ") },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			s, _ := newTestStore(t)
			a := s.AddChild("")
			b := s.AddChild(a)
			s.FinishEditing()

			pre := s.Document()
			preSel := s.SelectionID()
			op(s, a, b)
			post := s.Document()
			postSel := s.SelectionID()
			require.False(t, pre.Equal(post), "operation must change the map")

			require.True(t, s.Undo())
			assert.True(t, pre.Equal(s.Document()))
			assert.Equal(t, preSel, s.SelectionID())
			assert.Empty(t, s.EditingID())

			require.True(t, s.Redo())
			assert.True(t, post.Equal(s.Document()))
			assert.Equal(t, postSel, s.SelectionID())
			requireEdgesResolve(t, s)
		})
	}
}

func TestFreshEditDropsRedo(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddChild("")
	s.AddChild(a)
	require.True(t, s.Undo())
	assert.True(t, s.CanRedo())

	s.SetMapTitle("Branch")
	assert.False(t, s.CanRedo())
	assert.False(t, s.Redo())
}

func TestUndoEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
}

func TestSetMapTitle(t *testing.T) {
	s, _ := newTestStore(t)
	assert.False(t, s.SetMapTitle(incident.DefaultTitle))

	require.True(t, s.SetMapTitle("  Pump  "))
	assert.Equal(t, "Pump", s.Title())

	require.True(t, s.SetMapTitle(""))
	assert.Nil(t, s.Metadata(), "blank title clears the metadata")
	assert.False(t, s.SetMapTitle(" "))
}

func TestUpdateNodeData(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddChild("")

	owner := "ops"
	require.True(t, s.UpdateNodeData(id, NodePatch{Owner: &owner, PositiveConsequences: []string{"caught early"}}))
	n, _ := s.Node(id)
	assert.Equal(t, "ops", n.Owner)
	assert.Equal(t, []string{"caught early"}, n.PositiveConsequences)
	assert.Equal(t, PlaceholderTitle, n.Title)

	assert.False(t, s.UpdateNodeData(id, NodePatch{Owner: &owner}), "unchanged merge")
	assert.False(t, s.UpdateNodeData("missing", NodePatch{Owner: &owner}))

	require.True(t, s.UpdateNodeData(id, NodePatch{PositiveConsequences: []string{}}))
	n, _ = s.Node(id)
	assert.Empty(t, n.PositiveConsequences)
}

func TestSelectionStateMachine(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddChild("")
	assert.Equal(t, Editing, s.State())

	s.FinishEditing()
	assert.Equal(t, Selected, s.State())
	assert.Equal(t, a, s.SelectionID())

	require.True(t, s.StartEditing(a))
	s.Select(a)
	assert.Equal(t, Selected, s.State(), "select always leaves edit mode")

	s.ClearSelection()
	assert.Equal(t, Idle, s.State())

	assert.False(t, s.StartEditing("missing"))
	s.Select("missing")
	assert.Equal(t, Idle, s.State())

	require.True(t, s.StartEditing(a))
	assert.Equal(t, a, s.SelectionID())
	s.Select("")
	assert.Empty(t, s.EditingID(), "clearing selection clears editing")
}

func TestSelectionIsNotAnUndoStep(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddChild("")
	b := s.AddChild(a)
	past, _ := s.HistoryDepth()

	s.Select(a)
	s.Select(b)
	after, _ := s.HistoryDepth()
	assert.Equal(t, past, after)
}

func TestSelectNext(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Empty(t, s.SelectNext(1))

	s.LoadMap(incident.SampleMap())
	assert.Equal(t, "child", s.SelectNext(1))
	assert.Equal(t, "root", s.SelectNext(1))
	assert.Equal(t, "child", s.SelectNext(-1))

	s.ClearSelection()
	assert.Equal(t, "child", s.SelectNext(-1))
}

func TestBarrierLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	s.LoadMap(incident.SampleMap())

	assert.Empty(t, s.AddBarrierForFirstDownstream("child"), "no outgoing edge")

	id := s.AddBarrierForFirstDownstream("root")
	require.NotEmpty(t, id)
	assert.Equal(t, id, s.SelectionID())
	b, ok := s.Barrier(id)
	require.True(t, ok)
	assert.Equal(t, "root", b.UpstreamNodeID)
	assert.Equal(t, "child", b.DownstreamNodeID)
	assert.False(t, b.Breached)
	assert.NotNil(t, b.BreachedItems)

	s.Select("root")
	past, _ := s.HistoryDepth()
	assert.Equal(t, id, s.AddBarrierForFirstDownstream("root"), "existing barrier is reused")
	assert.Len(t, s.Barriers(), 1)
	assert.Equal(t, id, s.SelectionID())
	after, _ := s.HistoryDepth()
	assert.Equal(t, past, after)

	edge := s.Edges()[0]
	onEdge, ok := s.BarrierOnEdge(edge)
	require.True(t, ok)
	assert.Equal(t, id, onEdge.ID)

	require.True(t, s.ToggleBreached(id))
	b, _ = s.Barrier(id)
	assert.True(t, b.Breached)

	desc := "Seal inspection"
	require.True(t, s.UpdateBarrierData(id, BarrierPatch{Description: &desc, BreachedItems: []string{"skipped"}}))
	assert.False(t, s.UpdateBarrierData(id, BarrierPatch{Description: &desc}))
	b, _ = s.Barrier(id)
	assert.Equal(t, "Seal inspection", b.Description)
	assert.Equal(t, []string{"skipped"}, b.BreachedItems)

	require.True(t, s.RemoveBarrier(id))
	assert.Empty(t, s.Barriers())
	assert.Equal(t, Idle, s.State())
	assert.False(t, s.RemoveBarrier(id))
}

func TestBarriersSurviveNodeDelete(t *testing.T) {
	s, _ := newTestStore(t)
	s.LoadMap(incident.SampleMap())
	id := s.AddBarrierForFirstDownstream("root")

	require.True(t, s.DeleteNode("root"))
	_, ok := s.Barrier(id)
	assert.True(t, ok, "orphaned barriers stay inert")

	_, err := incident.Serialize(s.Document())
	assert.NoError(t, err, "an orphaned barrier still saves")
}

func TestBarrierDoesNotRelayout(t *testing.T) {
	s, _ := newTestStore(t)
	s.LoadMap(incident.SampleMap())
	version := s.LayoutVersion()
	s.AddBarrierForFirstDownstream("root")
	assert.Equal(t, version, s.LayoutVersion())
}

func TestToggleShowDetailsRelayout(t *testing.T) {
	s, _ := newTestStore(t, WithShowDetails(false))
	s.LoadMap(incident.Document{
		Nodes: []incident.Node{
			{ID: "a", Title: "A", Position: layout.Point{X: 0, Y: 0}},
			{ID: "b", Title: "B", Position: layout.Point{X: 0, Y: 200}},
		},
	})
	b, _ := s.Node("b")
	require.Equal(t, layout.Point{X: 0, Y: 200}, b.Position, "no overlap at compact height")
	version := s.LayoutVersion()

	s.ToggleShowDetails()
	assert.True(t, s.ShowDetails())
	b, _ = s.Node("b")
	assert.NotEqual(t, layout.Point{X: 0, Y: 200}, b.Position)
	assert.Greater(t, s.LayoutVersion(), version)
	assert.False(t, s.CanUndo(), "display mode is not an undo step")
}

func TestInvariantsUnderMixedOperations(t *testing.T) {
	s, clock := newTestStore(t)
	root := s.AddChild("")
	var ids []string
	parent := root
	for i := 0; i < 6; i++ {
		id := s.AddChild(parent)
		ids = append(ids, id)
		if i%2 == 0 {
			ids = append(ids, s.AddSibling(id))
		}
		parent = id
	}
	for _, id := range ids {
		s.NudgeNodeBy(id, layout.GridSize, layout.GridSize)
		clock.advance(time.Second)
	}
	s.DeleteNode(ids[3])
	requireEdgesResolve(t, s)
	s.Undo()
	requireEdgesResolve(t, s)
	s.Redo()
	requireEdgesResolve(t, s)

	for _, n := range s.Nodes() {
		assert.Equal(t, layout.Snap(n.Position), n.Position, "positions stay on the grid")
	}
}
