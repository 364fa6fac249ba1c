package store

import (
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"incimap/internal/history"
	"incimap/internal/incident"
	"incimap/internal/layout"
)

// NewMap replaces everything with an empty map. The details mode survives;
// history does not.
func (s *Store) NewMap() {
	s.cur = fromDocument(incident.EmptyMap())
	s.editingID = ""
	s.hist.Reset()
	s.layoutVersion++
	s.logger.Info("new map")
}

// LoadMap replaces everything with d, which must already be valid. The
// first node is selected and history starts over.
func (s *Store) LoadMap(d incident.Document) {
	next := fromDocument(d)
	s.relayout(next.nodes)
	if len(next.nodes) > 0 {
		next.selectionID = next.nodes[0].ID
	}
	s.cur = next
	s.editingID = ""
	s.hist.Reset()
	s.layoutVersion++
	s.logger.Info("map loaded",
		zap.Int("nodes", len(next.nodes)),
		zap.Int("edges", len(next.edges)),
		zap.Int("barriers", len(next.barriers)),
	)
}

// LoadData parses data in format f and loads it. On a validation failure
// the error is a *incident.SchemaError and the live state is untouched.
func (s *Store) LoadData(data []byte, f incident.Format) error {
	d, err := f.Decode(data)
	if err != nil {
		s.logger.Warn("map rejected", zap.Error(err), zap.Int("issues", issueCount(err)))
		return err
	}
	s.LoadMap(d)
	return nil
}

func issueCount(err error) int {
	var se *incident.SchemaError
	if errors.As(err, &se) {
		return len(se.Issues)
	}
	return 1
}

func newNode(id string, pos layout.Point) incident.Node {
	return incident.Node{
		ID:                   id,
		Title:                PlaceholderTitle,
		PositiveConsequences: []string{},
		NegativeConsequences: []string{},
		Position:             layout.Snap(pos),
	}
}

// AddChild creates a placeholder node below parentID, linked to it by a new
// edge. An empty parentID means the current selection. Without a resolvable
// parent the node lands at the origin with no edge. The new node is
// selected and put into edit mode; its id is returned.
func (s *Store) AddChild(parentID string) string {
	if parentID == "" {
		parentID = s.cur.selectionID
	}
	next := s.cur.Clone()
	id := s.newID("node")

	pos := layout.Point{}
	parent := indexOfNode(next.nodes, parentID)
	if parent >= 0 {
		pos = next.nodes[parent].Position.Add(0, childOffsetY)
	}
	next.nodes = append(next.nodes, newNode(id, pos))
	if parent >= 0 {
		next.edges = append(next.edges, incident.Edge{
			ID:     s.newID("edge"),
			FromID: next.nodes[parent].ID,
			ToID:   id,
		})
	}
	next.selectionID = id
	s.relayout(next.nodes)
	s.commit("addChild", next, history.Immediate)
	s.editingID = id
	return id
}

// AddSibling creates a placeholder node next to siblingID, sharing its
// first parent. An empty siblingID means the current selection, and with
// nothing selected it behaves like AddChild. An unknown sibling creates
// nothing and returns "".
func (s *Store) AddSibling(siblingID string) string {
	if siblingID == "" {
		siblingID = s.cur.selectionID
	}
	if siblingID == "" {
		return s.AddChild("")
	}
	ref := s.indexOfNode(siblingID)
	if ref < 0 {
		return ""
	}

	next := s.cur.Clone()
	id := s.newID("node")
	sibling := next.nodes[ref]

	parentID := ""
	if i := slices.IndexFunc(next.edges, func(e incident.Edge) bool { return e.ToID == siblingID }); i >= 0 {
		parentID = next.edges[i].FromID
	}
	pos := sibling.Position.Add(siblingOffsetX, 0)
	if p := indexOfNode(next.nodes, parentID); p >= 0 {
		pos.Y = next.nodes[p].Position.Y + childOffsetY
	}
	next.nodes = append(next.nodes, newNode(id, pos))
	if parentID != "" {
		next.edges = append(next.edges, incident.Edge{ID: s.newID("edge"), FromID: parentID, ToID: id})
	}
	next.selectionID = id
	s.relayout(next.nodes)
	s.commit("addSibling", next, history.Immediate)
	s.editingID = id
	return id
}

// RenameNode sets the trimmed title of node id. A blank title yields
// ErrEmptyTitle. An unknown id or an unchanged title reports false.
func (s *Store) RenameNode(id, title string) (bool, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return false, ErrEmptyTitle
	}
	i := s.indexOfNode(id)
	if i < 0 || s.cur.nodes[i].Title == trimmed {
		return false, nil
	}
	next := s.cur.Clone()
	next.nodes[i].Title = trimmed
	return s.commit("renameNode", next, history.Immediate), nil
}

// MoveNode places node id at the snapped position. Every effective move is
// its own undo step.
func (s *Store) MoveNode(id string, pos layout.Point) bool {
	return s.place("moveNode", id, layout.Snap(layout.Clamp(pos)), history.Immediate)
}

// NudgeNodeBy shifts node id by dx, dy and snaps. Nudges arriving within
// the history window collapse into one undo step.
func (s *Store) NudgeNodeBy(id string, dx, dy float64) bool {
	i := s.indexOfNode(id)
	if i < 0 {
		return false
	}
	return s.place("nudgeNodeBy", id, layout.Snap(layout.Clamp(s.cur.nodes[i].Position.Add(dx, dy))), history.Coalesce)
}

func (s *Store) place(op, id string, pos layout.Point, mode history.Mode) bool {
	i := s.indexOfNode(id)
	if i < 0 || s.cur.nodes[i].Position == pos {
		return false
	}
	next := s.cur.Clone()
	next.nodes[i].Position = pos
	return s.commit(op, next, mode)
}

// DeleteNode removes node id, every node reachable from it along outgoing
// edges, and all edges touching a removed node. Barriers are left alone.
func (s *Store) DeleteNode(id string) bool {
	if s.indexOfNode(id) < 0 {
		return false
	}

	outgoing := make(map[string][]string, len(s.cur.edges))
	for _, e := range s.cur.edges {
		outgoing[e.FromID] = append(outgoing[e.FromID], e.ToID)
	}
	removed := map[string]bool{}
	work := []string{id}
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		if removed[n] {
			continue
		}
		removed[n] = true
		work = append(work, outgoing[n]...)
	}

	next := s.cur.Clone()
	next.nodes = slices.DeleteFunc(next.nodes, func(n incident.Node) bool { return removed[n.ID] })
	next.edges = slices.DeleteFunc(next.edges, func(e incident.Edge) bool {
		return removed[e.FromID] || removed[e.ToID]
	})
	if removed[next.selectionID] {
		next.selectionID = ""
	}
	if removed[s.editingID] {
		s.editingID = ""
	}
	return s.commit("deleteNode", next, history.Immediate)
}

// DeleteSelection removes the selected barrier or node.
func (s *Store) DeleteSelection() bool {
	sel := s.cur.selectionID
	if sel == "" {
		return false
	}
	if indexOfBarrier(s.cur.barriers, sel) >= 0 {
		return s.RemoveBarrier(sel)
	}
	return s.DeleteNode(sel)
}

// NodePatch holds the non-title node fields to overwrite. Nil fields are
// kept; an empty non-nil list clears.
type NodePatch struct {
	Description          *string
	Owner                *string
	Timestamp            *string
	PositiveConsequences []string
	NegativeConsequences []string
}

// UpdateNodeData merges patch into node id and re-runs layout.
func (s *Store) UpdateNodeData(id string, patch NodePatch) bool {
	i := s.indexOfNode(id)
	if i < 0 {
		return false
	}
	next := s.cur.Clone()
	n := &next.nodes[i]
	if patch.Description != nil {
		n.Description = *patch.Description
	}
	if patch.Owner != nil {
		n.Owner = *patch.Owner
	}
	if patch.Timestamp != nil {
		n.Timestamp = *patch.Timestamp
	}
	if patch.PositiveConsequences != nil {
		n.PositiveConsequences = slices.Clone(patch.PositiveConsequences)
	}
	if patch.NegativeConsequences != nil {
		n.NegativeConsequences = slices.Clone(patch.NegativeConsequences)
	}
	if n.Equal(s.cur.nodes[i]) {
		return false
	}
	s.relayout(next.nodes)
	return s.commit("updateNodeData", next, history.Immediate)
}

// SetMapTitle stores the trimmed title. A blank title removes the metadata.
func (s *Store) SetMapTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	if s.Title() == trimmed {
		return false
	}
	next := s.cur.Clone()
	if trimmed == "" {
		next.metadata = nil
	} else {
		next.metadata = &incident.Metadata{Title: trimmed}
	}
	return s.commit("setMapTitle", next, history.Immediate)
}

// SetShowDetails switches the details mode and re-runs layout, since card
// heights change. It is not an undo step.
func (s *Store) SetShowDetails(show bool) {
	s.showDetails = show
	s.relayout(s.cur.nodes)
}

// ToggleShowDetails flips the details mode.
func (s *Store) ToggleShowDetails() {
	s.SetShowDetails(!s.showDetails)
}
