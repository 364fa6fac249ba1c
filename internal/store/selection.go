package store

import "go.uber.org/zap"

// Select selects a node or barrier and leaves edit mode. An empty or
// unknown id clears the selection. Selection changes are not undo steps.
func (s *Store) Select(id string) {
	if indexOfNode(s.cur.nodes, id) < 0 && indexOfBarrier(s.cur.barriers, id) < 0 {
		id = ""
	}
	s.cur.selectionID = id
	s.editingID = ""
}

// ClearSelection returns to Idle.
func (s *Store) ClearSelection() { s.Select("") }

// StartEditing selects node id and puts it into inline rename.
func (s *Store) StartEditing(id string) bool {
	if s.indexOfNode(id) < 0 {
		return false
	}
	s.cur.selectionID = id
	s.editingID = id
	return true
}

// FinishEditing leaves edit mode and keeps the selection.
func (s *Store) FinishEditing() {
	s.editingID = ""
}

// SelectNext moves the selection through the nodes in list order, wrapping
// around. A negative step goes backwards.
func (s *Store) SelectNext(step int) string {
	n := len(s.cur.nodes)
	if n == 0 {
		s.Select("")
		return ""
	}
	i := s.indexOfNode(s.cur.selectionID)
	switch {
	case i < 0 && step < 0:
		i = n - 1
	case i < 0:
		i = 0
	default:
		i = ((i+step)%n + n) % n
	}
	id := s.cur.nodes[i].ID
	s.Select(id)
	return id
}

// Undo restores the state before the last recorded change, including what
// was selected then. Edit mode is dropped.
func (s *Store) Undo() bool {
	restored, ok := s.hist.Undo(s.cur)
	if !ok {
		return false
	}
	s.cur = restored
	s.editingID = ""
	past, future := s.hist.Depth()
	s.logger.Debug("undo", zap.Int("past", past), zap.Int("future", future))
	return true
}

// Redo reapplies the last undone change.
func (s *Store) Redo() bool {
	restored, ok := s.hist.Redo(s.cur)
	if !ok {
		return false
	}
	s.cur = restored
	s.editingID = ""
	past, future := s.hist.Depth()
	s.logger.Debug("redo", zap.Int("past", past), zap.Int("future", future))
	return true
}
