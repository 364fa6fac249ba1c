package store

import (
	"slices"

	"incimap/internal/history"
	"incimap/internal/incident"
)

// AddBarrierForFirstDownstream puts a barrier on the first edge leaving
// nodeID and selects it. When that edge already has a barrier, the existing
// one is selected instead. It returns the barrier id, or "" when the node
// has no outgoing edge.
func (s *Store) AddBarrierForFirstDownstream(nodeID string) string {
	i := slices.IndexFunc(s.cur.edges, func(e incident.Edge) bool { return e.FromID == nodeID })
	if nodeID == "" || i < 0 {
		return ""
	}
	edge := s.cur.edges[i]
	if j := slices.IndexFunc(s.cur.barriers, func(b incident.Barrier) bool { return b.Guards(edge) }); j >= 0 {
		id := s.cur.barriers[j].ID
		s.Select(id)
		return id
	}

	next := s.cur.Clone()
	id := s.newID("barrier")
	next.barriers = append(next.barriers, incident.Barrier{
		ID:               id,
		UpstreamNodeID:   edge.FromID,
		DownstreamNodeID: edge.ToID,
		BreachedItems:    []string{},
	})
	next.selectionID = id
	s.editingID = ""
	s.commit("addBarrier", next, history.Immediate)
	return id
}

// RemoveBarrier deletes barrier id, dropping the selection if it pointed
// there.
func (s *Store) RemoveBarrier(id string) bool {
	i := indexOfBarrier(s.cur.barriers, id)
	if i < 0 {
		return false
	}
	next := s.cur.Clone()
	next.barriers = slices.Delete(next.barriers, i, i+1)
	if next.selectionID == id {
		next.selectionID = ""
		s.editingID = ""
	}
	return s.commit("removeBarrier", next, history.Immediate)
}

// BarrierPatch holds the barrier fields to overwrite. Nil fields are kept.
type BarrierPatch struct {
	Breached      *bool
	BreachedItems []string
	Description   *string
}

// UpdateBarrierData merges patch into barrier id. Layout is not affected.
func (s *Store) UpdateBarrierData(id string, patch BarrierPatch) bool {
	i := indexOfBarrier(s.cur.barriers, id)
	if i < 0 {
		return false
	}
	next := s.cur.Clone()
	b := &next.barriers[i]
	if patch.Breached != nil {
		b.Breached = *patch.Breached
	}
	if patch.BreachedItems != nil {
		b.BreachedItems = slices.Clone(patch.BreachedItems)
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	return s.commit("updateBarrierData", next, history.Immediate)
}

// ToggleBreached flips the breached flag of barrier id.
func (s *Store) ToggleBreached(id string) bool {
	b, ok := s.Barrier(id)
	if !ok {
		return false
	}
	breached := !b.Breached
	return s.UpdateBarrierData(id, BarrierPatch{Breached: &breached})
}

// BarrierOnEdge returns the barrier guarding e, if any.
func (s *Store) BarrierOnEdge(e incident.Edge) (incident.Barrier, bool) {
	i := slices.IndexFunc(s.cur.barriers, func(b incident.Barrier) bool { return b.Guards(e) })
	if i < 0 {
		return incident.Barrier{}, false
	}
	return s.cur.barriers[i].Clone(), true
}
