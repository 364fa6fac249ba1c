// Package incident defines the incident-map document: chain nodes, causal
// edges and barriers, plus the versioned on-disk format.
package incident

import (
	"slices"

	"incimap/internal/layout"
)

// SchemaVersion is the only document version this build reads and writes.
const SchemaVersion = 1

const (
	KindChainNode       = "ChainNode"
	KindCauseEffectEdge = "CauseEffectEdge"
	KindBarrier         = "Barrier"
)

// Node is an event in the cause-effect chain.
type Node struct {
	ID                   string
	Title                string
	Description          string
	Owner                string
	Timestamp            string
	PositiveConsequences []string
	NegativeConsequences []string
	Position             layout.Point
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	n.PositiveConsequences = cloneStrings(n.PositiveConsequences)
	n.NegativeConsequences = cloneStrings(n.NegativeConsequences)
	return n
}

// Equal reports whether n and o hold the same data.
func (n Node) Equal(o Node) bool {
	return n.ID == o.ID &&
		n.Title == o.Title &&
		n.Description == o.Description &&
		n.Owner == o.Owner &&
		n.Timestamp == o.Timestamp &&
		n.Position == o.Position &&
		slices.Equal(n.PositiveConsequences, o.PositiveConsequences) &&
		slices.Equal(n.NegativeConsequences, o.NegativeConsequences)
}

// Edge is a directed causal link between two nodes.
type Edge struct {
	ID     string
	FromID string
	ToID   string
}

// Touches reports whether either endpoint is id.
func (e Edge) Touches(id string) bool {
	return e.FromID == id || e.ToID == id
}

// Barrier annotates the edge running from UpstreamNodeID to DownstreamNodeID.
type Barrier struct {
	ID               string
	UpstreamNodeID   string
	DownstreamNodeID string
	Description      string
	Breached         bool
	BreachedItems    []string
}

// Clone returns a deep copy of b.
func (b Barrier) Clone() Barrier {
	b.BreachedItems = cloneStrings(b.BreachedItems)
	return b
}

// Equal reports whether b and o hold the same data.
func (b Barrier) Equal(o Barrier) bool {
	return b.ID == o.ID &&
		b.UpstreamNodeID == o.UpstreamNodeID &&
		b.DownstreamNodeID == o.DownstreamNodeID &&
		b.Description == o.Description &&
		b.Breached == o.Breached &&
		slices.Equal(b.BreachedItems, o.BreachedItems)
}

// Guards reports whether b sits on edge e.
func (b Barrier) Guards(e Edge) bool {
	return b.UpstreamNodeID == e.FromID && b.DownstreamNodeID == e.ToID
}

// Metadata holds map-level fields. A nil *Metadata means none were set.
type Metadata struct {
	Title string
}

// CloneMetadata copies m, preserving nil.
func CloneMetadata(m *Metadata) *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// MetadataEqual compares two optional metadata values.
func MetadataEqual(a, b *Metadata) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Document is the persisted aggregate.
type Document struct {
	Metadata *Metadata
	Nodes    []Node
	Edges    []Edge
	Barriers []Barrier
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	return Document{
		Metadata: CloneMetadata(d.Metadata),
		Nodes:    CloneNodes(d.Nodes),
		Edges:    slices.Clone(d.Edges),
		Barriers: CloneBarriers(d.Barriers),
	}
}

// Equal reports whether two documents hold the same data in the same order.
func (d Document) Equal(o Document) bool {
	return MetadataEqual(d.Metadata, o.Metadata) &&
		slices.EqualFunc(d.Nodes, o.Nodes, Node.Equal) &&
		slices.Equal(d.Edges, o.Edges) &&
		slices.EqualFunc(d.Barriers, o.Barriers, Barrier.Equal)
}

// Title returns the metadata title or "".
func (d Document) Title() string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata.Title
}

// CloneNodes deep-copies a node list. The result is never nil.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneBarriers deep-copies a barrier list. The result is never nil.
func CloneBarriers(barriers []Barrier) []Barrier {
	out := make([]Barrier, len(barriers))
	for i, b := range barriers {
		out[i] = b.Clone()
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
