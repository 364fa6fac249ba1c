package incident

import (
	"incimap/internal/layout"
)

// The wire types mirror the persisted format. Pointer fields distinguish a
// missing value from a zero one so validation can report it.

type positionWire struct {
	X *float64 `json:"x" yaml:"x" validate:"required,coord"`
	Y *float64 `json:"y" yaml:"y" validate:"required,coord"`
}

type nodeWire struct {
	ID                              string        `json:"id" yaml:"id" validate:"required"`
	Kind                            string        `json:"kind" yaml:"kind" validate:"required,eq=ChainNode"`
	Title                           string        `json:"title" yaml:"title" validate:"notblank"`
	Description                     string        `json:"description,omitempty" yaml:"description,omitempty"`
	Owner                           string        `json:"owner,omitempty" yaml:"owner,omitempty"`
	Timestamp                       string        `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	PositiveConsequenceBulletPoints []string      `json:"positiveConsequenceBulletPoints" yaml:"positiveConsequenceBulletPoints"`
	NegativeConsequenceBulletPoints []string      `json:"negativeConsequenceBulletPoints" yaml:"negativeConsequenceBulletPoints"`
	Position                        *positionWire `json:"position" yaml:"position" validate:"required"`
}

type edgeWire struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	Kind   string `json:"kind" yaml:"kind" validate:"required,eq=CauseEffectEdge"`
	FromID string `json:"fromId" yaml:"fromId" validate:"required"`
	ToID   string `json:"toId" yaml:"toId" validate:"required"`
}

// barrierWire carries an optional description beyond the base barrier
// format. Readers that don't know it drop it.
type barrierWire struct {
	ID               string   `json:"id" yaml:"id" validate:"required"`
	Kind             string   `json:"kind" yaml:"kind" validate:"required,eq=Barrier"`
	UpstreamNodeID   string   `json:"upstreamNodeId" yaml:"upstreamNodeId" validate:"required"`
	DownstreamNodeID string   `json:"downstreamNodeId" yaml:"downstreamNodeId" validate:"required"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	Breached         *bool    `json:"breached" yaml:"breached" validate:"required"`
	BreachedItems    []string `json:"breachedItems" yaml:"breachedItems"`
}

type metadataWire struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

type documentWire struct {
	SchemaVersion *int          `json:"schemaVersion" yaml:"schemaVersion" validate:"required,eq=1"`
	Metadata      *metadataWire `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Nodes         []nodeWire    `json:"nodes" yaml:"nodes" validate:"required,dive"`
	Edges         []edgeWire    `json:"edges" yaml:"edges" validate:"required,dive"`
	Barriers      []barrierWire `json:"barriers" yaml:"barriers" validate:"dive"`
}

func (w *documentWire) toDocument() Document {
	doc := Document{
		Nodes:    make([]Node, 0, len(w.Nodes)),
		Edges:    make([]Edge, 0, len(w.Edges)),
		Barriers: make([]Barrier, 0, len(w.Barriers)),
	}
	if w.Metadata != nil {
		doc.Metadata = &Metadata{Title: w.Metadata.Title}
	}
	for _, n := range w.Nodes {
		doc.Nodes = append(doc.Nodes, Node{
			ID:                   n.ID,
			Title:                n.Title,
			Description:          n.Description,
			Owner:                n.Owner,
			Timestamp:            n.Timestamp,
			PositiveConsequences: cloneStrings(n.PositiveConsequenceBulletPoints),
			NegativeConsequences: cloneStrings(n.NegativeConsequenceBulletPoints),
			Position:             layout.Snap(layout.Point{X: *n.Position.X, Y: *n.Position.Y}),
		})
	}
	for _, e := range w.Edges {
		doc.Edges = append(doc.Edges, Edge{ID: e.ID, FromID: e.FromID, ToID: e.ToID})
	}
	for _, b := range w.Barriers {
		doc.Barriers = append(doc.Barriers, Barrier{
			ID:               b.ID,
			UpstreamNodeID:   b.UpstreamNodeID,
			DownstreamNodeID: b.DownstreamNodeID,
			Description:      b.Description,
			Breached:         *b.Breached,
			BreachedItems:    cloneStrings(b.BreachedItems),
		})
	}
	return doc
}

func wireFromDocument(d Document) *documentWire {
	version := SchemaVersion
	w := &documentWire{
		SchemaVersion: &version,
		Nodes:         make([]nodeWire, 0, len(d.Nodes)),
		Edges:         make([]edgeWire, 0, len(d.Edges)),
		Barriers:      make([]barrierWire, 0, len(d.Barriers)),
	}
	if d.Metadata != nil {
		w.Metadata = &metadataWire{Title: d.Metadata.Title}
	}
	for _, n := range d.Nodes {
		p := layout.Snap(n.Position)
		x, y := p.X, p.Y
		w.Nodes = append(w.Nodes, nodeWire{
			ID:                              n.ID,
			Kind:                            KindChainNode,
			Title:                           n.Title,
			Description:                     n.Description,
			Owner:                           n.Owner,
			Timestamp:                       n.Timestamp,
			PositiveConsequenceBulletPoints: cloneStrings(n.PositiveConsequences),
			NegativeConsequenceBulletPoints: cloneStrings(n.NegativeConsequences),
			Position:                        &positionWire{X: &x, Y: &y},
		})
	}
	for _, e := range d.Edges {
		w.Edges = append(w.Edges, edgeWire{ID: e.ID, Kind: KindCauseEffectEdge, FromID: e.FromID, ToID: e.ToID})
	}
	for _, b := range d.Barriers {
		breached := b.Breached
		w.Barriers = append(w.Barriers, barrierWire{
			ID:               b.ID,
			Kind:             KindBarrier,
			UpstreamNodeID:   b.UpstreamNodeID,
			DownstreamNodeID: b.DownstreamNodeID,
			Description:      b.Description,
			Breached:         &breached,
			BreachedItems:    cloneStrings(b.BreachedItems),
		})
	}
	return w
}
