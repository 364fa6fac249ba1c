package incident

import "incimap/internal/layout"

// DefaultTitle is the metadata title of a fresh map.
const DefaultTitle = "Untitled Map"

// EmptyMap returns the document a new map starts from.
func EmptyMap() Document {
	return Document{
		Metadata: &Metadata{Title: DefaultTitle},
		Nodes:    []Node{},
		Edges:    []Edge{},
		Barriers: []Barrier{},
	}
}

// SampleMap returns a small two-node chain.
func SampleMap() Document {
	return Document{
		Metadata: &Metadata{Title: "Sample Incident Chain"},
		Nodes: []Node{
			{
				ID:                   "root",
				Title:                "Root Event",
				PositiveConsequences: []string{},
				NegativeConsequences: []string{},
				Position:             layout.Point{X: 0, Y: 0},
			},
			{
				ID:                   "child",
				Title:                "Follow-up Event",
				PositiveConsequences: []string{},
				NegativeConsequences: []string{},
				Position:             layout.Point{X: 0, Y: 160},
			},
		},
		Edges: []Edge{
			{ID: "edge-root-child", FromID: "root", ToID: "child"},
		},
		Barriers: []Barrier{},
	}
}
