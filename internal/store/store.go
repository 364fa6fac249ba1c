// Package store owns the editable incident map: its nodes, edges and
// barriers, the selection and inline-editing state, and the undo history.
// Every change goes through a named operation that validates its inputs,
// builds the next state in full and commits it in one step.
package store

import (
	"errors"
	"slices"

	"go.uber.org/zap"

	"incimap/internal/history"
	"incimap/internal/idgen"
	"incimap/internal/incident"
	"incimap/internal/layout"
)

// ErrEmptyTitle is returned when a node title is blank after trimming.
var ErrEmptyTitle = errors.New("title must not be empty")

// PlaceholderTitle is the title given to freshly created nodes.
const PlaceholderTitle = "New ChainNode"

const (
	childOffsetY   = 160
	siblingOffsetX = 200
)

// State is the selection/editing mode.
type State int

const (
	Idle State = iota
	Selected
	Editing
)

func (s State) String() string {
	switch s {
	case Selected:
		return "selected"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

// snapshot is one history entry. editingID is not part of it; undo and
// redo always leave edit mode.
type snapshot struct {
	nodes       []incident.Node
	edges       []incident.Edge
	barriers    []incident.Barrier
	metadata    *incident.Metadata
	selectionID string
}

func (s snapshot) Clone() snapshot {
	return snapshot{
		nodes:       incident.CloneNodes(s.nodes),
		edges:       slices.Clone(s.edges),
		barriers:    incident.CloneBarriers(s.barriers),
		metadata:    incident.CloneMetadata(s.metadata),
		selectionID: s.selectionID,
	}
}

func (s snapshot) Equal(o snapshot) bool {
	return s.selectionID == o.selectionID &&
		incident.MetadataEqual(s.metadata, o.metadata) &&
		slices.EqualFunc(s.nodes, o.nodes, incident.Node.Equal) &&
		slices.Equal(s.edges, o.edges) &&
		slices.EqualFunc(s.barriers, o.barriers, incident.Barrier.Equal)
}

// Store is the single owner of map state. It is not safe for concurrent
// use; the editor drives it from one event loop.
type Store struct {
	cur       snapshot
	editingID string

	showDetails   bool
	layoutVersion int

	hist   *history.History[snapshot]
	newID  func(prefix string) string
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistoryOptions passes options through to the undo history.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(s *Store) {
		s.hist = history.New[snapshot](opts...)
	}
}

// WithIDGenerator replaces the id source.
func WithIDGenerator(g *idgen.Generator) Option {
	return func(s *Store) {
		if g != nil {
			s.newID = g.New
		}
	}
}

// WithShowDetails sets the initial details display mode.
func WithShowDetails(show bool) Option {
	return func(s *Store) {
		s.showDetails = show
	}
}

// New returns a Store holding an empty map.
func New(opts ...Option) *Store {
	s := &Store{
		showDetails: true,
		hist:        history.New[snapshot](),
		newID:       idgen.New,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cur = fromDocument(incident.EmptyMap())
	return s
}

func fromDocument(d incident.Document) snapshot {
	nodes := incident.CloneNodes(d.Nodes)
	for i := range nodes {
		nodes[i].Position = layout.Snap(nodes[i].Position)
	}
	edges := slices.Clone(d.Edges)
	if edges == nil {
		edges = []incident.Edge{}
	}
	return snapshot{
		nodes:    nodes,
		edges:    edges,
		barriers: incident.CloneBarriers(d.Barriers),
		metadata: incident.CloneMetadata(d.Metadata),
	}
}

// commit makes next the live state and records the change. It reports
// whether anything changed.
func (s *Store) commit(op string, next snapshot, mode history.Mode) bool {
	if s.cur.Equal(next) {
		return false
	}
	pushed := s.hist.Record(s.cur, next, mode)
	s.cur = next
	if s.editingID != "" && s.indexOfNode(s.editingID) < 0 {
		s.editingID = ""
	}
	s.logger.Debug("commit",
		zap.String("op", op),
		zap.Bool("pushed", pushed),
		zap.Int("nodes", len(next.nodes)),
		zap.Int("edges", len(next.edges)),
	)
	return true
}

// relayout resolves overlaps in place and bumps the layout version when a
// node moved.
func (s *Store) relayout(nodes []incident.Node) {
	items := make([]layout.Item, len(nodes))
	for i, n := range nodes {
		items[i] = layout.Item{ID: n.ID, Pos: n.Position}
	}
	resolved, changed := layout.ResolveOverlaps(items, s.showDetails)
	if !changed {
		return
	}
	for i := range nodes {
		nodes[i].Position = resolved[i].Pos
	}
	s.layoutVersion++
}

func (s *Store) indexOfNode(id string) int {
	return indexOfNode(s.cur.nodes, id)
}

func indexOfNode(nodes []incident.Node, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(nodes, func(n incident.Node) bool { return n.ID == id })
}

func indexOfBarrier(barriers []incident.Barrier, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(barriers, func(b incident.Barrier) bool { return b.ID == id })
}

// Document projects the live state onto the persisted shape.
func (s *Store) Document() incident.Document {
	return incident.Document{
		Metadata: incident.CloneMetadata(s.cur.metadata),
		Nodes:    incident.CloneNodes(s.cur.nodes),
		Edges:    slices.Clone(s.cur.edges),
		Barriers: incident.CloneBarriers(s.cur.barriers),
	}
}

// Nodes returns a copy of the node list.
func (s *Store) Nodes() []incident.Node { return incident.CloneNodes(s.cur.nodes) }

// Edges returns a copy of the edge list.
func (s *Store) Edges() []incident.Edge { return slices.Clone(s.cur.edges) }

// Barriers returns a copy of the barrier list.
func (s *Store) Barriers() []incident.Barrier { return incident.CloneBarriers(s.cur.barriers) }

// Metadata returns a copy of the map metadata, nil when unset.
func (s *Store) Metadata() *incident.Metadata { return incident.CloneMetadata(s.cur.metadata) }

// Title returns the map title or "".
func (s *Store) Title() string {
	if s.cur.metadata == nil {
		return ""
	}
	return s.cur.metadata.Title
}

// Node looks up a node by id.
func (s *Store) Node(id string) (incident.Node, bool) {
	i := s.indexOfNode(id)
	if i < 0 {
		return incident.Node{}, false
	}
	return s.cur.nodes[i].Clone(), true
}

// Barrier looks up a barrier by id.
func (s *Store) Barrier(id string) (incident.Barrier, bool) {
	i := indexOfBarrier(s.cur.barriers, id)
	if i < 0 {
		return incident.Barrier{}, false
	}
	return s.cur.barriers[i].Clone(), true
}

func (s *Store) SelectionID() string { return s.cur.selectionID }
func (s *Store) EditingID() string   { return s.editingID }
func (s *Store) ShowDetails() bool   { return s.showDetails }
func (s *Store) LayoutVersion() int  { return s.layoutVersion }
func (s *Store) CanUndo() bool       { return s.hist.CanUndo() }
func (s *Store) CanRedo() bool       { return s.hist.CanRedo() }

// HistoryDepth returns the sizes of the undo and redo stacks.
func (s *Store) HistoryDepth() (past, future int) { return s.hist.Depth() }

// State reports the selection/editing mode.
func (s *Store) State() State {
	switch {
	case s.editingID != "":
		return Editing
	case s.cur.selectionID != "":
		return Selected
	default:
		return Idle
	}
}
