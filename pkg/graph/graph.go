package graph

import (
	"errors"
	"slices"

	"github.com/bits-and-blooms/bitset"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/store"
)

var (
	// ErrNodeNotFound is returned by lookups of a segment id that was never
	// registered.
	ErrNodeNotFound = errors.New("node not found")

	// ErrUnknownSourceNode is returned by [Graph.AddLink] when the source
	// segment does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddLink] when the target
	// segment does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a cycle is found.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Segment is a node of the variation graph.
//
// Parents and Children hold ids only. Sequence data lives in the store; use
// [Graph.Sequence] and [Graph.SequenceLength] to read it.
type Segment struct {
	ID       int
	Parents  []int
	Children []int
	Genomes  *bitset.BitSet // genome indices traversing this segment (never nil after AddNode)

	// Placeholder is set for segments created by a link record before their
	// own segment record was read.
	Placeholder bool
}

// EdgeKey identifies a link by its ordered endpoints.
type EdgeKey struct {
	From, To int
}

// Link is a directed edge between two segments.
type Link struct {
	From    int
	To      int
	Genomes *bitset.BitSet // genome indices traversing this edge
}

// Key returns the link's identity.
func (l *Link) Key() EdgeKey { return EdgeKey{l.From, l.To} }

// Graph is the node and edge registry of a variation graph.
//
// The zero value is not usable; create graphs with [New].
type Graph struct {
	store store.Store
	nodes map[int]*Segment
	links map[EdgeKey]*Link
	roots map[int]struct{}
	// referrers maps an id to the registered segments listing it as a parent.
	referrers map[int]map[int]struct{}

	genomeIndex map[string]int
	genomeNames []string
	paths       map[int]*Genome
}

// New creates an empty graph that reads and writes sequences through st.
func New(st store.Store) *Graph {
	return &Graph{
		store:       st,
		nodes:       make(map[int]*Segment),
		links:       make(map[EdgeKey]*Link),
		roots:       make(map[int]struct{}),
		referrers:   make(map[int]map[int]struct{}),
		genomeIndex: make(map[string]int),
	}
}

// Store returns the sequence store backing the graph.
func (g *Graph) Store() store.Store { return g.store }

// AddNode inserts seg or overwrites the segment with the same id.
//
// The root status of seg is rechecked, as is that of every segment listing
// seg as a parent and every child seg had or now has. seg is a root iff none
// of its recorded parents is present. The Parents and Children slices are
// copied.
func (g *Graph) AddNode(seg Segment) error {
	if err := errs.ValidateNodeID(seg.ID); err != nil {
		return err
	}
	if seg.Genomes == nil {
		seg.Genomes = bitset.New(0)
	}
	seg.Parents = slices.Clone(seg.Parents)
	seg.Children = slices.Clone(seg.Children)

	var affected []int
	if old, ok := g.nodes[seg.ID]; ok {
		affected = append(affected, old.Children...)
		for _, p := range old.Parents {
			g.unrefer(p, seg.ID)
		}
	}
	affected = append(affected, seg.Children...)
	for id := range g.referrers[seg.ID] {
		affected = append(affected, id)
	}
	for _, p := range seg.Parents {
		g.refer(p, seg.ID)
	}

	node := seg
	g.nodes[seg.ID] = &node

	g.recheckRoot(seg.ID)
	for _, id := range affected {
		g.recheckRoot(id)
	}
	return nil
}

func (g *Graph) refer(parent, child int) {
	set, ok := g.referrers[parent]
	if !ok {
		set = make(map[int]struct{})
		g.referrers[parent] = set
	}
	set[child] = struct{}{}
}

func (g *Graph) unrefer(parent, child int) {
	if set, ok := g.referrers[parent]; ok {
		delete(set, child)
		if len(set) == 0 {
			delete(g.referrers, parent)
		}
	}
}

// recheckRoot updates the root set for id. Absent ids are ignored.
func (g *Graph) recheckRoot(id int) {
	n, ok := g.nodes[id]
	if !ok {
		delete(g.roots, id)
		return
	}
	if g.ContainsAny(n.Parents) {
		delete(g.roots, id)
	} else {
		g.roots[id] = struct{}{}
	}
}

// AddLink registers the edge from→to on both endpoints and returns it.
// Adding the same pair twice returns the existing link.
func (g *Graph) AddLink(from, to int) (*Link, error) {
	src, ok := g.nodes[from]
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeNotFound, ErrUnknownSourceNode, "link %d -> %d", from, to)
	}
	dst, ok := g.nodes[to]
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeNotFound, ErrUnknownTargetNode, "link %d -> %d", from, to)
	}

	key := EdgeKey{from, to}
	if l, ok := g.links[key]; ok {
		return l, nil
	}
	l := &Link{From: from, To: to, Genomes: bitset.New(0)}
	g.links[key] = l
	src.Children = append(src.Children, to)
	dst.Parents = append(dst.Parents, from)
	g.refer(from, to)
	delete(g.roots, to)
	return l, nil
}

// Node returns the segment with the given id.
func (g *Graph) Node(id int) (*Segment, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeNotFound, ErrNodeNotFound, "node %d", id)
	}
	return n, nil
}

// Has reports whether a segment with the given id is registered.
func (g *Graph) Has(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// ContainsAny reports whether at least one of ids is registered.
// It returns as soon as the first match is found.
func (g *Graph) ContainsAny(ids []int) bool {
	for _, id := range ids {
		if _, ok := g.nodes[id]; ok {
			return true
		}
	}
	return false
}

// Roots returns the ids of all segments without a registered parent, sorted.
func (g *Graph) Roots() []int {
	ids := make([]int, 0, len(g.roots))
	for id := range g.roots {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsRoot reports whether id is in the root set.
func (g *Graph) IsRoot(id int) bool {
	_, ok := g.roots[id]
	return ok
}

// Parents returns the parent ids of id, or nil for unknown ids.
func (g *Graph) Parents(id int) []int {
	if n, ok := g.nodes[id]; ok {
		return n.Parents
	}
	return nil
}

// Children returns the child ids of id, or nil for unknown ids.
func (g *Graph) Children(id int) []int {
	if n, ok := g.nodes[id]; ok {
		return n.Children
	}
	return nil
}

// Link returns the edge from→to, if registered.
func (g *Graph) Link(from, to int) (*Link, bool) {
	l, ok := g.links[EdgeKey{from, to}]
	return l, ok
}

// Links returns all edges sorted by source then target.
func (g *Graph) Links() []*Link {
	out := make([]*Link, 0, len(g.links))
	for _, l := range g.links {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b *Link) int {
		if a.From != b.From {
			return a.From - b.From
		}
		return a.To - b.To
	})
	return out
}

// NodeIDs returns all segment ids in ascending order.
func (g *Graph) NodeIDs() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NodeCount returns the number of segments, placeholders included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct links.
func (g *Graph) EdgeCount() int { return len(g.links) }

// Sequence reads the sequence of segment id from the store.
func (g *Graph) Sequence(id int) (string, error) {
	if !g.Has(id) {
		return "", errs.Wrap(errs.ErrCodeNotFound, ErrNodeNotFound, "node %d", id)
	}
	return g.store.Sequence(id)
}

// SequenceLength reads the cached sequence length of segment id.
func (g *Graph) SequenceLength(id int) (int, error) {
	if !g.Has(id) {
		return 0, errs.Wrap(errs.ErrCodeNotFound, ErrNodeNotFound, "node %d", id)
	}
	return g.store.SequenceLength(id)
}

// Validate checks the whole graph for cycles with an iterative
// white/gray/black depth-first search.
func (g *Graph) Validate() error {
	const (
		white = iota
		gray
		black
	)
	type frame struct {
		id   int
		next int // index of the next child to visit
	}

	color := make(map[int]int, len(g.nodes))
	for _, start := range g.NodeIDs() {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.nodes[top.id].Children
			if top.next == len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				return errs.Wrap(errs.ErrCodeCycle, ErrGraphHasCycle, "edge %d -> %d closes a cycle", top.id, child)
			}
		}
	}
	return nil
}
