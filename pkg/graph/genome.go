package graph

import (
	"slices"
	"sort"

	"github.com/bits-and-blooms/bitset"

	errs "github.com/matzehuels/seqtower/pkg/errors"
)

// Genome is the coordinate index of one genome's path through the graph.
//
// Coordinates are 1-based. Segments along the path occupy consecutive,
// strictly increasing ranges; zero-length segments occupy none and cannot be
// returned by SegmentAt.
type Genome struct {
	Name   string
	Index  int
	Length int // total base pairs along the path

	starts []int // starts[i] is the first coordinate of ids[i]
	ids    []int
	offset map[int]int
}

// SegmentAt returns the id of the segment holding coordinate pos and the
// first coordinate of that segment.
func (gn *Genome) SegmentAt(pos int) (id, start int, err error) {
	if pos < 1 || pos > gn.Length {
		return 0, 0, errs.New(errs.ErrCodeNotFound, "position %d outside genome %s (1..%d)", pos, gn.Name, gn.Length)
	}
	i := sort.Search(len(gn.starts), func(i int) bool { return gn.starts[i] > pos }) - 1
	return gn.ids[i], gn.starts[i], nil
}

// Start returns the first coordinate of segment id on this genome.
func (gn *Genome) Start(id int) (int, bool) {
	s, ok := gn.offset[id]
	return s, ok
}

// Segments returns the ids along the path in coordinate order.
func (gn *Genome) Segments() []int { return slices.Clone(gn.ids) }

// RegisterGenome returns the index of name, registering it with the store
// on first sight.
func (g *Graph) RegisterGenome(name string) (int, error) {
	if idx, ok := g.genomeIndex[name]; ok {
		return idx, nil
	}
	if err := errs.ValidateGenomeName(name); err != nil {
		return 0, err
	}
	idx, err := g.store.AddGenomeName(name)
	if err != nil {
		return 0, err
	}
	g.trackGenome(name, idx)
	return idx, nil
}

// LoadGenomes reads genome names already persisted in the store so that a
// cached graph reuses their indices instead of writing them again.
func (g *Graph) LoadGenomes() error {
	names, err := g.store.GenomeNames()
	if err != nil {
		return err
	}
	for i, name := range names {
		g.trackGenome(name, i)
	}
	return nil
}

func (g *Graph) trackGenome(name string, idx int) {
	g.genomeIndex[name] = idx
	for len(g.genomeNames) <= idx {
		g.genomeNames = append(g.genomeNames, "")
	}
	g.genomeNames[idx] = name
}

// GenomeIndex returns the index registered for name.
func (g *Graph) GenomeIndex(name string) (int, bool) {
	idx, ok := g.genomeIndex[name]
	return idx, ok
}

// GenomeNames returns the registered genome names ordered by index.
func (g *Graph) GenomeNames() []string { return slices.Clone(g.genomeNames) }

// GenomeCount returns the number of registered genomes.
func (g *Graph) GenomeCount() int { return len(g.genomeNames) }

// NamesOf resolves the indices set in b to genome names.
func (g *Graph) NamesOf(b *bitset.BitSet) []string {
	var out []string
	if b == nil {
		return out
	}
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		if int(i) < len(g.genomeNames) {
			out = append(out, g.genomeNames[i])
		}
	}
	return out
}

// AddGenome marks segment id as traversed by genome idx.
func (g *Graph) AddGenome(id, idx int) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	n.Genomes.Set(uint(idx))
	return nil
}

// AddLinkGenome marks the edge from→to as traversed by genome idx.
// Both endpoints are marked too.
func (g *Graph) AddLinkGenome(from, to, idx int) error {
	l, ok := g.links[EdgeKey{from, to}]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "link %d -> %d", from, to)
	}
	l.Genomes.Set(uint(idx))
	g.nodes[from].Genomes.Set(uint(idx))
	g.nodes[to].Genomes.Set(uint(idx))
	return nil
}

// InferLinkGenomes gives every link that carries no genome the
// intersection of its endpoints' genome sets.
func (g *Graph) InferLinkGenomes() {
	for _, l := range g.links {
		if l.Genomes.Any() {
			continue
		}
		l.Genomes = g.nodes[l.From].Genomes.Intersection(g.nodes[l.To].Genomes)
	}
}

// BuildGenomeIndex walks the path of every registered genome and builds its
// coordinate index.
//
// A path starts at each segment carrying the genome that no link carrying
// it enters, lowest id first. From each segment the walk follows the lowest child
// reached by a link that carries the genome. Segments already visited end
// the walk, so a malformed path cannot loop.
func (g *Graph) BuildGenomeIndex() error {
	g.paths = make(map[int]*Genome, len(g.genomeNames))
	for idx, name := range g.genomeNames {
		gn := &Genome{Name: name, Index: idx, offset: make(map[int]int)}
		bit := uint(idx)
		visited := make(map[int]bool)
		pos := 1

		for _, start := range g.genomeStarts(bit) {
			for id, ok := start, true; ok && !visited[id]; id, ok = g.nextOnPath(id, bit) {
				visited[id] = true
				n, err := g.SequenceLength(id)
				if err != nil {
					return err
				}
				gn.offset[id] = pos
				if n > 0 {
					gn.starts = append(gn.starts, pos)
					gn.ids = append(gn.ids, id)
					pos += n
				}
			}
		}
		gn.Length = pos - 1
		g.paths[idx] = gn
	}
	return nil
}

func (g *Graph) genomeStarts(bit uint) []int {
	var starts []int
	for _, id := range g.NodeIDs() {
		n := g.nodes[id]
		if !n.Genomes.Test(bit) {
			continue
		}
		entered := false
		for _, p := range n.Parents {
			if l, ok := g.links[EdgeKey{p, id}]; ok && l.Genomes.Test(bit) {
				entered = true
				break
			}
		}
		if !entered {
			starts = append(starts, id)
		}
	}
	return starts
}

func (g *Graph) nextOnPath(id int, bit uint) (int, bool) {
	next, found := 0, false
	for _, c := range g.nodes[id].Children {
		if l, ok := g.links[EdgeKey{id, c}]; ok && l.Genomes.Test(bit) {
			if !found || c < next {
				next, found = c, true
			}
		}
	}
	return next, found
}

// Genome returns the coordinate index of the named genome.
// It fails with NOT_FOUND before [Graph.BuildGenomeIndex] ran or for unknown names.
func (g *Graph) Genome(name string) (*Genome, error) {
	idx, ok := g.genomeIndex[name]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "genome %q", name)
	}
	gn, ok := g.paths[idx]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "genome %q has no coordinate index", name)
	}
	return gn, nil
}
