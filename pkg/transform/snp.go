package transform

import (
	"slices"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/exascience/pargo/parallel"

	"github.com/matzehuels/seqtower/pkg/graph"
	"github.com/matzehuels/seqtower/pkg/subgraph"
)

// Bubble is a collapsed SNP site: parallel single-segment paths between
// Entry and Exit.
type Bubble struct {
	Entry   int
	Exit    int
	Members []int          // ascending
	Genomes *bitset.BitSet // union of the members' genomes
	Length  int            // shared sequence length of the members
}

// DetectSNP reports whether candidates form a SNP bubble between entry and
// exit.
//
// The candidates match when there are at least two distinct ones, each has
// entry as its sole parent and exit as its sole child, all sequences have
// the same length and differ pairwise, and together they carry every genome
// that traverses both entry and exit. Any other shape is reported with
// ok=false and a nil error. Only store failures and unknown ids are errors.
//
// Candidate order does not matter.
func DetectSNP(g *graph.Graph, entry, exit int, candidates []int) (*Bubble, bool, error) {
	members := slices.Clone(candidates)
	slices.Sort(members)
	members = slices.Compact(members)
	if len(members) < 2 {
		return nil, false, nil
	}

	in, err := g.Node(entry)
	if err != nil {
		return nil, false, err
	}
	out, err := g.Node(exit)
	if err != nil {
		return nil, false, err
	}

	union := bitset.New(0)
	seen := make(map[string]bool, len(members))
	length := -1
	for _, id := range members {
		n, err := g.Node(id)
		if err != nil {
			return nil, false, err
		}
		if !sole(n.Parents, entry) || !sole(n.Children, exit) {
			return nil, false, nil
		}

		l, err := g.SequenceLength(id)
		if err != nil {
			return nil, false, err
		}
		if length >= 0 && l != length {
			return nil, false, nil
		}
		length = l

		seq, err := g.Sequence(id)
		if err != nil {
			return nil, false, err
		}
		if seen[seq] {
			return nil, false, nil
		}
		seen[seq] = true
		union.InPlaceUnion(n.Genomes)
	}

	if !union.IsSuperSet(in.Genomes.Intersection(out.Genomes)) {
		return nil, false, nil
	}
	return &Bubble{Entry: entry, Exit: exit, Members: members, Genomes: union, Length: length}, true, nil
}

func sole(ids []int, want int) bool {
	return len(ids) == 1 && ids[0] == want
}

// FindBubbles returns every SNP bubble whose entry, exit and members all lie
// in sub, sorted by entry then exit.
//
// Each member of sub is tried as an entry; its children are grouped by their
// sole child and each group with two or more members is passed to
// [DetectSNP]. Entries are scanned in parallel.
func FindBubbles(sub *subgraph.Subgraph) ([]Bubble, error) {
	g := sub.Graph()
	ids := sub.Nodes()
	if len(ids) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		bubbles  []Bubble
		firstErr error
	)
	parallel.Range(0, len(ids), 0, func(low, high int) {
		var local []Bubble
		for _, entry := range ids[low:high] {
			found, err := bubblesFrom(g, sub, entry)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			local = append(local, found...)
		}
		mu.Lock()
		bubbles = append(bubbles, local...)
		mu.Unlock()
	})
	if firstErr != nil {
		return nil, firstErr
	}

	slices.SortFunc(bubbles, func(a, b Bubble) int {
		if a.Entry != b.Entry {
			return a.Entry - b.Entry
		}
		return a.Exit - b.Exit
	})
	return bubbles, nil
}

func bubblesFrom(g *graph.Graph, sub *subgraph.Subgraph, entry int) ([]Bubble, error) {
	groups := make(map[int][]int)
	for _, c := range sub.Children(entry) {
		n, err := g.Node(c)
		if err != nil {
			return nil, err
		}
		if len(n.Children) != 1 || !sub.Contains(n.Children[0]) {
			continue
		}
		exit := n.Children[0]
		groups[exit] = append(groups[exit], c)
	}

	var out []Bubble
	for exit, members := range groups {
		if len(members) < 2 {
			continue
		}
		b, ok, err := DetectSNP(g, entry, exit, members)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, *b)
		}
	}
	return out, nil
}
