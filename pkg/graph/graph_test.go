package graph

import (
	"errors"
	"slices"
	"testing"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/store"
)

// diamond builds 1->2->4 and 1->3->4 with sequences ATCG, A, C, GCTA
// traversed by a single genome.
func diamond(t *testing.T) *Graph {
	t.Helper()
	st := store.NewMemoryStore()
	g := New(st)
	seqs := map[int]string{1: "ATCG", 2: "A", 3: "C", 4: "GCTA"}
	for _, id := range []int{1, 2, 3, 4} {
		if err := g.AddNode(Segment{ID: id}); err != nil {
			t.Fatalf("AddNode(%d): %v", id, err)
		}
		if err := st.SetSequence(id, seqs[id]); err != nil {
			t.Fatal(err)
		}
	}
	ref, err := g.RegisterGenome("ref")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range [][2]int{{1, 2}, {1, 3}, {2, 4}, {3, 4}} {
		if _, err := g.AddLink(e[0], e[1]); err != nil {
			t.Fatalf("AddLink(%v): %v", e, err)
		}
	}
	for _, e := range [][2]int{{1, 2}, {2, 4}} {
		if err := g.AddLinkGenome(e[0], e[1], ref); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestAddNodeRootInvariant(t *testing.T) {
	g := New(store.NewMemoryStore())

	// Child registered before its parent exists is a root.
	if err := g.AddNode(Segment{ID: 2, Parents: []int{1}}); err != nil {
		t.Fatal(err)
	}
	if got := g.Roots(); !slices.Equal(got, []int{2}) {
		t.Fatalf("Roots() = %v, want [2]", got)
	}

	// Adding the parent demotes the child.
	if err := g.AddNode(Segment{ID: 1, Children: []int{2}}); err != nil {
		t.Fatal(err)
	}
	if got := g.Roots(); !slices.Equal(got, []int{1}) {
		t.Fatalf("Roots() = %v, want [1]", got)
	}

	// Overwriting the parent without children leaves 2 with a present parent.
	if err := g.AddNode(Segment{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if g.IsRoot(2) {
		t.Error("2 still records parent 1, which is present; it must not be a root")
	}
}

func TestAddNodeDemotesRecordedChildren(t *testing.T) {
	g := New(store.NewMemoryStore())

	// 2 and 3 name 1 as a parent, but 1 is added without listing them.
	for _, seg := range []Segment{{ID: 2, Parents: []int{1}}, {ID: 3, Parents: []int{1, 5}}} {
		if err := g.AddNode(seg); err != nil {
			t.Fatal(err)
		}
	}
	if got := g.Roots(); !slices.Equal(got, []int{2, 3}) {
		t.Fatalf("Roots() = %v, want [2 3]", got)
	}
	if err := g.AddNode(Segment{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if got := g.Roots(); !slices.Equal(got, []int{1}) {
		t.Fatalf("Roots() = %v, want [1]", got)
	}

	// Once 2 drops the parent it becomes a root again, and re-adding 1
	// does not demote it.
	if err := g.AddNode(Segment{ID: 2}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Segment{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if got := g.Roots(); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("Roots() = %v, want [1 2]", got)
	}
}

func TestAddNodeCopiesAdjacency(t *testing.T) {
	g := New(store.NewMemoryStore())
	parents := make([]int, 0, 4)
	children := make([]int, 0, 4)
	if err := g.AddNode(Segment{ID: 2, Parents: parents, Children: children}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []int{1, 3} {
		if err := g.AddNode(Segment{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := g.AddLink(1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddLink(2, 3); err != nil {
		t.Fatal(err)
	}

	if got := parents[:1]; got[0] != 0 {
		t.Errorf("AddLink wrote into the caller's Parents array: %v", got)
	}
	if got := children[:1]; got[0] != 0 {
		t.Errorf("AddLink wrote into the caller's Children array: %v", got)
	}
	if !slices.Equal(g.Parents(2), []int{1}) || !slices.Equal(g.Children(2), []int{3}) {
		t.Errorf("adjacency of 2 = %v / %v", g.Parents(2), g.Children(2))
	}
}

func TestAddNodeInvalidID(t *testing.T) {
	g := New(store.NewMemoryStore())
	for _, id := range []int{0, -3} {
		if err := g.AddNode(Segment{ID: id}); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("AddNode(%d) error = %v, want INVALID_INPUT", id, err)
		}
	}
}

func TestAddLink(t *testing.T) {
	g := diamond(t)

	if got := g.EdgeCount(); got != 4 {
		t.Errorf("EdgeCount() = %d, want 4", got)
	}
	if got := g.Roots(); !slices.Equal(got, []int{1}) {
		t.Errorf("Roots() = %v, want [1]", got)
	}
	if got := g.Children(1); !slices.Equal(got, []int{2, 3}) {
		t.Errorf("Children(1) = %v, want [2 3]", got)
	}
	if got := g.Parents(4); !slices.Equal(got, []int{2, 3}) {
		t.Errorf("Parents(4) = %v, want [2 3]", got)
	}

	// Idempotent for a repeated pair.
	l1, _ := g.Link(1, 2)
	l2, err := g.AddLink(1, 2)
	if err != nil || l1 != l2 {
		t.Errorf("repeated AddLink returned %p, %v; want %p", l2, err, l1)
	}
	if got := g.Children(1); len(got) != 2 {
		t.Errorf("repeated AddLink duplicated adjacency: %v", got)
	}
}

func TestAddLinkUnknownEndpoints(t *testing.T) {
	g := diamond(t)
	tests := []struct {
		from, to int
		want     error
	}{
		{99, 1, ErrUnknownSourceNode},
		{1, 99, ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		_, err := g.AddLink(tt.from, tt.to)
		if !errors.Is(err, tt.want) {
			t.Errorf("AddLink(%d, %d) error = %v, want %v", tt.from, tt.to, err, tt.want)
		}
	}
}

func TestNodeNotFound(t *testing.T) {
	g := diamond(t)
	_, err := g.Node(42)
	if !errors.Is(err, ErrNodeNotFound) || !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Node(42) error = %v, want NOT_FOUND wrapping ErrNodeNotFound", err)
	}
	if _, err := g.Sequence(42); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Sequence(42) error = %v, want NOT_FOUND", err)
	}
}

func TestContainsAny(t *testing.T) {
	g := diamond(t)
	tests := []struct {
		ids  []int
		want bool
	}{
		{nil, false},
		{[]int{7, 8}, false},
		{[]int{7, 3}, true},
		{[]int{1, 99}, true},
	}
	for _, tt := range tests {
		if got := g.ContainsAny(tt.ids); got != tt.want {
			t.Errorf("ContainsAny(%v) = %v, want %v", tt.ids, got, tt.want)
		}
	}
}

func TestSequenceThroughStore(t *testing.T) {
	g := diamond(t)
	seq, err := g.Sequence(4)
	if err != nil || seq != "GCTA" {
		t.Errorf("Sequence(4) = %q, %v", seq, err)
	}
	n, err := g.SequenceLength(1)
	if err != nil || n != 4 {
		t.Errorf("SequenceLength(1) = %d, %v", n, err)
	}
}

func TestValidate(t *testing.T) {
	g := diamond(t)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() on a DAG = %v", err)
	}

	if _, err := g.AddLink(4, 1); err != nil {
		t.Fatal(err)
	}
	err := g.Validate()
	if !errors.Is(err, ErrGraphHasCycle) || !errs.Is(err, errs.ErrCodeCycle) {
		t.Errorf("Validate() = %v, want CYCLE_DETECTED", err)
	}
}

func TestGenomeRegistration(t *testing.T) {
	g := New(store.NewMemoryStore())
	a, _ := g.RegisterGenome("a")
	b, _ := g.RegisterGenome("b")
	again, _ := g.RegisterGenome("a")
	if a != 0 || b != 1 || again != 0 {
		t.Errorf("indices = %d %d %d, want 0 1 0", a, b, again)
	}
	if _, err := g.RegisterGenome("bad name"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("RegisterGenome with a space = %v, want INVALID_INPUT", err)
	}
	if got := g.GenomeNames(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("GenomeNames() = %v", got)
	}
}

func TestLoadGenomesReusesIndices(t *testing.T) {
	st := store.NewMemoryStore()
	_, _ = st.AddGenomeName("x")
	_, _ = st.AddGenomeName("y")

	g := New(st)
	if err := g.LoadGenomes(); err != nil {
		t.Fatal(err)
	}
	idx, err := g.RegisterGenome("y")
	if err != nil || idx != 1 {
		t.Errorf("RegisterGenome(y) = %d, %v; want 1", idx, err)
	}
	names, _ := st.GenomeNames()
	if len(names) != 2 {
		t.Errorf("store gained names on reuse: %v", names)
	}
}

func TestInferLinkGenomes(t *testing.T) {
	g := New(store.NewMemoryStore())
	for _, id := range []int{1, 2} {
		_ = g.AddNode(Segment{ID: id})
	}
	a, _ := g.RegisterGenome("a")
	b, _ := g.RegisterGenome("b")
	_ = g.AddGenome(1, a)
	_ = g.AddGenome(1, b)
	_ = g.AddGenome(2, b)
	_, _ = g.AddLink(1, 2)

	g.InferLinkGenomes()
	l, _ := g.Link(1, 2)
	if got := g.NamesOf(l.Genomes); !slices.Equal(got, []string{"b"}) {
		t.Errorf("link genomes = %v, want [b]", got)
	}
}

func TestGenomeIndex(t *testing.T) {
	g := diamond(t)
	if err := g.BuildGenomeIndex(); err != nil {
		t.Fatal(err)
	}
	gn, err := g.Genome("ref")
	if err != nil {
		t.Fatal(err)
	}
	// ref walks 1 (ATCG, 1..4) -> 2 (A, 5) -> 4 (GCTA, 6..9).
	if gn.Length != 9 {
		t.Errorf("Length = %d, want 9", gn.Length)
	}
	if got := gn.Segments(); !slices.Equal(got, []int{1, 2, 4}) {
		t.Errorf("Segments() = %v, want [1 2 4]", got)
	}

	tests := []struct {
		pos, id, start int
	}{
		{1, 1, 1},
		{4, 1, 1},
		{5, 2, 5},
		{6, 4, 6},
		{9, 4, 6},
	}
	for _, tt := range tests {
		id, start, err := gn.SegmentAt(tt.pos)
		if err != nil || id != tt.id || start != tt.start {
			t.Errorf("SegmentAt(%d) = %d, %d, %v; want %d, %d", tt.pos, id, start, err, tt.id, tt.start)
		}
	}
	for _, pos := range []int{0, 10} {
		if _, _, err := gn.SegmentAt(pos); !errs.Is(err, errs.ErrCodeNotFound) {
			t.Errorf("SegmentAt(%d) error = %v, want NOT_FOUND", pos, err)
		}
	}
	if s, ok := gn.Start(4); !ok || s != 6 {
		t.Errorf("Start(4) = %d, %v", s, ok)
	}
	if _, ok := gn.Start(3); ok {
		t.Error("segment 3 is not on ref")
	}
}

func TestGenomeUnknown(t *testing.T) {
	g := diamond(t)
	if _, err := g.Genome("ref"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Genome before BuildGenomeIndex = %v, want NOT_FOUND", err)
	}
	_ = g.BuildGenomeIndex()
	if _, err := g.Genome("nope"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Genome(nope) = %v, want NOT_FOUND", err)
	}
}
