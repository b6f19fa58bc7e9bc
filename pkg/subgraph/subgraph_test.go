package subgraph

import (
	"context"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/gfa"
	"github.com/matzehuels/seqtower/pkg/graph"
	"github.com/matzehuels/seqtower/pkg/store"
)

func build(t *testing.T, edges ...[2]int) *graph.Graph {
	t.Helper()
	st := store.NewMemoryStore()
	g := graph.New(st)
	for _, e := range edges {
		for _, id := range e {
			if !g.Has(id) {
				if err := g.AddNode(graph.Segment{ID: id}); err != nil {
					t.Fatal(err)
				}
				_ = st.SetSequence(id, "A")
			}
		}
		if _, err := g.AddLink(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

// chain builds 1 -> 2 -> ... -> n.
func chain(t *testing.T, n int) *graph.Graph {
	var edges [][2]int
	for i := 1; i < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return build(t, edges...)
}

func diamond(t *testing.T) *graph.Graph {
	return build(t, [2]int{1, 2}, [2]int{1, 3}, [2]int{2, 4}, [2]int{3, 4})
}

func TestExtractRadiusZero(t *testing.T) {
	s, err := Extract(diamond(t), 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Nodes(); !slices.Equal(got, []int{2}) {
		t.Errorf("Nodes() = %v, want [2]", got)
	}
	if got := s.Edges(); len(got) != 0 {
		t.Errorf("Edges() = %v, want none", got)
	}
	if !slices.Equal(s.Roots(), []int{2}) || !slices.Equal(s.Ends(), []int{2}) {
		t.Errorf("Roots() = %v, Ends() = %v; want [2] for both", s.Roots(), s.Ends())
	}
}

func TestExtractDiamond(t *testing.T) {
	s, err := Extract(diamond(t), 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Nodes(); !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Errorf("Nodes() = %v", got)
	}
	want := []graph.EdgeKey{{From: 1, To: 2}, {From: 1, To: 3}, {From: 2, To: 4}, {From: 3, To: 4}}
	if got := s.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
	if !slices.Equal(s.Roots(), []int{1}) || !slices.Equal(s.Ends(), []int{4}) {
		t.Errorf("Roots() = %v, Ends() = %v", s.Roots(), s.Ends())
	}
}

func TestExtractRadiusOne(t *testing.T) {
	s, err := Extract(chain(t, 5), 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Nodes(); !slices.Equal(got, []int{2, 3, 4}) {
		t.Errorf("Nodes() = %v, want [2 3 4]", got)
	}
}

func TestExtractFirstFoundPolicy(t *testing.T) {
	// 2 and 3 are siblings under 1. From 2, sibling 3 is two hops away when
	// directions mix (2 -> 1 -> 3) but is never reached by a pure parent or
	// child walk, so it is excluded.
	g := build(t, [2]int{1, 2}, [2]int{1, 3})
	s, err := Extract(g, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Nodes(); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Nodes() = %v, want [1 2]", got)
	}

	// The shortcut 1 -> 3 reaches 3 at level 1 even though 1 -> 2 -> 3 is longer.
	g = build(t, [2]int{1, 2}, [2]int{2, 3}, [2]int{1, 3}, [2]int{3, 4})
	s, err = Extract(g, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := s.Distance(3); d != 1 {
		t.Errorf("Distance(3) = %d, want 1", d)
	}
	if got := s.Nodes(); !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Errorf("Nodes() = %v, want [1 2 3 4]", got)
	}
}

func TestExtractWithinRadius(t *testing.T) {
	g := build(t,
		[2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5},
		[2]int{2, 6}, [2]int{6, 4}, [2]int{7, 3}, [2]int{8, 7},
	)
	for r := 0; r <= 4; r++ {
		s, err := Extract(g, 3, r)
		if err != nil {
			t.Fatal(err)
		}
		for _, id := range s.Nodes() {
			d, ok := s.Distance(id)
			if !ok || d > r {
				t.Errorf("r=%d: node %d at distance %d (ok=%v)", r, id, d, ok)
			}
		}
	}
}

func TestExtractErrors(t *testing.T) {
	g := diamond(t)
	if _, err := Extract(g, 1, -1); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("negative radius: %v", err)
	}
	if _, err := Extract(g, 99, 1); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("unknown center: %v", err)
	}
}

func TestUnboundedMatchesParse(t *testing.T) {
	in := "S\t1\tATCG\nS\t2\tA\nS\t3\tC\nS\t4\tGCTA\n" +
		"L\t1\t+\t2\t+\t0M\nL\t1\t+\t3\t+\t0M\nL\t2\t+\t4\t+\t0M\nL\t3\t+\t4\t+\t0M\n" +
		"L\t4\t+\t5\t+\t0M\n"
	g, err := gfa.Parse(context.Background(), strings.NewReader(in), store.NewMemoryStore(), gfa.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := Extract(g, g.Roots()[0], Unbounded)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5 distinct ids", s.Len())
	}
	if got := len(s.Edges()); got != 5 {
		t.Errorf("edges = %d, want 5 L lines", got)
	}
}

func sameAs(t *testing.T, got *Subgraph, g *graph.Graph, center, radius int) {
	t.Helper()
	want, err := Extract(g, center, radius)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.Nodes(), want.Nodes()) {
		t.Errorf("center=%d r=%d: Nodes() = %v, want %v", center, radius, got.Nodes(), want.Nodes())
	}
	if !slices.Equal(got.Roots(), want.Roots()) {
		t.Errorf("center=%d r=%d: Roots() = %v, want %v", center, radius, got.Roots(), want.Roots())
	}
	if !slices.Equal(got.Ends(), want.Ends()) {
		t.Errorf("center=%d r=%d: Ends() = %v, want %v", center, radius, got.Ends(), want.Ends())
	}
	if !slices.Equal(got.Edges(), want.Edges()) {
		t.Errorf("center=%d r=%d: Edges() differ", center, radius)
	}
	for _, id := range want.Nodes() {
		gd, _ := got.Distance(id)
		wd, _ := want.Distance(id)
		if gd != wd {
			t.Errorf("center=%d r=%d: Distance(%d) = %d, want %d", center, radius, id, gd, wd)
		}
	}
}

func TestSetRadiusIncremental(t *testing.T) {
	g := build(t,
		[2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5}, [2]int{5, 6},
		[2]int{2, 7}, [2]int{7, 4}, [2]int{9, 3},
	)
	s, err := Extract(g, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range []int{1, 3, 2, 0, 4, 1, Unbounded, 2} {
		if err := s.SetRadius(r); err != nil {
			t.Fatal(err)
		}
		sameAs(t, s, g, 3, r)
	}
	if err := s.SetRadius(-2); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("SetRadius(-2) = %v", err)
	}
}

func TestSetCenterIncremental(t *testing.T) {
	g := chain(t, 10)
	s, err := Extract(g, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []int{3, 7, 10, 1, 5} {
		if err := s.SetCenter(c); err != nil {
			t.Fatal(err)
		}
		if s.Center() != c {
			t.Errorf("Center() = %d, want %d", s.Center(), c)
		}
		sameAs(t, s, g, c, 2)
	}
	if err := s.SetCenter(42); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("SetCenter(42) = %v", err)
	}
}

func TestRestrictedAdjacency(t *testing.T) {
	s, err := Extract(chain(t, 5), 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Parents(2); len(got) != 0 {
		t.Errorf("Parents(2) = %v, want none inside the subgraph", got)
	}
	if got := s.Children(3); !slices.Equal(got, []int{4}) {
		t.Errorf("Children(3) = %v", got)
	}
}
