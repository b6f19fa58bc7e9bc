// Package view builds the layered, optionally SNP-collapsed representation of
// a subgraph that rendering and export consume.
//
// A [View] contains ids, lengths, genome indices and layer assignments only.
// It carries no coordinates.
package view

import (
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/seqtower/pkg/graph"
	"github.com/matzehuels/seqtower/pkg/subgraph"
	"github.com/matzehuels/seqtower/pkg/transform"
)

// NodeKind distinguishes segments from synthetic nodes created by the view.
type NodeKind int

const (
	// NodeKindSegment is a segment of the underlying graph.
	NodeKindSegment NodeKind = iota
	// NodeKindBubble is a synthetic node standing in for the members of a
	// SNP bubble. Its ID is negative and unique within the view.
	NodeKindBubble
)

func (k NodeKind) String() string {
	if k == NodeKindBubble {
		return "snp"
	}
	return "segment"
}

// Node is one entry of a layer.
type Node struct {
	Kind    NodeKind
	ID      int
	Length  int
	Genomes []int

	// Bubble is set for NodeKindBubble only.
	Bubble *transform.Bubble
}

// IsBubble reports whether the node is a collapsed SNP site.
func (n Node) IsBubble() bool { return n.Kind == NodeKindBubble }

// Members returns the segments a bubble node replaces, or nil.
func (n Node) Members() []int {
	if n.Bubble == nil {
		return nil
	}
	return n.Bubble.Members
}

// Layer is a depth-indexed row of nodes.
type Layer struct {
	Depth int
	Nodes []Node
}

// Edge connects two view nodes by id.
type Edge struct {
	From, To int
}

// View is the layered form of a subgraph.
type View struct {
	Center  int
	Radius  int
	Genomes []string // genome names; Node.Genomes indexes into this
	Layers  []Layer
	Edges   []Edge
}

// Options configures [Build].
type Options struct {
	// CollapseSNPs replaces every SNP bubble in the subgraph with one
	// synthetic node.
	CollapseSNPs bool
}

// Build orders sub into layers and, if requested, folds SNP bubbles.
//
// A bubble node takes the slot of its lowest member and gets id -1, -2, ...
// in bubble order. Edges into and out of members are redirected to the
// bubble node. The graph itself is not modified.
func Build(sub *subgraph.Subgraph, opts Options) (*View, error) {
	layers, err := transform.Layers(sub)
	if err != nil {
		return nil, err
	}

	var bubbles []transform.Bubble
	if opts.CollapseSNPs {
		if bubbles, err = transform.FindBubbles(sub); err != nil {
			return nil, err
		}
	}
	owner := make(map[int]int) // member -> synthetic id
	for i, b := range bubbles {
		for _, m := range b.Members {
			owner[m] = -(i + 1)
		}
	}

	g := sub.Graph()
	v := &View{Center: sub.Center(), Radius: sub.Radius(), Genomes: g.GenomeNames()}
	for _, l := range layers {
		row := Layer{Depth: l.Depth}
		for _, id := range l.Nodes {
			if synth, ok := owner[id]; ok {
				b := &bubbles[-synth-1]
				if id != b.Members[0] {
					continue
				}
				row.Nodes = append(row.Nodes, Node{
					Kind:    NodeKindBubble,
					ID:      synth,
					Length:  b.Length,
					Genomes: indices(b.Genomes),
					Bubble:  b,
				})
				continue
			}
			n, err := segmentNode(g, id)
			if err != nil {
				return nil, err
			}
			row.Nodes = append(row.Nodes, n)
		}
		v.Layers = append(v.Layers, row)
	}

	seen := make(map[Edge]bool)
	for _, e := range sub.Edges() {
		edge := Edge{From: e.From, To: e.To}
		if synth, ok := owner[e.From]; ok {
			edge.From = synth
		}
		if synth, ok := owner[e.To]; ok {
			edge.To = synth
		}
		if !seen[edge] {
			seen[edge] = true
			v.Edges = append(v.Edges, edge)
		}
	}
	slices.SortFunc(v.Edges, func(a, b Edge) int {
		if a.From != b.From {
			return a.From - b.From
		}
		return a.To - b.To
	})
	return v, nil
}

func segmentNode(g *graph.Graph, id int) (Node, error) {
	seg, err := g.Node(id)
	if err != nil {
		return Node{}, err
	}
	length, err := g.SequenceLength(id)
	if err != nil {
		return Node{}, err
	}
	return Node{Kind: NodeKindSegment, ID: id, Length: length, Genomes: indices(seg.Genomes)}, nil
}

func indices(b *bitset.BitSet) []int {
	var out []int
	if b == nil {
		return out
	}
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// Node returns the view node with the given id.
func (v *View) Node(id int) (Node, bool) {
	for _, l := range v.Layers {
		for _, n := range l.Nodes {
			if n.ID == id {
				return n, true
			}
		}
	}
	return Node{}, false
}

// NodeCount returns the number of nodes across all layers.
func (v *View) NodeCount() int {
	n := 0
	for _, l := range v.Layers {
		n += len(l.Nodes)
	}
	return n
}

// Bubbles returns the bubble nodes of the view in layer order.
func (v *View) Bubbles() []Node {
	var out []Node
	for _, l := range v.Layers {
		for _, n := range l.Nodes {
			if n.IsBubble() {
				out = append(out, n)
			}
		}
	}
	return out
}
