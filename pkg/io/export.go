package io

import (
	"encoding/json"
	"io"
	"os"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/view"
)

var kindToString = map[view.NodeKind]string{
	view.NodeKindBubble: "snp",
}

type document struct {
	Center  int      `json:"center"`
	Radius  int      `json:"radius"`
	Genomes []string `json:"genomes,omitempty"`
	Layers  []layer  `json:"layers"`
	Edges   []edge   `json:"edges"`
}

type layer struct {
	Depth int    `json:"depth"`
	Nodes []node `json:"nodes"`
}

type node struct {
	ID      int    `json:"id"`
	Kind    string `json:"kind,omitempty"`
	Length  int    `json:"length"`
	Genomes []int  `json:"genomes,omitempty"`
	Entry   *int   `json:"entry,omitempty"`
	Exit    *int   `json:"exit,omitempty"`
	Members []int  `json:"members,omitempty"`
}

type edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// WriteJSON encodes v as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(v *view.View, w io.Writer) error {
	out := document{
		Center:  v.Center,
		Radius:  v.Radius,
		Genomes: v.Genomes,
		Layers:  make([]layer, len(v.Layers)),
		Edges:   make([]edge, len(v.Edges)),
	}
	for i, l := range v.Layers {
		row := layer{Depth: l.Depth, Nodes: make([]node, len(l.Nodes))}
		for j, n := range l.Nodes {
			nd := node{ID: n.ID, Length: n.Length, Genomes: n.Genomes, Kind: kindToString[n.Kind]}
			if b := n.Bubble; b != nil {
				entry, exit := b.Entry, b.Exit
				nd.Entry, nd.Exit, nd.Members = &entry, &exit, b.Members
			}
			row.Nodes[j] = nd
		}
		out.Layers[i] = row
	}
	for i, e := range v.Edges {
		out.Edges[i] = edge{From: e.From, To: e.To}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode view")
	}
	return nil
}

// ExportJSON writes v to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(v *view.View, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(v, f)
}
