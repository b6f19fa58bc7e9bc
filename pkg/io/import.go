package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/bits-and-blooms/bitset"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/transform"
	"github.com/matzehuels/seqtower/pkg/view"
)

var kindFromString = map[string]view.NodeKind{
	"":        view.NodeKindSegment,
	"segment": view.NodeKindSegment,
	"snp":     view.NodeKindBubble,
}

// ReadJSON decodes a view written by [WriteJSON].
//
// ReadJSON returns an INVALID_INPUT error if:
//   - The JSON is malformed
//   - A node has an unknown kind or a duplicate id
//   - A bubble node lacks entry, exit, or at least two members
//   - An edge references an unknown node id
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*view.View, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode view")
	}

	v := &view.View{Center: data.Center, Radius: data.Radius, Genomes: data.Genomes}
	ids := make(map[int]bool)
	for _, l := range data.Layers {
		row := view.Layer{Depth: l.Depth}
		for _, n := range l.Nodes {
			kind, ok := kindFromString[n.Kind]
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidInput, "node %d: unknown kind %q", n.ID, n.Kind)
			}
			if ids[n.ID] {
				return nil, errs.New(errs.ErrCodeInvalidInput, "node %d: duplicate id", n.ID)
			}
			ids[n.ID] = true

			nd := view.Node{Kind: kind, ID: n.ID, Length: n.Length, Genomes: n.Genomes}
			if kind == view.NodeKindBubble {
				if n.Entry == nil || n.Exit == nil || len(n.Members) < 2 {
					return nil, errs.New(errs.ErrCodeInvalidInput, "node %d: bubble needs entry, exit and two members", n.ID)
				}
				set := bitset.New(0)
				for _, gi := range n.Genomes {
					set.Set(uint(gi))
				}
				nd.Bubble = &transform.Bubble{
					Entry:   *n.Entry,
					Exit:    *n.Exit,
					Members: n.Members,
					Genomes: set,
					Length:  n.Length,
				}
			}
			row.Nodes = append(row.Nodes, nd)
		}
		v.Layers = append(v.Layers, row)
	}
	for _, e := range data.Edges {
		if !ids[e.From] || !ids[e.To] {
			return nil, errs.New(errs.ErrCodeInvalidInput, "edge %d->%d: unknown node", e.From, e.To)
		}
		v.Edges = append(v.Edges, view.Edge{From: e.From, To: e.To})
	}
	return v, nil
}

// ImportJSON reads a JSON file at path and returns the decoded view.
func ImportJSON(path string) (*view.View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
