package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/graph"
	"github.com/matzehuels/seqtower/pkg/store"
	"github.com/matzehuels/seqtower/pkg/subgraph"
	"github.com/matzehuels/seqtower/pkg/view"
)

func collapsedView(t *testing.T) *view.View {
	t.Helper()
	st := store.NewMemoryStore()
	g := graph.New(st)
	for id, seq := range map[int]string{1: "ATCG", 2: "A", 3: "C", 4: "GCTA"} {
		_ = g.AddNode(graph.Segment{ID: id})
		_ = st.SetSequence(id, seq)
	}
	for _, e := range [][2]int{{1, 2}, {1, 3}, {2, 4}, {3, 4}} {
		_, _ = g.AddLink(e[0], e[1])
	}
	sub, err := subgraph.Extract(g, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	v, err := view.Build(sub, view.Options{CollapseSNPs: true})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestExportImport(t *testing.T) {
	v := collapsedView(t)
	path := filepath.Join(t.TempDir(), "view.json")
	if err := ExportJSON(v, path); err != nil {
		t.Fatal(err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.Center != 1 || got.Radius != 5 || got.NodeCount() != 3 || len(got.Edges) != 2 {
		t.Fatalf("imported view = %+v", got)
	}
	b, ok := got.Node(-1)
	if !ok || !b.IsBubble() {
		t.Fatalf("bubble node missing: %+v", got.Layers)
	}
	if b.Bubble.Entry != 1 || b.Bubble.Exit != 4 || len(b.Members()) != 2 {
		t.Errorf("bubble = %+v", b.Bubble)
	}
}

func TestWriteJSONKinds(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(collapsedView(t), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"kind": "snp"`) {
		t.Errorf("bubble kind missing:\n%s", out)
	}
	if strings.Count(out, `"kind"`) != 1 {
		t.Errorf("segment nodes must omit kind:\n%s", out)
	}
}

func TestReadJSONInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"layers": [`},
		{"unknown kind", `{"layers":[{"depth":0,"nodes":[{"id":1,"kind":"blob"}]}]}`},
		{"duplicate id", `{"layers":[{"depth":0,"nodes":[{"id":1},{"id":1}]}]}`},
		{"dangling edge", `{"layers":[{"depth":0,"nodes":[{"id":1}]}],"edges":[{"from":1,"to":2}]}`},
		{"bubble without members", `{"layers":[{"depth":0,"nodes":[{"id":-1,"kind":"snp","entry":1,"exit":2,"members":[3]}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("ReadJSON() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "absent.json"))
	if !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("ImportJSON() error = %v, want INVALID_PATH", err)
	}
}
