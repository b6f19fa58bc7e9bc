package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/io"
	"github.com/matzehuels/seqtower/pkg/session"
)

type graphResponse struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
	session.Summary
}

type nodeResponse struct {
	ID          int      `json:"id"`
	Sequence    string   `json:"sequence"`
	Length      int      `json:"length"`
	Placeholder bool     `json:"placeholder,omitempty"`
	Root        bool     `json:"root"`
	Parents     []int    `json:"parents"`
	Children    []int    `json:"children"`
	Genomes     []string `json:"genomes"`
}

type locateResponse struct {
	Genome   string `json:"genome"`
	Position int    `json:"position"`
	Segment  int    `json:"segment"`
	Start    int    `json:"start"`
	Offset   int    `json:"offset"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, graphResponse{
		ID:      s.sess.ID.String(),
		Path:    s.sess.Path,
		Summary: s.sess.Summary(),
	})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := intParam("id", chi.URLParam(r, "id"))
	if err == nil {
		err = errs.ValidateNodeID(id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g := s.sess.Graph
	seg, err := g.Node(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	seq, err := g.Sequence(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nodeResponse{
		ID:          id,
		Sequence:    seq,
		Length:      len(seq),
		Placeholder: seg.Placeholder,
		Root:        g.IsRoot(id),
		Parents:     nonNil(g.Parents(id)),
		Children:    nonNil(g.Children(id)),
		Genomes:     nonNil(g.NamesOf(seg.Genomes)),
	})
}

func (s *Server) handleSubgraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("center") {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "center is required"))
		return
	}
	center, err := intParam("center", q.Get("center"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	radius := s.radius
	if q.Has("radius") {
		if radius, err = intParam("radius", q.Get("radius")); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	collapse := s.collapse
	if q.Has("collapse") {
		if collapse, err = strconv.ParseBool(q.Get("collapse")); err != nil {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "collapse must be a boolean, got %q", q.Get("collapse")))
			return
		}
	}

	v, err := s.sess.View(center, radius, collapse)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := io.WriteJSON(v, w); err != nil {
		s.logger.Warn("writing view failed", "err", err)
	}
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	pos, err := intParam("pos", chi.URLParam(r, "pos"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	gn, err := s.sess.Graph.Genome(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, start, err := gn.SegmentAt(pos)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, locateResponse{
		Genome:   name,
		Position: pos,
		Segment:  id,
		Start:    start,
		Offset:   pos - start,
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
