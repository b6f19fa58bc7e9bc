// Package session ties one graph file to its sequence store.
//
// A session owns the lifecycle that the graph core leaves to its caller:
// the store is opened (or reused when a committed cache exists), the file
// is parsed into a graph, and the store is committed. If anything fails on
// a fresh store, the store is rolled back so no half-written cache survives.
// A failure while re-reading a file over a committed cache only closes the
// store; the cache stays valid for the next attempt.
//
// # Usage
//
//	sess, err := session.Open(ctx, "pangenome.gfa", session.Options{})
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	v, err := sess.View(42, 10, true)
//
// After Open returns, a session is read-only and safe for concurrent readers.
package session

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/gfa"
	"github.com/matzehuels/seqtower/pkg/graph"
	"github.com/matzehuels/seqtower/pkg/store"
	"github.com/matzehuels/seqtower/pkg/subgraph"
	"github.com/matzehuels/seqtower/pkg/view"
)

// Options configures [Open] and [OpenReader].
type Options struct {
	Logger *log.Logger // defaults to log.Default()

	// CacheDir holds the store instead of the graph file's directory.
	CacheDir string

	// NoCache keeps sequences in memory and never touches the disk.
	NoCache bool

	// Refresh discards a committed store and re-ingests the file.
	Refresh bool

	// Validate runs a full-graph cycle check after parsing.
	Validate bool

	// Progress is forwarded to the parser.
	Progress func(done, total int)
}

// Session is one parsed graph together with its store.
type Session struct {
	ID        uuid.UUID
	Path      string // graph file; empty for OpenReader
	StorePath string // empty for in-memory stores
	Cached    bool   // sequences were served from a committed store
	Graph     *graph.Graph
	Store     store.Store

	logger *log.Logger
}

// Summary describes a session's graph.
type Summary struct {
	Nodes   int      `json:"nodes"`
	Edges   int      `json:"edges"`
	Roots   []int    `json:"roots"`
	Genomes []string `json:"genomes"`
	Cached  bool     `json:"cached"`
}

// Open parses the graph file at path and returns a committed session.
func Open(ctx context.Context, path string, opts Options) (*Session, error) {
	if err := errs.ValidateGraphPath(path); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	total, err := gfa.CountLines(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "count lines of %s", path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "rewind %s", path)
	}

	s := &Session{ID: uuid.New(), Path: path, logger: opts.Logger}
	if err := s.openStore(opts); err != nil {
		return nil, err
	}
	if err := s.load(ctx, f, total, opts); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenReader parses r over st, which must be empty. On failure st is rolled
// back; on success the returned session owns it.
func OpenReader(ctx context.Context, r io.Reader, st store.Store, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Session{ID: uuid.New(), Store: st, logger: opts.Logger}
	if err := s.load(ctx, r, 0, opts); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) openStore(opts Options) error {
	if opts.NoCache {
		s.Store = store.NewMemoryStore()
		return nil
	}

	s.StorePath = store.PathFor(s.Path, opts.CacheDir)
	if opts.Refresh && store.HasCache(s.StorePath) {
		s.logger.Info("discarding cached sequences", "store", s.StorePath)
	}
	// A store without a commit marker is left over from an interrupted
	// ingest and cannot be trusted.
	if opts.Refresh || !store.HasCache(s.StorePath) {
		if err := store.Remove(s.StorePath); err != nil {
			return err
		}
	}
	s.Cached = store.HasCache(s.StorePath)

	st, err := store.Open(s.StorePath, store.Options{Logger: opts.Logger})
	if err != nil {
		return err
	}
	s.Store = st
	return nil
}

func (s *Session) load(ctx context.Context, r io.Reader, total int, opts Options) error {
	start := time.Now()
	g, err := gfa.Parse(ctx, r, s.Store, gfa.Options{
		Logger:        opts.Logger,
		Source:        s.Path,
		Progress:      opts.Progress,
		Total:         total,
		SkipSequences: s.Cached,
	})
	if err == nil && opts.Validate {
		err = g.Validate()
	}
	if err == nil && !s.Cached {
		err = s.Store.Commit()
	}
	if err != nil {
		s.abort(err)
		return err
	}

	s.Graph = g
	s.logger.Info("loaded graph",
		"path", s.Path,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", s.Cached,
		"duration", time.Since(start))
	return nil
}

// abort releases the store after a failed load.
func (s *Session) abort(cause error) {
	if s.Cached {
		if err := s.Store.Close(); err != nil {
			s.logger.Warn("closing store failed", "store", s.StorePath, "err", err)
		}
		return
	}
	if err := s.Store.Rollback(); err != nil {
		s.logger.Error("rollback failed", "store", s.StorePath, "err", err, "cause", cause)
		return
	}
	s.logger.Debug("rolled back store", "store", s.StorePath, "cause", cause)
}

// Summary returns counts, roots and genome names of the graph.
func (s *Session) Summary() Summary {
	return Summary{
		Nodes:   s.Graph.NodeCount(),
		Edges:   s.Graph.EdgeCount(),
		Roots:   s.Graph.Roots(),
		Genomes: s.Graph.GenomeNames(),
		Cached:  s.Cached,
	}
}

// Subgraph extracts the subgraph of the given radius around center.
func (s *Session) Subgraph(center, radius int) (*subgraph.Subgraph, error) {
	return subgraph.Extract(s.Graph, center, radius)
}

// View extracts a subgraph and lays it out, folding SNP bubbles if collapse is set.
func (s *Session) View(center, radius int, collapse bool) (*view.View, error) {
	sub, err := s.Subgraph(center, radius)
	if err != nil {
		return nil, err
	}
	return view.Build(sub, view.Options{CollapseSNPs: collapse})
}

// Close releases the store. The committed cache stays on disk.
func (s *Session) Close() error {
	return s.Store.Close()
}
