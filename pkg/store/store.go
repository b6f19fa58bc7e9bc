// Package store provides the persistent sequence cache of a variation graph.
//
// A store is scoped to one graph file and holds three independent
// collections:
//   - node id -> base-pair sequence
//   - node id -> sequence length (cached so that measuring a segment never
//     loads its sequence)
//   - genome index -> genome name
//
// Two implementations share the [Store] contract: [BadgerStore] persists to
// a badger directory next to (or named after) the graph file, and
// [MemoryStore] keeps everything in memory for tests and --no-cache runs.
//
// # Lifecycle
//
// Writes are readable immediately. [Store.Commit] makes them durable; a store
// that was committed can be detected with [HasCache] and reused without
// re-copying sequences. [Store.Rollback] discards the entire store; there is
// no partial repair of a failed ingest.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/seqtower/pkg/errors"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a sequence, length or genome name was never written.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned for any operation on a closed or rolled-back store.
	ErrClosed = errors.New("store closed")
)

const (
	// Extension replaces the graph file extension to name its store.
	Extension = ".seqdb"

	// MarkerFile is written into a store directory by a successful commit.
	MarkerFile = "COMMITTED"
)

// Store is the sequence cache contract shared by all backends.
//
// Implementations are safe for concurrent readers. Writes are expected from a
// single parser goroutine and must not overlap with reads of the same keys.
type Store interface {
	// SetSequence stores seq and its length for node id as one logical unit.
	SetSequence(id int, seq string) error
	// Sequence returns the sequence of node id, or an error wrapping ErrNotFound.
	Sequence(id int) (string, error)
	// SequenceLength returns the cached length of node id, or an error wrapping ErrNotFound.
	SequenceLength(id int) (int, error)

	// AddGenomeName appends name at the next free index and returns that index.
	AddGenomeName(name string) (int, error)
	// GenomeName returns the name stored at index, or an error wrapping ErrNotFound.
	GenomeName(index int) (string, error)
	// GenomeNames returns all genome names ordered by index.
	GenomeNames() ([]string, error)

	// Commit durably flushes all pending writes.
	Commit() error
	// Rollback discards the whole store. The store is closed afterwards.
	Rollback() error
	// Close releases resources. Uncommitted writes are not guaranteed durable.
	Close() error
}

// PathFor returns the store path for a graph file.
//
// The trailing extension of graphPath (".gfa" or anything else) is replaced
// with [Extension]. If cacheDir is non-empty the store lives there under the
// same base name instead of next to the graph file.
func PathFor(graphPath, cacheDir string) string {
	base := strings.TrimSuffix(graphPath, filepath.Ext(graphPath)) + Extension
	if cacheDir == "" {
		return base
	}
	return filepath.Join(cacheDir, filepath.Base(base))
}

// HasCache reports whether a committed store exists at storePath.
// Stores left behind by an interrupted ingest have no marker and do not count.
func HasCache(storePath string) bool {
	info, err := os.Stat(filepath.Join(storePath, MarkerFile))
	return err == nil && !info.IsDir()
}

// Remove deletes the store at storePath. Removing a missing store is not an error.
func Remove(storePath string) error {
	if err := os.RemoveAll(storePath); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "remove store %s", storePath)
	}
	return nil
}

func notFound(what string, key int) error {
	return errs.Wrap(errs.ErrCodeNotFound, ErrNotFound, "%s %d", what, key)
}

func closedErr() error {
	return errs.Wrap(errs.ErrCodeStorage, ErrClosed, "store is not open")
}
