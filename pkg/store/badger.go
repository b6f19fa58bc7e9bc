package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/observability"
)

// DefaultFlushEvery is the number of pending entries buffered in memory before
// they are pushed into badger ahead of a commit.
const DefaultFlushEvery = 8192

// Options configures a [BadgerStore].
type Options struct {
	Logger *log.Logger // defaults to log.Default()

	// SyncWrites makes badger fsync every write. Commit always syncs, so this
	// is only useful when intermediate flushes must survive a crash.
	SyncWrites bool

	// FlushEvery overrides DefaultFlushEvery.
	FlushEvery int
}

// BadgerStore is a [Store] persisted in a badger directory.
//
// Writes land in an in-memory overlay and are pushed to badger through a
// WriteBatch either when the overlay grows past FlushEvery entries or on
// Commit. Reads consult the overlay first, so a value is readable right after
// SetSequence returns.
type BadgerStore struct {
	mu         sync.RWMutex
	path       string
	db         *badger.DB
	pending    map[string][]byte
	genomes    int
	flushed    int
	flushEvery int
	logger     *log.Logger
	closed     bool
}

// Open opens (or creates) the badger store at path.
func Open(path string, opts Options) (*BadgerStore, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = DefaultFlushEvery
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "create store directory %s", path)
	}

	bopts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(opts.SyncWrites)
	bopts.ValueLogFileSize = 64 << 20

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "open store %s", path)
	}

	s := &BadgerStore{
		path:       path,
		db:         db,
		pending:    make(map[string][]byte),
		flushEvery: opts.FlushEvery,
		logger:     opts.Logger,
	}
	if s.genomes, err = s.countGenomes(); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "scan genomes in %s", path)
	}
	s.logger.Debug("opened sequence store", "path", path, "genomes", s.genomes)
	return s, nil
}

// Path returns the directory backing the store.
func (s *BadgerStore) Path() string { return s.path }

// countGenomes returns one past the highest genome index on disk.
func (s *BadgerStore) countGenomes() (int, error) {
	next := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{nsGenome}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if i := keyIndex(it.Item().Key()); i >= next {
				next = i + 1
			}
		}
		return nil
	})
	return next, err
}

// SetSequence implements [Store].
func (s *BadgerStore) SetSequence(id int, seq string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return closedErr()
	}
	s.pending[string(sequenceKey(id))] = []byte(seq)
	s.pending[string(lengthKey(id))] = encodeLength(len(seq))
	if len(s.pending) >= s.flushEvery {
		return s.flushLocked()
	}
	return nil
}

// Sequence implements [Store].
func (s *BadgerStore) Sequence(id int) (string, error) {
	v, err := s.get(sequenceKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			observability.Store().OnSequenceMiss(s.path, id)
			return "", notFound("sequence for node", id)
		}
		return "", err
	}
	return string(v), nil
}

// SequenceLength implements [Store].
func (s *BadgerStore) SequenceLength(id int) (int, error) {
	v, err := s.get(lengthKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			observability.Store().OnSequenceMiss(s.path, id)
			return 0, notFound("sequence length for node", id)
		}
		return 0, err
	}
	n := decodeLength(v)
	if n < 0 {
		return 0, errs.New(errs.ErrCodeStorage, "corrupt length entry for node %d", id)
	}
	return n, nil
}

// AddGenomeName implements [Store].
func (s *BadgerStore) AddGenomeName(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, closedErr()
	}
	idx := s.genomes
	s.pending[string(genomeKey(idx))] = []byte(name)
	s.genomes++
	return idx, nil
}

// GenomeName implements [Store].
func (s *BadgerStore) GenomeName(index int) (string, error) {
	v, err := s.get(genomeKey(index))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", notFound("genome index", index)
		}
		return "", err
	}
	return string(v), nil
}

// GenomeNames implements [Store].
func (s *BadgerStore) GenomeNames() ([]string, error) {
	s.mu.RLock()
	n := s.genomes
	s.mu.RUnlock()

	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, err := s.GenomeName(i)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// get reads key from the pending overlay or from badger.
// A missing key yields ErrNotFound unwrapped so callers can attach context.
func (s *BadgerStore) get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, closedErr()
	}
	if v, ok := s.pending[string(key)]; ok {
		return v, nil
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "read %s", s.path)
	}
	return value, nil
}

// flushLocked pushes the pending overlay into badger. Caller holds s.mu.
func (s *BadgerStore) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for k, v := range s.pending {
		if err := wb.Set([]byte(k), v); err != nil {
			return errs.Wrap(errs.ErrCodeStorage, err, "write batch to %s", s.path)
		}
	}
	if err := wb.Flush(); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "flush batch to %s", s.path)
	}
	s.flushed += len(s.pending)
	s.pending = make(map[string][]byte)
	return nil
}

// Commit implements [Store]. After it returns nil the store directory
// carries [MarkerFile] and [HasCache] reports true.
func (s *BadgerStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return closedErr()
	}

	start := time.Now()
	err := s.commitLocked()
	entries := s.flushed
	s.flushed = 0
	observability.Store().OnCommit(s.path, entries, time.Since(start), err)
	if err != nil {
		return err
	}
	s.logger.Debug("committed sequence store", "path", s.path, "entries", entries, "duration", time.Since(start))
	return nil
}

func (s *BadgerStore) commitLocked() error {
	if err := s.flushLocked(); err != nil {
		return err
	}
	if err := s.db.Sync(); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "sync %s", s.path)
	}
	marker := filepath.Join(s.path, MarkerFile)
	if err := os.WriteFile(marker, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "write commit marker %s", marker)
	}
	return nil
}

// Rollback implements [Store]: the badger directory is closed and removed.
func (s *BadgerStore) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closeErr error
	if !s.closed {
		closeErr = s.db.Close()
		s.closed = true
	}
	s.pending = nil

	err := os.RemoveAll(s.path)
	if err == nil && closeErr != nil {
		// The directory is gone; a close failure leaves nothing to repair.
		s.logger.Warn("closing store before rollback failed", "path", s.path, "err", closeErr)
	}
	if err != nil {
		err = errs.Wrap(errs.ErrCodeStorage, err, "remove store %s", s.path)
	}
	observability.Store().OnRollback(s.path, err)
	if err == nil {
		s.logger.Debug("rolled back sequence store", "path", s.path)
	}
	return err
}

// Close implements [Store]. Pending writes that were never committed are dropped.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.pending = nil
	if err := s.db.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "close store %s", s.path)
	}
	return nil
}

// Ensure BadgerStore implements Store.
var _ Store = (*BadgerStore)(nil)
