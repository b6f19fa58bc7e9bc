package store

import (
	"sync"
	"time"

	"github.com/matzehuels/seqtower/pkg/observability"
)

// MemoryStore is a [Store] that keeps everything in memory.
// Commit is a no-op; Rollback clears all data and closes the store.
// Useful for testing or when persistence should be disabled.
type MemoryStore struct {
	mu        sync.RWMutex
	sequences map[int]string
	genomes   []string
	closed    bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sequences: make(map[int]string)}
}

// SetSequence implements [Store].
func (m *MemoryStore) SetSequence(id int, seq string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return closedErr()
	}
	m.sequences[id] = seq
	return nil
}

// Sequence implements [Store].
func (m *MemoryStore) Sequence(id int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", closedErr()
	}
	seq, ok := m.sequences[id]
	if !ok {
		observability.Store().OnSequenceMiss("", id)
		return "", notFound("sequence for node", id)
	}
	return seq, nil
}

// SequenceLength implements [Store].
func (m *MemoryStore) SequenceLength(id int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, closedErr()
	}
	seq, ok := m.sequences[id]
	if !ok {
		observability.Store().OnSequenceMiss("", id)
		return 0, notFound("sequence length for node", id)
	}
	return len(seq), nil
}

// AddGenomeName implements [Store].
func (m *MemoryStore) AddGenomeName(name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, closedErr()
	}
	m.genomes = append(m.genomes, name)
	return len(m.genomes) - 1, nil
}

// GenomeName implements [Store].
func (m *MemoryStore) GenomeName(index int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", closedErr()
	}
	if index < 0 || index >= len(m.genomes) {
		return "", notFound("genome index", index)
	}
	return m.genomes[index], nil
}

// GenomeNames implements [Store].
func (m *MemoryStore) GenomeNames() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, closedErr()
	}
	return append([]string(nil), m.genomes...), nil
}

// Commit does nothing beyond reporting the commit to the store hooks.
func (m *MemoryStore) Commit() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return closedErr()
	}
	observability.Store().OnCommit("", len(m.sequences), time.Duration(0), nil)
	return nil
}

// Rollback drops all data and closes the store.
func (m *MemoryStore) Rollback() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences = nil
	m.genomes = nil
	m.closed = true
	observability.Store().OnRollback("", nil)
	return nil
}

// Close marks the store closed; later operations return an error wrapping ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
