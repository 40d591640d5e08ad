package logging

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. It backs the CLI when history is
// disabled and serves as a test double.
type MemoryStore struct {
	mu   sync.Mutex
	recs []LogRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Append(_ context.Context, rec LogRecord) error {
	m.mu.Lock()
	m.recs = append(m.recs, rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Query(_ context.Context, q LogQuery) ([]LogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []LogRecord
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return q.finish(res), nil
}

func (m *MemoryStore) Close() error { return nil }
