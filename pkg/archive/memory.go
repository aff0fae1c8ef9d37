package archive

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/algotrace/pkg/trace"
)

type memoryEntry struct {
	summary Summary
	data    []byte
}

// MemoryStore keeps encoded documents in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memoryEntry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Save(ctx context.Context, doc *trace.Document) (string, error) {
	sum, data, err := prepare(doc)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[sum.ID] = memoryEntry{summary: sum, data: data}
	return sum.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*trace.Document, error) {
	s.mu.RLock()
	e, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return decode(id, e.data)
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.docs))
	for _, e := range s.docs {
		out = append(out, e.summary)
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// sortNewestFirst orders summaries by creation time descending, then by id.
func sortNewestFirst(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

var _ Store = (*MemoryStore)(nil)
