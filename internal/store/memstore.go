package store

import (
	"sort"
	"sync"

	"github.com/somnia-app/gosomnia/pkg/resonance"
)

// MemStore is an in-memory implementation of Storer for testing.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]*Entry)}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

// PutEntry inserts or replaces an entry.
func (s *MemStore) PutEntry(e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	cp.Embedding = append([]float32(nil), e.Embedding...)
	cp.Symbols = append([]string(nil), e.Symbols...)
	s.entries[e.ID] = &cp
	return nil
}

// GetEntry returns the entry or nil when absent.
func (s *MemStore) GetEntry(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

// DeleteEntry removes an entry. Deleting a missing entry is a no-op.
func (s *MemStore) DeleteEntry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// ListWindow returns a user's entries inside [from, to], oldest first.
func (s *MemStore) ListWindow(uid string, from, to int64) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Entry
	for _, e := range s.entries {
		if e.UID != uid || e.CreatedAt < from || e.CreatedAt > to {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// CountEntries returns the number of entries for a user.
func (s *MemStore) CountEntries(uid string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entries {
		if e.UID == uid {
			count++
		}
	}
	return count, nil
}

// LatestEntryAt returns the newest createdAt for a user, 0 when none.
func (s *MemStore) LatestEntryAt(uid string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := int64(0)
	for _, e := range s.entries {
		if e.UID == uid && e.CreatedAt > latest {
			latest = e.CreatedAt
		}
	}
	return latest, nil
}

// SimilarEntries brute-forces cosine similarity over the user's entries.
func (s *MemStore) SimilarEntries(uid string, embedding []float32, k int) ([]SimilarHit, error) {
	if k <= 0 || resonance.IsZero(embedding) {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []SimilarHit
	for _, e := range s.entries {
		if e.UID != uid || resonance.IsZero(e.Embedding) {
			continue
		}
		hits = append(hits, SimilarHit{
			EntryID:    e.ID,
			Similarity: resonance.CosineSimilarity(embedding, e.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].EntryID < hits[j].EntryID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
