// Package memstore implements the chunk store in process memory. Used
// by tests and local development; search semantics match the other
// stores (cosine similarity, insertion-order tie-break).
package memstore

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"pdfqa/internal/domain"
)

type collection struct {
	dimension int
	chunks    []domain.StoredChunk // insertion order
}

// MemoryStore holds collections in memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewMemoryStore creates an empty in-memory chunk store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*collection)}
}

// CreateCollection destructively (re)creates a collection.
func (s *MemoryStore) CreateCollection(name string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = &collection{dimension: dimension}
	return nil
}

// UpsertChunks appends chunks to a collection.
func (s *MemoryStore) UpsertChunks(name string, chunks []domain.StoredChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	for _, c := range chunks {
		if len(c.Vector) != col.dimension {
			return fmt.Errorf("%w: chunk %s has dimension %d, collection configured for %d",
				domain.ErrDimensionMismatch, c.Chunk.ID, len(c.Vector), col.dimension)
		}
	}
	col.chunks = append(col.chunks, chunks...)
	return nil
}

// Search scores every chunk by cosine similarity and returns the topK
// best. Ties keep insertion order, so results are deterministic for a
// fixed collection state.
func (s *MemoryStore) Search(name string, vector []float32, topK int, filter domain.Filter) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if len(vector) != col.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, collection configured for %d",
			domain.ErrDimensionMismatch, len(vector), col.dimension)
	}
	if topK <= 0 {
		topK = 5
	}

	hits := make([]domain.SearchHit, 0, len(col.chunks))
	for _, c := range col.chunks {
		if !filter.Matches(c.Chunk.Metadata) {
			continue
		}
		hits = append(hits, domain.SearchHit{
			Chunk: c.Chunk,
			Score: cosineSimilarity(vector, c.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// ListCollections returns collection names in sorted order.
func (s *MemoryStore) ListCollections() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteCollection removes a collection.
func (s *MemoryStore) DeleteCollection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	delete(s.collections, name)
	return nil
}

// DeleteAll removes every collection.
func (s *MemoryStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = make(map[string]*collection)
	return nil
}

// Count returns the number of chunks in a collection.
func (s *MemoryStore) Count(name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return len(col.chunks), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
