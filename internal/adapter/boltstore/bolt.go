// Package boltstore implements the chunk store on an embedded BoltDB
// file. Vectors are cached in memory and searched brute force; fine for
// per-document collections of page-sized chunks.
package boltstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"go.etcd.io/bbolt"

	"pdfqa/internal/domain"
)

const collectionPrefix = "col_"

var (
	keyMeta      = []byte("meta")
	bucketPoints = []byte("points")
)

// BoltStore is a BoltDB-backed chunk store.
type BoltStore struct {
	db *bbolt.DB

	mu    sync.RWMutex
	cache map[string]*colCache
}

type colCache struct {
	dimension int
	chunks    []domain.StoredChunk // insertion order
}

type colMeta struct {
	Dimension int `json:"dimension"`
}

type storedPoint struct {
	ID       string               `json:"id"`
	Vector   []float32            `json:"v"`
	Text     string               `json:"text"`
	Page     int                  `json:"page"`
	Metadata domain.ChunkMetadata `json:"meta,omitempty"`
}

// Open opens or creates the store file.
func Open(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	s := &BoltStore{db: db, cache: make(map[string]*colCache)}
	if err := s.loadCache(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) loadCache() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			colName, ok := strings.CutPrefix(string(name), collectionPrefix)
			if !ok {
				return nil
			}
			var meta colMeta
			if raw := b.Get(keyMeta); raw != nil {
				if err := json.Unmarshal(raw, &meta); err != nil {
					return nil // skip corrupted collections
				}
			}
			cache := &colCache{dimension: meta.Dimension}
			if points := b.Bucket(bucketPoints); points != nil {
				_ = points.ForEach(func(_, v []byte) error {
					var p storedPoint
					if err := json.Unmarshal(v, &p); err != nil {
						return nil
					}
					cache.chunks = append(cache.chunks, domain.StoredChunk{
						Chunk:  domain.Chunk{ID: p.ID, Text: p.Text, Page: p.Page, Metadata: p.Metadata},
						Vector: p.Vector,
					})
					return nil
				})
			}
			s.cache[colName] = cache
			return nil
		})
	})
}

// CreateCollection destructively (re)creates a collection.
func (s *BoltStore) CreateCollection(name string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bucketName := []byte(collectionPrefix + name)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketName) != nil {
			if err := tx.DeleteBucket(bucketName); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketName)
		if err != nil {
			return err
		}
		meta, err := json.Marshal(colMeta{Dimension: dimension})
		if err != nil {
			return err
		}
		if err := b.Put(keyMeta, meta); err != nil {
			return err
		}
		_, err = b.CreateBucket(bucketPoints)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	s.cache[name] = &colCache{dimension: dimension}
	return nil
}

// UpsertChunks appends chunks to a collection. Sequence keys preserve
// insertion order across restarts.
func (s *BoltStore) UpsertChunks(name string, chunks []domain.StoredChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.cache[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	for _, c := range chunks {
		if len(c.Vector) != col.dimension {
			return fmt.Errorf("%w: chunk %s has dimension %d, collection configured for %d",
				domain.ErrDimensionMismatch, c.Chunk.ID, len(c.Vector), col.dimension)
		}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collectionPrefix + name))
		if b == nil {
			return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
		}
		points := b.Bucket(bucketPoints)
		if points == nil {
			return fmt.Errorf("points bucket missing for %s", name)
		}
		for _, c := range chunks {
			seq, err := points.NextSequence()
			if err != nil {
				return err
			}
			data, err := json.Marshal(storedPoint{
				ID:       c.Chunk.ID,
				Vector:   c.Vector,
				Text:     c.Chunk.Text,
				Page:     c.Chunk.Page,
				Metadata: c.Chunk.Metadata,
			})
			if err != nil {
				return err
			}
			if err := points.Put(itob(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	col.chunks = append(col.chunks, chunks...)
	return nil
}

// Search scores the cached vectors by cosine similarity and returns the
// topK best, ties broken by insertion order.
func (s *BoltStore) Search(name string, vector []float32, topK int, filter domain.Filter) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.cache[name]
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
func (s *BoltStore) ListCollections() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.cache))
	for name := range s.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteCollection removes a collection.
func (s *BoltStore) DeleteCollection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket([]byte(collectionPrefix + name))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	delete(s.cache, name)
	return nil
}

// DeleteAll removes every collection. Irreversible.
func (s *BoltStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for name := range s.cache {
			if err := tx.DeleteBucket([]byte(collectionPrefix + name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	s.cache = make(map[string]*colCache)
	return nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
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
