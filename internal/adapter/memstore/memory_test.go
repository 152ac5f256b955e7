package memstore

import (
	"errors"
	"fmt"
	"testing"

	"pdfqa/internal/domain"
)

func stored(id, text string, page int, vector []float32, meta domain.ChunkMetadata) domain.StoredChunk {
	return domain.StoredChunk{
		Chunk:  domain.Chunk{ID: id, Text: text, Page: page, Metadata: meta},
		Vector: vector,
	}
}

func TestSearchTopKCap(t *testing.T) {
	s := NewMemoryStore()
	if err := s.CreateCollection("c", 2); err != nil {
		t.Fatal(err)
	}
	var chunks []domain.StoredChunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, stored(fmt.Sprintf("id%d", i), fmt.Sprintf("text %d", i), i+1, []float32{1, float32(i)}, domain.ChunkMetadata{}))
	}
	if err := s.UpsertChunks("c", chunks); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Search("c", []float32{1, 0}, 3, domain.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Errorf("expected 3 hits, got %d", len(hits))
	}
}

func TestSearchShortCollection(t *testing.T) {
	s := NewMemoryStore()
	s.CreateCollection("c", 2)
	s.UpsertChunks("c", []domain.StoredChunk{stored("a", "only", 1, []float32{1, 0}, domain.ChunkMetadata{})})

	hits, err := s.Search("c", []float32{1, 0}, 5, domain.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("fewer members than topK should return them all, got %d", len(hits))
	}
}

func TestSearchTieBreakInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	s.CreateCollection("c", 2)
	// Identical vectors score identically; insertion order must hold.
	s.UpsertChunks("c", []domain.StoredChunk{
		stored("first", "first", 1, []float32{1, 0}, domain.ChunkMetadata{}),
		stored("second", "second", 2, []float32{1, 0}, domain.ChunkMetadata{}),
		stored("third", "third", 3, []float32{1, 0}, domain.ChunkMetadata{}),
	})

	for i := 0; i < 5; i++ {
		hits, err := s.Search("c", []float32{1, 0}, 3, domain.Filter{})
		if err != nil {
			t.Fatal(err)
		}
		if hits[0].Chunk.ID != "first" || hits[1].Chunk.ID != "second" || hits[2].Chunk.ID != "third" {
			t.Fatalf("tie-break order not deterministic: %v %v %v", hits[0].Chunk.ID, hits[1].Chunk.ID, hits[2].Chunk.ID)
		}
	}
}

func TestSearchFilter(t *testing.T) {
	s := NewMemoryStore()
	s.CreateCollection("c", 2)
	s.UpsertChunks("c", []domain.StoredChunk{
		stored("a", "bio text", 1, []float32{1, 0}, domain.ChunkMetadata{Topic: "biology"}),
		stored("b", "phys text", 2, []float32{1, 0}, domain.ChunkMetadata{Topic: "physics"}),
	})

	hits, err := s.Search("c", []float32{1, 0}, 5, domain.Filter{Topic: "biology"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Chunk.Metadata.Topic != "biology" {
		t.Errorf("filter should return only matching chunks, got %+v", hits)
	}

	none, err := s.Search("c", []float32{1, 0}, 5, domain.Filter{Topic: "chemistry"})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("no matches should yield empty result, not error; got %+v", none)
	}
}

func TestDimensionMismatch(t *testing.T) {
	s := NewMemoryStore()
	s.CreateCollection("c", 3)

	err := s.UpsertChunks("c", []domain.StoredChunk{stored("a", "t", 1, []float32{1, 0}, domain.ChunkMetadata{})})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("upsert: expected ErrDimensionMismatch, got %v", err)
	}

	_, err = s.Search("c", []float32{1, 0}, 5, domain.Filter{})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("search: expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCollectionNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Search("missing", []float32{1}, 5, domain.Filter{}); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
	if err := s.DeleteCollection("missing"); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestCreateCollectionReplaces(t *testing.T) {
	s := NewMemoryStore()
	s.CreateCollection("c", 2)
	s.UpsertChunks("c", []domain.StoredChunk{stored("a", "t", 1, []float32{1, 0}, domain.ChunkMetadata{})})

	if err := s.CreateCollection("c", 2); err != nil {
		t.Fatal(err)
	}
	n, err := s.Count("c")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("recreate must empty the collection, got %d chunks", n)
	}
}
