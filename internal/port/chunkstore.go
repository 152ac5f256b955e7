package port

import "pdfqa/internal/domain"

// ChunkStore wraps the vector index. One collection holds all chunks of
// one uploaded document version; collections are never merged.
type ChunkStore interface {
	// CreateCollection (re)creates an empty collection configured for
	// cosine similarity at the given dimension. Destructive: an
	// existing collection with the same name is replaced.
	CreateCollection(name string, dimension int) error

	// UpsertChunks writes chunks with vectors already attached. Fails
	// with domain.ErrDimensionMismatch if any vector length disagrees
	// with the collection's configured dimension.
	UpsertChunks(collection string, chunks []domain.StoredChunk) error

	// Search returns up to topK nearest neighbors ranked by similarity
	// descending, ties broken by insertion order. The filter is a
	// conjunction of exact-match conditions; the zero filter is
	// unrestricted. Fewer matches than topK is an empty or short
	// result, not an error.
	Search(collection string, vector []float32, topK int, filter domain.Filter) ([]domain.SearchHit, error)

	// Administrative operations. Retrieval strategies never invoke
	// these themselves.
	ListCollections() ([]string, error)
	DeleteCollection(name string) error
	DeleteAll() error
}
