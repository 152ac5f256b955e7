package usecase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pdfqa/internal/domain"
	"pdfqa/internal/port"
)

// Ingestor turns extracted document pages into a populated chunk
// collection. One upload, one collection; re-uploads replace.
type Ingestor struct {
	provider  port.Provider
	store     port.ChunkStore
	extractor port.PageExtractor
}

// NewIngestor creates an ingestion pipeline.
func NewIngestor(provider port.Provider, store port.ChunkStore, extractor port.PageExtractor) *Ingestor {
	return &Ingestor{provider: provider, store: store, extractor: extractor}
}

// IngestResult reports one completed upload.
type IngestResult struct {
	Collection string `json:"collection"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
}

// IngestFile extracts pages from the document at path and ingests them.
// docName names the collection; pass the upload's original file name,
// not the temp path.
func (u *Ingestor) IngestFile(path, docName string, strategy domain.Strategy) (*IngestResult, error) {
	pages, err := u.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}
	return u.IngestPages(docName, pages, strategy)
}

// IngestPages builds one chunk per non-empty page, embeds every chunk,
// and loads them into a freshly created collection. Any embedding
// failure aborts the whole upload; nothing is upserted in that case.
func (u *Ingestor) IngestPages(docName string, pages []domain.PageText, strategy domain.Strategy) (*IngestResult, error) {
	name, err := domain.CollectionName(strategy, docName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}

	var chunks []domain.Chunk
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		chunk := domain.Chunk{
			ID:   uuid.NewString(),
			Text: page.Text,
			Page: page.Page,
		}
		if strategy.NeedsMetadata() {
			// Extraction failure is non-fatal: the chunk keeps the
			// empty record and ingestion continues.
			if meta, err := u.provider.ExtractMetadata(page.Text); err == nil {
				chunk.Metadata = meta
			}
		}
		chunks = append(chunks, chunk)
	}

	// Embed everything before touching the store, so a failure never
	// leaves a partially filled collection behind.
	stored := make([]domain.StoredChunk, len(chunks))
	for i, chunk := range chunks {
		vector, err := u.provider.Embed(chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", domain.ErrIngestion, chunk.Page, err)
		}
		stored[i] = domain.StoredChunk{Chunk: chunk, Vector: vector}
	}

	if err := u.store.CreateCollection(name, u.provider.Dimension()); err != nil {
		return nil, fmt.Errorf("%w: create collection %s: %w", domain.ErrIngestion, name, err)
	}
	if err := u.store.UpsertChunks(name, stored); err != nil {
		return nil, fmt.Errorf("%w: upsert into %s: %w", domain.ErrIngestion, name, err)
	}

	return &IngestResult{Collection: name, Pages: len(pages), Chunks: len(stored)}, nil
}
