package usecase

import (
	"errors"
	"testing"

	"pdfqa/internal/adapter/memstore"
	"pdfqa/internal/adapter/provider"
	"pdfqa/internal/domain"
)

// fakeExtractor returns canned pages, or an error.
type fakeExtractor struct {
	pages []domain.PageText
	err   error
}

func (f *fakeExtractor) Extract(path string) ([]domain.PageText, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

func TestIngestPages(t *testing.T) {
	mock := provider.NewMockProvider(4)
	store := memstore.NewMemoryStore()
	ing := NewIngestor(mock, store, nil)

	pages := []domain.PageText{
		{Page: 1, Text: "introduction to the system"},
		{Page: 2, Text: "   \n\t  "}, // whitespace-only, skipped
		{Page: 3, Text: "conclusion and future work"},
	}
	res, err := ing.IngestPages("report.pdf", pages, domain.StrategySimple)
	if err != nil {
		t.Fatal(err)
	}

	if res.Collection != "simplerag_report" {
		t.Errorf("collection = %q, want simplerag_report", res.Collection)
	}
	if res.Pages != 3 || res.Chunks != 2 {
		t.Errorf("pages/chunks = %d/%d, want 3/2", res.Pages, res.Chunks)
	}
	if n, _ := store.Count("simplerag_report"); n != 2 {
		t.Errorf("store holds %d chunks, want 2", n)
	}
}

func TestIngestEmbedFailureAbortsUpload(t *testing.T) {
	mock := provider.NewMockProvider(4)
	mock.FailEmbedFor = "page two"
	store := memstore.NewMemoryStore()
	ing := NewIngestor(mock, store, nil)

	pages := []domain.PageText{
		{Page: 1, Text: "page one"},
		{Page: 2, Text: "page two"},
	}
	_, err := ing.IngestPages("doc.pdf", pages, domain.StrategySimple)
	if !errors.Is(err, domain.ErrIngestion) {
		t.Fatalf("expected ErrIngestion, got %v", err)
	}
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("expected wrapped ErrEmbedding, got %v", err)
	}

	// Nothing may have reached the store.
	if names, _ := store.ListCollections(); len(names) != 0 {
		t.Errorf("failed upload must not create collections, got %v", names)
	}
}

func TestIngestSelfQueryExtractsMetadata(t *testing.T) {
	mock := provider.NewMockProvider(4)
	mock.Metadata = map[string]domain.ChunkMetadata{
		"revenue section": {Topic: "finance", SectionTitle: "Revenue"},
	}
	store := memstore.NewMemoryStore()
	ing := NewIngestor(mock, store, nil)

	pages := []domain.PageText{{Page: 1, Text: "revenue section"}}
	if _, err := ing.IngestPages("doc.pdf", pages, domain.StrategySelfQuery); err != nil {
		t.Fatal(err)
	}

	hits, err := store.Search("selfrag_doc", make([]float32, 4), 5, domain.Filter{Topic: "finance"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected metadata-filtered hit, got %d", len(hits))
	}
	if hits[0].Chunk.Metadata.SectionTitle != "Revenue" {
		t.Errorf("section title = %q, want Revenue", hits[0].Chunk.Metadata.SectionTitle)
	}
}

func TestIngestMetadataFailureIsNonFatal(t *testing.T) {
	mock := provider.NewMockProvider(4)
	mock.MetadataErr = errors.New("model returned garbage")
	store := memstore.NewMemoryStore()
	ing := NewIngestor(mock, store, nil)

	pages := []domain.PageText{{Page: 1, Text: "some text"}}
	res, err := ing.IngestPages("doc.pdf", pages, domain.StrategySelfQuery)
	if err != nil {
		t.Fatalf("metadata failure must not abort ingestion: %v", err)
	}
	if res.Chunks != 1 {
		t.Errorf("chunks = %d, want 1", res.Chunks)
	}

	hits, _ := store.Search("selfrag_doc", make([]float32, 4), 5, domain.Filter{})
	if len(hits) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(hits))
	}
	meta := hits[0].Chunk.Metadata
	if meta.Topic != "" || meta.SectionTitle != "" || len(meta.Entities) != 0 {
		t.Errorf("chunk must carry the empty metadata record, got %+v", meta)
	}
}

func TestIngestSimpleSkipsMetadata(t *testing.T) {
	mock := provider.NewMockProvider(4)
	mock.MetadataErr = errors.New("should never be called")
	store := memstore.NewMemoryStore()
	ing := NewIngestor(mock, store, nil)

	pages := []domain.PageText{{Page: 1, Text: "plain text"}}
	if _, err := ing.IngestPages("doc.pdf", pages, domain.StrategySimple); err != nil {
		t.Fatalf("simple ingestion must not touch metadata extraction: %v", err)
	}
}

func TestIngestFile(t *testing.T) {
	mock := provider.NewMockProvider(4)
	store := memstore.NewMemoryStore()
	ext := &fakeExtractor{pages: []domain.PageText{{Page: 1, Text: "hello"}}}
	ing := NewIngestor(mock, store, ext)

	res, err := ing.IngestFile("/tmp/upload-123.pdf", "My Paper.pdf", domain.StrategyFusion)
	if err != nil {
		t.Fatal(err)
	}
	// Collection name comes from the original file name, not the temp path.
	if res.Collection != "fusionrag_My_Paper" {
		t.Errorf("collection = %q, want fusionrag_My_Paper", res.Collection)
	}
}

func TestIngestFileExtractorError(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("not a pdf")}
	ing := NewIngestor(provider.NewMockProvider(4), memstore.NewMemoryStore(), ext)

	_, err := ing.IngestFile("/tmp/x", "x.pdf", domain.StrategySimple)
	if !errors.Is(err, domain.ErrIngestion) {
		t.Errorf("expected ErrIngestion, got %v", err)
	}
}
