// Package qdrant implements the chunk store over the Qdrant REST API.
package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pdfqa/internal/domain"
)

// Store is a minimal REST client to Qdrant. Collections are created
// with cosine distance; the embedding dimension is a configuration
// constant validated on every upsert and search.
type Store struct {
	url       string
	apiKey    string
	dimension int
	client    *http.Client
}

// Config holds connection details for a Qdrant store.
type Config struct {
	URL       string
	APIKey    string
	Dimension int
	Timeout   time.Duration
}

// NewStore creates a Qdrant-backed chunk store.
func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: timeout},
	}
}

// CreateCollection destructively (re)creates a collection configured
// for cosine similarity at the given dimension.
func (s *Store) CreateCollection(name string, dimension int) error {
	if dimension != s.dimension {
		return fmt.Errorf("%w: store configured for %d, requested %d", domain.ErrDimensionMismatch, s.dimension, dimension)
	}

	// Drop first so re-upload is full-replace, never append.
	if err := s.doJSON(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, name), nil, nil); err != nil {
		var statusErr *statusError
		if !errors.As(err, &statusErr) || statusErr.code != http.StatusNotFound {
			return err
		}
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.doJSON(http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, name), body, nil)
}

// UpsertChunks writes chunks with vectors already attached.
func (s *Store) UpsertChunks(collection string, chunks []domain.StoredChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		if len(c.Vector) != s.dimension {
			return fmt.Errorf("%w: chunk %s has dimension %d, collection configured for %d",
				domain.ErrDimensionMismatch, c.Chunk.ID, len(c.Vector), s.dimension)
		}
		payload := map[string]any{
			"text": c.Chunk.Text,
			"page": c.Chunk.Page,
		}
		if c.Chunk.Metadata.Topic != "" {
			payload["topic"] = c.Chunk.Metadata.Topic
		}
		if len(c.Chunk.Metadata.Entities) > 0 {
			payload["entities"] = c.Chunk.Metadata.Entities
		}
		if c.Chunk.Metadata.SectionTitle != "" {
			payload["section_title"] = c.Chunk.Metadata.SectionTitle
		}
		points[i] = map[string]any{
			"id":      c.Chunk.ID,
			"vector":  c.Vector,
			"payload": payload,
		}
	}

	body := map[string]any{"points": points}
	return s.doJSON(http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, collection), body, nil)
}

// Search returns up to topK nearest neighbors, optionally restricted by
// a conjunction of exact-match payload conditions.
func (s *Store) Search(collection string, vector []float32, topK int, filter domain.Filter) ([]domain.SearchHit, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, collection configured for %d",
			domain.ErrDimensionMismatch, len(vector), s.dimension)
	}
	if topK <= 0 {
		topK = 5
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if q := filterConditions(filter); len(q) > 0 {
		req["filter"] = map[string]any{"must": q}
	}

	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := s.doJSON(http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, collection), req, &resp)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.SearchHit{
			Chunk: chunkFromPayload(r.ID, r.Payload),
			Score: r.Score,
		})
	}
	return hits, nil
}

// ListCollections returns all collection names.
func (s *Store) ListCollections() ([]string, error) {
	var resp struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}
	if err := s.doJSON(http.MethodGet, fmt.Sprintf("%s/collections", s.url), nil, &resp); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Result.Collections))
	for _, c := range resp.Result.Collections {
		names = append(names, c.Name)
	}
	return names, nil
}

// DeleteCollection removes a single collection.
func (s *Store) DeleteCollection(name string) error {
	return s.doJSON(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, name), nil, nil)
}

// DeleteAll removes every collection. Irreversible; confirmation is the
// caller's responsibility.
func (s *Store) DeleteAll() error {
	names, err := s.ListCollections()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.DeleteCollection(name); err != nil {
			return err
		}
	}
	return nil
}

func filterConditions(filter domain.Filter) []map[string]any {
	var must []map[string]any
	if filter.Topic != "" {
		must = append(must, map[string]any{
			"key":   "topic",
			"match": map[string]any{"value": filter.Topic},
		})
	}
	if filter.SectionTitle != "" {
		must = append(must, map[string]any{
			"key":   "section_title",
			"match": map[string]any{"value": filter.SectionTitle},
		})
	}
	return must
}

func chunkFromPayload(id string, payload map[string]any) domain.Chunk {
	chunk := domain.Chunk{ID: id}
	if v, ok := payload["text"].(string); ok {
		chunk.Text = v
	}
	if v, ok := payload["page"].(float64); ok {
		chunk.Page = int(v)
	}
	if v, ok := payload["topic"].(string); ok {
		chunk.Metadata.Topic = v
	}
	if v, ok := payload["section_title"].(string); ok {
		chunk.Metadata.SectionTitle = v
	}
	if vs, ok := payload["entities"].([]any); ok {
		for _, v := range vs {
			if e, ok := v.(string); ok {
				chunk.Metadata.Entities = append(chunk.Metadata.Entities, e)
			}
		}
	}
	return chunk
}

// statusError carries a non-2xx HTTP status from Qdrant.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant returned status %d: %s", e.code, e.body)
}

func (s *Store) doJSON(method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", domain.ErrStoreUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", domain.ErrCollectionNotFound, &statusError{code: resp.StatusCode, body: string(respBody)})
	}
	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, body: string(respBody)}
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
