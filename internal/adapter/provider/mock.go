package provider

import (
	"fmt"
	"strings"

	"pdfqa/internal/domain"
)

// MockProvider is a deterministic in-process provider for tests and
// local development. Embeddings are derived from the text's runes so
// identical texts always embed identically.
type MockProvider struct {
	dimension int

	// Optional canned behavior.
	Variants map[string][]string              // question -> rephrasings
	Metadata map[string]domain.ChunkMetadata  // text -> metadata
	Answer   string

	// Failure injection.
	EmbedErr    error
	CompleteErr error
	ExpandErr   error
	MetadataErr error

	// FailEmbedFor makes Embed fail only for the given text.
	FailEmbedFor string

	// Recorded calls, for assertions.
	Completions []CompletionCall
}

// CompletionCall records one Complete invocation.
type CompletionCall struct {
	Question string
	Context  string
}

// NewMockProvider creates a mock with the given embedding dimension.
func NewMockProvider(dimension int) *MockProvider {
	return &MockProvider{dimension: dimension}
}

func (p *MockProvider) Embed(text string) ([]float32, error) {
	if p.EmbedErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, p.EmbedErr)
	}
	if p.FailEmbedFor != "" && text == p.FailEmbedFor {
		return nil, fmt.Errorf("%w: injected failure for %q", domain.ErrEmbedding, text)
	}
	vector := make([]float32, p.dimension)
	for i, r := range text {
		if i >= p.dimension {
			break
		}
		vector[i] = float32(r) / 1000.0
	}
	return vector, nil
}

func (p *MockProvider) Complete(question, context string) (string, error) {
	if p.CompleteErr != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCompletion, p.CompleteErr)
	}
	p.Completions = append(p.Completions, CompletionCall{Question: question, Context: context})
	if p.Answer != "" {
		return p.Answer, nil
	}
	return "mock answer: " + question, nil
}

func (p *MockProvider) ExpandQuery(question string, n int) ([]string, error) {
	if p.ExpandErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCompletion, p.ExpandErr)
	}
	if v, ok := p.Variants[question]; ok {
		return v, nil
	}
	variants := make([]string, n)
	for i := range variants {
		variants[i] = fmt.Sprintf("variant %d: %s", i+1, question)
	}
	return variants, nil
}

func (p *MockProvider) ExtractMetadata(text string) (domain.ChunkMetadata, error) {
	if p.MetadataErr != nil {
		return domain.ChunkMetadata{}, p.MetadataErr
	}
	if m, ok := p.Metadata[text]; ok {
		return m, nil
	}
	// Crude default: first word is the topic.
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return domain.ChunkMetadata{}, nil
	}
	return domain.ChunkMetadata{Topic: strings.ToLower(fields[0])}, nil
}

func (p *MockProvider) Dimension() int {
	return p.dimension
}

func (p *MockProvider) Name() string {
	return "mock"
}
