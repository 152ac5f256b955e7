package provider

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdfqa/internal/domain"
)

func newTestProvider(t *testing.T, handler http.Handler, dimension int) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("TEST_API_KEY", "test-key")
	p, err := NewOpenAI(Options{
		APIKeyEnv:  "TEST_API_KEY",
		BaseURL:    srv.URL,
		EmbedModel: "test-embed",
		LLMModel:   "test-llm",
		Dimension:  dimension,
	})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	return p
}

func TestOpenAIEmbed(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Input) != 1 || req.Input[0] != "hello" {
			t.Errorf("unexpected input %v", req.Input)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}, "index": 0}},
		})
	}), 3)

	vector, err := p.Embed("hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vector) != 3 {
		t.Errorf("expected dimension 3, got %d", len(vector))
	}
}

func TestOpenAIEmbedDimensionMismatch(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2}, "index": 0}},
		})
	}), 3)

	_, err := p.Embed("hello")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("expected ErrEmbedding for short vector, got %v", err)
	}
}

func TestOpenAIEmbedUpstreamError(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}), 3)

	_, err := p.Embed("hello")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
}

func TestOpenAIComplete(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  grounded answer \n"}},
			},
		})
	}), 3)

	answer, err := p.Complete("what?", "some context")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if answer != "grounded answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestOpenAICompleteEmptyAnswer(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "   "}},
			},
		})
	}), 3)

	_, err := p.Complete("what?", "ctx")
	if !errors.Is(err, domain.ErrCompletion) {
		t.Errorf("expected ErrCompletion for empty answer, got %v", err)
	}
}

func TestOpenAIExpandQuery(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "- first rewording?\n- second rewording?\n- third rewording?"}},
			},
		})
	}), 3)

	variants, err := p.ExpandQuery("original?", 2)
	if err != nil {
		t.Fatalf("ExpandQuery: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants (capped), got %d", len(variants))
	}
	if variants[0] != "first rewording?" {
		t.Errorf("variants[0] = %q", variants[0])
	}
}

func TestOpenAIExtractMetadataTransportError(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}), 3)

	meta, err := p.ExtractMetadata("some passage")
	if err == nil {
		t.Error("expected transport error to be reported")
	}
	if meta.Topic != "" || meta.Entities != nil || meta.SectionTitle != "" {
		t.Errorf("expected empty record alongside error, got %+v", meta)
	}
}
