package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"pdfqa/internal/domain"
)

// GeminiProvider talks to the Gemini REST API.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	embedModel string
	llmModel   string
	dimension  int
	client     *http.Client
}

type geminiEmbedRequest struct {
	Content geminiContent `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type geminiGenerateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// NewGemini creates a Gemini-backed provider. The embedding dimension
// comes from configuration, like every other backend.
func NewGemini(opts Options) (*GeminiProvider, error) {
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = "GEMINI_API_KEY"
	}
	apiKey := os.Getenv(opts.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", opts.APIKeyEnv)
	}
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", opts.Dimension)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if opts.EmbedModel == "" {
		opts.EmbedModel = "embedding-001"
	}
	if opts.LLMModel == "" {
		opts.LLMModel = "gemini-2.0-flash"
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &GeminiProvider{
		apiKey:     apiKey,
		baseURL:    opts.BaseURL,
		embedModel: opts.EmbedModel,
		llmModel:   opts.LLMModel,
		dimension:  opts.Dimension,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Embed generates the embedding vector for text.
func (p *GeminiProvider) Embed(text string) ([]float32, error) {
	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", p.baseURL, p.embedModel, p.apiKey)
	reqBody := geminiEmbedRequest{Content: geminiContent{Parts: []geminiPart{{Text: text}}}}

	var resp geminiEmbedResponse
	if err := p.postJSON(url, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	vector := resp.Embedding.Values
	if len(vector) != p.dimension {
		return nil, fmt.Errorf("%w: expected dimension %d, got %d", domain.ErrEmbedding, p.dimension, len(vector))
	}
	return vector, nil
}

// Complete answers the question grounded in the given context.
func (p *GeminiProvider) Complete(question, context string) (string, error) {
	prompt := fmt.Sprintf("Answer the question based on the context below:\n\nContext:\n%s\n\nQuestion: %s\n", context, question)
	answer, err := p.generate(prompt)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("%w: model returned an empty answer", domain.ErrCompletion)
	}
	return answer, nil
}

// ExpandQuery generates n rephrasings of the question.
func (p *GeminiProvider) ExpandQuery(question string, n int) ([]string, error) {
	prompt := fmt.Sprintf("Generate %d different rewordings of this question for semantic search: %s\nOutput only the rewordings, one per line, without numbering or explanations.", n, question)
	raw, err := p.generate(prompt)
	if err != nil {
		return nil, err
	}
	variants := parseQueryVariants(raw, n)
	if len(variants) == 0 {
		return nil, fmt.Errorf("%w: no usable query variants in model output", domain.ErrCompletion)
	}
	return variants, nil
}

// ExtractMetadata extracts structured metadata from chunk text.
func (p *GeminiProvider) ExtractMetadata(text string) (domain.ChunkMetadata, error) {
	prompt := fmt.Sprintf(`Extract structured metadata from the following passage.
Reply with exactly three lines in this format, using "none" when a field is absent:
topic: <single short topic>
entities: <comma-separated named entities>
section_title: <section title>

Passage:
%s`, text)
	raw, err := p.generate(prompt)
	if err != nil {
		return domain.ChunkMetadata{}, err
	}
	return parseMetadata(raw), nil
}

func (p *GeminiProvider) generate(prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.llmModel, p.apiKey)
	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	var resp geminiGenerateResponse
	if err := p.postJSON(url, reqBody, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCompletion, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", domain.ErrCompletion, resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", domain.ErrCompletion)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (p *GeminiProvider) postJSON(url string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, preview(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response (body: %s): %w", preview(respBody), err)
	}
	return nil
}

// Dimension returns the configured embedding dimension.
func (p *GeminiProvider) Dimension() int {
	return p.dimension
}

// Name returns the backend name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}
