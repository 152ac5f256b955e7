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

// OpenAIProvider talks to any OpenAI-compatible API (OpenAI, Groq,
// OpenRouter). The embedding dimension comes from configuration so the
// chunk store's dimensionality invariant holds across backends.
type OpenAIProvider struct {
	name       string
	apiKey     string
	baseURL    string
	embedModel string
	llmModel   string
	dimension  int
	client     *http.Client
}

// Options configures an OpenAI-compatible provider.
type Options struct {
	APIKeyEnv  string
	BaseURL    string
	EmbedModel string
	LLMModel   string
	Dimension  int
	Timeout    time.Duration
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAI creates a provider against api.openai.com.
func NewOpenAI(opts Options) (*OpenAIProvider, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	return newOpenAICompatible("openai", opts)
}

// NewGroq creates a provider against the Groq OpenAI-compatible API.
func NewGroq(opts Options) (*OpenAIProvider, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.groq.com/openai/v1"
	}
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = "GROQ_API_KEY"
	}
	return newOpenAICompatible("groq", opts)
}

// NewOpenRouter creates a provider against OpenRouter.
func NewOpenRouter(opts Options) (*OpenAIProvider, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openrouter.ai/api/v1"
	}
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = "OPENROUTER_API_KEY"
	}
	return newOpenAICompatible("openrouter", opts)
}

func newOpenAICompatible(name string, opts Options) (*OpenAIProvider, error) {
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(opts.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", opts.APIKeyEnv)
	}
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", opts.Dimension)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIProvider{
		name:       name,
		apiKey:     apiKey,
		baseURL:    opts.BaseURL,
		embedModel: opts.EmbedModel,
		llmModel:   opts.LLMModel,
		dimension:  opts.Dimension,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Embed generates the embedding vector for text.
func (p *OpenAIProvider) Embed(text string) ([]float32, error) {
	reqBody := embeddingRequest{Input: []string{text}, Model: p.embedModel}

	var embResp embeddingResponse
	if err := p.postJSON("/embeddings", reqBody, &embResp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("%w: API error: %s", domain.ErrEmbedding, embResp.Error.Message)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrEmbedding)
	}
	vector := embResp.Data[0].Embedding
	if len(vector) != p.dimension {
		return nil, fmt.Errorf("%w: expected dimension %d, got %d", domain.ErrEmbedding, p.dimension, len(vector))
	}
	return vector, nil
}

// Complete answers the question grounded in the given context.
func (p *OpenAIProvider) Complete(question, context string) (string, error) {
	prompt := fmt.Sprintf("Answer the question based on the context below:\n\nContext:\n%s\n\nQuestion: %s\n", context, question)
	answer, err := p.chat(prompt)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("%w: model returned an empty answer", domain.ErrCompletion)
	}
	return answer, nil
}

// ExpandQuery generates n rephrasings of the question.
func (p *OpenAIProvider) ExpandQuery(question string, n int) ([]string, error) {
	prompt := fmt.Sprintf("Generate %d different rewordings of this question for semantic search: %s\nOutput only the rewordings, one per line, without numbering or explanations.", n, question)
	raw, err := p.chat(prompt)
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
// Unparseable output yields the empty record; only transport failures
// are reported as errors.
func (p *OpenAIProvider) ExtractMetadata(text string) (domain.ChunkMetadata, error) {
	prompt := fmt.Sprintf(`Extract structured metadata from the following passage.
Reply with exactly three lines in this format, using "none" when a field is absent:
topic: <single short topic>
entities: <comma-separated named entities>
section_title: <section title>

Passage:
%s`, text)
	raw, err := p.chat(prompt)
	if err != nil {
		return domain.ChunkMetadata{}, err
	}
	return parseMetadata(raw), nil
}

func (p *OpenAIProvider) chat(prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    p.llmModel,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	var resp chatResponse
	if err := p.postJSON("/chat/completions", reqBody, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCompletion, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", domain.ErrCompletion, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", domain.ErrCompletion)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) postJSON(path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

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
func (p *OpenAIProvider) Dimension() int {
	return p.dimension
}

// Name returns the backend name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

func preview(body []byte) string {
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
