package usecase

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pdfqa/internal/domain"
	"pdfqa/internal/port"
)

const (
	defaultTopK       = 5
	defaultNumQueries = 3
)

// Engine executes the retrieval strategies against one provider and
// one chunk store. A request runs strictly in sequence except for the
// per-variant searches in fusion, which are independent.
type Engine struct {
	provider port.Provider
	store    port.ChunkStore
}

// NewEngine creates a retrieval engine.
func NewEngine(provider port.Provider, store port.ChunkStore) *Engine {
	return &Engine{provider: provider, store: store}
}

// Simple embeds the question once and searches without a filter.
func (e *Engine) Simple(collection, question string, topK int) (*domain.AnswerResult, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	vector, err := e.provider.Embed(question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	start := time.Now()
	hits, err := e.store.Search(collection, vector, topK, domain.Filter{})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	elapsed := time.Since(start)

	result, err := e.synthesize(question, chunkTexts(hits), elapsed)
	if err != nil {
		return nil, err
	}

	// topK/returned, not true precision: there are no relevance labels.
	precision := 0.0
	if len(hits) > 0 {
		precision = Round3(float64(topK) / float64(len(hits)))
	}
	result.Metrics.PrecisionAtK = &precision
	return result, nil
}

// SelfQuery embeds the question once and searches under a metadata
// filter built from the caller's topic/section constraints.
func (e *Engine) SelfQuery(collection, question string, topK int, filter domain.Filter) (*domain.AnswerResult, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	vector, err := e.provider.Embed(question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	start := time.Now()
	hits, err := e.store.Search(collection, vector, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	elapsed := time.Since(start)

	result, err := e.synthesize(question, chunkTexts(hits), elapsed)
	if err != nil {
		return nil, err
	}
	result.MetadataFilter = &filter
	return result, nil
}

// Fusion expands the question into variants, searches per variant, and
// fuses the results by exact-text first-seen deduplication. The
// original question is always the last variant.
func (e *Engine) Fusion(collection, question string, numQueries, topK int) (*domain.AnswerResult, error) {
	if numQueries <= 0 {
		numQueries = defaultNumQueries
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	variants, err := e.provider.ExpandQuery(question, numQueries)
	if err != nil {
		return nil, fmt.Errorf("expand query: %w", err)
	}
	queries := append(variants, question)

	// The per-variant searches are independent; results are reassembled
	// in variant order before dedup, so first-seen order stays
	// deterministic.
	perVariant := make([][]domain.SearchHit, len(queries))
	start := time.Now()
	var g errgroup.Group
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			vector, err := e.provider.Embed(q)
			if err != nil {
				return fmt.Errorf("embed variant %q: %w", q, err)
			}
			hits, err := e.store.Search(collection, vector, topK, domain.Filter{})
			if err != nil {
				return fmt.Errorf("search %s for variant %q: %w", collection, q, err)
			}
			perVariant[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	rawRetrieved := 0
	seen := make(map[string]struct{})
	var fused []string
	for _, hits := range perVariant {
		for _, hit := range hits {
			rawRetrieved++
			if _, ok := seen[hit.Chunk.Text]; ok {
				continue
			}
			seen[hit.Chunk.Text] = struct{}{}
			fused = append(fused, hit.Chunk.Text)
		}
	}

	result, err := e.synthesize(question, fused, elapsed)
	if err != nil {
		return nil, err
	}

	fusionGain := 0.0
	if rawRetrieved > 0 {
		fusionGain = Round3(float64(len(fused)) / float64(rawRetrieved))
	}
	deduped := len(fused)
	result.QueryVariants = queries
	result.Metrics.RawRetrieved = &rawRetrieved
	result.Metrics.DedupedChunks = &deduped
	result.Metrics.FusionGain = &fusionGain
	return result, nil
}

// synthesize builds the context, requests a grounded answer, and
// attaches the evaluation metrics. An empty chunk list still produces a
// completion call with an empty context.
func (e *Engine) synthesize(question string, chunks []string, elapsed time.Duration) (*domain.AnswerResult, error) {
	context := strings.Join(chunks, "\n\n")
	answer, err := e.provider.Complete(question, context)
	if err != nil {
		return nil, fmt.Errorf("complete answer: %w", err)
	}

	retrieved := chunks
	if retrieved == nil {
		retrieved = []string{}
	}
	return &domain.AnswerResult{
		Question:        question,
		Answer:          answer,
		ResponseTime:    round4(elapsed.Seconds()),
		RetrievedChunks: retrieved,
		Metrics: domain.Metrics{
			AnswerRelevance: AnswerRelevance(answer, chunks),
			CoverageScore:   CoverageScore(answer, chunks),
		},
	}, nil
}

func chunkTexts(hits []domain.SearchHit) []string {
	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		texts = append(texts, hit.Chunk.Text)
	}
	return texts
}

func round4(f float64) float64 {
	return float64(int64(f*10000+0.5)) / 10000
}
