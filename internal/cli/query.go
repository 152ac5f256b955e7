package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pdfqa/internal/domain"
	"pdfqa/internal/usecase"
)

var (
	queryText       string
	queryCollection string
	queryStrategy   string
	queryTopK       int
	queryNumQueries int
	queryTopic      string
	querySection    string
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question over an ingested document",
	Long: `Ask a question over a previously ingested document. The collection is
the bare document name; the strategy prefix is added automatically.

Examples:
  pdfqa query -q "what was revenue in 2024?" --collection report
  pdfqa query -q "who are the parties?" --collection contract --strategy self --topic legal
  pdfqa query -q "summarize the findings" --collection paper --strategy fusion --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "question", "q", "", "question to answer (required)")
	queryCmd.Flags().StringVarP(&queryCollection, "collection", "c", "", "document collection name (required)")
	queryCmd.Flags().StringVarP(&queryStrategy, "strategy", "s", "simple", "retrieval strategy (simple, self, fusion)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().IntVar(&queryNumQueries, "num-queries", 0, "fusion query variants (default from config)")
	queryCmd.Flags().StringVar(&queryTopic, "topic", "", "self-query topic filter")
	queryCmd.Flags().StringVar(&querySection, "section", "", "self-query section title filter")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("question")
	queryCmd.MarkFlagRequired("collection")
}

func runQuery(cmd *cobra.Command, args []string) error {
	strategy, err := domain.ParseStrategy(queryStrategy)
	if err != nil {
		return err
	}

	cfg := GetConfig()
	prov, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	store, cleanup, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := usecase.NewEngine(prov, store)
	collection := strategy.Prefix() + queryCollection

	topK := queryTopK
	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}
	numQueries := queryNumQueries
	if numQueries <= 0 {
		numQueries = cfg.Retrieval.FusionQueries
	}

	var res *domain.AnswerResult
	switch strategy {
	case domain.StrategySelfQuery:
		filter := domain.Filter{Topic: queryTopic, SectionTitle: querySection}
		res, err = engine.SelfQuery(collection, queryText, topK, filter)
	case domain.StrategyFusion:
		res, err = engine.Fusion(collection, queryText, numQueries, topK)
	default:
		res, err = engine.Simple(collection, queryText, topK)
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Q: %s\n\n%s\n", res.Question, res.Answer)
	if len(res.QueryVariants) > 0 {
		fmt.Printf("\nQuery variants:\n")
		for _, v := range res.QueryVariants {
			fmt.Printf("  - %s\n", v)
		}
	}
	fmt.Printf("\nRetrieved %d chunks in %.3fs\n", len(res.RetrievedChunks), res.ResponseTime)
	for i, chunk := range res.RetrievedChunks {
		text := chunk
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		fmt.Printf("--- [%d] ---\n%s\n", i+1, strings.TrimSpace(text))
	}
	return nil
}
