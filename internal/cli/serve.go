package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfqa/internal/adapter/extractor"
	"pdfqa/internal/server"
	"pdfqa/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API serving the upload and query routes for all three
retrieval strategies, plus collection management.

Examples:
  pdfqa serve
  pdfqa serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
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
	ingestor := usecase.NewIngestor(prov, store, extractor.NewPDFExtractor())
	srv := server.New(engine, ingestor, store, server.Options{
		DefaultTopK:       cfg.Retrieval.TopK,
		DefaultNumQueries: cfg.Retrieval.FusionQueries,
	})

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	fmt.Printf("Listening on %s (provider: %s, store: %s)\n", addr, prov.Name(), cfg.Store.Type)
	return srv.Router(cfg.Server.CORS).Run(addr)
}
