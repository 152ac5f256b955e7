package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pdfqa/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pdfqa",
	Short: "PDF question answering with pluggable retrieval strategies",
	Long: `pdfqa ingests PDF documents into a vector store and answers questions
over them using one of three retrieval strategies: simple similarity
search, metadata-filtered self-query, or multi-query fusion.

Example usage:
  pdfqa serve                                  # Start the HTTP API
  pdfqa ingest report.pdf --strategy simple    # Ingest one document
  pdfqa query -q "what was revenue?" --collection report
  pdfqa collections list`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// API keys commonly live in a local .env; absence is fine.
		godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			dir, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(dir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pdfqa.yaml)")
}

func GetConfig() *config.Config {
	return cfg
}
