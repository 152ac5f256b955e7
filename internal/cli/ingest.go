package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"pdfqa/internal/adapter/extractor"
	"pdfqa/internal/domain"
	"pdfqa/internal/usecase"
)

var ingestStrategy string

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Ingest PDF documents into the chunk store",
	Long: `Ingest one or more PDF files. Each file becomes one collection named
after the file, prefixed by the chosen strategy. Directories are
searched recursively; glob patterns are supported.

Examples:
  pdfqa ingest report.pdf
  pdfqa ingest ./docs --strategy self
  pdfqa ingest "papers/**/*.pdf" --strategy fusion`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestStrategy, "strategy", "s", "simple", "retrieval strategy (simple, self, fusion)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	strategy, err := domain.ParseStrategy(ingestStrategy)
	if err != nil {
		return err
	}

	files, err := collectPDFs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files matched")
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

	ingestor := usecase.NewIngestor(prov, store, extractor.NewPDFExtractor())

	bar := progressbar.Default(int64(len(files)), "ingesting")
	var failed int
	for _, path := range files {
		res, err := ingestor.IngestFile(path, filepath.Base(path), strategy)
		bar.Add(1)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "\n%s: %v\n", path, err)
			continue
		}
		fmt.Printf("\n%s -> %s (%d pages, %d chunks)\n", path, res.Collection, res.Pages, res.Chunks)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// collectPDFs expands each argument into PDF file paths. A directory is
// searched recursively; anything else is treated as a doublestar glob
// or a literal path.
func collectPDFs(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			matches, err := doublestar.FilepathGlob(filepath.Join(arg, "**", "*.pdf"))
			if err != nil {
				return nil, fmt.Errorf("glob %s: %w", arg, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}
		if err == nil {
			if !strings.EqualFold(filepath.Ext(arg), ".pdf") {
				return nil, fmt.Errorf("%s is not a PDF", arg)
			}
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", arg, err)
		}
		for _, m := range matches {
			if strings.EqualFold(filepath.Ext(m), ".pdf") {
				add(m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
