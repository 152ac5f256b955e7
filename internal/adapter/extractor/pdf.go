// Package extractor reads per-page text from PDF files.
package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdfqa/internal/domain"
)

// PDFExtractor extracts page text from a PDF file. Page numbers are
// 1-based and keep their position in the document; pages with only
// whitespace are skipped.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF page extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the non-empty pages of the PDF at path.
func (e *PDFExtractor) Extract(path string) ([]domain.PageText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	var pages []domain.PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, domain.PageText{Page: i, Text: text})
	}
	return pages, nil
}
