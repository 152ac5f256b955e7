package port

import "pdfqa/internal/domain"

// PageExtractor produces ordered per-page text from a document file.
// Page numbers are 1-based; pages with only whitespace are skipped.
type PageExtractor interface {
	Extract(path string) ([]domain.PageText, error)
}
