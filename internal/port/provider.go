package port

import "pdfqa/internal/domain"

// Provider is the uniform capability interface over embedding and
// completion backends. Strategies depend on this interface only, never
// on a concrete backend's identity; the backend is selected by
// configuration.
type Provider interface {
	// Embed generates the embedding vector for the given text. The
	// returned vector always has length Dimension(); a malformed
	// upstream response is an error, never a truncated vector.
	Embed(text string) ([]float32, error)

	// Complete produces a natural-language answer to question grounded
	// in context. An empty context is allowed. A successful call never
	// returns an empty answer.
	Complete(question, context string) (string, error)

	// ExpandQuery produces n semantically distinct rephrasings of the
	// question for fusion retrieval. Each is non-empty after trimming
	// list markers and whitespace.
	ExpandQuery(question string, n int) ([]string, error)

	// ExtractMetadata extracts best-effort structured metadata from
	// chunk text. Unparseable model output degrades to the empty
	// record; only transport failures are reported, and callers treat
	// those as non-fatal.
	ExtractMetadata(text string) (domain.ChunkMetadata, error)

	// Dimension returns the embedding vector dimension. It is a
	// configuration constant shared by collections and queries.
	Dimension() int

	// Name returns the backend name.
	Name() string
}
