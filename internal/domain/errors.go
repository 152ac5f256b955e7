package domain

import "errors"

// Failure kinds surfaced to callers. Adapters and use cases wrap these
// with fmt.Errorf and %w so callers can classify failures with
// errors.Is. Provider and store failures abort the active request; only
// metadata extraction degrades gracefully.
var (
	ErrEmbedding          = errors.New("embedding failed")
	ErrCompletion         = errors.New("completion failed")
	ErrStoreUnavailable   = errors.New("vector store unavailable")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
	ErrIngestion          = errors.New("ingestion failed")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrInvalidCollection  = errors.New("invalid collection name")
)

// ErrorKind returns a short machine-readable name for the failure kind,
// or "internal" for unclassified errors.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrEmbedding):
		return "embedding_failure"
	case errors.Is(err, ErrCompletion):
		return "completion_failure"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, ErrInvalidCollection):
		return "invalid_collection"
	case errors.Is(err, ErrIngestion):
		return "ingestion_failed"
	case errors.Is(err, ErrCollectionNotFound):
		return "collection_not_found"
	default:
		return "internal"
	}
}
