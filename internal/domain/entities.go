package domain

// PageText is one page of extracted document text. Page numbers are
// 1-based and keep their position in the source document; pages with
// only whitespace are omitted by the extractor.
type PageText struct {
	Page int
	Text string
}

// ChunkMetadata holds optional structured metadata extracted from chunk
// text for self-query retrieval. The zero value is the well-defined
// empty record used when extraction fails.
type ChunkMetadata struct {
	Topic        string   `json:"topic,omitempty"`
	Entities     []string `json:"entities,omitempty"`
	SectionTitle string   `json:"section_title,omitempty"`
}

// Chunk is the unit of retrieval: one page of document text plus
// optional metadata. Chunks are immutable once stored.
type Chunk struct {
	ID       string
	Text     string
	Page     int
	Metadata ChunkMetadata
}

// StoredChunk pairs a chunk with its embedding vector for upsert.
// Embedding is the caller's responsibility; the store only validates
// the vector length.
type StoredChunk struct {
	Chunk  Chunk
	Vector []float32
}

// SearchHit is one nearest-neighbor result, ranked by similarity
// descending.
type SearchHit struct {
	Chunk Chunk
	Score float64
}

// Filter is a conjunction of exact-match payload conditions. Empty
// fields are ignored; the zero value matches every chunk.
type Filter struct {
	Topic        string `json:"topic,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
}

// IsZero reports whether the filter has no conditions.
func (f Filter) IsZero() bool {
	return f.Topic == "" && f.SectionTitle == ""
}

// Matches reports whether all filter conditions hold for the metadata.
func (f Filter) Matches(m ChunkMetadata) bool {
	if f.Topic != "" && m.Topic != f.Topic {
		return false
	}
	if f.SectionTitle != "" && m.SectionTitle != f.SectionTitle {
		return false
	}
	return true
}

// Metrics accompanies an answer. Strategy-specific fields are pointers
// so that absent metrics are distinguishable from legitimate zeros.
type Metrics struct {
	// PrecisionAtK is topK divided by the number of results returned.
	// It is a rough diagnostic carried over from the original system,
	// not true precision: there are no relevance labels.
	PrecisionAtK *float64 `json:"precision@k,omitempty"`

	// Fusion only.
	RawRetrieved  *int     `json:"raw_retrieved,omitempty"`
	DedupedChunks *int     `json:"deduplicated_chunks,omitempty"`
	FusionGain    *float64 `json:"fusion_gain,omitempty"`

	AnswerRelevance float64 `json:"answer_relevance_score"`
	CoverageScore   float64 `json:"coverage_score"`
}

// AnswerResult is the outcome of one query request.
type AnswerResult struct {
	Question        string   `json:"question"`
	QueryVariants   []string `json:"query_variants,omitempty"`
	Answer          string   `json:"answer"`
	ResponseTime    float64  `json:"response_time"`
	RetrievedChunks []string `json:"retrieved_chunks"`
	MetadataFilter  *Filter  `json:"metadata_filter,omitempty"`
	Metrics         Metrics  `json:"metrics"`
}
