package domain

import "time"

// Chunk is a bounded segment of a document's normalized text, the atomic
// unit of ingestion and retrieval. Page numbers are 1-based; SequenceIndex
// orders chunks within a page.
type Chunk struct {
	DocumentID    string
	Page          int
	SequenceIndex int
	Text          string
	CharCount     int
}

// StoredChunk is a Chunk that has been embedded and persisted in the vector
// index. Every stored embedding must match the index's configured
// dimensionality.
type StoredChunk struct {
	ID        string
	Chunk
	Embedding []float32
	CreatedAt time.Time
}

// SearchHit is a raw similarity-search candidate returned by the vector
// index, in descending score order.
type SearchHit struct {
	DocumentID string
	Page       int
	Text       string
	Score      float64
}

// RetrievalResult pairs a retrieved chunk text with its similarity score.
// It is produced per query and discarded once the answer is generated.
type RetrievalResult struct {
	Text  string
	Score float64
}

// DocumentInfo summarizes the stored chunks of one document.
type DocumentInfo struct {
	DocumentID string
	Chunks     int
	Pages      int
	Characters int
	CreatedAt  time.Time
}

// UsageStats aggregates index-wide counters across all documents.
type UsageStats struct {
	Documents       int
	Chunks          int
	Characters      int
	ChunksPerDocAvg float64
}
