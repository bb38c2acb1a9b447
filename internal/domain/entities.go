package domain

import "time"

// Document is one plain-text file loaded for ingestion. The filename doubles
// as the provenance identifier carried through chunk IDs and index metadata.
type Document struct {
	ID       string
	Path     string
	Text     string
	ByteSize int
}

// Chunk is a bounded contiguous slice of a document's text, overlapping its
// neighbours. Ordinals are contiguous from 0 per document; IDs are derived as
// "<filename>_<ordinal>" and must be unique across the whole index.
type Chunk struct {
	ID          string
	DocID       string
	Ordinal     int
	TotalChunks int
	Start       int
	End         int
	Text        string
}

// EmbeddingRecord is what gets upserted into the vector index. Metadata
// carries document provenance and a text preview for answer composition.
type EmbeddingRecord struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

// Metric names a similarity metric supported by vector index providers.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricDot       Metric = "dot"
	MetricEuclidean Metric = "euclidean"
)

// IndexDescriptor describes a named vector index as seen by callers.
type IndexDescriptor struct {
	Name      string
	Dimension int
	Metric    Metric
	Ready     bool
}

// IndexStats is the observability surface of an index. Ready transitions
// false to true asynchronously after creation.
type IndexStats struct {
	Ready       bool
	Dimension   int
	VectorCount int
}

// RetrievalMatch is one nearest-neighbour result, ordered by descending score.
type RetrievalMatch struct {
	ChunkID  string
	Score    float64
	Metadata map[string]string
}

// BatchFailure records one embedding or upsert batch that was skipped.
type BatchFailure struct {
	Batch int
	Size  int
	Err   string
}

// IngestionReport summarizes one ingestion run. Embedded and Upserted may be
// lower than Chunks when batches failed; the failure lists say which.
type IngestionReport struct {
	Documents        int
	Chunks           int
	Embedded         int
	Upserted         int
	EmbedFailures    []BatchFailure
	UpsertFailures   []BatchFailure
	IndexName        string
	IndexVectorCount int
	Duration         time.Duration
}
