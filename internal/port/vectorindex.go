package port

import "rag/internal/domain"

// VectorIndex is the capability surface of a vector index provider. One
// concrete adapter exists per vendor; selection happens once at startup via
// configuration.
//
// Create and Delete are not immediately consistent: callers must poll
// Describe until the reported state settles before relying on it.
type VectorIndex interface {
	// Create provisions a named index with the given shape.
	Create(name string, dimension int, metric domain.Metric) error

	// Delete removes the index and everything in it.
	Delete(name string) error

	// List returns the names of all indexes at the provider.
	List() ([]string, error)

	// Describe reports readiness, dimension and vector count.
	// Returns domain.ErrIndexNotFound for unknown names.
	Describe(name string) (domain.IndexStats, error)

	// Upsert writes records, overwriting any with the same ID.
	Upsert(name string, records []domain.EmbeddingRecord) error

	// Query returns the topK nearest records by the index metric, ordered by
	// descending score. An empty result is a valid outcome.
	Query(name string, vector []float32, topK int, includeMetadata bool) ([]domain.RetrievalMatch, error)

	// DeleteAll removes every vector but keeps the index itself.
	DeleteAll(name string) error
}
