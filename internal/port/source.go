package port

import "rag/internal/domain"

// DocumentSource loads the document set to be ingested.
type DocumentSource interface {
	Load() ([]domain.Document, error)
}
