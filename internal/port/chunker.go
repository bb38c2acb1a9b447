package port

import "rag/internal/domain"

type Chunker interface {
	Split(doc domain.Document) ([]domain.Chunk, error)
}
