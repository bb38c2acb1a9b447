package usecase

import (
	"fmt"

	"rag/internal/domain"
	"rag/internal/port"
)

// Retriever embeds a question and returns the closest chunks from the index.
type Retriever struct {
	embed     port.Embedder
	index     port.VectorIndex
	indexName string
}

func NewRetriever(embed port.Embedder, index port.VectorIndex, indexName string) *Retriever {
	return &Retriever{embed: embed, index: index, indexName: indexName}
}

func (r *Retriever) Retrieve(question string, topK int) ([]domain.RetrievalMatch, error) {
	if question == "" {
		return nil, fmt.Errorf("question is empty")
	}
	if topK <= 0 {
		topK = 3
	}

	vectors, err := r.embed.Embed([]string{question}, port.ModeQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := r.index.Query(r.indexName, vectors[0], topK, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	return matches, nil
}
