package embedding

import (
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"rag/internal/port"
)

// MockEmbedder produces deterministic bag-of-words vectors: texts sharing
// words get high cosine similarity, unrelated texts score near zero. Good
// enough to exercise retrieval end to end without a provider.
type MockEmbedder struct {
	dimension int

	mu    sync.Mutex
	calls int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(texts []string, _ port.Mode) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dimension)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(word))
			vec[int(h.Sum32())%e.dimension]++
		}
		normalize(vec)
		embeddings[i] = vec
	}
	return embeddings, nil
}

func normalize(vec []float32) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}

// Calls reports how many Embed invocations were made.
func (e *MockEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
