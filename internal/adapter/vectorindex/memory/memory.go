package memory

import (
	"fmt"
	"sort"
	"sync"

	"rag/internal/adapter/vectorindex"
	"rag/internal/domain"
)

// Provider is an in-memory VectorIndex used by tests and local runs. Unlike
// the remote providers it is immediately consistent, so Describe reports
// ready right after Create.
type Provider struct {
	mu      sync.RWMutex
	indexes map[string]*index
}

type index struct {
	dimension int
	metric    domain.Metric
	records   map[string]domain.EmbeddingRecord
}

func New() *Provider {
	return &Provider{indexes: make(map[string]*index)}
}

func (p *Provider) Create(name string, dimension int, metric domain.Metric) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension: %d", dimension)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.indexes[name]; ok {
		return fmt.Errorf("index %q already exists", name)
	}
	p.indexes[name] = &index{
		dimension: dimension,
		metric:    metric,
		records:   make(map[string]domain.EmbeddingRecord),
	}
	return nil
}

func (p *Provider) Delete(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.indexes[name]; !ok {
		return fmt.Errorf("delete %q: %w", name, domain.ErrIndexNotFound)
	}
	delete(p.indexes, name)
	return nil
}

func (p *Provider) List() ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.indexes))
	for name := range p.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (p *Provider) Describe(name string) (domain.IndexStats, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx, ok := p.indexes[name]
	if !ok {
		return domain.IndexStats{}, fmt.Errorf("describe %q: %w", name, domain.ErrIndexNotFound)
	}
	return domain.IndexStats{
		Ready:       true,
		Dimension:   idx.dimension,
		VectorCount: len(idx.records),
	}, nil
}

func (p *Provider) Upsert(name string, records []domain.EmbeddingRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.indexes[name]
	if !ok {
		return fmt.Errorf("upsert into %q: %w", name, domain.ErrIndexNotFound)
	}

	for _, rec := range records {
		if len(rec.Vector) != idx.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", idx.dimension, len(rec.Vector))
		}
	}
	for _, rec := range records {
		idx.records[rec.ID] = rec
	}
	return nil
}

func (p *Provider) Query(name string, vector []float32, topK int, includeMetadata bool) ([]domain.RetrievalMatch, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx, ok := p.indexes[name]
	if !ok {
		return nil, fmt.Errorf("query %q: %w", name, domain.ErrIndexNotFound)
	}
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", idx.dimension, len(vector))
	}
	if topK <= 0 {
		topK = 3
	}

	matches := make([]domain.RetrievalMatch, 0, len(idx.records))
	for id, rec := range idx.records {
		m := domain.RetrievalMatch{
			ChunkID: id,
			Score:   vectorindex.Score(idx.metric, vector, rec.Vector),
		}
		if includeMetadata {
			m.Metadata = rec.Metadata
		}
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func (p *Provider) DeleteAll(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.indexes[name]
	if !ok {
		return fmt.Errorf("delete all in %q: %w", name, domain.ErrIndexNotFound)
	}
	idx.records = make(map[string]domain.EmbeddingRecord)
	return nil
}
