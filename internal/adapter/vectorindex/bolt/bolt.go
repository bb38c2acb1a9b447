package bolt

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"rag/internal/adapter/vectorindex"
	"rag/internal/domain"
)

var bucketMeta = []byte("indexes")

// Provider is a bbolt-backed VectorIndex for offline use. Each named index
// gets a metadata entry plus its own vectors bucket; search is brute force
// over an in-memory cache, fine for the corpus sizes this tool handles.
type Provider struct {
	db *bbolt.DB

	mu    sync.RWMutex
	metas map[string]indexMeta
	cache map[string]map[string]domain.EmbeddingRecord
}

type indexMeta struct {
	Dimension int           `json:"dimension"`
	Metric    domain.Metric `json:"metric"`
}

type storedRecord struct {
	Vector   []float32         `json:"v"`
	Metadata map[string]string `json:"m,omitempty"`
}

func vectorBucket(name string) []byte {
	return []byte("vectors:" + name)
}

// Open opens (or creates) the database at path and loads all indexes into
// memory.
func Open(path string) (*Provider, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}

	p := &Provider{
		db:    db,
		metas: make(map[string]indexMeta),
		cache: make(map[string]map[string]domain.EmbeddingRecord),
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create meta bucket: %w", err)
	}

	if err := p.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load indexes: %w", err)
	}
	return p, nil
}

func (p *Provider) Close() error {
	return p.db.Close()
}

func (p *Provider) load() error {
	return p.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		return meta.ForEach(func(k, v []byte) error {
			var m indexMeta
			if err := json.Unmarshal(v, &m); err != nil {
				return nil // Skip corrupted entries
			}
			name := string(k)
			p.metas[name] = m
			p.cache[name] = make(map[string]domain.EmbeddingRecord)

			vecs := tx.Bucket(vectorBucket(name))
			if vecs == nil {
				return nil
			}
			return vecs.ForEach(func(id, data []byte) error {
				var rec storedRecord
				if err := json.Unmarshal(data, &rec); err != nil {
					return nil
				}
				p.cache[name][string(id)] = domain.EmbeddingRecord{
					ID:       string(id),
					Vector:   rec.Vector,
					Metadata: rec.Metadata,
				}
				return nil
			})
		})
	})
}

func (p *Provider) Create(name string, dimension int, metric domain.Metric) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension: %d", dimension)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.metas[name]; ok {
		return fmt.Errorf("index %q already exists", name)
	}

	m := indexMeta{Dimension: dimension, Metric: metric}
	err := p.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketMeta).Put([]byte(name), data); err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists(vectorBucket(name))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	p.metas[name] = m
	p.cache[name] = make(map[string]domain.EmbeddingRecord)
	return nil
}

func (p *Provider) Delete(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.metas[name]; !ok {
		return fmt.Errorf("delete %q: %w", name, domain.ErrIndexNotFound)
	}

	err := p.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketMeta).Delete([]byte(name)); err != nil {
			return err
		}
		if tx.Bucket(vectorBucket(name)) != nil {
			return tx.DeleteBucket(vectorBucket(name))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}

	delete(p.metas, name)
	delete(p.cache, name)
	return nil
}

func (p *Provider) List() ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.metas))
	for name := range p.metas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (p *Provider) Describe(name string) (domain.IndexStats, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.metas[name]
	if !ok {
		return domain.IndexStats{}, fmt.Errorf("describe %q: %w", name, domain.ErrIndexNotFound)
	}
	return domain.IndexStats{
		Ready:       true,
		Dimension:   m.Dimension,
		VectorCount: len(p.cache[name]),
	}, nil
}

func (p *Provider) Upsert(name string, records []domain.EmbeddingRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.metas[name]
	if !ok {
		return fmt.Errorf("upsert into %q: %w", name, domain.ErrIndexNotFound)
	}
	for _, rec := range records {
		if len(rec.Vector) != m.Dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", m.Dimension, len(rec.Vector))
		}
	}

	err := p.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(vectorBucket(name))
		if b == nil {
			return fmt.Errorf("vectors bucket for %q not found", name)
		}
		for _, rec := range records {
			data, err := json.Marshal(storedRecord{Vector: rec.Vector, Metadata: rec.Metadata})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(rec.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, rec := range records {
		p.cache[name][rec.ID] = rec
	}
	return nil
}

func (p *Provider) Query(name string, vector []float32, topK int, includeMetadata bool) ([]domain.RetrievalMatch, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.metas[name]
	if !ok {
		return nil, fmt.Errorf("query %q: %w", name, domain.ErrIndexNotFound)
	}
	if len(vector) != m.Dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", m.Dimension, len(vector))
	}
	if topK <= 0 {
		topK = 3
	}

	matches := make([]domain.RetrievalMatch, 0, len(p.cache[name]))
	for id, rec := range p.cache[name] {
		match := domain.RetrievalMatch{
			ChunkID: id,
			Score:   vectorindex.Score(m.Metric, vector, rec.Vector),
		}
		if includeMetadata {
			match.Metadata = rec.Metadata
		}
		matches = append(matches, match)
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
	if _, ok := p.metas[name]; !ok {
		return fmt.Errorf("delete all in %q: %w", name, domain.ErrIndexNotFound)
	}

	err := p.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(vectorBucket(name)) != nil {
			if err := tx.DeleteBucket(vectorBucket(name)); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(vectorBucket(name))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	p.cache[name] = make(map[string]domain.EmbeddingRecord)
	return nil
}
