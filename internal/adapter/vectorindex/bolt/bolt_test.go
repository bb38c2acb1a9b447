package bolt

import (
	"errors"
	"path/filepath"
	"testing"

	"rag/internal/domain"
)

func openTemp(t *testing.T) (*Provider, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectors.db")
	p, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return p, path
}

func TestCreateUpsertQuery(t *testing.T) {
	p, _ := openTemp(t)
	defer p.Close()

	if err := p.Create("docs", 2, domain.MetricCosine); err != nil {
		t.Fatal(err)
	}

	records := []domain.EmbeddingRecord{
		{ID: "a", Vector: []float32{1, 0}, Metadata: map[string]string{"filename": "a.txt"}},
		{ID: "b", Vector: []float32{0, 1}},
	}
	if err := p.Upsert("docs", records); err != nil {
		t.Fatal(err)
	}

	matches, err := p.Query("docs", []float32{1, 0.1}, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ChunkID != "a" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	if matches[0].Metadata["filename"] != "a.txt" {
		t.Errorf("metadata not stored: %+v", matches[0].Metadata)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")

	p, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Create("docs", 2, domain.MetricDot); err != nil {
		t.Fatal(err)
	}
	if err := p.Upsert("docs", []domain.EmbeddingRecord{{ID: "a", Vector: []float32{1, 2}}}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	p, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	stats, err := p.Describe("docs")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Dimension != 2 || stats.VectorCount != 1 {
		t.Errorf("state lost across reopen: %+v", stats)
	}

	matches, err := p.Query("docs", []float32{1, 2}, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ChunkID != "a" {
		t.Errorf("unexpected matches after reopen: %+v", matches)
	}
}

func TestDeleteAllAndDelete(t *testing.T) {
	p, _ := openTemp(t)
	defer p.Close()

	if err := p.Create("docs", 2, domain.MetricCosine); err != nil {
		t.Fatal(err)
	}
	if err := p.Upsert("docs", []domain.EmbeddingRecord{{ID: "a", Vector: []float32{1, 0}}}); err != nil {
		t.Fatal(err)
	}

	if err := p.DeleteAll("docs"); err != nil {
		t.Fatal(err)
	}
	stats, _ := p.Describe("docs")
	if stats.VectorCount != 0 {
		t.Errorf("expected 0 vectors, got %d", stats.VectorCount)
	}

	if err := p.Delete("docs"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Describe("docs"); !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}

	names, err := p.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("expected no indexes, got %v", names)
	}
}
