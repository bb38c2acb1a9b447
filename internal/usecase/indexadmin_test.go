package usecase

import (
	"errors"
	"testing"
	"time"

	"rag/internal/adapter/vectorindex/memory"
	"rag/internal/domain"
)

// neverReady wraps the memory provider but always reports a pending index.
type neverReady struct {
	*memory.Provider
}

func (n *neverReady) Describe(name string) (domain.IndexStats, error) {
	stats, err := n.Provider.Describe(name)
	if err != nil {
		return stats, err
	}
	stats.Ready = false
	return stats, nil
}

func TestEnsureIndexCreatesMissing(t *testing.T) {
	provider := memory.New()
	admin := testAdmin(provider)

	if err := admin.EnsureIndex("docs", 16, domain.MetricCosine, false); err != nil {
		t.Fatal(err)
	}

	stats, err := provider.Describe("docs")
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Ready || stats.Dimension != 16 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestEnsureIndexRecreatesExisting(t *testing.T) {
	provider := memory.New()
	admin := testAdmin(provider)

	if err := provider.Create("docs", 16, domain.MetricCosine); err != nil {
		t.Fatal(err)
	}
	if err := provider.Upsert("docs", []domain.EmbeddingRecord{
		{ID: "old", Vector: make([]float32, 16)},
	}); err != nil {
		t.Fatal(err)
	}

	// Recreation is idempotent: running twice still ends at zero vectors.
	for i := 0; i < 2; i++ {
		if err := admin.EnsureIndex("docs", 16, domain.MetricCosine, false); err != nil {
			t.Fatal(err)
		}
		stats, err := provider.Describe("docs")
		if err != nil {
			t.Fatal(err)
		}
		if stats.VectorCount != 0 {
			t.Errorf("run %d: expected empty index, got %d vectors", i, stats.VectorCount)
		}
	}
}

func TestEnsureIndexKeepsExisting(t *testing.T) {
	provider := memory.New()
	admin := testAdmin(provider)

	if err := provider.Create("docs", 16, domain.MetricCosine); err != nil {
		t.Fatal(err)
	}
	if err := provider.Upsert("docs", []domain.EmbeddingRecord{
		{ID: "keep", Vector: make([]float32, 16)},
	}); err != nil {
		t.Fatal(err)
	}

	if err := admin.EnsureIndex("docs", 16, domain.MetricCosine, true); err != nil {
		t.Fatal(err)
	}

	stats, _ := provider.Describe("docs")
	if stats.VectorCount != 1 {
		t.Errorf("existing vectors lost: %+v", stats)
	}
}

func TestEnsureIndexTimesOut(t *testing.T) {
	provider := &neverReady{memory.New()}
	admin := NewIndexAdmin(provider, time.Millisecond, 10*time.Millisecond, 0)

	err := admin.EnsureIndex("docs", 16, domain.MetricCosine, false)
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var timeout *domain.IndexTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected IndexTimeoutError, got %T: %v", err, err)
	}
	if timeout.Name != "docs" {
		t.Errorf("timeout names %q", timeout.Name)
	}
}

func TestWipeRequiresConfirmation(t *testing.T) {
	provider := memory.New()
	admin := testAdmin(provider)

	if err := provider.Create("docs", 16, domain.MetricCosine); err != nil {
		t.Fatal(err)
	}
	if err := provider.Upsert("docs", []domain.EmbeddingRecord{
		{ID: "a", Vector: make([]float32, 16)},
	}); err != nil {
		t.Fatal(err)
	}

	if err := admin.Wipe("docs", "dcos"); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Errorf("expected ErrNotConfirmed, got %v", err)
	}
	stats, _ := provider.Describe("docs")
	if stats.VectorCount != 1 {
		t.Error("index touched despite failed confirmation")
	}

	if err := admin.Wipe("docs", "docs"); err != nil {
		t.Fatal(err)
	}
	stats, _ = provider.Describe("docs")
	if stats.VectorCount != 0 {
		t.Errorf("expected empty index, got %d vectors", stats.VectorCount)
	}
}
