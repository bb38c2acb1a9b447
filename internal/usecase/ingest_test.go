package usecase

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"rag/internal/adapter/chunker"
	"rag/internal/adapter/embedding"
	"rag/internal/adapter/vectorindex/memory"
	"rag/internal/domain"
	"rag/internal/port"
)

type staticSource struct {
	docs []domain.Document
	err  error
}

func (s *staticSource) Load() ([]domain.Document, error) {
	return s.docs, s.err
}

func makeDoc(id, text string) domain.Document {
	return domain.Document{
		ID:       id,
		Path:     "docs/" + id,
		Text:     text,
		ByteSize: len(text),
	}
}

// flakyEmbedder fails specific batches and delegates the rest.
type flakyEmbedder struct {
	*embedding.MockEmbedder
	failBatches map[int]bool
	batch       int
}

func (e *flakyEmbedder) Embed(texts []string, mode port.Mode) ([][]float32, error) {
	b := e.batch
	e.batch++
	if e.failBatches[b] {
		return nil, fmt.Errorf("simulated provider failure")
	}
	return e.MockEmbedder.Embed(texts, mode)
}

func testAdmin(provider port.VectorIndex) *IndexAdmin {
	return NewIndexAdmin(provider, time.Millisecond, 100*time.Millisecond, 0)
}

func TestRunFullIngestion(t *testing.T) {
	provider := memory.New()
	embed := embedding.NewMockEmbedder(16)
	source := &staticSource{docs: []domain.Document{
		makeDoc("a.txt", strings.Repeat("alpha beta gamma ", 20)),
		makeDoc("b.txt", strings.Repeat("delta epsilon ", 15)),
	}}

	p := NewPipeline(PipelineParams{
		Source:         source,
		Chunk:          chunker.NewSplitter(100, 20),
		Embed:          embed,
		Index:          provider,
		Admin:          testAdmin(provider),
		EmbedBatchSize: 3,
	})

	report, err := p.Run("docs")
	if err != nil {
		t.Fatal(err)
	}

	if report.Documents != 2 {
		t.Errorf("documents = %d", report.Documents)
	}
	if report.Chunks == 0 {
		t.Error("no chunks produced")
	}
	if report.Embedded != report.Chunks {
		t.Errorf("embedded %d of %d chunks", report.Embedded, report.Chunks)
	}
	if report.Upserted != report.Embedded {
		t.Errorf("upserted %d of %d records", report.Upserted, report.Embedded)
	}
	if len(report.EmbedFailures) != 0 || len(report.UpsertFailures) != 0 {
		t.Errorf("unexpected failures: %+v %+v", report.EmbedFailures, report.UpsertFailures)
	}
	if report.IndexVectorCount != report.Upserted {
		t.Errorf("index holds %d vectors, report says %d upserted", report.IndexVectorCount, report.Upserted)
	}
	if report.Duration <= 0 {
		t.Error("duration not recorded")
	}
}

func TestRunRecordsMetadata(t *testing.T) {
	provider := memory.New()
	embed := embedding.NewMockEmbedder(16)
	text := strings.Repeat("word ", 60)
	source := &staticSource{docs: []domain.Document{makeDoc("a.txt", text)}}

	p := NewPipeline(PipelineParams{
		Source: source,
		Chunk:  chunker.NewSplitter(100, 20),
		Embed:  embed,
		Index:  provider,
		Admin:  testAdmin(provider),
	})

	if _, err := p.Run("docs"); err != nil {
		t.Fatal(err)
	}

	query, _ := embed.Embed([]string{"word"}, port.ModeQuery)
	matches, err := provider.Query("docs", query[0], 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Fatal("no matches")
	}

	md := matches[0].Metadata
	if md["filename"] != "a.txt" {
		t.Errorf("filename = %q", md["filename"])
	}
	if md["source"] != "docs/a.txt" {
		t.Errorf("source = %q", md["source"])
	}
	if md["chunk_index"] == "" || md["total_chunks"] == "" || md["file_size"] == "" {
		t.Errorf("incomplete metadata: %+v", md)
	}
	if md["text"] == "" {
		t.Error("text preview missing")
	}
}

func TestRunSurvivesEmbedBatchFailure(t *testing.T) {
	provider := memory.New()
	embed := &flakyEmbedder{
		MockEmbedder: embedding.NewMockEmbedder(16),
		failBatches:  map[int]bool{1: true},
	}
	source := &staticSource{docs: []domain.Document{
		makeDoc("a.txt", strings.Repeat("alpha beta gamma delta ", 30)),
	}}

	p := NewPipeline(PipelineParams{
		Source:         source,
		Chunk:          chunker.NewSplitter(100, 20),
		Embed:          embed,
		Index:          provider,
		Admin:          testAdmin(provider),
		EmbedBatchSize: 2,
	})

	report, err := p.Run("docs")
	if err != nil {
		t.Fatal(err)
	}

	if len(report.EmbedFailures) != 1 {
		t.Fatalf("embed failures = %+v", report.EmbedFailures)
	}
	f := report.EmbedFailures[0]
	if f.Batch != 1 || f.Size != 2 || f.Err == "" {
		t.Errorf("unexpected failure record: %+v", f)
	}
	if report.Embedded != report.Chunks-2 {
		t.Errorf("embedded = %d, chunks = %d", report.Embedded, report.Chunks)
	}
	if report.Upserted != report.Embedded {
		t.Errorf("upserted = %d, embedded = %d", report.Upserted, report.Embedded)
	}
}

func TestRunNoDocuments(t *testing.T) {
	provider := memory.New()
	p := NewPipeline(PipelineParams{
		Source: &staticSource{},
		Chunk:  chunker.NewSplitter(100, 20),
		Embed:  embedding.NewMockEmbedder(16),
		Index:  provider,
		Admin:  testAdmin(provider),
	})

	if _, err := p.Run("docs"); err == nil {
		t.Error("expected error for empty document set")
	}
}

func TestRunRecreatesIndexByDefault(t *testing.T) {
	provider := memory.New()
	if err := provider.Create("docs", 16, domain.MetricCosine); err != nil {
		t.Fatal(err)
	}
	if err := provider.Upsert("docs", []domain.EmbeddingRecord{
		{ID: "stale", Vector: make([]float32, 16)},
	}); err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(PipelineParams{
		Source: &staticSource{docs: []domain.Document{makeDoc("a.txt", "fresh content here")}},
		Chunk:  chunker.NewSplitter(100, 20),
		Embed:  embedding.NewMockEmbedder(16),
		Index:  provider,
		Admin:  testAdmin(provider),
	})

	report, err := p.Run("docs")
	if err != nil {
		t.Fatal(err)
	}
	if report.IndexVectorCount != report.Upserted {
		t.Errorf("stale vectors survived: count = %d, upserted = %d", report.IndexVectorCount, report.Upserted)
	}
}

func TestRunReportsProgress(t *testing.T) {
	provider := memory.New()
	stages := make(map[string]bool)

	p := NewPipeline(PipelineParams{
		Source: &staticSource{docs: []domain.Document{makeDoc("a.txt", strings.Repeat("word ", 60))}},
		Chunk:  chunker.NewSplitter(100, 20),
		Embed:  embedding.NewMockEmbedder(16),
		Index:  provider,
		Admin:  testAdmin(provider),
		Progress: func(stage string, done, total int) {
			stages[stage] = true
			if done > total {
				t.Errorf("stage %s: done %d > total %d", stage, done, total)
			}
		},
	})

	if _, err := p.Run("docs"); err != nil {
		t.Fatal(err)
	}
	for _, stage := range []string{"chunk", "embed", "upsert"} {
		if !stages[stage] {
			t.Errorf("stage %s never reported", stage)
		}
	}
}
