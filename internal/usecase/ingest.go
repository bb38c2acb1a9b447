package usecase

import (
	"fmt"
	"strconv"
	"time"

	"rag/internal/domain"
	"rag/internal/port"
)

// metadataPreviewBytes bounds the chunk text stored alongside each vector.
const metadataPreviewBytes = 1000

// Pipeline runs a full ingestion: load documents, chunk them, embed the
// chunks in batches, recreate the index, and upsert the vectors. Individual
// batch failures are recorded in the report instead of aborting the run, so
// a flaky provider costs only the batches it actually dropped.
type Pipeline struct {
	source port.DocumentSource
	chunk  port.Chunker
	embed  port.Embedder
	index  port.VectorIndex
	admin  *IndexAdmin

	metric           domain.Metric
	embedBatchSize   int
	embedBatchDelay  time.Duration
	upsertBatchSize  int
	upsertBatchDelay time.Duration
	keepIndex        bool

	progress func(stage string, done, total int)
}

type PipelineParams struct {
	Source port.DocumentSource
	Chunk  port.Chunker
	Embed  port.Embedder
	Index  port.VectorIndex
	Admin  *IndexAdmin

	Metric           domain.Metric
	EmbedBatchSize   int
	EmbedBatchDelay  time.Duration
	UpsertBatchSize  int
	UpsertBatchDelay time.Duration
	KeepIndex        bool

	// Progress is called as each stage advances. Optional.
	Progress func(stage string, done, total int)
}

func NewPipeline(p PipelineParams) *Pipeline {
	if p.EmbedBatchSize <= 0 {
		p.EmbedBatchSize = 10
	}
	if p.UpsertBatchSize <= 0 {
		p.UpsertBatchSize = 100
	}
	if p.Metric == "" {
		p.Metric = domain.MetricDot
	}
	progress := p.Progress
	if progress == nil {
		progress = func(string, int, int) {}
	}
	return &Pipeline{
		source:           p.Source,
		chunk:            p.Chunk,
		embed:            p.Embed,
		index:            p.Index,
		admin:            p.Admin,
		metric:           p.Metric,
		embedBatchSize:   p.EmbedBatchSize,
		embedBatchDelay:  p.EmbedBatchDelay,
		upsertBatchSize:  p.UpsertBatchSize,
		upsertBatchDelay: p.UpsertBatchDelay,
		keepIndex:        p.KeepIndex,
		progress:         progress,
	}
}

func (p *Pipeline) Run(indexName string) (*domain.IngestionReport, error) {
	start := time.Now()
	report := &domain.IngestionReport{IndexName: indexName}

	docs, err := p.source.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found")
	}
	report.Documents = len(docs)

	var chunks []domain.Chunk
	for i, doc := range docs {
		cs, err := p.chunk.Split(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk %s: %w", doc.Path, err)
		}
		chunks = append(chunks, cs...)
		p.progress("chunk", i+1, len(docs))
	}
	report.Chunks = len(chunks)

	docsByID := make(map[string]domain.Document, len(docs))
	for _, doc := range docs {
		docsByID[doc.ID] = doc
	}

	records := p.embedChunks(chunks, docsByID, report)
	report.Embedded = len(records)
	if len(records) == 0 {
		return nil, fmt.Errorf("embedding produced no vectors")
	}

	err = p.admin.EnsureIndex(indexName, p.embed.Dimension(), p.metric, p.keepIndex)
	if err != nil {
		return nil, err
	}

	p.upsertRecords(indexName, records, report)
	if report.Upserted == 0 {
		return nil, fmt.Errorf("no vectors were stored")
	}

	p.admin.Settle()
	if stats, err := p.admin.Describe(indexName); err == nil {
		report.IndexVectorCount = stats.VectorCount
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (p *Pipeline) embedChunks(chunks []domain.Chunk, docs map[string]domain.Document, report *domain.IngestionReport) []domain.EmbeddingRecord {
	records := make([]domain.EmbeddingRecord, 0, len(chunks))
	total := (len(chunks) + p.embedBatchSize - 1) / p.embedBatchSize

	for b := 0; b*p.embedBatchSize < len(chunks); b++ {
		lo := b * p.embedBatchSize
		hi := lo + p.embedBatchSize
		if hi > len(chunks) {
			hi = len(chunks)
		}
		batch := chunks[lo:hi]

		if b > 0 && p.embedBatchDelay > 0 {
			time.Sleep(p.embedBatchDelay)
		}

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Text
		}

		vectors, err := p.embed.Embed(texts, port.ModeDocument)
		if err != nil {
			report.EmbedFailures = append(report.EmbedFailures, domain.BatchFailure{
				Batch: b,
				Size:  len(batch),
				Err:   err.Error(),
			})
			p.progress("embed", b+1, total)
			continue
		}

		for i, ch := range batch {
			records = append(records, domain.EmbeddingRecord{
				ID:       ch.ID,
				Vector:   vectors[i],
				Metadata: chunkMetadata(ch, docs[ch.DocID]),
			})
		}
		p.progress("embed", b+1, total)
	}
	return records
}

func (p *Pipeline) upsertRecords(indexName string, records []domain.EmbeddingRecord, report *domain.IngestionReport) {
	total := (len(records) + p.upsertBatchSize - 1) / p.upsertBatchSize

	for b := 0; b*p.upsertBatchSize < len(records); b++ {
		lo := b * p.upsertBatchSize
		hi := lo + p.upsertBatchSize
		if hi > len(records) {
			hi = len(records)
		}
		batch := records[lo:hi]

		if b > 0 && p.upsertBatchDelay > 0 {
			time.Sleep(p.upsertBatchDelay)
		}

		if err := p.index.Upsert(indexName, batch); err != nil {
			report.UpsertFailures = append(report.UpsertFailures, domain.BatchFailure{
				Batch: b,
				Size:  len(batch),
				Err:   err.Error(),
			})
			p.progress("upsert", b+1, total)
			continue
		}
		report.Upserted += len(batch)
		p.progress("upsert", b+1, total)
	}
}

func chunkMetadata(ch domain.Chunk, doc domain.Document) map[string]string {
	preview := ch.Text
	if len(preview) > metadataPreviewBytes {
		preview = preview[:metadataPreviewBytes]
	}
	return map[string]string{
		"source":       doc.Path,
		"filename":     doc.ID,
		"file_size":    strconv.Itoa(doc.ByteSize),
		"chunk_index":  strconv.Itoa(ch.Ordinal),
		"total_chunks": strconv.Itoa(ch.TotalChunks),
		"text":         preview,
	}
}
