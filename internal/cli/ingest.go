package cli

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"rag/internal/adapter/chunker"
	"rag/internal/adapter/fs"
	"rag/internal/domain"
	"rag/internal/usecase"
)

var (
	ingestFolder    string
	ingestKeepIndex bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk, embed and index the document folder",
	Long: `Ingest loads every matching document from the configured folder, splits
it into overlapping chunks, embeds the chunks and stores the vectors in the
index. The index is deleted and recreated first, so each run starts clean.

Examples:
  rag ingest                       # Ingest the configured folder
  rag ingest --folder ./corpus     # Ingest a specific folder
  rag ingest --keep-index          # Add to the existing index instead`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestFolder, "folder", "", "document folder (default from config)")
	ingestCmd.Flags().BoolVar(&ingestKeepIndex, "keep-index", false, "reuse the existing index instead of recreating it")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	folder := cfg.Documents.Folder
	if ingestFolder != "" {
		folder = ingestFolder
	}
	if !filepath.IsAbs(folder) {
		folder = filepath.Join(GetRootDir(), folder)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	provider, closeProvider, err := buildIndexProvider(cfg, GetRootDir())
	if err != nil {
		return fmt.Errorf("failed to create index provider: %w", err)
	}
	defer closeProvider()

	fmt.Printf("Ingesting %s into index %q (%s, %s)...\n",
		folder, cfg.Index.Name, cfg.Index.Provider, embedder.ModelName())

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var barStage string

	progress := func(stage string, done, total int) {
		barMu.Lock()
		defer barMu.Unlock()

		if stage != barStage {
			if bar != nil {
				bar.Finish()
			}
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", stageLabel(stage))),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
			barStage = stage
		}
		bar.Set(done)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineParams{
		Source: fs.NewLoader(folder, cfg.Documents.Includes, cfg.Documents.Excludes),
		Chunk:  chunker.NewSplitter(cfg.Chunk.Size, cfg.Chunk.Overlap),
		Embed:  embedder,
		Index:  provider,
		Admin:  buildAdmin(cfg, provider),

		Metric:           domain.Metric(cfg.Index.Metric),
		EmbedBatchSize:   cfg.Embedding.BatchSize,
		EmbedBatchDelay:  time.Duration(cfg.Embedding.BatchDelayMs) * time.Millisecond,
		UpsertBatchSize:  cfg.Upsert.BatchSize,
		UpsertBatchDelay: time.Duration(cfg.Upsert.BatchDelayMs) * time.Millisecond,
		KeepIndex:        ingestKeepIndex,
		Progress:         progress,
	})

	report, err := pipeline.Run(cfg.Index.Name)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printReport(report)
	return nil
}

func stageLabel(stage string) string {
	switch stage {
	case "chunk":
		return "Chunking"
	case "embed":
		return "Embedding"
	case "upsert":
		return "Upserting"
	}
	return stage
}

func printReport(r *domain.IngestionReport) {
	fmt.Printf("\nIngestion complete in %s:\n", r.Duration.Round(time.Millisecond))
	fmt.Printf("  Documents:      %d\n", r.Documents)
	fmt.Printf("  Chunks:         %d\n", r.Chunks)
	fmt.Printf("  Embedded:       %d\n", r.Embedded)
	fmt.Printf("  Upserted:       %d\n", r.Upserted)
	fmt.Printf("  Index vectors:  %d\n", r.IndexVectorCount)

	if len(r.EmbedFailures) > 0 || len(r.UpsertFailures) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, f := range r.EmbedFailures {
			fmt.Printf("  - embed batch %d (%d chunks): %s\n", f.Batch, f.Size, f.Err)
		}
		for _, f := range r.UpsertFailures {
			fmt.Printf("  - upsert batch %d (%d vectors): %s\n", f.Batch, f.Size, f.Err)
		}
	}
}
