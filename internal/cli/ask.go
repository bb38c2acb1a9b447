package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"rag/internal/usecase"
)

var (
	askQuestion string
	askTopK     int
	askVerbose  bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a single question from the indexed documents",
	Long: `Ask embeds the question, retrieves the closest chunks from the index
and composes a grounded answer with the configured language model.

Examples:
  rag ask -q "what are the main conclusions?"
  rag ask -q "who is the author?" --top-k 5 --verbose`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "show retrieved chunks and scores")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateAnswer(); err != nil {
		return err
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

	model, err := buildLLM(cfg)
	if err != nil {
		return fmt.Errorf("failed to create language model: %w", err)
	}

	topK := cfg.Retrieve.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	retriever := usecase.NewRetriever(embedder, provider, cfg.Index.Name)

	start := time.Now()
	matches, err := retriever.Retrieve(askQuestion, topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if askVerbose {
		fmt.Printf("Retrieved %d chunks:\n", len(matches))
		for i, m := range matches {
			fmt.Printf("  [%d] %s (chunk %s, score %.3f)\n",
				i+1, m.Metadata["filename"], m.Metadata["chunk_index"], m.Score)
		}
		fmt.Println()
	}

	composer := usecase.NewComposer(model, cfg.Answer.PreviewChars)
	answer := composer.Compose(askQuestion, matches)

	fmt.Println(answer)
	if askVerbose {
		fmt.Printf("\n(%s)\n", time.Since(start).Round(time.Millisecond))
	}
	return nil
}
