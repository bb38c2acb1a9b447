package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"rag/internal/adapter/cache"
	"rag/internal/usecase"
)

var chatTopK int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question loop over the indexed documents",
	Long: `Chat starts an interactive loop: each line is answered from the index.
Repeated questions are served from an in-session cache.

Commands inside the loop:
  /history   show the questions asked so far
  /quit      exit (ctrl-d also works)`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
}

func runChat(cmd *cobra.Command, args []string) error {
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
	if chatTopK > 0 {
		topK = chatTopK
	}

	session := usecase.NewRetrievalSession(
		usecase.NewRetriever(embedder, provider, cfg.Index.Name),
		usecase.NewComposer(model, cfg.Answer.PreviewChars),
		topK,
		cache.NewAnswerCache(100, 10*time.Minute),
	)

	fmt.Printf("Chatting over index %q. Type /quit to exit.\n\n", cfg.Index.Name)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			return nil
		case line == "/history":
			history := session.History()
			if len(history) == 0 {
				fmt.Println("No questions yet.")
				continue
			}
			for i, ex := range history {
				fmt.Printf("  [%d] %s (%s)\n", i+1, ex.Question, ex.Elapsed.Round(time.Millisecond))
			}
			continue
		}

		answer, elapsed := session.Ask(line)
		fmt.Printf("\n%s\n(%s)\n\n", answer, elapsed.Round(time.Millisecond))
	}
}
