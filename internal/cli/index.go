package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"rag/internal/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect and manage the vector index",
}

var indexDescribeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show index readiness, dimension and vector count",
	RunE:  runIndexDescribe,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all indexes at the provider",
	RunE:  runIndexList,
}

var indexWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every vector from the index",
	Long: `Wipe removes all vectors but keeps the index itself. The index name
must be typed back to confirm; anything else aborts.`,
	RunE: runIndexWipe,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexDescribeCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexWipeCmd)
}

func runIndexDescribe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	provider, closeProvider, err := buildIndexProvider(cfg, GetRootDir())
	if err != nil {
		return fmt.Errorf("failed to create index provider: %w", err)
	}
	defer closeProvider()

	stats, err := buildAdmin(cfg, provider).Describe(cfg.Index.Name)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotFound) {
			return fmt.Errorf("index %q does not exist. Run 'rag ingest' first", cfg.Index.Name)
		}
		return err
	}

	fmt.Printf("Index %q (%s):\n", cfg.Index.Name, cfg.Index.Provider)
	fmt.Printf("  Ready:      %v\n", stats.Ready)
	fmt.Printf("  Dimension:  %d\n", stats.Dimension)
	fmt.Printf("  Vectors:    %d\n", stats.VectorCount)
	return nil
}

func runIndexList(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	provider, closeProvider, err := buildIndexProvider(cfg, GetRootDir())
	if err != nil {
		return fmt.Errorf("failed to create index provider: %w", err)
	}
	defer closeProvider()

	names, err := buildAdmin(cfg, provider).List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No indexes found.")
		return nil
	}
	for _, name := range names {
		marker := " "
		if name == cfg.Index.Name {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	return nil
}

func runIndexWipe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	provider, closeProvider, err := buildIndexProvider(cfg, GetRootDir())
	if err != nil {
		return fmt.Errorf("failed to create index provider: %w", err)
	}
	defer closeProvider()

	fmt.Printf("This deletes every vector in %q. Type the index name to confirm: ", cfg.Index.Name)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return fmt.Errorf("aborted")
	}
	confirm := strings.TrimSpace(scanner.Text())

	if err := buildAdmin(cfg, provider).Wipe(cfg.Index.Name, confirm); err != nil {
		if errors.Is(err, domain.ErrNotConfirmed) {
			fmt.Println("Confirmation did not match, nothing deleted.")
			return nil
		}
		return err
	}

	fmt.Printf("Index %q is now empty.\n", cfg.Index.Name)
	return nil
}
