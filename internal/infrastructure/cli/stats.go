package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

// Files listed by name before the list is cut short.
const maxListedFiles = 10

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	kb, err := a.Stats.KnowledgeBase(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading statistics: %w", err)
	}
	if kb.TotalChunks == 0 {
		cmd.Println(domain.MsgEmptyKnowledge)
		return nil
	}
	printStats(cmd, kb)

	suggestions, err := a.Stats.Suggestions(cmd.Context())
	if err != nil {
		return fmt.Errorf("building suggestions: %w", err)
	}
	printSuggestions(cmd, suggestions)
	return nil
}

func printStats(cmd *cobra.Command, kb *entities.KnowledgeBaseStats) {
	cmd.Println("Knowledge base statistics:")
	cmd.Printf("  Total chunks: %d\n", kb.TotalChunks)
	cmd.Printf("  Files: %d\n", len(kb.FileSources))
	cmd.Printf("  File types: %d\n", len(kb.FileTypes))
	cmd.Printf("  Content types: %d\n", len(kb.ContentTypes))

	printBreakdown(cmd, "File formats", upperKeys(kb.FileTypes), kb.TotalChunks)
	printBreakdown(cmd, "Content types", kb.ContentTypes, kb.TotalChunks)

	if len(kb.FileExtensions) > 0 {
		cmd.Println()
		cmd.Printf("File extensions: %s\n", strings.Join(kb.FileExtensions, ", "))
	}

	cmd.Println()
	if len(kb.FileSources) > maxListedFiles {
		cmd.Printf("Sample files (showing %d of %d):\n", maxListedFiles, len(kb.FileSources))
	} else {
		cmd.Println("Available files:")
	}
	for i, name := range kb.FileSources {
		if i == maxListedFiles {
			cmd.Printf("  ... and %d more files\n", len(kb.FileSources)-maxListedFiles)
			break
		}
		cmd.Printf("  %d. %s\n", i+1, name)
	}
}

func printSuggestions(cmd *cobra.Command, suggestions []string) {
	cmd.Println()
	if len(suggestions) == 0 {
		cmd.Println("No specific suggestions available. Try asking about your content!")
		return
	}
	cmd.Println("Query suggestions based on your content:")
	for i, s := range suggestions {
		cmd.Printf("  %d. %s\n", i+1, s)
	}
}

func upperKeys(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] += v
	}
	return out
}
