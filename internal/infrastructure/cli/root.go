// Package cli implements the adaptiverag command line.
package cli

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/adaptiverag/internal/app"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/config"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

var (
	cfgFile string
	verbose bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

// buildApp constructs the application a command works with.
var buildApp = app.New

var rootCmd = &cobra.Command{
	Use:   "adaptiverag",
	Short: "Question answering over local documents",
	Long: `adaptiverag ingests local documents, chunking each one according to its
size and content, and answers questions about them with a local Ollama model.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (.toml or .yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// ExecuteContext runs the command line. Cancelling ctx stops the running
// command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		c.Verbose = true
	}
	logger.SetVerbose(c.Verbose)
	cfg = c
	return nil
}

// openApp builds the app for a command. Callers must Close it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	a, err := buildApp(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("starting adaptiverag: %w", err)
	}
	return a, nil
}

// printBreakdown lists counts by key, largest first, with their share of total.
func printBreakdown(cmd *cobra.Command, title string, counts map[string]int, total int) {
	if len(counts) == 0 {
		return
	}
	keys := slices.SortedFunc(maps.Keys(counts), func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	cmd.Println()
	cmd.Println(title + ":")
	for _, k := range keys {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[k]) * 100 / float64(total)
		}
		cmd.Printf("  %s: %d chunks (%.1f%%)\n", k, counts[k], pct)
	}
}
