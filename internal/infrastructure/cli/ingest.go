package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

var ingestReplace bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [dirs...]",
	Short: "Ingest documents into the knowledge base",
	Long: `Loads every supported file directly inside the given directories, or the
configured ingest directories when none are given. Each file gets a chunking
strategy from its size and detected content type before it is embedded and
stored. Files that fail are reported and skipped.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestReplace, "replace", false, "clear the knowledge base before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	dirs := args
	if len(dirs) == 0 {
		dirs = cfg.Ingest.Dirs
	}
	if len(dirs) == 0 {
		return errors.New("no directories to ingest")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.Ingest.IngestDirs(cmd.Context(), dirs, ingestReplace)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, s *entities.IngestSummary) {
	cmd.Printf("Processed %d files (%d skipped), %d chunks stored.\n", s.FilesProcessed, s.FilesSkipped, s.TotalChunks)

	printBreakdown(cmd, "By file type", s.ByFileType, s.TotalChunks)
	printBreakdown(cmd, "By content type", s.ByContentType, s.TotalChunks)
	printBreakdown(cmd, "By strategy", s.ByStrategy, s.TotalChunks)

	if s.FilesSkipped == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Skipped:")
	for _, f := range s.Files {
		if f.Skipped {
			cmd.Printf("  %s: %s\n", f.Source, f.Reason)
		}
	}
}
