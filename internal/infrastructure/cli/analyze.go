package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Show how a file would be classified and chunked",
	Long: `Loads a file and reports its statistics, content classification and the
chunking strategy ingestion would use. Nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Ingest.Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if analyzeJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, r entities.FileReport) {
	st := r.Stats
	cmd.Printf("File: %s (%s)\n", r.Source, r.FileType)
	cmd.Printf("Size: %d chars, %d words, %d lines, %d paragraphs\n", st.Size, st.Words, st.Lines, st.Paragraphs)
	cmd.Printf("Average line: %.1f chars, average paragraph: %.1f chars\n", st.AvgLineLength, st.AvgParagraphLength)

	cmd.Println()
	cmd.Printf("Content type: %s\n", r.Classification.Primary)
	for _, s := range r.Classification.Ranked {
		if s.Score > 0 {
			cmd.Printf("  %s: %.1f\n", s.Type, s.Score)
		}
	}

	cs := r.Strategy
	cmd.Println()
	cmd.Printf("Strategy: %s\n", cs.Strategy)
	cmd.Printf("  Chunk size: %d (base %d), overlap %d\n", cs.ChunkSize, cs.BaseChunkSize, cs.Overlap)
	cmd.Printf("  Expected chunks: %d, results per query: %d\n", cs.ExpectedChunks, cs.NResults)
}
