package chunking

import (
	"strings"
	"unicode/utf8"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

const maxTitleLength = 100

// Analyze measures content. Lengths are in characters.
func Analyze(content string) entities.DocumentStats {
	stats := entities.DocumentStats{
		Size:  utf8.RuneCountInString(content),
		Words: len(strings.Fields(content)),
		Lines: strings.Count(content, "\n") + 1,
	}

	for _, p := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(p) != "" {
			stats.Paragraphs++
		}
	}

	// Averages spread the whole size, separators included.
	stats.AvgLineLength = float64(stats.Size) / float64(stats.Lines)
	if stats.Paragraphs > 0 {
		stats.AvgParagraphLength = float64(stats.Size) / float64(stats.Paragraphs)
	}
	return stats
}

// Title returns the first line of content, trimmed and cut to 100
// characters, or fallback when that line is blank.
func Title(content, fallback string) string {
	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback
	}
	if utf8.RuneCountInString(line) > maxTitleLength {
		line = string([]rune(line)[:maxTitleLength])
	}
	return line
}
