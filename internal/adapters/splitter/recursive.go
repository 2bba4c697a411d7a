// Package splitter provides the recursive text splitter used at ingestion.
package splitter

import (
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// Separators in order of preference: paragraph, line, word, character.
var separators = []string{"\n\n", "\n", " ", ""}

// Recursive splits on the coarsest boundary that keeps pieces under the
// target length. Lengths are counted in characters.
type Recursive struct{}

// NewRecursive creates a Recursive splitter.
func NewRecursive() *Recursive {
	return &Recursive{}
}

// Split returns the chunks of text. Nothing is computed until the sequence
// is ranged over, and every range splits again from the start.
func (r *Recursive) Split(text string, chunkSize, overlap int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if strings.TrimSpace(text) == "" || chunkSize <= 0 {
			return
		}
		if overlap < 0 || overlap >= chunkSize {
			overlap = 0
		}

		s := textsplitter.NewRecursiveCharacter(
			textsplitter.WithSeparators(separators),
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithLenFunc(utf8.RuneCountInString),
		)
		parts, err := s.SplitText(text)
		if err != nil {
			logger.Warnf("splitting text: %v", err)
			return
		}
		for _, p := range parts {
			if strings.TrimSpace(p) == "" {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}
