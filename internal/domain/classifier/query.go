package classifier

import (
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

var (
	complexIndicators = []string{
		"steps", "how to", "procedure", "process", "guide", "tutorial",
		"explain", "describe", "what are all", "types of", "list all",
		"compare", "difference", "versus", "vs", "analyze", "breakdown",
		"comprehensive", "detailed", "complete", "full",
	}
	simpleIndicators = []string{
		"what is", "define", "meaning", "who is", "when", "where",
		"true or false", "yes or no", "which", "name",
	}
	technicalIndicators = []string{
		"function", "method", "class", "api", "code", "syntax",
		"error", "debug", "implement", "algorithm",
	}
)

// Result counts per complexity level.
const (
	technicalResults = 8
	complexResults   = 10
	simpleResults    = 4
	mediumResults    = 6
)

// countIndicators returns how many indicators occur in s. Each indicator
// counts once however often it appears.
func countIndicators(s string, indicators []string) int {
	n := 0
	for _, ind := range indicators {
		if strings.Contains(s, ind) {
			n++
		}
	}
	return n
}

// ClassifyQuery decides the complexity of a question and how many chunks
// to retrieve for it. Technical indicators take precedence; otherwise the
// larger of the complex and simple counts wins, with ties falling to medium.
func ClassifyQuery(query string) entities.QueryComplexity {
	q := strings.ToLower(query)
	complexCount := countIndicators(q, complexIndicators)
	simpleCount := countIndicators(q, simpleIndicators)
	technicalCount := countIndicators(q, technicalIndicators)

	switch {
	case technicalCount > 0:
		return entities.QueryComplexity{Level: entities.ComplexityTechnical, NResults: technicalResults}
	case complexCount > simpleCount:
		return entities.QueryComplexity{Level: entities.ComplexityComplex, NResults: complexResults}
	case simpleCount > complexCount:
		return entities.QueryComplexity{Level: entities.ComplexitySimple, NResults: simpleResults}
	default:
		return entities.QueryComplexity{Level: entities.ComplexityMedium, NResults: mediumResults}
	}
}
