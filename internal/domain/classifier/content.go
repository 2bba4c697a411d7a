// Package classifier holds the heuristic classifiers that drive adaptive
// chunking and retrieval: document content type, query complexity and
// query intent. All of them are pure functions of their input.
package classifier

import (
	"regexp"
	"slices"
	"sync"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// Category configures how one content type is scored.
// Weight is applied to a non-zero score, and only for the listed file
// types when WeightFileTypes is non-empty.
type Category struct {
	Type            entities.ContentType
	Patterns        []string
	Weight          float64
	WeightFileTypes []entities.FileType
}

// DefaultCategories is the built-in category table in ranking order.
var DefaultCategories = []Category{
	{
		Type: entities.ContentProcedures,
		Patterns: []string{
			`step \d+`, `step\s*\d+:`, `\d+\.\s+`, `first|second|third|next|then|finally`,
			`procedure`, `instructions`, `how to`, `guide`, `getting started`,
			`tutorial`, `walkthrough`, `setup`, `installation`,
		},
		Weight: 2,
	},
	{
		Type: entities.ContentLists,
		Patterns: []string{
			`^\s*[-*•]\s+`, `^\s*\d+\.\s+`, `types?\s+of`, `includes?:`, `following:`,
			`such as:`, `examples?:`, `supports.*types?`, `two types`, `three types`,
			`several types`, `types\s+of\s+workflows`, `categories`, `options`,
			`methods`, `approaches`,
		},
		Weight: 2,
	},
	{
		Type: entities.ContentTechnical,
		Patterns: []string{
			`api`, `function`, `class`, `method`, `parameter`, `return`,
			`configuration`, `settings`, `system`, `technical`, `def\s+\w+`,
			`import\s+`, `from\s+\w+`, `#!/`, `<html>`, `SELECT\s+`, `CREATE\s+`,
		},
		Weight: 1.5,
	},
	{
		Type: entities.ContentFAQ,
		Patterns: []string{
			`q:`, `question:`, `a:`, `answer:`, `what\s+is`, `how\s+do`,
			`why\s+does`, `can\s+i`, `frequently`, `common`, `\?\s*$`,
		},
	},
	{
		Type: entities.ContentConversational,
		Patterns: []string{
			`\bi\s+`, `\byou\s+`, `\bwe\s+`, `let's`, `here's`, `first\s+`,
			`now\s+`, `okay`, `welcome`, `hello`,
		},
	},
	{
		Type: entities.ContentCode,
		Patterns: []string{
			`def\s+\w+`, `class\s+\w+`, `function\s+\w+`, `var\s+\w+`, `const\s+\w+`,
			`let\s+\w+`, `import\s+`, `from\s+\w+\s+import`, `#!/usr/bin`, `<\?php`,
			`<!DOCTYPE`, `public\s+class`,
		},
		Weight:          2,
		WeightFileTypes: []entities.FileType{entities.FileTypeText},
	},
	{
		Type: entities.ContentData,
		Patterns: []string{
			`^\s*\w+:`, `^\s*"\w+":`, `^\w+,\w+`, `\{.*\}`, `\[.*\]`, `=\s*\w+`,
			`:\s*\w+`, `csv`, `json`, `database`,
		},
		Weight:          3,
		WeightFileTypes: []entities.FileType{entities.FileTypeJSON, entities.FileTypeCSV, entities.FileTypeData},
	},
}

type compiledCategory struct {
	Category
	regexps []*regexp.Regexp
}

// ContentClassifier scores text against the category table.
// It is safe for concurrent use.
type ContentClassifier struct {
	categories []compiledCategory
}

// NewContentClassifier compiles the given categories. Patterns are matched
// case-insensitively with ^ and $ anchoring at line boundaries. A pattern
// that does not compile is logged and skipped.
func NewContentClassifier(categories []Category) *ContentClassifier {
	c := &ContentClassifier{categories: make([]compiledCategory, 0, len(categories))}
	for _, cat := range categories {
		cc := compiledCategory{Category: cat}
		for _, p := range cat.Patterns {
			re, err := regexp.Compile(`(?im)` + p)
			if err != nil {
				logger.Warnf("skipping %s pattern %q: %v", cat.Type, p, err)
				continue
			}
			cc.regexps = append(cc.regexps, re)
		}
		c.categories = append(c.categories, cc)
	}
	return c
}

var defaultClassifier = sync.OnceValue(func() *ContentClassifier {
	return NewContentClassifier(DefaultCategories)
})

// Classify scores text with the default category table.
func Classify(text string, fileType entities.FileType) entities.Classification {
	return defaultClassifier().Classify(text, fileType)
}

// Classify ranks the content types present in text. Categories with a zero
// score are left out; ties keep table order. Without any match the primary
// type is general.
func (c *ContentClassifier) Classify(text string, fileType entities.FileType) entities.Classification {
	var ranked []entities.ContentScore
	for _, cat := range c.categories {
		score := 0.0
		for _, re := range cat.regexps {
			score += float64(len(re.FindAllStringIndex(text, -1)))
		}
		if score == 0 {
			continue
		}
		if cat.Weight > 0 && (len(cat.WeightFileTypes) == 0 || slices.Contains(cat.WeightFileTypes, fileType)) {
			score *= cat.Weight
		}
		ranked = append(ranked, entities.ContentScore{Type: cat.Type, Score: score})
	}

	slices.SortStableFunc(ranked, func(a, b entities.ContentScore) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	primary := entities.ContentGeneral
	if len(ranked) > 0 {
		primary = ranked[0].Type
	}
	return entities.Classification{Primary: primary, Ranked: ranked}
}
