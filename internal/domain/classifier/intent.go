package classifier

import (
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

type intentRule struct {
	indicators []string
	intent     string
	length     string
	apply      func(*entities.QueryIntent)
}

// intentRules are applied in order. A later match overrides the primary
// intent and answer length set by an earlier one; flags accumulate.
var intentRules = []intentRule{
	{
		indicators: []string{"steps", "how to", "procedure", "process", "guide", "tutorial", "first", "then", "next", "finally"},
		intent:     entities.IntentProcedure,
		length:     entities.AnswerLong,
		apply:      func(i *entities.QueryIntent) { i.RequiresSequence = true },
	},
	{
		indicators: []string{"list all", "what are all", "types of", "all the", "every", "complete list"},
		intent:     entities.IntentComprehensiveList,
		length:     entities.AnswerLong,
		apply:      func(i *entities.QueryIntent) { i.RequiresCompleteData = true },
	},
	{
		indicators: []string{"compare", "difference", "versus", "vs", "better", "best", "worst", "pros and cons"},
		intent:     entities.IntentComparison,
		length:     entities.AnswerLong,
		apply:      func(i *entities.QueryIntent) { i.IsComparative = true },
	},
	{
		indicators: []string{"error", "problem", "issue", "not working", "fails", "broken", "fix", "solve", "troubleshoot"},
		intent:     entities.IntentTroubleshooting,
		length:     entities.AnswerLong,
		apply:      func(i *entities.QueryIntent) { i.IsTroubleshooting = true },
	},
	{
		indicators: []string{"what is", "define", "meaning of", "who is", "when is", "where is"},
		intent:     entities.IntentDefinition,
		length:     entities.AnswerShort,
	},
}

// AnalyzeIntent works out what kind of answer a question is asking for.
func AnalyzeIntent(query string) entities.QueryIntent {
	q := strings.ToLower(query)
	intent := entities.QueryIntent{
		PrimaryIntent:        entities.IntentGeneral,
		ExpectedAnswerLength: entities.AnswerMedium,
	}
	for _, rule := range intentRules {
		if countIndicators(q, rule.indicators) == 0 {
			continue
		}
		if rule.apply != nil {
			rule.apply(&intent)
		}
		intent.PrimaryIntent = rule.intent
		intent.ExpectedAnswerLength = rule.length
	}
	return intent
}
