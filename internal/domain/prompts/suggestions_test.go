package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

func TestQuerySuggestions(t *testing.T) {
	got := QuerySuggestions(
		map[string]int{"json": 3},
		map[string]int{"procedures": 10},
	)
	assert.Equal(t, []string{
		"What are the steps to...",
		"How do I set up...",
		"What is the procedure for...",
		"What data is stored in the JSON files?",
	}, got)
}

func TestQuerySuggestions_CappedAtEight(t *testing.T) {
	got := QuerySuggestions(
		map[string]int{"json": 1, "csv": 1, "pdf": 1},
		map[string]int{"procedures": 1, "lists": 1, "faq": 1, "code": 1},
	)
	assert.Len(t, got, 8)
	assert.Equal(t, "What are the steps to...", got[0])
	assert.Equal(t, "How does the ... function work?", got[6])
}

func TestQuerySuggestions_Empty(t *testing.T) {
	assert.Empty(t, QuerySuggestions(nil, nil))
}

func TestConversationSuggestions(t *testing.T) {
	base := []string{"b1", "b2", "b3"}

	assert.Equal(t, base, ConversationSuggestions(base, nil))

	got := ConversationSuggestions(base, []entities.Exchange{
		{Query: "tell me about contracts"},
		{Query: "How does the Workflow engine work?"},
	})
	assert.Equal(t, []string{
		"What are the steps to create a workflow?",
		"How do I modify an existing workflow?",
		"What types of workflows are supported?",
		"b1", "b2", "b3",
	}, got)

	both := ConversationSuggestions(base, []entities.Exchange{{Query: "workflow for a contract"}})
	assert.Len(t, both, 8)
	assert.Equal(t, "How do I create a new contract type?", both[3])
	assert.Equal(t, "b1", both[6])
}
