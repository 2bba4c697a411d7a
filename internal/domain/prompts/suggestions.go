package prompts

import (
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

const maxSuggestions = 8

// QuerySuggestions proposes question starters for the kinds of content in
// the knowledge base. Both maps are keyed by type name.
func QuerySuggestions(fileTypes, contentTypes map[string]int) []string {
	has := func(m map[string]int, key string) bool {
		_, ok := m[key]
		return ok
	}

	var out []string
	if has(contentTypes, string(entities.ContentProcedures)) {
		out = append(out, "What are the steps to...", "How do I set up...", "What is the procedure for...")
	}
	if has(contentTypes, string(entities.ContentLists)) {
		out = append(out, "What types of... are available?", "List all the options for...", "What are the different...")
	}
	if has(contentTypes, string(entities.ContentTechnical)) || has(contentTypes, string(entities.ContentCode)) {
		out = append(out, "How does the ... function work?", "What is the syntax for...", "Explain the code that...")
	}
	if has(contentTypes, string(entities.ContentFAQ)) {
		out = append(out, "What is...", "How can I...", "Why does...")
	}

	if has(fileTypes, string(entities.FileTypeJSON)) {
		out = append(out, "What data is stored in the JSON files?")
	}
	if has(fileTypes, string(entities.FileTypeCSV)) {
		out = append(out, "What columns are in the CSV data?")
	}
	if has(fileTypes, string(entities.FileTypePDF)) {
		out = append(out, "What information is in the PDF documents?")
	}
	if has(fileTypes, string(entities.FileTypeCode)) {
		out = append(out, "What functions are available in the code?", "How do I use the API?", "What are the main classes and methods?")
	}

	return capSuggestions(out)
}

// ConversationSuggestions puts follow-ups for the last question ahead of
// the base suggestions.
func ConversationSuggestions(base []string, history []entities.Exchange) []string {
	if len(history) == 0 {
		return capSuggestions(base)
	}

	last := strings.ToLower(history[len(history)-1].Query)
	var out []string
	if strings.Contains(last, "workflow") {
		out = append(out,
			"What are the steps to create a workflow?",
			"How do I modify an existing workflow?",
			"What types of workflows are supported?",
		)
	}
	if strings.Contains(last, "contract") {
		out = append(out,
			"How do I create a new contract type?",
			"What are the access control options?",
			"How do I set default signatories?",
		)
	}
	return capSuggestions(append(out, base...))
}

func capSuggestions(s []string) []string {
	if len(s) > maxSuggestions {
		return s[:maxSuggestions]
	}
	return s
}
