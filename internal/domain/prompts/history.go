package prompts

import (
	"fmt"
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

const (
	historyWindow    = 3
	answerPreviewLen = 200
)

// HistoryContext renders the last few exchanges so the model can resolve
// follow-up questions. It returns "" when there is no history.
func HistoryContext(history []entities.Exchange) string {
	if len(history) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\nCONVERSATION HISTORY CONTEXT:\n")
	fmt.Fprintf(&sb, "The user has asked %d previous question(s). Here's the recent conversation:\n\n", len(history))

	start := max(0, len(history)-historyWindow)
	for i, ex := range history[start:] {
		n := start + i + 1
		fmt.Fprintf(&sb, "Previous Q%d: %s\n", n, ex.Query)
		fmt.Fprintf(&sb, "Previous A%d: %s\n\n", n, Truncate(ex.Answer, answerPreviewLen))
	}

	sb.WriteString(`Use this conversation history to:
1. Understand follow-up questions and references (e.g., "that", "it", "the previous step")
2. Provide related information when relevant
3. Avoid repeating information already provided unless specifically asked
4. Build upon previous context for more coherent responses

`)
	return sb.String()
}

// Truncate cuts s to n characters, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
