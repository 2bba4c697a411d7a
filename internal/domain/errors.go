// Package domain holds the errors shared by every layer and the user-facing
// text each one maps to.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrNoResults means retrieval succeeded but found nothing relevant.
	ErrNoResults = errors.New("no relevant information found")

	// ErrEmptyKnowledgeBase means the vector store holds no chunks at all.
	ErrEmptyKnowledgeBase = errors.New("knowledge base is empty")

	// ErrEmptyContent means a file produced no text after extraction.
	ErrEmptyContent = errors.New("no content extracted")

	// ErrUnsupportedFile means no reader can extract text from the file.
	ErrUnsupportedFile = errors.New("unsupported file")

	// ErrLLMUnavailable means the model server could not be reached.
	ErrLLMUnavailable = errors.New("model server unreachable")

	// ErrLLMTimeout means the model server did not answer in time.
	ErrLLMTimeout = errors.New("model request timed out")

	// ErrNotFound means a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrHistoryDisabled means no chat history store is configured.
	ErrHistoryDisabled = errors.New("chat history is disabled")
)

// LLMStatusError is returned when the model server answers with a non-200 status.
type LLMStatusError struct {
	StatusCode int
	Body       string
}

func (e *LLMStatusError) Error() string {
	return fmt.Sprintf("ollama error (status %d): %s", e.StatusCode, e.Body)
}

// User-facing messages.
const (
	MsgNoResults       = "No relevant information found. Try rephrasing your question."
	MsgLLMUnavailable  = "Could not connect to Ollama. Make sure Ollama is running with: ollama serve"
	MsgLLMTimeout      = "Request timed out. The model might be processing a complex response."
	MsgEmptyKnowledge  = "No content found in the database! Run the ingest command first to add content."
	MsgInternalFailure = "Internal server error"
)

// UserMessage maps an error to the text shown to the person asking.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *LLMStatusError
	switch {
	case errors.Is(err, ErrNoResults):
		return MsgNoResults
	case errors.Is(err, ErrLLMUnavailable):
		return MsgLLMUnavailable
	case errors.Is(err, ErrLLMTimeout):
		return MsgLLMTimeout
	case errors.Is(err, ErrEmptyKnowledgeBase):
		return MsgEmptyKnowledge
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Error: %d - %s", statusErr.StatusCode, statusErr.Body)
	default:
		return "Error: " + err.Error()
	}
}
