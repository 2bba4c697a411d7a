package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// handleQueryStream handles SSE streaming queries. The first event carries
// the retrieval details, the rest the answer's tokens.
func (s *Server) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	resp, tokens, err := s.Query.AskStream(r.Context(), entities.ChatRequest{Query: query})
	if resp != nil {
		sendSSE(w, flusher, map[string]any{
			"complexity":        resp.Complexity,
			"chunks_found":      resp.ChunksFound,
			"retrieved_sources": resp.RetrievedSources,
			"intent_analysis":   resp.Intent,
		})
	}
	if err != nil {
		logger.Warnf("stream %q: %v", query, err)
		sendSSE(w, flusher, map[string]any{"error": domain.UserMessage(err), "done": true})
		return
	}

	for token := range tokens {
		if token.Error != nil {
			sendSSE(w, flusher, map[string]any{"error": domain.UserMessage(token.Error), "done": true})
			return
		}
		sendSSE(w, flusher, map[string]any{"content": token.Content, "done": token.Done})
	}
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, data map[string]any) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}
