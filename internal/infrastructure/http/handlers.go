package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"slices"
	"strconv"
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

const maxBodyBytes = 1 << 20

type chatRequest struct {
	Query        string              `json:"query"`
	UserEmail    string              `json:"user_email"`
	SessionID    string              `json:"session_id"`
	UseDBHistory *bool               `json:"use_db_history"`
	History      []entities.Exchange `json:"history"`
}

// handleChat answers a question, remembering it for a known user.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}
	if req.UserEmail != "" && !validEmail(req.UserEmail) {
		writeError(w, http.StatusBadRequest, "Invalid email address format")
		return
	}

	useDB := req.UseDBHistory == nil || *req.UseDBHistory
	resp, err := s.Chat.Chat(r.Context(), entities.ChatRequest{
		Query:        req.Query,
		History:      req.History,
		UserEmail:    req.UserEmail,
		SessionID:    req.SessionID,
		UseDBHistory: useDB,
	})
	if err != nil {
		writeQueryError(w, req.Query, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleKnowledgeBase describes what has been ingested.
func (s *Server) handleKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	kb, err := s.Stats.KnowledgeBase(r.Context())
	if err != nil {
		logger.Errorf("knowledge base stats: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Knowledge base not available")
		return
	}
	suggestions, err := s.Stats.Suggestions(r.Context())
	if err != nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"knowledge_base": kb,
		"suggestions":    suggestions,
	})
}

// handleSuggestions proposes questions, following up on ?history= when given.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var history []entities.Exchange
	if raw := r.URL.Query().Get("history"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			history = nil
		}
	}

	suggestions, err := s.Stats.ConversationSuggestions(r.Context(), history)
	if err != nil {
		logger.Errorf("suggestions: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Knowledge base not available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "suggestions": suggestions})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	kb, err := s.Stats.KnowledgeBase(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":      "unhealthy",
			"rag_service": "unavailable",
			"error":       err.Error(),
		})
		return
	}

	body := map[string]any{
		"status":      "healthy",
		"rag_service": "available",
		"knowledge_base": map[string]any{
			"total_chunks": kb.TotalChunks,
			"total_files":  len(kb.FileSources),
			"file_types":   mapKeys(kb.FileTypes),
		},
	}
	if s.Pinger != nil {
		body["llm"] = "available"
		if err := s.Pinger.Ping(r.Context()); err != nil {
			body["llm"] = "unavailable"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// handleDebug answers without history and returns the retrieval details.
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	resp, err := s.Query.Ask(r.Context(), entities.ChatRequest{Query: req.Query})
	if err != nil {
		writeQueryError(w, req.Query, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     resp.Success,
		"query":       resp.Query,
		"ai_response": resp.Answer,
		"error":       resp.Error,
		"debug_info": map[string]any{
			"query_analysis": map[string]any{
				"complexity":       resp.Complexity,
				"intent":           resp.Intent,
				"chunks_retrieved": resp.ChunksFound,
			},
			"retrieval_info": map[string]any{
				"file_types":    resp.RetrievedFileTypes,
				"content_types": resp.RetrievedContentTypes,
				"sources":       resp.RetrievedSources,
			},
			"chunks_detail": resp.Chunks,
		},
	})
}

// handleUserHistory returns a user's latest exchanges with their stats.
func (s *Server) handleUserHistory(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}

	records, err := s.Chat.UserHistory(r.Context(), email, limit)
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	stats, err := s.Chat.UserStats(r.Context(), email)
	if err != nil {
		writeHistoryError(w, err)
		return
	}

	exchanges := make([]entities.Exchange, len(records))
	for i, rec := range records {
		exchanges[i] = entities.Exchange{Query: rec.UserQuery, Answer: rec.AIResponse}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"user_email":       email,
		"history":          exchanges,
		"detailed_history": records,
		"user_stats":       stats,
	})
}

type feedbackRequest struct {
	ChatID        uint   `json:"chat_id"`
	IsHelpful     *bool  `json:"is_helpful"`
	FeedbackNotes string `json:"feedback_notes"`
}

// handleUserFeedback records whether an answer helped.
func (s *Server) handleUserFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ChatID == 0 {
		writeError(w, http.StatusBadRequest, "chat_id is required")
		return
	}
	if req.IsHelpful == nil {
		writeError(w, http.StatusBadRequest, "is_helpful is required (true/false)")
		return
	}

	err := s.Chat.Feedback(r.Context(), req.ChatID, *req.IsHelpful, strings.TrimSpace(req.FeedbackNotes))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Chat entry not found")
		return
	}
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Feedback saved successfully"})
}

// handleUserStats returns a user's usage statistics and session.
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}

	stats, err := s.Chat.UserStats(r.Context(), email)
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	session, err := s.Chat.Session(r.Context(), email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"user_email":   email,
		"chat_stats":   stats,
		"session_info": session,
	})
}

// handleActions lists the action catalogue.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "actions": s.Actions.Actions()})
}

// handleDetectAction reports the action a question asks for, if any.
func (s *Server) handleDetectAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	det, found := s.Actions.Detect(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"query":     req.Query,
		"detected":  found,
		"detection": det,
	})
}

func emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := strings.TrimSpace(r.URL.Query().Get("user_email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "user_email parameter is required")
		return "", false
	}
	if !validEmail(email) {
		writeError(w, http.StatusBadRequest, "Invalid email address format")
		return "", false
	}
	return email, true
}

// validEmail accepts a bare address only, not "Name <addr>".
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}

// writeQueryError maps retrieval failures onto status codes. An empty
// knowledge base or an unreachable model makes the service unavailable;
// finding nothing is an ordinary unsuccessful answer.
func writeQueryError(w http.ResponseWriter, query string, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, domain.ErrNoResults):
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"query":   query,
			"error":   domain.UserMessage(err),
		})
	case errors.Is(err, domain.ErrEmptyKnowledgeBase),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrLLMTimeout):
		writeError(w, http.StatusServiceUnavailable, domain.UserMessage(err))
	default:
		logger.Errorf("query %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeHistoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrHistoryDisabled) {
		writeError(w, http.StatusServiceUnavailable, "Chat history is disabled")
		return
	}
	logger.Errorf("history: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("writing response: %v", err)
	}
}

func mapKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
