package usecases

import (
	"context"
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

const (
	storedHistoryWindow = 5
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ChatUseCase wraps QueryUseCase with per-user history and sessions.
// history may be nil, in which case nothing is remembered.
type ChatUseCase struct {
	query   *QueryUseCase
	history ports.HistoryStore
}

// NewChatUseCase creates a ChatUseCase.
func NewChatUseCase(query *QueryUseCase, history ports.HistoryStore) *ChatUseCase {
	return &ChatUseCase{query: query, history: history}
}

// Chat answers req. For a known user with UseDBHistory the last stored
// exchanges replace req.History unless they cannot be read, and a
// successful answer is saved. A
// failure to save is reported on the response, never returned.
func (uc *ChatUseCase) Chat(ctx context.Context, req entities.ChatRequest) (*entities.ChatResponse, error) {
	start := time.Now()

	if req.UserEmail != "" && req.UseDBHistory && uc.history != nil {
		stored, err := uc.history.RecentExchanges(ctx, req.UserEmail, storedHistoryWindow)
		if err != nil {
			logger.Warnf("loading history for %s: %v", req.UserEmail, err)
		} else {
			req.History = stored
		}
	}

	resp, err := uc.query.Ask(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.ResponseTimeMS = time.Since(start).Milliseconds()

	if req.UserEmail == "" || !resp.Success || uc.history == nil {
		return resp, nil
	}

	saved := false
	resp.SavedToHistory = &saved
	session, err := uc.history.TouchSession(ctx, req.UserEmail, req.SessionID)
	if err != nil {
		logger.Errorf("error saving chat history: %v", err)
		resp.HistoryError = err.Error()
		return resp, nil
	}

	elapsed := resp.ResponseTimeMS
	rec, err := uc.history.SaveExchange(ctx, entities.ChatRecord{
		UserEmail:        req.UserEmail,
		SessionID:        session.SessionID,
		UserQuery:        req.Query,
		AIResponse:       resp.Answer,
		QueryComplexity:  resp.Complexity,
		ChunksFound:      resp.ChunksFound,
		RetrievedSources: resp.RetrievedSources,
		IntentAnalysis:   resp.Intent,
		ResponseTimeMS:   &elapsed,
	})
	if err != nil {
		logger.Errorf("error saving chat history: %v", err)
		resp.HistoryError = err.Error()
		return resp, nil
	}

	saved = true
	resp.SessionID = session.SessionID
	resp.ChatID = rec.ID
	return resp, nil
}

// ClampHistoryLimit applies the default and the cap to a requested
// history length.
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	return min(limit, maxHistoryLimit)
}

// UserHistory returns a user's latest exchanges, oldest first.
func (uc *ChatUseCase) UserHistory(ctx context.Context, email string, limit int) ([]entities.ChatRecord, error) {
	if uc.history == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return uc.history.History(ctx, email, ClampHistoryLimit(limit))
}

// UserStats aggregates a user's history.
func (uc *ChatUseCase) UserStats(ctx context.Context, email string) (*entities.UserStats, error) {
	if uc.history == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return uc.history.Stats(ctx, email)
}

// Feedback records whether an answer helped.
func (uc *ChatUseCase) Feedback(ctx context.Context, chatID uint, helpful bool, notes string) error {
	if uc.history == nil {
		return domain.ErrHistoryDisabled
	}
	return uc.history.SetFeedback(ctx, chatID, helpful, notes)
}

// Session returns the user's current session.
func (uc *ChatUseCase) Session(ctx context.Context, email string) (*entities.UserSession, error) {
	if uc.history == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return uc.history.Session(ctx, email)
}
