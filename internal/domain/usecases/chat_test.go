package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

func TestChatUseCase_SavesExchange(t *testing.T) {
	history := newMockHistory()
	uc := NewChatUseCase(NewQueryUseCase(&mockEmbedder{}, seededStore(), &mockLLM{}), history)

	resp, err := uc.Chat(context.Background(), entities.ChatRequest{
		Query:     "What is the refund window?",
		UserEmail: "ana@example.com",
		SessionID: "s-1",
	})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if resp.SavedToHistory == nil || !*resp.SavedToHistory {
		t.Fatalf("exchange should be saved, history error: %s", resp.HistoryError)
	}
	if resp.ChatID != 1 || resp.SessionID != "s-1" {
		t.Errorf("unexpected chat id %d or session %q", resp.ChatID, resp.SessionID)
	}

	rec := history.records[0]
	if rec.UserQuery != "What is the refund window?" || rec.AIResponse != "Mock response" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.QueryComplexity != entities.ComplexitySimple || rec.ChunksFound != 3 {
		t.Errorf("record should carry retrieval details: %+v", rec)
	}
	if rec.ResponseTimeMS == nil {
		t.Error("record should carry the response time")
	}
	if history.sessions["ana@example.com"].TotalQueries != 1 {
		t.Error("session should count the query")
	}
}

func TestChatUseCase_AnonymousNotSaved(t *testing.T) {
	history := newMockHistory()
	uc := NewChatUseCase(NewQueryUseCase(&mockEmbedder{}, seededStore(), &mockLLM{}), history)

	resp, err := uc.Chat(context.Background(), entities.ChatRequest{Query: "hello"})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if resp.SavedToHistory != nil || len(history.records) != 0 {
		t.Error("anonymous chats should not be saved")
	}
}

func TestChatUseCase_FailedAnswerNotSaved(t *testing.T) {
	history := newMockHistory()
	llm := &mockLLM{generateFn: func(string) (string, error) { return "", domain.ErrLLMTimeout }}
	uc := NewChatUseCase(NewQueryUseCase(&mockEmbedder{}, seededStore(), llm), history)

	resp, err := uc.Chat(context.Background(), entities.ChatRequest{Query: "hello", UserEmail: "ana@example.com"})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if resp.Success || len(history.records) != 0 {
		t.Error("failed answers should not be saved")
	}
}

func TestChatUseCase_StoredHistoryReplacesRequest(t *testing.T) {
	history := newMockHistory()
	for _, q := range []string{"q1", "q2", "q3", "q4", "q5", "q6"} {
		history.SaveExchange(context.Background(), entities.ChatRecord{UserEmail: "ana@example.com", UserQuery: q, AIResponse: "a-" + q})
	}
	llm := &mockLLM{}
	uc := NewChatUseCase(NewQueryUseCase(&mockEmbedder{}, seededStore(), llm), history)

	_, err := uc.Chat(context.Background(), entities.ChatRequest{
		Query:        "follow up",
		History:      []entities.Exchange{{Query: "from the client", Answer: "ignored"}},
		UserEmail:    "ana@example.com",
		UseDBHistory: true,
	})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}

	prompt := llm.lastPrompt()
	if strings.Contains(prompt, "from the client") {
		t.Error("stored history should replace the request history")
	}
	if !strings.Contains(prompt, "The user has asked 5 previous question(s)") {
		t.Errorf("expected the last 5 stored exchanges:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Previous Q5: q6") {
		t.Errorf("latest exchange should be last:\n%s", prompt)
	}
}

func TestChatUseCase_UnreadableHistoryKeepsRequest(t *testing.T) {
	history := newMockHistory()
	history.recentErr = errors.New("database is locked")
	llm := &mockLLM{}
	uc := NewChatUseCase(NewQueryUseCase(&mockEmbedder{}, seededStore(), llm), history)

	_, err := uc.Chat(context.Background(), entities.ChatRequest{
		Query:        "follow up",
		History:      []entities.Exchange{{Query: "from the client", Answer: "kept"}},
		UserEmail:    "ana@example.com",
		UseDBHistory: true,
	})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if !strings.Contains(llm.lastPrompt(), "Previous Q1: from the client\nPrevious A1: kept") {
		t.Errorf("request history should be used when stored history cannot be read:\n%s", llm.lastPrompt())
	}
}

func TestChatUseCase_SaveFailureReported(t *testing.T) {
	history := newMockHistory()
	history.saveErr = errors.New("disk full")
	uc := NewChatUseCase(NewQueryUseCase(&mockEmbedder{}, seededStore(), &mockLLM{}), history)

	resp, err := uc.Chat(context.Background(), entities.ChatRequest{Query: "hello", UserEmail: "ana@example.com"})
	if err != nil {
		t.Fatalf("save failures should not fail the chat: %v", err)
	}
	if resp.SavedToHistory == nil || *resp.SavedToHistory {
		t.Error("saved_to_history should be false")
	}
	if resp.HistoryError != "disk full" {
		t.Errorf("unexpected history error: %q", resp.HistoryError)
	}
	if !resp.Success {
		t.Error("the answer itself should still succeed")
	}
}

func TestChatUseCase_HistoryDisabled(t *testing.T) {
	uc := NewChatUseCase(NewQueryUseCase(&mockEmbedder{}, seededStore(), &mockLLM{}), nil)
	ctx := context.Background()

	resp, err := uc.Chat(ctx, entities.ChatRequest{Query: "hello", UserEmail: "ana@example.com", UseDBHistory: true})
	if err != nil || !resp.Success {
		t.Fatalf("chat should work without history: %v", err)
	}
	if _, err := uc.UserHistory(ctx, "ana@example.com", 0); !errors.Is(err, domain.ErrHistoryDisabled) {
		t.Errorf("expected ErrHistoryDisabled, got %v", err)
	}
	if _, err := uc.UserStats(ctx, "ana@example.com"); !errors.Is(err, domain.ErrHistoryDisabled) {
		t.Errorf("expected ErrHistoryDisabled, got %v", err)
	}
	if err := uc.Feedback(ctx, 1, true, ""); !errors.Is(err, domain.ErrHistoryDisabled) {
		t.Errorf("expected ErrHistoryDisabled, got %v", err)
	}
	if _, err := uc.Session(ctx, "ana@example.com"); !errors.Is(err, domain.ErrHistoryDisabled) {
		t.Errorf("expected ErrHistoryDisabled, got %v", err)
	}
}

func TestChatUseCase_FeedbackAndHistory(t *testing.T) {
	history := newMockHistory()
	uc := NewChatUseCase(NewQueryUseCase(&mockEmbedder{}, seededStore(), &mockLLM{}), history)
	ctx := context.Background()

	resp, err := uc.Chat(ctx, entities.ChatRequest{Query: "hello", UserEmail: "ana@example.com"})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if err := uc.Feedback(ctx, resp.ChatID, true, "clear"); err != nil {
		t.Errorf("feedback failed: %v", err)
	}
	if err := uc.Feedback(ctx, 99, false, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	recs, err := uc.UserHistory(ctx, "ana@example.com", 0)
	if err != nil || len(recs) != 1 {
		t.Fatalf("expected one record, got %d (%v)", len(recs), err)
	}
	if recs[0].IsHelpful == nil || !*recs[0].IsHelpful {
		t.Error("feedback should be recorded")
	}

	session, err := uc.Session(ctx, "ana@example.com")
	if err != nil || session.SessionID == "" {
		t.Errorf("expected a session, got %+v (%v)", session, err)
	}
}

func TestClampHistoryLimit(t *testing.T) {
	tests := map[int]int{0: 20, -3: 20, 5: 5, 100: 100, 250: 100}
	for in, want := range tests {
		if got := ClampHistoryLimit(in); got != want {
			t.Errorf("ClampHistoryLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
