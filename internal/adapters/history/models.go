package history

import (
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

// chatHistory is one stored exchange.
type chatHistory struct {
	ID               uint                 `gorm:"primaryKey"`
	UserEmail        string               `gorm:"size:255;not null;index:idx_user_created"`
	SessionID        *string              `gorm:"size:64;index:idx_session_created"`
	UserQuery        string               `gorm:"type:text;not null"`
	AIResponse       string               `gorm:"type:text;not null"`
	QueryComplexity  string               `gorm:"size:20;not null;default:'simple';index"`
	ChunksFound      int                  `gorm:"not null;default:0"`
	RetrievedSources []string             `gorm:"serializer:json"`
	IntentAnalysis   entities.QueryIntent `gorm:"serializer:json"`
	ResponseTimeMS   *int64
	IsHelpful        *bool
	FeedbackNotes    *string   `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"index:idx_user_created;index:idx_session_created"`
	UpdatedAt        time.Time
}

func (chatHistory) TableName() string {
	return "chat_history"
}

func (h chatHistory) toEntity() entities.ChatRecord {
	rec := entities.ChatRecord{
		ID:               h.ID,
		UserEmail:        h.UserEmail,
		UserQuery:        h.UserQuery,
		AIResponse:       h.AIResponse,
		QueryComplexity:  h.QueryComplexity,
		ChunksFound:      h.ChunksFound,
		RetrievedSources: h.RetrievedSources,
		IntentAnalysis:   h.IntentAnalysis,
		ResponseTimeMS:   h.ResponseTimeMS,
		IsHelpful:        h.IsHelpful,
		CreatedAt:        h.CreatedAt,
	}
	if h.SessionID != nil {
		rec.SessionID = *h.SessionID
	}
	if h.FeedbackNotes != nil {
		rec.FeedbackNotes = *h.FeedbackNotes
	}
	if rec.RetrievedSources == nil {
		rec.RetrievedSources = []string{}
	}
	return rec
}

// userSession tracks one user's current session.
type userSession struct {
	ID           uint           `gorm:"primaryKey"`
	UserEmail    string         `gorm:"size:255;not null;uniqueIndex"`
	SessionID    string         `gorm:"size:64;not null"`
	Preferences  map[string]any `gorm:"serializer:json"`
	FirstVisit   time.Time
	LastActivity time.Time
	TotalQueries int `gorm:"not null;default:0"`
}

func (userSession) TableName() string {
	return "user_sessions"
}

func (s userSession) toEntity() *entities.UserSession {
	prefs := s.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	return &entities.UserSession{
		UserEmail:    s.UserEmail,
		SessionID:    s.SessionID,
		Preferences:  prefs,
		FirstVisit:   s.FirstVisit,
		LastActivity: s.LastActivity,
		TotalQueries: s.TotalQueries,
	}
}
