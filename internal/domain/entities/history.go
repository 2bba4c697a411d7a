package entities

import "time"

// ChatRecord is one persisted question/answer exchange.
type ChatRecord struct {
	ID               uint        `json:"id"`
	UserEmail        string      `json:"user_email"`
	SessionID        string      `json:"session_id,omitempty"`
	UserQuery        string      `json:"user_query"`
	AIResponse       string      `json:"ai_response"`
	QueryComplexity  string      `json:"complexity"`
	ChunksFound      int         `json:"chunks_found"`
	RetrievedSources []string    `json:"retrieved_sources"`
	IntentAnalysis   QueryIntent `json:"intent_analysis"`
	ResponseTimeMS   *int64      `json:"response_time_ms,omitempty"`
	IsHelpful        *bool       `json:"is_helpful"`
	FeedbackNotes    string      `json:"feedback_notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// UserSession tracks one user's activity across conversations.
type UserSession struct {
	UserEmail    string         `json:"user_email"`
	SessionID    string         `json:"current_session_id"`
	Preferences  map[string]any `json:"preferences"`
	FirstVisit   time.Time      `json:"first_visit"`
	LastActivity time.Time      `json:"last_activity"`
	TotalQueries int            `json:"total_queries"`
}

// UserStats aggregates a user's chat history.
type UserStats struct {
	TotalQueries        int            `json:"total_queries"`
	TotalSessions       int            `json:"total_sessions"`
	ComplexityBreakdown map[string]int `json:"complexity_breakdown"`
	MostRecent          *time.Time     `json:"most_recent"`
	AvgChunksRetrieved  float64        `json:"avg_chunks_retrieved"`
}
