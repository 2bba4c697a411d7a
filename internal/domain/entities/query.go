package entities

// Complexity levels for a user query.
const (
	ComplexityTechnical = "technical"
	ComplexityComplex   = "complex"
	ComplexitySimple    = "simple"
	ComplexityMedium    = "medium"
)

// ComplexityLevels lists every level in a stable order.
var ComplexityLevels = []string{ComplexitySimple, ComplexityMedium, ComplexityComplex, ComplexityTechnical}

// QueryComplexity decides how many chunks to retrieve for a question.
type QueryComplexity struct {
	Level    string `json:"level"`
	NResults int    `json:"n_results"`
}

// Primary intents.
const (
	IntentGeneral           = "general"
	IntentProcedure         = "procedure"
	IntentComprehensiveList = "comprehensive_list"
	IntentComparison        = "comparison"
	IntentTroubleshooting   = "troubleshooting"
	IntentDefinition        = "definition"
)

// Expected answer lengths.
const (
	AnswerShort  = "short"
	AnswerMedium = "medium"
	AnswerLong   = "long"
)

// QueryIntent describes what kind of answer a question calls for.
type QueryIntent struct {
	PrimaryIntent        string `json:"primary_intent"`
	RequiresSequence     bool   `json:"requires_sequence"`
	RequiresCompleteData bool   `json:"requires_complete_data"`
	IsComparative        bool   `json:"is_comparative"`
	IsTroubleshooting    bool   `json:"is_troubleshooting"`
	ExpectedAnswerLength string `json:"expected_answer_length"`
}

// ChatMessage represents a conversation turn.
type ChatMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

// Exchange is one question and the answer it got.
type Exchange struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// ChatRequest is a question with the conversation so far. When UserEmail
// is set and UseDBHistory is true, stored history replaces History.
type ChatRequest struct {
	Query        string
	History      []Exchange
	UserEmail    string
	SessionID    string
	UseDBHistory bool
}

// ChunkInfo summarizes one retrieved chunk for display and debugging.
type ChunkInfo struct {
	Index       int         `json:"index"`
	Source      string      `json:"source"`
	Title       string      `json:"title"`
	FileType    FileType    `json:"file_type"`
	ContentType ContentType `json:"content_type"`
	Strategy    string      `json:"strategy"`
	ChunkSize   int         `json:"chunk_size"`
	Score       float64     `json:"score"`
	Content     string      `json:"content"`
}

// ChatResponse is the answer to a ChatRequest along with what was retrieved.
// When the model call fails Success is false and Error holds the message
// for the user; the retrieval fields are still filled in.
type ChatResponse struct {
	Success               bool           `json:"success"`
	Query                 string         `json:"query"`
	Answer                string         `json:"ai_response"`
	Error                 string         `json:"error,omitempty"`
	Complexity            string         `json:"complexity"`
	ChunksFound           int            `json:"chunks_found"`
	Chunks                []ChunkInfo    `json:"chunks_info"`
	RetrievedFileTypes    map[string]int `json:"retrieved_file_types"`
	RetrievedContentTypes map[string]int `json:"retrieved_content_types"`
	RetrievedSources      []string       `json:"retrieved_sources"`
	Intent                QueryIntent    `json:"intent_analysis"`
	Sources               []QueryResult  `json:"-"`

	// Set by the chat use case.
	ResponseTimeMS int64  `json:"response_time_ms,omitempty"`
	SavedToHistory *bool  `json:"saved_to_history,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	ChatID         uint   `json:"chat_id,omitempty"`
	HistoryError   string `json:"history_error,omitempty"`
}
