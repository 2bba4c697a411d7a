// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"
	"iter"
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/domain/actions"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerateOptions tunes a single generation call. Zero values leave the
// model defaults in place.
type GenerateOptions struct {
	Temperature *float64
	NumPredict  int
}

// LLMService generates text responses from a language model.
// Failures wrap domain.ErrLLMUnavailable, domain.ErrLLMTimeout or are a
// *domain.LLMStatusError so callers can tell them apart.
type LLMService interface {
	// Generate produces a complete response for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces a streaming response (for real-time UI).
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan StreamToken, error)
}

// VectorStore persists and queries chunk embeddings.
type VectorStore interface {
	// Store upserts chunks keyed by chunk ID.
	Store(ctx context.Context, chunks []entities.Chunk) error

	// Search finds the most similar chunks to a query embedding.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error)

	// Replace atomically swaps every chunk of a document for chunks. When it
	// fails the document's previous chunks are still stored.
	Replace(ctx context.Context, documentID string, chunks []entities.Chunk) error

	// Delete removes all chunks for a document.
	Delete(ctx context.Context, documentID string) error

	// Clear removes all data from the store.
	Clear(ctx context.Context) error

	// ListMetadata returns the metadata of every stored chunk.
	ListMetadata(ctx context.Context) ([]entities.ChunkMetadata, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}

// DocumentLoader reads a file and extracts its text.
type DocumentLoader interface {
	// Load reads a document from the given path.
	Load(ctx context.Context, path string) (*entities.Document, error)

	// SupportedExtensions returns file extensions this loader handles.
	SupportedExtensions() []string
}

// DocumentParser extracts text from binary document formats (PDF, DOCX).
type DocumentParser interface {
	// Parse extracts text content from document bytes.
	Parse(ctx context.Context, data []byte, filename string) (string, error)

	// SupportedFormats returns formats this parser handles (e.g., "pdf", "docx").
	SupportedFormats() []string
}

// TextSplitter cuts text into overlapping windows.
type TextSplitter interface {
	// Split returns a lazy, restartable sequence of chunks no longer than
	// chunkSize characters, neighbouring chunks sharing up to overlap characters.
	Split(text string, chunkSize, overlap int) iter.Seq[string]
}

// HistoryStore persists chat exchanges and user sessions.
type HistoryStore interface {
	// SaveExchange stores a record and returns it with its ID and timestamps set.
	SaveExchange(ctx context.Context, rec entities.ChatRecord) (*entities.ChatRecord, error)

	// RecentExchanges returns up to limit exchanges for a user, oldest first.
	RecentExchanges(ctx context.Context, userEmail string, limit int) ([]entities.Exchange, error)

	// History returns up to limit records for a user, oldest first.
	History(ctx context.Context, userEmail string, limit int) ([]entities.ChatRecord, error)

	// Stats aggregates a user's history.
	Stats(ctx context.Context, userEmail string) (*entities.UserStats, error)

	// SetFeedback records whether an answer helped. Unknown IDs give domain.ErrNotFound.
	SetFeedback(ctx context.Context, chatID uint, helpful bool, notes string) error

	// TouchSession creates or updates the user's session and counts one query.
	TouchSession(ctx context.Context, userEmail, sessionID string) (*entities.UserSession, error)

	// Session returns the user's session or domain.ErrNotFound.
	Session(ctx context.Context, userEmail string) (*entities.UserSession, error)
}

// ActionCatalog supplies the actions the detector can recognise.
type ActionCatalog interface {
	Actions() []actions.Action
}

// Metrics receives counters and timings from the use cases.
type Metrics interface {
	DocumentIngested(fileType, contentType, strategy string, chunks int)
	DocumentSkipped(reason string)
	Retrieved(complexity string, hits int, retrieval time.Duration)
	QueryAnswered(complexity string)
	LLMFailed(kind string)
	ActionDetected(method string)
}

// StreamToken represents a single token in a streaming LLM response.
type StreamToken struct {
	Content string
	Done    bool
	Error   error
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

func (op FileOperation) String() string {
	switch op {
	case FileCreated:
		return "created"
	case FileModified:
		return "modified"
	case FileDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}
