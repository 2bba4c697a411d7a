package usecases

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
)

// mockEmbedder implements ports.EmbeddingService for testing
type mockEmbedder struct {
	embedFn func(text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		emb, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = emb
	}
	return result, nil
}

// mockVectorStore implements ports.VectorStore for testing
type mockVectorStore struct {
	mu        sync.Mutex
	chunks    []entities.Chunk
	deleted   []string
	lastTopK  int
	cleared   bool
	noResults bool
	storeFn   func(chunks []entities.Chunk) error
}

func (m *mockVectorStore) Store(ctx context.Context, chunks []entities.Chunk) error {
	if m.storeFn != nil {
		return m.storeFn(chunks)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

// Replace behaves like a transaction: when storeFn fails nothing changes.
func (m *mockVectorStore) Replace(ctx context.Context, docID string, chunks []entities.Chunk) error {
	if m.storeFn != nil {
		if err := m.storeFn(chunks); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, docID)
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.DocumentID != docID {
			kept = append(kept, c)
		}
	}
	m.chunks = append(kept, chunks...)
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, emb []float32, topK int) ([]entities.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTopK = topK
	if m.noResults {
		return nil, nil
	}
	var results []entities.QueryResult
	for i, c := range m.chunks {
		if i >= topK {
			break
		}
		results = append(results, entities.QueryResult{Chunk: c, Score: 0.9, SourceDoc: c.Metadata.Source})
	}
	return results, nil
}

func (m *mockVectorStore) Delete(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, docID)
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.DocumentID != docID {
			kept = append(kept, c)
		}
	}
	m.chunks = kept
	return nil
}

func (m *mockVectorStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = true
	m.chunks = nil
	return nil
}

func (m *mockVectorStore) ListMetadata(ctx context.Context) ([]entities.ChunkMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.ChunkMetadata, len(m.chunks))
	for i, c := range m.chunks {
		out[i] = c.Metadata
	}
	return out, nil
}

func (m *mockVectorStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks), nil
}

func (m *mockVectorStore) snapshot() []entities.Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Chunk(nil), m.chunks...)
}

// fileLoader reads files from disk as plain text. Files ending in .fail
// cannot be loaded.
type fileLoader struct{}

func (fileLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	if strings.HasSuffix(path, ".fail") {
		return nil, domain.ErrUnsupportedFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &entities.Document{
		ID:       entities.DocumentID(path),
		Name:     filepath.Base(path),
		Path:     path,
		Content:  strings.TrimSpace(string(data)),
		FileType: entities.FileTypeText,
	}, nil
}

func (fileLoader) SupportedExtensions() []string { return []string{".md", ".txt"} }

// paragraphSplitter yields one chunk per paragraph, ignoring the sizes.
type paragraphSplitter struct{}

func (paragraphSplitter) Split(text string, chunkSize, overlap int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range strings.Split(text, "\n\n") {
			if p = strings.TrimSpace(p); p == "" {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// mockLLM implements ports.LLMService for testing
type mockLLM struct {
	mu         sync.Mutex
	prompts    []string
	opts       []ports.GenerateOptions
	generateFn func(prompt string) (string, error)
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.generateFn != nil {
		return m.generateFn(prompt)
	}
	return "Mock response", nil
}

func (m *mockLLM) GenerateStream(ctx context.Context, prompt string, opts ports.GenerateOptions) (<-chan ports.StreamToken, error) {
	answer, err := m.Generate(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	ch := make(chan ports.StreamToken, 2)
	ch <- ports.StreamToken{Content: answer}
	ch <- ports.StreamToken{Done: true}
	close(ch)
	return ch, nil
}

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// mockHistory implements ports.HistoryStore in memory.
type mockHistory struct {
	records   []entities.ChatRecord
	sessions  map[string]*entities.UserSession
	saveErr   error
	recentErr error
}

func newMockHistory() *mockHistory {
	return &mockHistory{sessions: map[string]*entities.UserSession{}}
}

func (m *mockHistory) SaveExchange(ctx context.Context, rec entities.ChatRecord) (*entities.ChatRecord, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	rec.ID = uint(len(m.records) + 1)
	rec.CreatedAt = time.Now()
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *mockHistory) forUser(email string) []entities.ChatRecord {
	var out []entities.ChatRecord
	for _, r := range m.records {
		if r.UserEmail == email {
			out = append(out, r)
		}
	}
	return out
}

func (m *mockHistory) History(ctx context.Context, email string, limit int) ([]entities.ChatRecord, error) {
	recs := m.forUser(email)
	if len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	return recs, nil
}

func (m *mockHistory) RecentExchanges(ctx context.Context, email string, limit int) ([]entities.Exchange, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	recs, _ := m.History(ctx, email, limit)
	out := make([]entities.Exchange, len(recs))
	for i, r := range recs {
		out[i] = entities.Exchange{Query: r.UserQuery, Answer: r.AIResponse}
	}
	return out, nil
}

func (m *mockHistory) Stats(ctx context.Context, email string) (*entities.UserStats, error) {
	return &entities.UserStats{TotalQueries: len(m.forUser(email))}, nil
}

func (m *mockHistory) SetFeedback(ctx context.Context, chatID uint, helpful bool, notes string) error {
	if chatID == 0 || int(chatID) > len(m.records) {
		return domain.ErrNotFound
	}
	m.records[chatID-1].IsHelpful = &helpful
	return nil
}

func (m *mockHistory) TouchSession(ctx context.Context, email, sessionID string) (*entities.UserSession, error) {
	s, ok := m.sessions[email]
	if !ok {
		s = &entities.UserSession{UserEmail: email, SessionID: sessionID}
		if s.SessionID == "" {
			s.SessionID = "generated"
		}
		m.sessions[email] = s
	} else if sessionID != "" {
		s.SessionID = sessionID
	}
	s.TotalQueries++
	return s, nil
}

func (m *mockHistory) Session(ctx context.Context, email string) (*entities.UserSession, error) {
	if s, ok := m.sessions[email]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

// recordingMetrics counts what the use cases report.
type recordingMetrics struct {
	mu          sync.Mutex
	ingested    int
	skipped     []string
	retrievals  []int
	queries     []string
	llmFailures []string
	actions     []string
}

func (r *recordingMetrics) DocumentIngested(fileType, contentType, strategy string, chunks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested++
}

func (r *recordingMetrics) DocumentSkipped(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, reason)
}

func (r *recordingMetrics) Retrieved(complexity string, hits int, retrieval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retrievals = append(r.retrievals, hits)
}

func (r *recordingMetrics) QueryAnswered(complexity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, complexity)
}

func (r *recordingMetrics) LLMFailed(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmFailures = append(r.llmFailures, kind)
}

func (r *recordingMetrics) ActionDetected(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, method)
}

var errBoom = errors.New("boom")

var (
	_ ports.VectorStore      = (*mockVectorStore)(nil)
	_ ports.DocumentLoader   = fileLoader{}
	_ ports.TextSplitter     = paragraphSplitter{}
	_ ports.LLMService       = (*mockLLM)(nil)
	_ ports.HistoryStore     = (*mockHistory)(nil)
	_ ports.EmbeddingService = (*mockEmbedder)(nil)
	_ ports.Metrics          = (*recordingMetrics)(nil)
)
