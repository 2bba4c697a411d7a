// Package usecases - query.go retrieves context for a question and asks the model.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/classifier"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/domain/prompts"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

const chunkTitleLen = 80

// QueryUseCase handles search and response generation. How many chunks
// are retrieved depends on the question's complexity.
type QueryUseCase struct {
	embedder    ports.EmbeddingService
	vectorStore ports.VectorStore
	llm         ports.LLMService
	stats       *StatsUseCase
	promptStyle string
	metrics     ports.Metrics
}

// NewQueryUseCase creates a QueryUseCase with injected dependencies.
func NewQueryUseCase(
	embedder ports.EmbeddingService,
	vectorStore ports.VectorStore,
	llm ports.LLMService,
	opts ...Option,
) *QueryUseCase {
	o := buildOptions(opts)
	return &QueryUseCase{
		embedder:    embedder,
		vectorStore: vectorStore,
		llm:         llm,
		stats:       NewStatsUseCase(vectorStore),
		promptStyle: o.promptStyle,
		metrics:     o.metrics,
	}
}

// Search retrieves the chunks for query without generating an answer.
// An empty store gives domain.ErrEmptyKnowledgeBase, no hits
// domain.ErrNoResults.
func (uc *QueryUseCase) Search(ctx context.Context, query string) ([]entities.QueryResult, entities.QueryComplexity, error) {
	complexity := classifier.ClassifyQuery(query)

	embedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, complexity, fmt.Errorf("embedding query: %w", err)
	}

	start := time.Now()
	results, err := uc.vectorStore.Search(ctx, embedding, complexity.NResults)
	if err != nil {
		return nil, complexity, fmt.Errorf("searching vectors: %w", err)
	}
	uc.metrics.Retrieved(complexity.Level, len(results), time.Since(start))

	if len(results) == 0 {
		if n, err := uc.vectorStore.Count(ctx); err == nil && n == 0 {
			return nil, complexity, domain.ErrEmptyKnowledgeBase
		}
		return nil, complexity, domain.ErrNoResults
	}
	logger.Debugf("%s query: %d chunks retrieved", complexity.Level, len(results))
	return results, complexity, nil
}

// prepare retrieves context and builds the response skeleton and the
// final prompt for req.
func (uc *QueryUseCase) prepare(ctx context.Context, req entities.ChatRequest) (*entities.ChatResponse, string, error) {
	results, complexity, err := uc.Search(ctx, req.Query)
	if err != nil {
		return nil, "", err
	}

	resp := &entities.ChatResponse{
		Query:                 req.Query,
		Complexity:            complexity.Level,
		ChunksFound:           len(results),
		Chunks:                make([]entities.ChunkInfo, len(results)),
		RetrievedFileTypes:    make(map[string]int),
		RetrievedContentTypes: make(map[string]int),
		RetrievedSources:      []string{},
		Intent:                classifier.AnalyzeIntent(req.Query),
		Sources:               results,
	}

	var fileTypeOrder []string
	seenSource := make(map[string]bool)
	for i, r := range results {
		md := r.Chunk.Metadata
		source := r.SourceDoc
		if md.Source != "" {
			source = md.Source
		}
		if source == "" {
			source = "Unknown file"
		}
		title := md.Title
		if title == "" {
			title = "No title"
		}
		fileType := orUnknown(string(md.FileType))
		contentType := orUnknown(string(md.ContentType))
		size := md.ActualChunkSize
		if size == 0 {
			size = len([]rune(r.Chunk.Content))
		}

		if resp.RetrievedFileTypes[fileType] == 0 {
			fileTypeOrder = append(fileTypeOrder, fileType)
		}
		resp.RetrievedFileTypes[fileType]++
		resp.RetrievedContentTypes[contentType]++
		if !seenSource[source] {
			seenSource[source] = true
			resp.RetrievedSources = append(resp.RetrievedSources, source)
		}

		resp.Chunks[i] = entities.ChunkInfo{
			Index:       i + 1,
			Source:      source,
			Title:       prompts.Truncate(title, chunkTitleLen),
			FileType:    entities.FileType(fileType),
			ContentType: entities.ContentType(contentType),
			Strategy:    orUnknown(md.ChunkingStrategy),
			ChunkSize:   size,
			Score:       r.Score,
			Content:     r.Chunk.Content,
		}
	}

	kb, err := uc.stats.KnowledgeBase(ctx)
	if err != nil {
		return nil, "", err
	}

	pc := prompts.Context{
		FileTypes:          sortedKeys(kb.FileTypes),
		ContentTypes:       sortedKeys(kb.ContentTypes),
		RetrievedSources:   resp.RetrievedSources,
		RetrievedFileTypes: fileTypeOrder,
		Complexity:         complexity.Level,
		Chunks:             results,
		Query:              req.Query,
		Focus:              majority(resp.RetrievedContentTypes, len(results)),
	}
	system := prompts.System(uc.promptStyle, pc, resp.Intent) + prompts.HistoryContext(req.History)
	return resp, prompts.Compose(system, req.Query), nil
}

// Ask answers req from the retrieved chunks. Retrieval failures are
// returned as errors; a model failure gives a response with Success false
// and a message for the user.
func (uc *QueryUseCase) Ask(ctx context.Context, req entities.ChatRequest) (*entities.ChatResponse, error) {
	resp, prompt, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	answer, err := uc.llm.Generate(ctx, prompt, ports.GenerateOptions{})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		uc.metrics.LLMFailed(failureKind(err))
		logger.Errorf("generation failed: %v", err)
		resp.Error = domain.UserMessage(err)
		return resp, nil
	}

	resp.Success = true
	resp.Answer = answer
	uc.metrics.QueryAnswered(resp.Complexity)
	return resp, nil
}

// AskStream is Ask with the answer streamed. The response carries the
// retrieval details; its Answer stays empty.
func (uc *QueryUseCase) AskStream(ctx context.Context, req entities.ChatRequest) (*entities.ChatResponse, <-chan ports.StreamToken, error) {
	resp, prompt, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := uc.llm.GenerateStream(ctx, prompt, ports.GenerateOptions{})
	if err != nil {
		uc.metrics.LLMFailed(failureKind(err))
		return resp, nil, err
	}
	resp.Success = true
	uc.metrics.QueryAnswered(resp.Complexity)
	return resp, tokens, nil
}

// majority returns the content type shared by more than half of n
// chunks, or "" when none is.
func majority(counts map[string]int, n int) entities.ContentType {
	for ct, c := range counts {
		if c*2 > n {
			return entities.ContentType(ct)
		}
	}
	return ""
}
