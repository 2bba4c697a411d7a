package usecases

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/domain/prompts"
)

// StatsUseCase describes the knowledge base and proposes questions for it.
type StatsUseCase struct {
	vectorStore ports.VectorStore
}

// NewStatsUseCase creates a StatsUseCase.
func NewStatsUseCase(vectorStore ports.VectorStore) *StatsUseCase {
	return &StatsUseCase{vectorStore: vectorStore}
}

// KnowledgeBase counts stored chunks by file type, content type and
// strategy, and lists the sources and their extensions, sorted.
func (uc *StatsUseCase) KnowledgeBase(ctx context.Context) (*entities.KnowledgeBaseStats, error) {
	mds, err := uc.vectorStore.ListMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chunk metadata: %w", err)
	}

	stats := &entities.KnowledgeBaseStats{
		TotalChunks:    len(mds),
		FileTypes:      make(map[string]int),
		ContentTypes:   make(map[string]int),
		Strategies:     make(map[string]int),
		FileSources:    []string{},
		FileExtensions: []string{},
	}
	sources := make(map[string]bool)
	exts := make(map[string]bool)
	for _, md := range mds {
		stats.FileTypes[orUnknown(string(md.FileType))]++
		stats.ContentTypes[orUnknown(string(md.ContentType))]++
		stats.Strategies[orUnknown(md.ChunkingStrategy)]++

		source := orUnknown(md.Source)
		sources[source] = true
		if i := strings.LastIndex(source, "."); i >= 0 {
			exts["."+strings.ToLower(source[i+1:])] = true
		}
	}
	for s := range sources {
		stats.FileSources = append(stats.FileSources, s)
	}
	for e := range exts {
		stats.FileExtensions = append(stats.FileExtensions, e)
	}
	slices.Sort(stats.FileSources)
	slices.Sort(stats.FileExtensions)
	return stats, nil
}

// Suggestions proposes questions for the kinds of content stored.
func (uc *StatsUseCase) Suggestions(ctx context.Context) ([]string, error) {
	stats, err := uc.KnowledgeBase(ctx)
	if err != nil {
		return nil, err
	}
	return prompts.QuerySuggestions(stats.FileTypes, stats.ContentTypes), nil
}

// ConversationSuggestions adds follow-ups for the last question in history.
func (uc *StatsUseCase) ConversationSuggestions(ctx context.Context, history []entities.Exchange) ([]string, error) {
	base, err := uc.Suggestions(ctx)
	if err != nil {
		return nil, err
	}
	return prompts.ConversationSuggestions(base, history), nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// sortedKeys returns m's keys in order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
