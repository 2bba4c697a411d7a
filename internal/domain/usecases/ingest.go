// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
// They contain NO framework code, just business logic over the ports.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/chunking"
	"github.com/0xcro3dile/adaptiverag/internal/domain/classifier"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// IngestUseCase turns files into stored, embedded chunks. Each file is
// measured and classified, and gets its own chunking strategy.
type IngestUseCase struct {
	loader      ports.DocumentLoader
	splitter    ports.TextSplitter
	embedder    ports.EmbeddingService
	vectorStore ports.VectorStore
	classifier  *classifier.ContentClassifier
	metrics     ports.Metrics

	// supported decides which files directory discovery picks up.
	supported func(path string) bool
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
// supported filters discovered files; nil accepts every regular file.
func NewIngestUseCase(
	loader ports.DocumentLoader,
	splitter ports.TextSplitter,
	embedder ports.EmbeddingService,
	vectorStore ports.VectorStore,
	supported func(path string) bool,
	opts ...Option,
) *IngestUseCase {
	o := buildOptions(opts)
	if supported == nil {
		supported = func(string) bool { return true }
	}
	return &IngestUseCase{
		loader:      loader,
		splitter:    splitter,
		embedder:    embedder,
		vectorStore: vectorStore,
		classifier:  o.classifier,
		metrics:     o.metrics,
		supported:   supported,
	}
}

func (uc *IngestUseCase) classify(content string, ft entities.FileType) entities.Classification {
	if uc.classifier != nil {
		return uc.classifier.Classify(content, ft)
	}
	return classifier.Classify(content, ft)
}

// Analyze loads a file and reports its statistics, classification and
// chunking strategy without storing anything.
func (uc *IngestUseCase) Analyze(ctx context.Context, path string) (entities.FileReport, error) {
	report := entities.FileReport{Path: path, Source: filepath.Base(path)}

	doc, err := uc.loader.Load(ctx, path)
	if err != nil {
		return report, err
	}
	report.FileType = doc.FileType
	if doc.Content == "" {
		return report, domain.ErrEmptyContent
	}

	report.Stats = chunking.Analyze(doc.Content)
	report.Classification = uc.classify(doc.Content, doc.FileType)
	report.Strategy = chunking.Plan(report.Stats.Size, doc.FileType, report.Classification.Primary, report.Stats.AvgParagraphLength)
	return report, nil
}

// IngestFile loads, chunks, embeds and stores one file, replacing chunks a
// previous run stored for it. If storing fails the old chunks stay. Chunks are numbered from nextChunkID; the
// number after the last one used is returned.
func (uc *IngestUseCase) IngestFile(ctx context.Context, path string, nextChunkID int) (entities.FileReport, int, error) {
	report := entities.FileReport{Path: path, Source: filepath.Base(path)}

	doc, err := uc.loader.Load(ctx, path)
	if err != nil {
		return report, nextChunkID, fmt.Errorf("loading %s: %w", report.Source, err)
	}
	report.FileType = doc.FileType
	if doc.Content == "" {
		return report, nextChunkID, fmt.Errorf("%s: %w", report.Source, domain.ErrEmptyContent)
	}

	report.Stats = chunking.Analyze(doc.Content)
	report.Classification = uc.classify(doc.Content, doc.FileType)
	report.Strategy = chunking.Plan(report.Stats.Size, doc.FileType, report.Classification.Primary, report.Stats.AvgParagraphLength)
	title := chunking.Title(doc.Content, doc.Name)

	logger.Infof("%s: %s, %s, %s (chunk %d, overlap %d)", doc.Name, doc.FileType,
		report.Classification.Primary, report.Strategy.Strategy, report.Strategy.ChunkSize, report.Strategy.Overlap)

	var chunks []entities.Chunk
	for piece := range uc.splitter.Split(doc.Content, report.Strategy.ChunkSize, report.Strategy.Overlap) {
		index := len(chunks)
		id := uuid.NewString()
		chunks = append(chunks, entities.Chunk{
			ID:         id,
			DocumentID: doc.ID,
			Content:    piece,
			Index:      index,
			Metadata: entities.ChunkMetadata{
				Source:           doc.Name,
				Title:            title,
				FilePath:         doc.Path,
				FileSize:         report.Stats.Size,
				FileType:         doc.FileType,
				ContentType:      report.Classification.Primary,
				ChunkingStrategy: report.Strategy.Strategy,
				ChunkID:          nextChunkID + index,
				ChunkIndex:       index,
				UniqueID:         id,
				ActualChunkSize:  utf8.RuneCountInString(piece),
			},
		})
	}
	if len(chunks) == 0 {
		return report, nextChunkID, fmt.Errorf("%s: %w", report.Source, domain.ErrEmptyContent)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return report, nextChunkID, fmt.Errorf("embedding %s: %w", report.Source, err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := uc.vectorStore.Replace(ctx, doc.ID, chunks); err != nil {
		return report, nextChunkID, fmt.Errorf("storing %s: %w", report.Source, err)
	}

	report.Chunks = len(chunks)
	uc.metrics.DocumentIngested(string(doc.FileType), string(report.Classification.Primary), report.Strategy.Strategy, len(chunks))
	return report, nextChunkID + len(chunks), nil
}

// IngestDirs ingests the supported files directly inside each directory.
// A file that fails is logged and reported as skipped; only cancellation
// or a failed Replace stops the run.
func (uc *IngestUseCase) IngestDirs(ctx context.Context, dirs []string, replace bool) (*entities.IngestSummary, error) {
	summary := entities.NewIngestSummary()

	if replace {
		logger.Infof("clearing existing knowledge base")
		if err := uc.vectorStore.Clear(ctx); err != nil {
			return summary, fmt.Errorf("clearing store: %w", err)
		}
	}

	nextChunkID := 0
	for _, dir := range dirs {
		files, err := uc.discover(dir)
		if err != nil {
			logger.Warnf("skipping %s: %v", dir, err)
			continue
		}
		logger.Infof("found %d supported files in %s", len(files), dir)

		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			report, next, err := uc.IngestFile(ctx, path, nextChunkID)
			if err != nil {
				if ctx.Err() != nil {
					return summary, ctx.Err()
				}
				report.Skipped = true
				report.Reason = err.Error()
				uc.metrics.DocumentSkipped(skipReason(err))
				if errors.Is(err, domain.ErrEmptyContent) {
					logger.Warnf("no content extracted from %s", report.Source)
				} else {
					logger.Errorf("failed to ingest %s: %v", report.Source, err)
				}
			}
			nextChunkID = next
			summary.Add(report)
		}
	}

	logger.Infof("ingested %d files (%d skipped), %d chunks", summary.FilesProcessed, summary.FilesSkipped, summary.TotalChunks)
	return summary, nil
}

// discover lists supported regular files directly inside dir, sorted.
func (uc *IngestUseCase) discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if uc.supported(path) {
			files = append(files, path)
		}
	}
	slices.Sort(files)
	return files, nil
}

// Remove deletes every chunk stored for the file at path.
func (uc *IngestUseCase) Remove(ctx context.Context, path string) error {
	return uc.vectorStore.Delete(ctx, entities.DocumentID(path))
}

// Sync keeps the store in step with file events until the channel closes
// or ctx is done. Chunk numbering continues from the current store size.
func (uc *IngestUseCase) Sync(ctx context.Context, events <-chan ports.FileEvent) error {
	nextChunkID, err := uc.vectorStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !uc.supported(ev.Path) {
				continue
			}
			switch ev.Operation {
			case ports.FileDeleted:
				if err := uc.Remove(ctx, ev.Path); err != nil {
					logger.Errorf("removing %s: %v", filepath.Base(ev.Path), err)
					continue
				}
				logger.Infof("removed %s from the knowledge base", filepath.Base(ev.Path))
			default:
				report, next, err := uc.IngestFile(ctx, ev.Path, nextChunkID)
				if err != nil {
					uc.metrics.DocumentSkipped(skipReason(err))
					logger.Errorf("re-ingesting %s: %v", filepath.Base(ev.Path), err)
					continue
				}
				nextChunkID = next
				logger.Infof("%s %s: %d chunks", ev.Operation, report.Source, report.Chunks)
			}
		}
	}
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyContent):
		return "empty"
	case errors.Is(err, domain.ErrUnsupportedFile):
		return "unsupported"
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrLLMTimeout):
		return "embedding"
	default:
		return "error"
	}
}
