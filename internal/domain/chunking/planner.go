// Package chunking derives per-document chunking parameters from a
// document's size, file type, content type and paragraph structure.
package chunking

import "github.com/0xcro3dile/adaptiverag/internal/domain/entities"

type bracket struct {
	below    int
	size     int
	strategy string
}

var brackets = []bracket{
	{1000, 300, entities.StrategySmallFile},
	{5000, 500, entities.StrategyMediumFile},
	{20000, 800, entities.StrategyLargeFile},
	{100000, 1200, entities.StrategyXLargeFile},
}

var hugeBracket = bracket{size: 1600, strategy: entities.StrategyHugeFile}

var fileTypeMultipliers = map[entities.FileType]float64{
	entities.FileTypePDF:  1.3,
	entities.FileTypeCode: 1.2,
	entities.FileTypeJSON: 0.8,
	entities.FileTypeCSV:  0.9,
	entities.FileTypeWord: 1.2,
	entities.FileTypeData: 1.0,
}

var contentTypeMultipliers = map[entities.ContentType]float64{
	entities.ContentProcedures:     1.5,
	entities.ContentLists:          1.4,
	entities.ContentTechnical:      1.3,
	entities.ContentCode:           1.4,
	entities.ContentData:           1.1,
	entities.ContentFAQ:            0.8,
	entities.ContentConversational: 0.7,
}

const (
	shortParagraph = 150
	longParagraph  = 800

	shortParagraphFloor = 400
	longParagraphFloor  = 1000

	overlapRatio = 0.25
	minExpected  = 2
)

// Plan computes the chunking strategy for a document of size characters.
// It is deterministic: the same inputs always give the same strategy.
func Plan(size int, fileType entities.FileType, primary entities.ContentType, avgParagraphLength float64) entities.ChunkingStrategy {
	b := hugeBracket
	for _, candidate := range brackets {
		if size < candidate.below {
			b = candidate
			break
		}
	}

	chunkSize := b.size
	if m, ok := fileTypeMultipliers[fileType]; ok {
		chunkSize = int(float64(chunkSize) * m)
	}
	if m, ok := contentTypeMultipliers[primary]; ok {
		chunkSize = int(float64(chunkSize) * m)
	}

	switch {
	case avgParagraphLength > 0 && avgParagraphLength < shortParagraph:
		chunkSize = max(chunkSize, shortParagraphFloor)
	case avgParagraphLength > longParagraph:
		chunkSize = max(chunkSize, longParagraphFloor)
	}

	expected := max(minExpected, size/chunkSize)

	return entities.ChunkingStrategy{
		Strategy:       b.strategy,
		BaseChunkSize:  b.size,
		ChunkSize:      chunkSize,
		Overlap:        int(float64(chunkSize) * overlapRatio),
		ExpectedChunks: expected,
		NResults:       resultsFor(expected),
	}
}

// resultsFor maps the expected chunk count to a retrieval count.
func resultsFor(expected int) int {
	switch {
	case expected <= 3:
		return 3
	case expected <= 8:
		return min(6, expected)
	default:
		return 8
	}
}
