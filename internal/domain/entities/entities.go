// Package entities contains core business entities.
// These are plain domain objects with no knowledge of storage or transport.
package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// FileType tags how a file's text was extracted.
type FileType string

const (
	FileTypeText    FileType = "text"
	FileTypePDF     FileType = "pdf"
	FileTypeJSON    FileType = "json"
	FileTypeCSV     FileType = "csv"
	FileTypeWord    FileType = "word"
	FileTypeData    FileType = "data"
	FileTypeUnknown FileType = "unknown"

	// FileTypeCode is a chunk-planner bucket only; the loader never emits it.
	FileTypeCode FileType = "code"
)

// ContentType is the kind of text a document mostly contains.
type ContentType string

const (
	ContentProcedures     ContentType = "procedures"
	ContentLists          ContentType = "lists"
	ContentTechnical      ContentType = "technical"
	ContentFAQ            ContentType = "faq"
	ContentConversational ContentType = "conversational"
	ContentCode           ContentType = "code"
	ContentData           ContentType = "data"
	ContentGeneral        ContentType = "general"
)

// Document is a source file after text extraction. Created once by a
// loader and not modified afterwards.
type Document struct {
	ID        string
	Name      string
	Path      string
	Content   string
	FileType  FileType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentID derives a document's stable ID from its path, so re-ingesting
// a file replaces its earlier chunks.
func DocumentID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}

// DocumentStats are the size measurements the chunk planner works from.
// Lengths are counted in characters (runes).
type DocumentStats struct {
	Size               int
	Words              int
	Lines              int
	Paragraphs         int
	AvgLineLength      float64
	AvgParagraphLength float64
}

// ContentScore is one category's weighted pattern score.
type ContentScore struct {
	Type  ContentType `json:"type"`
	Score float64     `json:"score"`
}

// Classification is the content classifier's verdict for a document.
type Classification struct {
	Primary ContentType    `json:"primary_type"`
	Ranked  []ContentScore `json:"ranked_types"`
}

// Strategy labels name the file-size bracket a document fell into.
const (
	StrategySmallFile  = "small_file"
	StrategyMediumFile = "medium_file"
	StrategyLargeFile  = "large_file"
	StrategyXLargeFile = "xlarge_file"
	StrategyHugeFile   = "huge_file"
)

// ChunkingStrategy holds the splitting and retrieval parameters derived for
// one document.
type ChunkingStrategy struct {
	Strategy       string `json:"strategy"`
	BaseChunkSize  int    `json:"base_chunk_size"`
	ChunkSize      int    `json:"chunk_size"`
	Overlap        int    `json:"overlap"`
	ExpectedChunks int    `json:"expected_chunks"`
	NResults       int    `json:"n_results"`
}

// ChunkMetadata is persisted with every chunk.
type ChunkMetadata struct {
	Source           string      `json:"source"`
	Title            string      `json:"title"`
	FilePath         string      `json:"file_path"`
	FileSize         int         `json:"file_size"`
	FileType         FileType    `json:"file_type"`
	ContentType      ContentType `json:"content_type"`
	ChunkingStrategy string      `json:"chunking_strategy"`
	ChunkID          int         `json:"chunk_id"`
	ChunkIndex       int         `json:"chunk_index"`
	UniqueID         string      `json:"unique_id"`
	ActualChunkSize  int         `json:"actual_chunk_size"`
}

// Chunk is a piece of a document stored as one retrieval unit.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	Index      int       // Position in document
	Embedding  []float32 // Populated by the embedding adapter
	Metadata   ChunkMetadata
}

// QueryResult is a retrieved chunk with its similarity score.
type QueryResult struct {
	Chunk     Chunk
	Score     float64
	SourceDoc string // Source file name for citation
}
