package entities

// KnowledgeBaseStats describes what has been ingested.
type KnowledgeBaseStats struct {
	TotalChunks    int            `json:"total_chunks"`
	FileTypes      map[string]int `json:"file_types"`
	ContentTypes   map[string]int `json:"content_types"`
	Strategies     map[string]int `json:"strategies"`
	FileSources    []string       `json:"file_sources"`
	FileExtensions []string       `json:"file_extensions"`
}

// FileReport records what happened to one file during ingestion.
type FileReport struct {
	Path           string           `json:"path"`
	Source         string           `json:"source"`
	FileType       FileType         `json:"file_type"`
	Stats          DocumentStats    `json:"stats"`
	Classification Classification   `json:"classification"`
	Strategy       ChunkingStrategy `json:"strategy"`
	Chunks         int              `json:"chunks"`
	Skipped        bool             `json:"skipped"`
	Reason         string           `json:"reason,omitempty"`
}

// IngestSummary totals an ingestion run.
type IngestSummary struct {
	Files          []FileReport   `json:"files"`
	FilesProcessed int            `json:"files_processed"`
	FilesSkipped   int            `json:"files_skipped"`
	TotalChunks    int            `json:"total_chunks"`
	ByFileType     map[string]int `json:"by_file_type"`
	ByContentType  map[string]int `json:"by_content_type"`
	ByStrategy     map[string]int `json:"by_strategy"`
}

// NewIngestSummary returns a summary with its maps allocated.
func NewIngestSummary() *IngestSummary {
	return &IngestSummary{
		ByFileType:    make(map[string]int),
		ByContentType: make(map[string]int),
		ByStrategy:    make(map[string]int),
	}
}

// Add folds one file report into the totals.
func (s *IngestSummary) Add(r FileReport) {
	s.Files = append(s.Files, r)
	if r.Skipped {
		s.FilesSkipped++
		return
	}
	s.FilesProcessed++
	s.TotalChunks += r.Chunks
	s.ByFileType[string(r.FileType)] += r.Chunks
	s.ByContentType[string(r.Classification.Primary)] += r.Chunks
	s.ByStrategy[r.Strategy.Strategy] += r.Chunks
}
