// Package loader provides document loading adapters.
// Each file type has its own reader that turns the file into plain text.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

var extensions = map[entities.FileType][]string{
	entities.FileTypeText: {".txt", ".md", ".py", ".js", ".html", ".css", ".sql", ".sh", ".bat", ".yml", ".yaml", ".xml"},
	entities.FileTypePDF:  {".pdf"},
	entities.FileTypeJSON: {".json"},
	entities.FileTypeCSV:  {".csv"},
	entities.FileTypeWord: {".docx"},
	entities.FileTypeData: {".log", ".ini", ".cfg", ".conf"},
}

var fileTypeByExt = func() map[string]entities.FileType {
	m := make(map[string]entities.FileType)
	for ft, exts := range extensions {
		for _, ext := range exts {
			m[ext] = ft
		}
	}
	return m
}()

// FileTypeFor returns the file type for path's extension, or unknown.
func FileTypeFor(path string) entities.FileType {
	if ft, ok := fileTypeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return ft
	}
	return entities.FileTypeUnknown
}

// IsSupported reports whether path has one of the known extensions.
func IsSupported(path string) bool {
	return FileTypeFor(path) != entities.FileTypeUnknown
}

// Loader implements ports.DocumentLoader for every supported file type.
// Files with other extensions are read as UTF-8 text and tagged unknown.
type Loader struct {
	parser ports.DocumentParser
}

// New creates a Loader. The parser handles PDF and DOCX; without one those
// files fail to load.
func New(parser ports.DocumentParser) *Loader {
	return &Loader{parser: parser}
}

// Load reads a document from the given path. Content is trimmed.
func (l *Loader) Load(ctx context.Context, path string) (*entities.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	fileType := FileTypeFor(path)
	var content string
	switch fileType {
	case entities.FileTypeText:
		content = decodeText(data)
	case entities.FileTypeJSON:
		content, err = renderJSON(data)
	case entities.FileTypeCSV:
		content, err = renderCSV(data)
	case entities.FileTypePDF, entities.FileTypeWord:
		content, err = l.parse(ctx, data, path)
	default:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%s is not UTF-8 text: %w", filepath.Base(path), domain.ErrUnsupportedFile)
		}
		content = string(data)
		if fileType == entities.FileTypeUnknown {
			logger.Debugf("unknown extension, treating %s as text", filepath.Base(path))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	return &entities.Document{
		ID:        entities.DocumentID(path),
		Name:      filepath.Base(path),
		Path:      path,
		Content:   strings.TrimSpace(content),
		FileType:  fileType,
		CreatedAt: info.ModTime(),
		UpdatedAt: time.Now(),
	}, nil
}

func (l *Loader) parse(ctx context.Context, data []byte, path string) (string, error) {
	if l.parser == nil {
		return "", fmt.Errorf("no parser configured: %w", domain.ErrUnsupportedFile)
	}
	text, err := l.parser.Parse(ctx, data, filepath.Base(path))
	if err != nil {
		return "", err
	}
	return cleanExtracted(text), nil
}

// SupportedExtensions returns file extensions this loader handles, sorted.
func (l *Loader) SupportedExtensions() []string {
	exts := make([]string, 0, len(fileTypeByExt))
	for ext := range fileTypeByExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// decodeText reads UTF-8, falling back to Latin-1 for anything else.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	logger.Debugf("used latin-1 encoding")
	return string(decoded)
}

// cleanExtracted removes control characters that PDF and DOCX extraction
// leaves behind.
func cleanExtracted(content string) string {
	var cleaned strings.Builder
	for _, r := range content {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) && r != utf8.RuneError {
			cleaned.WriteRune(r)
		}
	}
	return strings.TrimSpace(cleaned.String())
}
