// Package parser provides document parsing adapters.
// Clean Architecture: Adapters implementing ports.DocumentParser.
package parser

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// DocconvParser extracts text from PDF and DOCX files in-process.
// PDF extraction needs the poppler pdftotext tool on PATH.
type DocconvParser struct{}

// NewDocconvParser creates a DocconvParser.
func NewDocconvParser() *DocconvParser {
	return &DocconvParser{}
}

// Parse extracts text based on the filename's extension.
func (p *DocconvParser) Parse(ctx context.Context, data []byte, filename string) (string, error) {
	mime, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", fmt.Errorf("docconv: unsupported file %s", filename)
	}
	res, err := docconv.Convert(bytes.NewReader(data), mime, false)
	if err != nil {
		return "", fmt.Errorf("docconv: converting %s: %w", filename, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return res.Body, nil
}

// SupportedFormats returns formats this parser handles.
func (p *DocconvParser) SupportedFormats() []string {
	return []string{"pdf", "docx"}
}
