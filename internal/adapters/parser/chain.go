package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// Chain tries parsers in order and returns the first non-blank text.
type Chain struct {
	parsers []ports.DocumentParser
}

// NewChain creates a Chain. Nil parsers are ignored.
func NewChain(parsers ...ports.DocumentParser) *Chain {
	c := &Chain{}
	for _, p := range parsers {
		if p != nil {
			c.parsers = append(c.parsers, p)
		}
	}
	return c
}

// Parse extracts text with the first parser that supports the format and
// yields something. Blank output from every parser is not an error.
func (c *Chain) Parse(ctx context.Context, data []byte, filename string) (string, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	var errs []error
	supported := false
	for _, p := range c.parsers {
		if !slices.Contains(p.SupportedFormats(), format) {
			continue
		}
		supported = true
		text, err := p.Parse(ctx, data, filename)
		if err != nil {
			logger.Debugf("parser %T failed on %s: %v", p, filename, err)
			errs = append(errs, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	switch {
	case len(errs) > 0:
		return "", errors.Join(errs...)
	case !supported:
		return "", fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFile)
	}
	return "", nil
}

// SupportedFormats returns the union of the chained parsers' formats.
func (c *Chain) SupportedFormats() []string {
	var out []string
	for _, p := range c.parsers {
		for _, f := range p.SupportedFormats() {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}
