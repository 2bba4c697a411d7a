package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain/prompts"
)

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid setting found.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "found %d configuration error(s):", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err.Error())
	}
	return b.String()
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if !isHTTPURL(c.Ollama.BaseURL) {
		add("ollama.base_url", "must be an http(s) URL")
	}
	if c.Ollama.Model == "" {
		add("ollama.model", "model is required")
	}
	if c.Ollama.EmbedModel == "" {
		add("ollama.embed_model", "embedding model is required")
	}
	if c.Ollama.TimeoutSeconds < 0 {
		add("ollama.timeout_seconds", "must not be negative")
	}
	if c.Ollama.EmbedConcurrency < 1 {
		add("ollama.embed_concurrency", "must be at least 1")
	}

	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.DataPath == "" {
			add("store.data_path", "required for the sqlite backend")
		}
	case BackendPGVector:
		if c.Store.DatabaseURL == "" {
			add("store.database_url", "required for the pgvector backend")
		}
	case BackendMemory:
	default:
		add("store.backend", fmt.Sprintf("unknown backend %q (sqlite, memory or pgvector)", c.Store.Backend))
	}

	if c.History.Enabled && c.History.Path == "" {
		add("history.path", "required when history is enabled")
	}
	if c.Server.Addr == "" {
		add("server.addr", "listen address is required")
	}
	if c.Server.RequestTimeoutSeconds < 0 {
		add("server.request_timeout_seconds", "must not be negative")
	}
	if c.Ingest.PDFServiceURL != "" && !isHTTPURL(c.Ingest.PDFServiceURL) {
		add("ingest.pdf_service_url", "must be an http(s) URL")
	}
	if c.Ingest.WatchDebounceMS < 0 {
		add("ingest.watch_debounce_ms", "must not be negative")
	}
	if !slices.Contains([]string{prompts.StyleEnhanced, prompts.StyleInApp}, c.Prompt.Style) {
		add("prompt.style", fmt.Sprintf("unknown style %q (enhanced or in_app)", c.Prompt.Style))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
