// Package config loads adaptiverag settings from a TOML or YAML file, a
// .env file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/adaptiverag/internal/domain/prompts"
)

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
	BackendPGVector = "pgvector"
)

// DefaultFiles are tried in order when no config path is given.
var DefaultFiles = []string{"adaptiverag.toml", "adaptiverag.yaml", "adaptiverag.yml"}

// Config is the complete application configuration.
type Config struct {
	Ollama  OllamaConfig  `toml:"ollama" yaml:"ollama"`
	Store   StoreConfig   `toml:"store" yaml:"store"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Ingest  IngestConfig  `toml:"ingest" yaml:"ingest"`
	Prompt  PromptConfig  `toml:"prompt" yaml:"prompt"`
	Actions ActionsConfig `toml:"actions" yaml:"actions"`
	Verbose bool          `toml:"verbose" yaml:"verbose"`
}

// OllamaConfig points at the model server.
type OllamaConfig struct {
	BaseURL          string `toml:"base_url" yaml:"base_url"`
	Model            string `toml:"model" yaml:"model"`
	EmbedModel       string `toml:"embed_model" yaml:"embed_model"`
	TimeoutSeconds   int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
	EmbedConcurrency int    `toml:"embed_concurrency" yaml:"embed_concurrency"`
}

// StoreConfig selects and locates the vector store.
type StoreConfig struct {
	Backend     string `toml:"backend" yaml:"backend"`
	DataPath    string `toml:"data_path" yaml:"data_path"`
	DatabaseURL string `toml:"database_url" yaml:"database_url"`
}

// HistoryConfig controls per-user chat history.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr                  string   `toml:"addr" yaml:"addr"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	AllowedOrigins        []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// IngestConfig configures document ingestion. When PDFServiceDir names the
// directory holding pdf_service.py the service is started with the app.
type IngestConfig struct {
	Dirs            []string `toml:"dirs" yaml:"dirs"`
	PDFServiceURL   string   `toml:"pdf_service_url" yaml:"pdf_service_url"`
	PDFServiceDir   string   `toml:"pdf_service_dir" yaml:"pdf_service_dir"`
	WatchDebounceMS int      `toml:"watch_debounce_ms" yaml:"watch_debounce_ms"`
}

// PromptConfig selects the system prompt style.
type PromptConfig struct {
	Style string `toml:"style" yaml:"style"`
}

// ActionsConfig locates an action catalogue overriding the built-in one.
type ActionsConfig struct {
	CatalogPath string `toml:"catalog_path" yaml:"catalog_path"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			BaseURL:          "http://localhost:11434",
			Model:            "llama3.2",
			EmbedModel:       "nomic-embed-text",
			TimeoutSeconds:   60,
			EmbedConcurrency: 4,
		},
		Store: StoreConfig{
			Backend:  BackendSQLite,
			DataPath: "chroma_db",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "chat_history.db",
		},
		Server: ServerConfig{
			Addr:                  ":8080",
			RequestTimeoutSeconds: 120,
			AllowedOrigins:        []string{"*"},
		},
		Ingest: IngestConfig{
			Dirs:            []string{"data"},
			WatchDebounceMS: 200,
		},
		Prompt: PromptConfig{Style: prompts.StyleEnhanced},
	}
}

// Load builds the configuration. An explicit path must exist; without one
// the first of DefaultFiles found in the working directory is used, if any.
// The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, name := range DefaultFiles {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("config %s: unsupported format, use .toml or .yaml", path)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Ollama.BaseURL, "OLLAMA_BASE_URL")
	setString(&c.Ollama.Model, "OLLAMA_MODEL")
	setString(&c.Ollama.EmbedModel, "OLLAMA_EMBED_MODEL")
	setString(&c.Store.Backend, "RAG_STORE_BACKEND")
	setString(&c.Store.DataPath, "RAG_DATA_PATH")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	setString(&c.History.Path, "RAG_HISTORY_PATH")
	setString(&c.Server.Addr, "RAG_ADDR")
	setString(&c.Ingest.PDFServiceURL, "PDF_SERVICE_URL")
	setString(&c.Prompt.Style, "RAG_PROMPT_STYLE")
	if v, ok := lookup("RAG_VERBOSE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verbose = b
		}
	}
}

// lookup reports a variable only when it is set to something.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}
