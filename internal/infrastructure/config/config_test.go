package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"OLLAMA_BASE_URL", "OLLAMA_MODEL", "OLLAMA_EMBED_MODEL", "RAG_STORE_BACKEND",
	"RAG_DATA_PATH", "DATABASE_URL", "RAG_HISTORY_PATH", "RAG_ADDR",
	"PDF_SERVICE_URL", "RAG_PROMPT_STYLE", "RAG_VERBOSE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "llama3.2", cfg.Ollama.Model)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "adaptiverag.toml", `
verbose = true

[ollama]
model = "mistral"
embed_concurrency = 8

[store]
backend = "memory"

[prompt]
style = "in_app"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mistral", cfg.Ollama.Model)
	assert.Equal(t, 8, cfg.Ollama.EmbedConcurrency)
	assert.Equal(t, "nomic-embed-text", cfg.Ollama.EmbedModel, "unset keys keep their defaults")
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "in_app", cfg.Prompt.Style)
	assert.True(t, cfg.Verbose)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "adaptiverag.yaml", `
store:
  backend: pgvector
  database_url: postgres://localhost/rag
ingest:
  dirs: [docs, notes]
history:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendPGVector, cfg.Store.Backend)
	assert.Equal(t, "postgres://localhost/rag", cfg.Store.DatabaseURL)
	assert.Equal(t, []string{"docs", "notes"}, cfg.Ingest.Dirs)
	assert.False(t, cfg.History.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "adaptiverag.toml", "[ollama]\nmodel = \"mistral\"\n")
	t.Setenv("OLLAMA_MODEL", "qwen2")
	t.Setenv("RAG_ADDR", ":9000")
	t.Setenv("RAG_VERBOSE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qwen2", cfg.Ollama.Model)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Verbose)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err, "an explicit path must exist")

	_, err = Load(writeConfig(t, "config.json", "{}"))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = Load(writeConfig(t, "bad.toml", "[ollama\n"))
	assert.ErrorContains(t, err, "parsing")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Ollama.BaseURL = "localhost:11434"
	cfg.Ollama.EmbedConcurrency = 0
	cfg.Store.Backend = "chroma"
	cfg.Prompt.Style = "pirate"

	err := cfg.Validate()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 4)

	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{"ollama.base_url", "ollama.embed_concurrency", "store.backend", "prompt.style"}, fields)
	assert.Contains(t, err.Error(), "found 4 configuration error(s)")
}

func TestValidate_BackendRequirements(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = BackendPGVector
	assert.ErrorContains(t, cfg.Validate(), "store.database_url")

	cfg = Default()
	cfg.History.Path = ""
	assert.ErrorContains(t, cfg.Validate(), "history.path")

	cfg.History.Enabled = false
	assert.NoError(t, cfg.Validate())
}
