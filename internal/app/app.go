// Package app wires configuration, adapters and use cases together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/adapters/actioncatalog"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/embedding"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/filewatcher"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/history"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/llm"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/loader"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/parser"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/splitter"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/vectordb"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/domain/usecases"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/config"
	httpserver "github.com/0xcro3dile/adaptiverag/internal/infrastructure/http"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/metrics"
)

// App holds the use cases built from one configuration.
type App struct {
	Config  *config.Config
	Ingest  *usecases.IngestUseCase
	Query   *usecases.QueryUseCase
	Chat    *usecases.ChatUseCase
	Stats   *usecases.StatsUseCase
	Actions *usecases.ActionUseCase
	Pinger  httpserver.Pinger
	Metrics http.Handler

	// NewWatcher creates the file watcher used by Watch.
	NewWatcher func() (ports.FileWatcher, error)

	closers []func() error
}

// New builds the application described by cfg. Close releases what it opened.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	parsers := []ports.DocumentParser{parser.NewDocconvParser()}
	if cfg.Ingest.PDFServiceURL != "" || cfg.Ingest.PDFServiceDir != "" {
		pdf := parser.NewPDFServiceParser(cfg.Ingest.PDFServiceURL)
		if cfg.Ingest.PDFServiceDir != "" {
			stop, err := pdf.StartService(ctx, cfg.Ingest.PDFServiceDir)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.closers = append(a.closers, func() error { stop(); return nil })
		}
		parsers = append(parsers, pdf)
	}

	timeout := time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second
	embedder := embedding.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel,
		embedding.WithConcurrency(cfg.Ollama.EmbedConcurrency),
		embedding.WithTimeout(timeout))
	model := llm.NewOllamaLLMAdapter(cfg.Ollama.BaseURL, cfg.Ollama.Model, timeout)

	recorder := metrics.NewRecorder()
	opts := []usecases.Option{
		usecases.WithMetrics(recorder),
		usecases.WithPromptStyle(cfg.Prompt.Style),
	}

	a.Ingest = usecases.NewIngestUseCase(loader.New(parser.NewChain(parsers...)), splitter.NewRecursive(),
		embedder, store, loader.IsSupported, opts...)
	a.Query = usecases.NewQueryUseCase(embedder, store, model, opts...)
	a.Stats = usecases.NewStatsUseCase(store)

	var chatHistory ports.HistoryStore
	if cfg.History.Enabled {
		hs, err := history.Open(cfg.History.Path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("opening chat history: %w", err)
		}
		a.closers = append(a.closers, hs.Close)
		chatHistory = hs
	}
	a.Chat = usecases.NewChatUseCase(a.Query, chatHistory)

	catalog, err := actioncatalog.Load(cfg.Actions.CatalogPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Actions = usecases.NewActionUseCase(catalog, model, opts...)

	a.Pinger = model
	a.Metrics = metrics.Handler()

	debounce := time.Duration(cfg.Ingest.WatchDebounceMS) * time.Millisecond
	a.NewWatcher = func() (ports.FileWatcher, error) {
		return filewatcher.NewFSNotifyWatcher(loader.IsSupported, debounce)
	}

	logger.Debugf("app ready: %s store, model %s, embeddings %s", cfg.Store.Backend, cfg.Ollama.Model, cfg.Ollama.EmbedModel)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (ports.VectorStore, error) {
	switch a.Config.Store.Backend {
	case config.BackendMemory:
		return vectordb.NewInMemoryStore(), nil
	case config.BackendPGVector:
		s, err := vectordb.NewPGVectorStore(ctx, a.Config.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to pgvector: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		s, err := vectordb.NewSQLiteStore(a.Config.Store.DataPath)
		if err != nil {
			return nil, fmt.Errorf("opening vector store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	}
}

// Server builds the HTTP server over the app's use cases.
func (a *App) Server() *httpserver.Server {
	return httpserver.NewServer(httpserver.Deps{
		Chat:    a.Chat,
		Query:   a.Query,
		Stats:   a.Stats,
		Actions: a.Actions,
		Pinger:  a.Pinger,
		Metrics: a.Metrics,
	}, httpserver.Options{
		Addr:           a.Config.Server.Addr,
		RequestTimeout: time.Duration(a.Config.Server.RequestTimeoutSeconds) * time.Second,
		AllowedOrigins: a.Config.Server.AllowedOrigins,
	})
}

// Watch re-ingests supported files in dir as they change until ctx is done.
func (a *App) Watch(ctx context.Context, dir string) error {
	if a.NewWatcher == nil {
		return errors.New("file watching is not configured")
	}
	w, err := a.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Stop()

	events, err := w.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Infof("watching %s for changes", dir)

	if err := a.Ingest.Sync(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases stores and services in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
