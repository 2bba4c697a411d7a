// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/0xcro3dile/adaptiverag/internal/domain/usecases"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// Pinger reports whether the model server answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the use cases the server exposes. Pinger and Metrics are
// optional.
type Deps struct {
	Chat    *usecases.ChatUseCase
	Query   *usecases.QueryUseCase
	Stats   *usecases.StatsUseCase
	Actions *usecases.ActionUseCase
	Pinger  Pinger
	Metrics http.Handler
}

// Options configures the listener.
type Options struct {
	Addr           string
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// Server is the HTTP server for the RAG API and UI.
type Server struct {
	Deps
	opts      Options
	templates *template.Template
}

// NewServer creates a new HTTP server.
func NewServer(deps Deps, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 120 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		Deps:      deps,
		opts:      opts,
		templates: template.Must(template.New("index").Parse(indexHTML)),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Streams end when the model is done or the client goes away.
	r.Get("/api/query/stream", s.handleQueryStream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))

		r.Get("/", s.handleIndex)
		r.Get("/api/chat", s.handleKnowledgeBase)
		r.Post("/api/chat", s.handleChat)
		r.Get("/api/suggestions", s.handleSuggestions)
		r.Get("/api/health", s.handleHealth)
		r.Post("/api/debug", s.handleDebug)

		r.Get("/api/user/history", s.handleUserHistory)
		r.Post("/api/user/feedback", s.handleUserFeedback)
		r.Get("/api/user/stats", s.handleUserStats)

		r.Get("/api/actions", s.handleActions)
		r.Post("/api/actions/detect", s.handleDetectAction)
	})

	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

// Start runs the HTTP server until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	logger.Infof("adaptiverag server starting on %s", s.opts.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("server shutdown: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Infof("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(),
			time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}
