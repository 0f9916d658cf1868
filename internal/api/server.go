// Package api serves quizdeck to browser clients over HTTP.
package api

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/assessment"
	"github.com/abhisek/quizdeck/internal/config"
	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/store"
)

// Deps are the collaborators the handlers use.
type Deps struct {
	Tree *curriculum.Tree

	// Generator backs POST /quizzes. Nil answers 503.
	Generator questiongen.Generator

	History store.HistoryRepo

	Distribution     assessment.Distribution
	StrictAssessment bool
	// AssessmentCount is used when a request names no count.
	AssessmentCount int

	// Rand seeds planning and sampling. Nil uses a random seed per request.
	Rand func() *rand.Rand
}

// Server is the HTTP API server.
type Server struct {
	config config.ServerConfig
	deps   Deps
	router *chi.Mux
	log    *zap.Logger
}

// NewServer creates a server and configures its routes.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Rand == nil {
		deps.Rand = func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }
	}
	s := &Server{config: cfg, deps: deps, log: logger.Get().Named("api")}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/topics", s.handleTopics)
		r.Post("/selection/toggle", s.handleToggle)
		r.Post("/quizzes", s.handleCreateQuiz)
		r.Post("/assessments", s.handleCreateAssessment)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Post("/", s.handleSaveHistory)
			r.Delete("/", s.handleClearHistory)
			r.Get("/{id}", s.handleGetHistory)
			r.Delete("/{id}", s.handleDeleteHistory)
		})
	})

	s.router = r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
