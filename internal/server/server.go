// Package server wires every dependency together and runs the two HTTP
// listeners.
//
// TWO SERVERS, ONE PROCESS:
//
//	API server    (PORT, default 8080)        → JSON API for the UI + /metrics
//	Public server (PUBLIC_PORT, default 5000) → GET /{id}, the published pages
//
// Both share the SQLite handle and the page store. They run under one
// errgroup: if either listener fails, the other is shut down too.
//
// DEPENDENCY INJECTION FLOW:
//
//	New() creates: sqlite.DB → AccountService, BioArchive ─┐
//	               llm.OpenAI → CopyGenerator ─────────────┼→ BioService → handlers
//	               pages.Store ────────────────────────────┘
//
// This is the "composition root": all dependencies are wired here, rather
// than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/smartbio/internal/auth"
	"github.com/sakif/smartbio/internal/handler"
	"github.com/sakif/smartbio/internal/llm"
	"github.com/sakif/smartbio/internal/metrics"
	"github.com/sakif/smartbio/internal/middleware"
	"github.com/sakif/smartbio/internal/pages"
	sqliteRepo "github.com/sakif/smartbio/internal/repository/sqlite"
	"github.com/sakif/smartbio/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Config holds the resolved server configuration.
type Config struct {
	Port       string
	PublicPort string
	BaseURL    string
	DBPath     string

	JWTSecret string
	TokenTTL  time.Duration

	OpenAI            llm.Config // generation is disabled when APIKey is empty
	GenerationTimeout time.Duration

	PageBackend string // "fs" or "s3"
	PagesDir    string
	S3          pages.S3Config

	// BcryptCost overrides the password hashing cost; 0 means the default.
	BcryptCost int
}

// Option customises New. Tests use these to swap external collaborators.
type Option func(*Server)

// WithCompleter replaces the OpenAI client.
func WithCompleter(c llm.Completer) Option {
	return func(s *Server) { s.completer = c }
}

// WithPageStore replaces the configured page backend.
func WithPageStore(store pages.Store) Option {
	return func(s *Server) { s.pages = store }
}

// Server owns the database and both routers.
type Server struct {
	config  Config
	logger  *slog.Logger
	metrics *metrics.Collector

	db        *sqliteRepo.DB
	completer llm.Completer
	pages     pages.Store
	bios      *service.BioService

	api    *chi.Mux
	public *chi.Mux
}

// New opens the database, builds the services and sets up both routers.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.db = db

	if err := s.wire(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) wire() error {
	if s.completer == nil && s.config.OpenAI.APIKey != "" {
		c, err := llm.NewOpenAI(s.config.OpenAI, s.logger)
		if err != nil {
			return fmt.Errorf("creating model client: %w", err)
		}
		s.completer = c
	}
	if s.completer == nil {
		s.logger.Warn("OPENAI_API_KEY not set, bio generation is disabled")
	}

	if s.pages == nil {
		store, err := s.newPageStore()
		if err != nil {
			return err
		}
		s.pages = store
	}

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	if s.config.BcryptCost > 0 {
		passwords = auth.NewPasswordServiceForTest(s.config.BcryptCost)
	}

	// s.db implements both repository interfaces.
	accounts := service.NewAccountService(s.db, passwords, tokens, s.logger)
	archive := service.NewBioArchive(s.db, nil, s.config.BaseURL, s.logger)
	generator := service.NewCopyGenerator(s.completer, s.config.GenerationTimeout, s.logger, s.metrics)
	s.bios = service.NewBioService(generator, archive, s.pages, s.logger, s.metrics)
	publisher := service.NewPagePublisher(s.pages, s.logger, s.metrics)

	s.setupAPIRoutes(handler.NewAuthHandler(accounts, tokens.TTL(), s.logger), handler.NewBioHandler(s.bios, s.logger), tokens)
	s.setupPublicRoutes(handler.NewPageHandler(publisher, s.logger))
	return nil
}

func (s *Server) newPageStore() (pages.Store, error) {
	switch s.config.PageBackend {
	case "", "fs":
		return pages.NewFileStore(s.config.PagesDir), nil
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := pages.NewS3Client(ctx, s.config.S3)
		if err != nil {
			return nil, fmt.Errorf("creating S3 client: %w", err)
		}
		return pages.NewS3Store(client, s.config.S3.Bucket), nil
	}
	return nil, fmt.Errorf("unknown page backend %q", s.config.PageBackend)
}

// commonMiddleware runs on every request of both servers, in order:
//  1. RequestID: assigns a unique ID to each request (for tracing)
//  2. RealIP   : extracts the client IP from proxy headers
//  3. Logger   : logs each request with timing info
//  4. Metrics  : counts requests per server
//  5. Recoverer: turns panics into 500s instead of crashing the process
func (s *Server) commonMiddleware(r chi.Router, name string) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger.With(slog.String("server", name))))
	r.Use(middleware.Metrics(s.metrics, name))
	r.Use(chimiddleware.Recoverer)
}

// setupAPIRoutes configures the JSON API.
//
// ROUTE STRUCTURE:
// POST   /api/accounts → register
// POST   /api/sessions → login (sets the token cookie)
// DELETE /api/sessions → logout
// GET    /api/session  → who am I (optional auth)
// POST   /api/bios     → generate a bio (auth required)
// GET    /api/bios     → list my bios (auth required)
// GET    /metrics      → Prometheus
func (s *Server) setupAPIRoutes(authH *handler.AuthHandler, bioH *handler.BioHandler, tokens *auth.TokenService) {
	r := chi.NewRouter()
	s.commonMiddleware(r, "api")

	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/accounts", authH.HandleRegister)
		r.Post("/sessions", authH.HandleLogin)
		r.Delete("/sessions", authH.HandleLogout)
		r.With(auth.OptionalAuth(tokens)).Get("/session", authH.HandleSession)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/bios", bioH.HandleGenerate)
			r.Get("/bios", bioH.HandleList)
		})
	})

	s.api = r
}

// setupPublicRoutes configures the page server: one route, no auth.
func (s *Server) setupPublicRoutes(pageH *handler.PageHandler) {
	r := chi.NewRouter()
	s.commonMiddleware(r, "public")

	r.Get("/{id}", pageH.HandleServe)
	r.NotFound(pageH.HandleNotFound)

	s.public = r
}

// APIHandler is the API router.
func (s *Server) APIHandler() http.Handler { return s.api }

// PublicHandler is the page server router.
func (s *Server) PublicHandler() http.Handler { return s.public }

// Close releases the database. Start and Run call it on the way out.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs both servers until SIGINT or SIGTERM, then shuts down
// gracefully and closes the database.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled or a listener fails.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections on both listeners
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database (flushes WAL, releases the file lock)
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	// A generation can take two model calls, so the API write timeout has to
	// outlast both.
	apiWriteTimeout := 2*s.config.GenerationTimeout + 15*time.Second

	apiSrv := &http.Server{
		Addr:         net.JoinHostPort("", s.config.Port),
		Handler:      s.api,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: apiWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	publicSrv := &http.Server{
		Addr:         net.JoinHostPort("", s.config.PublicPort),
		Handler:      s.public,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.listen(apiSrv, "api") })
	g.Go(func() error { return s.listen(publicSrv, "public") })

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(apiSrv.Shutdown(shutdownCtx), publicSrv.Shutdown(shutdownCtx))
	})

	// Repair pages left unwritten by an earlier run. Failures are logged, not
	// fatal: the servers stay up either way.
	g.Go(func() error {
		repaired, err := s.bios.Reconcile(gctx)
		if err != nil && gctx.Err() == nil {
			s.logger.Error("page reconciliation incomplete",
				slog.Int("repaired", repaired),
				slog.String("error", err.Error()),
			)
			return nil
		}
		if repaired > 0 {
			s.logger.Info("page reconciliation finished", slog.Int("repaired", repaired))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("servers stopped gracefully")
	return nil
}

func (s *Server) listen(srv *http.Server, name string) error {
	s.logger.Info("server starting",
		slog.String("server", name),
		slog.String("addr", srv.Addr),
		slog.String("database", s.config.DBPath),
	)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
