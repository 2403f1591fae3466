package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/fenggwsx/DocuMind/internal/auth"
	"github.com/fenggwsx/DocuMind/internal/config"
	"github.com/fenggwsx/DocuMind/internal/protocol"
	"github.com/fenggwsx/DocuMind/internal/storage"
	"github.com/fenggwsx/DocuMind/internal/storage/files"
)

const shutdownTimeout = 10 * time.Second

// App serves the document-and-chat HTTP contract.
type App struct {
	cfg     config.ServerConfig
	store   storage.Store
	files   *files.Store
	revoker auth.TokenRevoker
	logger  *slog.Logger
}

// NewApp constructs a server instance using the provided dependencies.
func NewApp(cfg config.ServerConfig, store storage.Store, fileStore *files.Store, revoker auth.TokenRevoker, logger *slog.Logger) *App {
	if revoker == nil {
		revoker = auth.NewMemoryRevoker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:     cfg,
		store:   store,
		files:   fileStore,
		revoker: revoker,
		logger:  logger,
	}
}

// Routes builds the HTTP handler.
func (a *App) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	if a.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(a.cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Post(protocol.PathSignUp, a.handleSignUp)
	r.Post(protocol.PathSignIn, a.handleSignIn)

	r.Group(func(protected chi.Router) {
		protected.Use(a.requireAuth)
		protected.Post(protocol.PathSignOut, a.handleSignOut)
		protected.Get(protocol.PathLibrary, a.handleLibrary)
		protected.Post(protocol.PathDocContent, a.handleDocContent)
		protected.Post(protocol.PathUpload, a.handleUpload)
		protected.Post(protocol.PathChat, a.handleChat)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, protocol.CodeNotFound, "Not found", "")
	})
	return r
}

// Run migrates the store, seeds demo data when enabled and serves HTTP until
// ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if err := a.store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if a.cfg.SeedDemo {
		if err := a.SeedDemo(ctx); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
