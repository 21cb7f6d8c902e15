package httpserver

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-lookup/internal/config"
	"github.com/Clark-Hu/movie-lookup/internal/logger"
	"github.com/Clark-Hu/movie-lookup/internal/lookup"
	"github.com/Clark-Hu/movie-lookup/internal/repository"
	"github.com/Clark-Hu/movie-lookup/internal/store"
)

// Server wires HTTP routing, middleware, and handlers for the lookup screen.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     *repository.Repository
	lookups  *lookup.Controller
	logger   *zap.SugaredLogger
	router   chi.Router
	httpSrv  *http.Server
	upgrader websocket.Upgrader

	streamsMu sync.Mutex
	streams   map[*websocket.Conn]struct{}
}

// New constructs the HTTP server with base middleware and routes. st and repo
// may be nil when the journal is disabled.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, lookups *lookup.Controller, log *zap.SugaredLogger) *Server {
	log = logger.OrNop(log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)

	s := &Server{
		cfg:     cfg,
		store:   st,
		repo:    repo,
		lookups: lookups,
		logger:  log,
		router:  r,
		streams: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/lookup", func(r chi.Router) {
		r.Get("/", s.handleGetLookup)
		r.Post("/", s.handleSubmitLookup)
		r.Get("/events", s.handleLookupEvents)
	})
	s.router.Get("/lookups/recent", s.handleRecentLookups)
}

// ServeHTTP lets the server be mounted or tested without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the HTTP server until ctx is cancelled or listening fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = s.newHTTPServer()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("http: listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// newHTTPServer builds the listener-side server. Hijacked event streams are
// invisible to http.Server.Shutdown, so they are closed from its shutdown hook.
func (s *Server) newHTTPServer() *http.Server {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}
	srv.RegisterOnShutdown(s.closeStreams)
	return srv
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.store.HealthCheck(ctx); err != nil {
			s.logger.Warnw("healthz: store unavailable", "error", err)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func requestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			defer func() {
				log.Infow("http: request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"took", time.Since(started),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
