// Package web serves the read-only browser view of the flag store.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/newhook/flagtrack/internal/cache"
	"github.com/newhook/flagtrack/internal/logging"
	"github.com/newhook/flagtrack/internal/store"
	"github.com/newhook/flagtrack/internal/watcher"
)

//go:embed assets
var assets embed.FS

const documentKey = "flags.json"

// Config controls the HTTP server.
type Config struct {
	AllowedOrigins []string
	CacheTTL       time.Duration
}

// Server routes requests for the browser view.
type Server struct {
	router  chi.Router
	handler http.Handler
	store   *store.Store
	cache   *cache.InMemory[string, []byte]
	ttl     time.Duration
	static  fs.FS
}

// NewServer builds a server over st.
func NewServer(st *store.Store, cfg Config) (*Server, error) {
	if st == nil {
		return nil, errors.New("store required")
	}
	static, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded assets: %w", err)
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		router: chi.NewRouter(),
		store:  st,
		cache:  cache.NewInMemory[string, []byte]("web", cfg.CacheTTL, cache.DefaultCleanupInterval),
		ttl:    cfg.CacheTTL,
		static: static,
	}
	s.routes()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(s.router)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logging.DebugContext(r.Context(), "web: request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	})

	s.router.Get("/", s.handleIndex)
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Get("/flags.json", s.handleFlags)
	s.router.Handle("/static/*", http.FileServer(http.FS(s.static)))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(s.static, "index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, ok := s.cache.Get(ctx, documentKey)
	if !ok {
		flags, err := s.store.All(ctx)
		if err != nil {
			logging.ErrorContext(ctx, "web: failed to load flags", "error", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		body, err = store.EncodeFlags(flags)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.cache.Set(ctx, documentKey, body, s.ttl)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

// Invalidate drops the cached store document.
func (s *Server) Invalidate(ctx context.Context) {
	s.cache.Delete(ctx, documentKey)
}

// Watch invalidates the cache whenever w reports a store change. It returns
// when ctx is done or the watcher stops.
func (s *Server) Watch(ctx context.Context, w *watcher.Watcher) {
	for range w.Broker().Subscribe(ctx) {
		s.Invalidate(ctx)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("web: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn("web: failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
