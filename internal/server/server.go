// Package server exposes graph stores over a JSON HTTP API.
//
// Each graph id maps to one [engine.Store] held in memory for the lifetime
// of the process. Committed changes are optionally autosaved to a
// [cache.Cache] so that a restarted server (or another instance sharing a
// Redis cache) can pick a session up where it was left.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowpen/pkg/cache"
	"github.com/matzehuels/flowpen/pkg/engine"
	"github.com/matzehuels/flowpen/pkg/graph"
	"github.com/matzehuels/flowpen/pkg/library"
	"github.com/matzehuels/flowpen/pkg/observability"
	"github.com/matzehuels/flowpen/pkg/persist"
)

const shutdownTimeout = 10 * time.Second

// Config wires a Server to its collaborators. Only Logger has a default;
// nil Library serves an empty library, nil Runner disables saving and nil
// Cache disables autosave.
type Config struct {
	Library      *library.Library
	Runner       *persist.Runner
	Cache        cache.Cache
	Keyer        cache.Keyer
	CacheTTL     time.Duration
	Autosave     bool
	HistoryLimit int
	Logger       *log.Logger
}

// Server routes HTTP requests to per-graph stores.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	store       *engine.Store
	unsubscribe func()
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.Library == nil {
		cfg.Library = library.New(nil)
	}
	s := &Server{
		cfg:      cfg,
		logger:   cfg.Logger,
		sessions: make(map[string]*session),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/library", s.handleLibrary)
	r.Route("/graphs/{id}", func(r chi.Router) {
		r.Put("/", s.handleRestore)
		r.Get("/", s.handleManifest)
		r.Delete("/", s.handleDelete)
		r.Post("/actions", s.handleAction)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Get("/selection", s.handleSelection)
		r.Get("/history", s.handleHistory)
		r.Post("/save", s.handleSave)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down", "sessions", s.Len())
	return srv.Shutdown(shutdownCtx)
}

// Len returns the number of open sessions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// instrument logs each request and reports it to the HTTP hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.Host, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.Host, r.URL.Path, status, dur)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", dur)
	})
}

// =============================================================================
// Sessions
// =============================================================================

// open returns the session for id, creating an empty one if needed.
func (s *Server) open(id string) *engine.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess.store
	}
	sess := s.newSession(id, nil)
	s.sessions[id] = sess
	return sess.store
}

// newSession builds the store for id, restoring m when given. The autosave
// subscription is attached after the restore, so a recovered manifest is
// not written straight back to the cache it came from.
func (s *Server) newSession(id string, m *graph.Manifest) *session {
	store := engine.New(engine.Options{
		Logger:       s.logger.With("graph", id),
		HistoryLimit: s.cfg.HistoryLimit,
	})
	if m != nil {
		store.Restore(*m)
	}
	sess := &session{store: store}
	if s.cfg.Autosave {
		sess.unsubscribe = store.Subscribe(func(ev engine.Event) {
			s.autosave(id, store, ev)
		})
	}
	return sess
}

// lookup returns the session for id. A graph without an open session is
// recovered from the autosave cache, then from the latest saved revision.
func (s *Server) lookup(ctx context.Context, id string) (*engine.Store, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess.store, true
	}

	m, ok := s.recover(ctx, id)
	if !ok {
		return nil, false
	}
	recovered := s.newSession(id, &m)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		// Lost a race with another request for the same graph.
		if recovered.unsubscribe != nil {
			recovered.unsubscribe()
		}
		return sess.store, true
	}
	s.sessions[id] = recovered
	return recovered.store, true
}

func (s *Server) recover(ctx context.Context, id string) (graph.Manifest, bool) {
	data, ok, err := s.cfg.Cache.Get(ctx, s.cfg.Keyer.ManifestKey(id))
	if err != nil {
		s.logger.Warn("autosave read failed", "graph", id, "error", err)
	}
	if ok {
		m, err := graph.UnmarshalManifest(data)
		if err == nil && m.ID == id {
			s.logger.Info("recovered session from autosave", "graph", id)
			return m, true
		}
		s.logger.Warn("discarding unreadable autosave", "graph", id)
	}

	if s.cfg.Runner == nil {
		return graph.Manifest{}, false
	}
	m, err := s.cfg.Runner.Load(ctx, id)
	if err != nil {
		return graph.Manifest{}, false
	}
	s.logger.Info("recovered session from saved revision", "graph", id)
	return m, true
}

// drop closes the session for id and removes its autosave.
func (s *Server) drop(ctx context.Context, id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		if sess.unsubscribe != nil {
			sess.unsubscribe()
		}
		sess.store.Reset()
	}
	if err := s.cfg.Cache.Delete(ctx, s.cfg.Keyer.ManifestKey(id)); err != nil {
		s.logger.Warn("autosave delete failed", "graph", id, "error", err)
	}
	return ok
}

// autosave writes the committed manifest after every change that can alter
// it. Live and layout actions never do.
func (s *Server) autosave(id string, store *engine.Store, ev engine.Event) {
	if ev.Err != nil || ev.Class == engine.ClassLive || ev.Class == engine.ClassLayout || ev.Kind == "reset" {
		return
	}
	data, err := graph.MarshalManifest(store.Manifest())
	if err != nil {
		s.logger.Warn("autosave encode failed", "graph", id, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.cfg.Cache.Set(ctx, s.cfg.Keyer.ManifestKey(id), data, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("autosave failed", "graph", id, "error", err)
	}
}
