// Package observer serves a running simulation over HTTP.
//
// Reads return snapshots; writes are the manual edits (buffer toggle,
// switch toggle, emergency halt) plus stepping and reset. One mutex
// serialises the ticker and every handler, so an edit never lands in the
// middle of a tick.
//
//	GET  /health
//	GET  /state                      snapshot, digest chain head, policy
//	GET  /metrics                    end-of-run metrics so far
//	GET  /report                     what happened in the last tick
//	POST /tick                       run one tick
//	POST /reset                      restore the initial state
//	POST /buffers                    {"row": r, "col": c}
//	POST /switches/{letter}/toggle
//	POST /switches/{letter}/halt     {"ticks": n} (optional body)
//	GET  /runs                       stored runs, when a store is attached
//	GET  /runs/{id}
//	GET  /runs/{id}/metrics
package observer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/MZiaRAwan/PF-Project/internal/canon"
	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/store"
)

// DefaultInterval is the ticker period of Run.
const DefaultInterval = 250 * time.Millisecond

// Server owns one engine and serialises access to it.
type Server struct {
	mu    sync.Mutex
	eng   *engine.Engine
	chain canon.Chain

	store    *store.Store
	log      *slog.Logger
	interval time.Duration
	origins  []string
	maxTicks int64

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and tick logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithInterval sets the ticker period of Run.
func WithInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithAllowedOrigins sets the CORS origins. Default "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithStore exposes stored runs under /runs.
func WithStore(st *store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithMaxTicks stops Run after that many ticks. Zero means until complete.
func WithMaxTicks(n int64) Option {
	return func(s *Server) { s.maxTicks = n }
}

// New wraps an engine. The engine must not be used by anyone else while the
// server is live.
func New(e *engine.Engine, opts ...Option) *Server {
	s := &Server{
		eng:      e,
		log:      slog.New(slog.DiscardHandler),
		interval: DefaultInterval,
		origins:  []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/state", s.handleState)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/report", s.handleReport)
	r.Post("/tick", s.handleTick)
	r.Post("/reset", s.handleReset)
	r.Post("/buffers", s.handleToggleBuffer)
	r.Route("/switches/{letter}", func(r chi.Router) {
		r.Post("/toggle", s.handleToggleSwitch)
		r.Post("/halt", s.handleHalt)
	})
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
		r.Get("/{id}/metrics", s.handleRunMetrics)
	})
	return r
}

// Step runs one tick unless the simulation is complete. It reports whether
// a tick ran.
func (s *Server) Step() (engine.TickReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked()
}

func (s *Server) stepLocked() (engine.TickReport, bool) {
	if s.eng.IsComplete() {
		return engine.TickReport{}, false
	}
	rep := s.eng.Tick()
	if _, err := s.chain.Add(s.eng.Snapshot()); err != nil {
		s.log.Error("digest failed", "tick", rep.Tick, "error", err)
	}
	return rep, true
}

// Run ticks every interval until ctx is done, the simulation completes or
// the tick limit is reached.
func (s *Server) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.mu.Lock()
			if s.maxTicks > 0 && s.eng.CurrentTick() >= s.maxTicks {
				s.mu.Unlock()
				return nil
			}
			rep, ok := s.stepLocked()
			s.mu.Unlock()
			if !ok {
				s.log.Info("simulation complete")
				return nil
			}
			if len(rep.Crashed) > 0 || len(rep.Recovered) > 0 {
				s.log.Info("tick", "tick", rep.Tick, "crashed", rep.Crashed, "recovered", rep.Recovered)
			}
		}
	}
}

// errorStatus maps edit errors to HTTP status codes.
func errorStatus(err error) (int, string) {
	var ee *engine.EditError
	if errors.As(err, &ee) {
		switch ee.Code {
		case engine.ErrCodeOutOfBounds:
			return http.StatusBadRequest, string(ee.Code)
		case engine.ErrCodeNotBufferable:
			return http.StatusConflict, string(ee.Code)
		case engine.ErrCodeUnknownSwitch:
			return http.StatusNotFound, string(ee.Code)
		}
	}
	if errors.Is(err, store.ErrRunNotFound) {
		return http.StatusNotFound, "RUN_NOT_FOUND"
	}
	return http.StatusInternalServerError, "INTERNAL"
}
