// internal/httpserver/server.go
//
// HTTP server wiring for the dice game backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, panic recovery, timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/rules".
//   - Game endpoints (optional auth): mounted under /game.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//   - Graceful shutdown and idle game sweeping.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Live games sit in the in-memory store; the database keeps the round log.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/diceguess/assets"
	"github.com/robalobadob/diceguess/internal/accounts"
	"github.com/robalobadob/diceguess/internal/config"
	"github.com/robalobadob/diceguess/internal/daily"
	"github.com/robalobadob/diceguess/internal/dice"
	"github.com/robalobadob/diceguess/internal/history"
	"github.com/robalobadob/diceguess/internal/store"
)

// Server bundles router, in-memory game store, and DB-backed stores.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	db      *sql.DB
	history *history.Store
	users   *accounts.Store
	daily   *dailyServer
	limits  *limiter

	newRoller func() dice.Roller
	now       func() time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithRollerFactory sets the die used by new classic games.
func WithRollerFactory(fn func() dice.Roller) Option {
	return func(s *Server) { s.newRoller = fn }
}

// WithClock sets the clock used to pick the daily challenge date.
func WithClock(fn func() time.Time) Option {
	return func(s *Server) { s.now = fn }
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, db *sql.DB, opts ...Option) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		cfg:       cfg,
		store:     st,
		db:        db,
		history:   history.NewStore(db),
		users:     accounts.NewStore(db),
		limits:    newLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		newRoller: func() dice.Roller { return dice.Crypto{} },
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)        // recover from panics
	s.r.Use(chimw.Timeout(timeout)) // bound handler time
	s.r.Use(jsonContentType)        // default JSON responses
	s.r.Use(s.cors)                 // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "diceguess",
			"endpoints": []string{
				"/health", "/rules", "POST /game/new", "GET /game/{id}", "POST /game/{id}/select",
				"POST /game/{id}/roll", "POST /game/{id}/reset", "GET /game/{id}/history", "/daily/*", "/auth/*",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "games": s.store.Len()})
	})
	s.r.Get("/rules", s.handleRules)

	// Game endpoints, guests can play
	s.mountGame(s.r.With(s.withOptionalAuth()))

	// Daily Challenge, guests can play
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + profile/stats
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepIdle(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http server shutdown")
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// sweepIdle drops games nobody touched within the session timeout.
// It returns at once when the timeout is not positive.
func (s *Server) sweepIdle(ctx context.Context) {
	maxAge := s.cfg.SessionTimeout
	if maxAge <= 0 {
		return
	}
	t := time.NewTicker(sweepInterval(maxAge))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sweep(ctx, time.Now().Add(-maxAge)); n > 0 {
				log.Info().Int("removed", n).Dur("maxAge", maxAge).Msg("swept idle games")
			}
		}
	}
}

// sweepInterval checks four times per timeout, at most once a minute.
func sweepInterval(maxAge time.Duration) time.Duration {
	if every := maxAge / 4; every > time.Minute {
		return every
	}
	return time.Minute
}

// sweep drops games last touched before cutoff along with their daily
// sessions, and reports how many games went.
func (s *Server) sweep(ctx context.Context, cutoff time.Time) int {
	ids := s.store.Sweep(ctx, cutoff)
	s.daily.prune(ids, daily.DateKey(s.now()))
	return len(ids)
}

// handleRules lists the rule text shown on the start screen.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	lines, err := assets.Rules()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("read rules")
		writeError(w, http.StatusInternalServerError, "rules_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": lines})
}

// ----------------------------- middleware ----------------------------------

// accessLog writes one line per request.
func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Str("requestId", chimw.GetReqID(r.Context())).
		Msg("request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ helpers ------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
