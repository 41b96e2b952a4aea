// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode, mounted under /daily:
//   - POST /daily/new         → start today's daily game (creates or reuses session)
//   - GET  /daily/leaderboard → top 20 results for today (or a given date)
//
// A daily game is an ordinary game in daily mode whose die is seeded from
// the date + salt, so everyone rolls the same faces. It is played through
// the /game/{id} routes and cannot be reset. Each player gets one result
// per day (enforced by DB + in-memory session). Sessions live until their
// game finishes or is swept from memory.

package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/diceguess/internal/daily"
	"github.com/robalobadob/diceguess/internal/game"
	"github.com/robalobadob/diceguess/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	mu       sync.Mutex               // guards sessions and byGame
	sessions map[string]*dailySession // keyed by playerID|date
	byGame   map[string]*dailySession // keyed by game ID
}

// dailySession links a player's live daily game to its date.
type dailySession struct {
	GameID   string
	PlayerID string
	Date     string
}

func (s *dailySession) key() string { return s.PlayerID + "|" + s.Date }

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	s.daily = &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]*dailySession),
		byGame:   make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.With(s.rateLimit).Post("/new", s.daily.handleNew)
		r.Get("/leaderboard", s.daily.handleLeaderboard)
	})
}

// newRes is returned by /daily/new.
type newRes struct {
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	Game   *stateView `json:"game,omitempty"`
}

// handleNew creates or reuses a daily game for the current date.
//   - If the player (or the guest cookie they played under) already has a
//     result for today → Played=true.
//   - Otherwise reuse the live session or start a new game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	who := d.srv.identify(w, r)
	now := d.srv.now()
	date := daily.DateKey(now)

	played, err := d.playedToday(r.Context(), who, date)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("check daily result")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, newRes{Date: date, Played: true})
		return
	}

	snap, created, err := d.session(r.Context(), who, now)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save daily game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	v := d.srv.view(snap)
	if !created {
		writeJSON(w, http.StatusOK, newRes{Date: date, Game: &v})
		return
	}
	d.srv.startRound(r.Context(), snap, who)
	writeJSON(w, http.StatusCreated, newRes{Date: date, Game: &v})
}

// playedToday checks every ID the caller has played under.
func (d *dailyServer) playedToday(ctx context.Context, who identity, date string) (bool, error) {
	for _, pid := range who.players() {
		played, err := d.store.AlreadyPlayed(ctx, pid, date)
		if err != nil || played {
			return played, err
		}
	}
	return false, nil
}

// session returns the caller's live daily game, or registers a new one.
// Only in-memory work happens under the lock.
func (d *dailyServer) session(ctx context.Context, who identity, now time.Time) (store.Snapshot, bool, error) {
	date := daily.DateKey(now)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, pid := range who.players() {
		sess, ok := d.sessions[pid+"|"+date]
		if !ok {
			continue
		}
		if snap, err := d.srv.store.Get(ctx, sess.GameID); err == nil && who.owns(snap.Owner) {
			if p := who.player(); sess.PlayerID != p {
				// a guest who signed up mid-game; the result goes to the account
				delete(d.sessions, sess.key())
				sess.PlayerID = p
				d.sessions[sess.key()] = sess
			}
			return snap, false, nil
		}
		// swept from memory; start over with the same faces
		d.drop(sess)
	}

	g := game.New(game.ModeDaily, game.DefaultRules(), daily.Roller(now, d.salt))
	e := store.Entry{Game: g, Owner: who.key()}
	if err := d.srv.store.Save(ctx, e); err != nil {
		return store.Snapshot{}, false, err
	}
	sess := &dailySession{GameID: g.ID, PlayerID: who.player(), Date: date}
	d.sessions[sess.key()] = sess
	d.byGame[g.ID] = sess
	return store.SnapshotOf(e), true, nil
}

// drop forgets a session; d.mu must be held.
func (d *dailyServer) drop(sess *dailySession) {
	delete(d.byGame, sess.GameID)
	if cur, ok := d.sessions[sess.key()]; ok && cur == sess {
		delete(d.sessions, sess.key())
	}
}

// prune forgets sessions whose games were swept, and stops looking up
// sessions of past dates. A past-date game still in play keeps its byGame
// entry so its result is recorded when it ends.
func (d *dailyServer) prune(swept []string, today string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range swept {
		if sess, ok := d.byGame[id]; ok {
			d.drop(sess)
		}
	}
	for key, sess := range d.sessions {
		if sess.Date < today {
			delete(d.sessions, key)
		}
	}
}

// finish stores the result of a daily game once it is over and forgets its
// session; later calls for the same game do nothing.
func (d *dailyServer) finish(ctx context.Context, snap store.Snapshot) {
	d.mu.Lock()
	sess, ok := d.byGame[snap.ID]
	if ok {
		d.drop(sess)
	}
	d.mu.Unlock()
	if !ok {
		return
	}

	err := d.store.InsertResult(ctx, daily.Result{
		UserID: sess.PlayerID,
		Date:   sess.Date,
		Score:  snap.State.Score,
		Rolls:  snap.State.RollCount,
		Won:    snap.State.Status == game.StatusWon,
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("gameId", snap.ID).Msg("insert daily result")
	}
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
