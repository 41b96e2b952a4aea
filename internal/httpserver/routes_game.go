// internal/httpserver/routes_game.go
//
// HTTP routes for a single game, mounted under /game:
//   - POST /game/new           → create a classic game
//   - GET  /game/{id}          → current state
//   - POST /game/{id}/select   → pick the number to bet on
//   - POST /game/{id}/roll     → roll the die and score the guess
//   - POST /game/{id}/reset    → start the next round with the same ID
//   - GET  /game/{id}/history  → roll log of the current round
//
// Games are mutated only inside store.Update, so two requests never touch
// the same game at once. Persistence to the database is best effort.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/diceguess/internal/accounts"
	"github.com/robalobadob/diceguess/internal/game"
	"github.com/robalobadob/diceguess/internal/store"
)

var (
	errForbidden  = errors.New("forbidden")
	errDailyReset = errors.New("daily games cannot be reset")
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.With(s.rateLimit).Post("/new", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Post("/select", s.handleSelect)
			r.With(s.rateLimit).Post("/roll", s.handleRoll)
			r.Post("/reset", s.handleReset)
			r.Get("/history", s.handleHistory)
		})
	})
}

// handleNewGame creates a classic game owned by the caller and opens its
// first round in the database.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	who := s.identify(w, r)
	g := game.New(game.ModeClassic, game.DefaultRules(), s.newRoller())
	e := store.Entry{Game: g, Owner: who.key()}
	snap := store.SnapshotOf(e)
	if err := s.store.Save(r.Context(), e); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.startRound(r.Context(), snap, who)
	writeJSON(w, http.StatusCreated, s.view(snap))
}

// handleGetGame returns the current state of a game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	who := s.identify(w, r)
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !who.owns(snap.Owner) {
		err = errForbidden
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(snap))
}

type selectReq struct {
	Number int `json:"number"`
}

// handleSelect records the caller's guess for the next roll.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	who := s.identify(w, r)
	var snap store.Snapshot
	err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(e store.Entry) error {
		if !who.owns(e.Owner) {
			return errForbidden
		}
		if err := e.Game.SelectNumber(req.Number); err != nil {
			return err
		}
		snap = store.SnapshotOf(e)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(snap))
}

// rollRes is returned by POST /game/{id}/roll.
type rollRes struct {
	Applied bool             `json:"applied"`
	Record  *game.RollRecord `json:"record,omitempty"`
	Matched bool             `json:"matched"`
	Ended   bool             `json:"ended"`
	Won     bool             `json:"won"`
	State   stateView        `json:"state"`
}

// handleRoll rolls the die for the selected number. Rolling a finished game
// changes nothing and reports applied=false.
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	who := s.identify(w, r)
	var (
		out  game.Outcome
		snap store.Snapshot
	)
	err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(e store.Entry) error {
		if !who.owns(e.Owner) {
			return errForbidden
		}
		o, err := e.Game.ApplyRoll()
		if err != nil {
			return err
		}
		out, snap = o, store.SnapshotOf(e)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res := rollRes{Applied: out.Applied, Ended: out.Ended, Won: out.Won, State: s.view(snap)}
	if out.Applied {
		rec := out.Record
		res.Record = &rec
		res.Matched = rec.Matched()
		s.recordRoll(r.Context(), who, snap, out)
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReset starts the next round of a game. The unfinished round, if any,
// is marked abandoned in the log.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	who := s.identify(w, r)
	var (
		snap      store.Snapshot
		prevRound int
		abandoned bool
	)
	err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(e store.Entry) error {
		if !who.owns(e.Owner) {
			return errForbidden
		}
		if e.Game.Mode == game.ModeDaily {
			return errDailyReset
		}
		prevRound, abandoned = e.Game.Round, !e.Game.Over()
		e.Game.Reset()
		snap = store.SnapshotOf(e)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	log := hlog.FromRequest(r)
	if abandoned {
		if err := s.history.AbandonRound(r.Context(), snap.ID, prevRound); err != nil {
			log.Warn().Err(err).Str("gameId", snap.ID).Int("round", prevRound).Msg("abandon round")
		}
	}
	s.startRound(r.Context(), snap, who)
	writeJSON(w, http.StatusOK, s.view(snap))
}

// historyRes is returned by GET /game/{id}/history.
type historyRes struct {
	GameID  string            `json:"gameId"`
	Round   int               `json:"round"`
	Rolls   []game.RollRecord `json:"rolls"`
	Summary game.Summary      `json:"summary"`
}

// handleHistory returns the persisted roll log of the current round.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	who := s.identify(w, r)
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !who.owns(snap.Owner) {
		err = errForbidden
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rolls, err := s.history.Rolls(r.Context(), snap.ID, snap.Round)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("gameId", snap.ID).Msg("load rolls")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, historyRes{
		GameID:  snap.ID,
		Round:   snap.Round,
		Rolls:   rolls,
		Summary: game.Summarize(rolls),
	})
}

// ----------------------------- persistence ---------------------------------

// startRound opens a round row in the log; failures are only logged.
func (s *Server) startRound(ctx context.Context, snap store.Snapshot, who identity) {
	if err := s.history.StartRound(ctx, snap.ID, snap.Round, snap.Mode, who.owner()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("gameId", snap.ID).Int("round", snap.Round).Msg("insert round row")
	}
}

// recordRoll stores the roll and, when the round ended, the caller's stats in
// one best-effort transaction. Daily results are written after the commit.
func (s *Server) recordRoll(ctx context.Context, who identity, snap store.Snapshot, out game.Outcome) {
	log := zerolog.Ctx(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin roll tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.history.RecordRoll(ctx, tx, snap.ID, snap.Round, out.Record, snap.State); err != nil {
		log.Warn().Err(err).Str("gameId", snap.ID).Msg("record roll")
	}
	if out.Ended && who.UserID != "" {
		if err := accounts.BumpStats(ctx, tx, who.UserID, out.Won, snap.State.Score); err != nil {
			log.Warn().Err(err).Str("user", who.UserID).Msg("bump stats")
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit roll tx")
	}

	if out.Ended && snap.Mode == game.ModeDaily {
		s.daily.finish(ctx, snap)
	}
}

// fail maps handler errors to JSON responses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *game.ValidationError
	switch {
	case errors.As(err, &verr):
		res := map[string]string{"error": verr.Msg}
		if errors.Is(err, game.ErrNoSelection) {
			res["message"] = msgNoSelection
		}
		writeJSON(w, http.StatusBadRequest, res)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, errForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, errDailyReset):
		writeError(w, http.StatusConflict, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("game request")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
