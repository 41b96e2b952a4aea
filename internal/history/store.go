// internal/history/store.go
//
// Result log for game rounds.
// Every round of a game gets a row in games; every resolved roll a row in rolls.
// Rounds are owned either by a user (user_id) or by an anonymous cookie
// (anonymous_id); anonymous rounds can be claimed after login.
//
// Writes are issued by the HTTP layer after the engine has already changed
// state, so callers treat failures here as best effort.

package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/robalobadob/diceguess/internal/database"
	"github.com/robalobadob/diceguess/internal/game"
)

// Owner identifies who a round belongs to. Exactly one field is set.
type Owner struct {
	UserID string
	AnonID string
}

func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return "user_id=?", o.UserID
	}
	return "anonymous_id=?", o.AnonID
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Round is one row of the games table.
type Round struct {
	GameID     string      `json:"id"`
	Round      int         `json:"round"`
	Mode       game.Mode   `json:"mode"`
	Status     game.Status `json:"status"`
	Score      int         `json:"score"`
	Rolls      int         `json:"rolls"`
	StartedAt  string      `json:"startedAt"`
	FinishedAt string      `json:"finishedAt,omitempty"`
}

// StatusAbandoned marks a round that was reset before it ended.
const StatusAbandoned game.Status = "abandoned"

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// StartRound inserts the row for a fresh round.
func (s *Store) StartRound(ctx context.Context, gameID string, round int, mode game.Mode, o Owner) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, round, mode, user_id, anonymous_id, status, score, rolls, started_at)
		 VALUES (?,?,?,?,?,?,0,0,?)`,
		gameID, round, string(mode), nullable(o.UserID), nullable(o.AnonID), string(game.StatusPlaying), now(),
	)
	return err
}

// RecordRoll appends one roll and refreshes the round's running totals.
// When the roll ended the game, the round is marked finished.
func (s *Store) RecordRoll(ctx context.Context, ex database.Execer, gameID string, round int, rec game.RollRecord, st game.State) error {
	ts := now()
	if _, err := ex.ExecContext(ctx,
		`INSERT INTO rolls (game_id, round, roll_number, guessed, rolled, points, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		gameID, round, rec.RollNumber, rec.Guessed, rec.Rolled, rec.Points, ts,
	); err != nil {
		return err
	}
	var finished any
	if st.Over {
		finished = ts
	}
	_, err := ex.ExecContext(ctx,
		`UPDATE games SET score=?, rolls=?, status=?, finished_at=COALESCE(?, finished_at)
		 WHERE id=? AND round=?`,
		st.Score, st.RollCount, string(st.Status), finished, gameID, round,
	)
	return err
}

// AbandonRound flags a round that is still playing as abandoned.
func (s *Store) AbandonRound(ctx context.Context, gameID string, round int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET status=?, finished_at=? WHERE id=? AND round=? AND status=?`,
		string(StatusAbandoned), now(), gameID, round, string(game.StatusPlaying),
	)
	return err
}

// Rolls returns the recorded rolls of one round in roll order.
func (s *Store) Rolls(ctx context.Context, gameID string, round int) ([]game.RollRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT roll_number, guessed, rolled, points FROM rolls
		 WHERE game_id=? AND round=? ORDER BY roll_number ASC`, gameID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []game.RollRecord{}
	for rows.Next() {
		var r game.RollRecord
		if err := rows.Scan(&r.RollNumber, &r.Guessed, &r.Rolled, &r.Points); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Recent lists an owner's most recent rounds, newest first.
func (s *Store) Recent(ctx context.Context, o Owner, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	clause, arg := o.clause()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, round, mode, status, score, rolls, started_at, COALESCE(finished_at,'')
		 FROM games WHERE `+clause+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, arg, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Round{}
	for rows.Next() {
		var r Round
		var mode, status string
		if err := rows.Scan(&r.GameID, &r.Round, &mode, &status, &r.Score, &r.Rolls, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Mode, r.Status = game.Mode(mode), game.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnon transfers anonymous rounds to a user account after auth.
func (s *Store) ClaimAnon(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
