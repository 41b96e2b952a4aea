// internal/daily/store.go
//
// Persistence for daily challenge results and the per-date leaderboard.

package daily

import (
	"context"
	"database/sql"
)

type Result struct {
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Score  int    `json:"score"`
	Rolls  int    `json:"rolls"`
	Won    bool   `json:"won"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a finished daily game; a second result for the same
// user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, score, rolls, won)
		 VALUES(?,?,?,?,?)`, r.UserID, r.Date, r.Score, r.Rolls, r.Won,
	)
	return err
}

// ClaimAnon moves a guest's results to an account. A result the account
// already has for the same date wins; the guest row is left behind.
func (s *Store) ClaimAnon(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET user_id=? WHERE user_id=?`, userID, anonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type LBRow struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
	Rolls  int    `json:"rolls"`
	Won    bool   `json:"won"`
}

// Leaderboard lists the best results of a date: highest score, then fewest
// rolls, then earliest finish.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, score, rolls, won
		 FROM daily_results
		 WHERE date=?
		 ORDER BY score DESC, rolls ASC, created_at ASC, rowid ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Score, &r.Rolls, &r.Won); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
