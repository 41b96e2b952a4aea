package daily

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/diceguess/internal/database"
	"github.com/robalobadob/diceguess/internal/dice"
)

func TestDateKeyIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc) // 2026-03-01 19:00 UTC
	assert.Equal(t, "2026-03-01", DateKey(ts))
}

func TestSeedDeterministic(t *testing.T) {
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)

	assert.Equal(t, Seed(day, "salt"), Seed(later, "salt"))
	assert.NotEqual(t, Seed(day, "salt"), Seed(day, "pepper"))
	assert.NotEqual(t, Seed(day, "salt"), Seed(day.AddDate(0, 0, 1), "salt"))
}

func TestRollerReplaysTheDay(t *testing.T) {
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	a, b := Roller(day, "salt"), Roller(day, "salt")
	for i := 0; i < 10; i++ {
		fa := a.Roll()
		assert.True(t, dice.Valid(fa))
		assert.Equal(t, fa, b.Roll())
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMigrated(ctx, database.Memory)
	require.NoError(t, err)
	defer db.Close()
	s := NewStore(db)

	played, err := s.AlreadyPlayed(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: "2026-10-19", Score: 20, Rolls: 10}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u2", Date: "2026-10-19", Score: 52, Rolls: 9, Won: true}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u3", Date: "2026-10-19", Score: 52, Rolls: 7, Won: true}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u4", Date: "2026-10-18", Score: 60, Rolls: 8, Won: true}))
	// duplicate for the same day is ignored
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: "2026-10-19", Score: 99, Rolls: 1, Won: true}))

	played, err = s.AlreadyPlayed(ctx, "u1", "2026-10-19")
	require.NoError(t, err)
	assert.True(t, played)

	rows, err := s.Leaderboard(ctx, "2026-10-19", 0)
	require.NoError(t, err)
	assert.Equal(t, []LBRow{
		{UserID: "u3", Score: 52, Rolls: 7, Won: true},
		{UserID: "u2", Score: 52, Rolls: 9, Won: true},
		{UserID: "u1", Score: 20, Rolls: 10, Won: false},
	}, rows)

	rows, err = s.Leaderboard(ctx, "2026-10-19", 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestClaimAnon(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMigrated(ctx, database.Memory)
	require.NoError(t, err)
	defer db.Close()
	s := NewStore(db)

	require.NoError(t, s.InsertResult(ctx, Result{UserID: "anon", Date: "2026-10-18", Score: 12, Rolls: 10}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "anon", Date: "2026-10-19", Score: 30, Rolls: 10}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "user", Date: "2026-10-19", Score: 51, Rolls: 9, Won: true}))

	n, err := s.ClaimAnon(ctx, "anon", "user")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	played, err := s.AlreadyPlayed(ctx, "user", "2026-10-18")
	require.NoError(t, err)
	assert.True(t, played)

	// the account's own result for the 19th is kept
	rows, err := s.Leaderboard(ctx, "2026-10-19", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, LBRow{UserID: "user", Score: 51, Rolls: 9, Won: true}, rows[0])

	n, err = s.ClaimAnon(ctx, "", "user")
	require.NoError(t, err)
	assert.Zero(t, n)
}
