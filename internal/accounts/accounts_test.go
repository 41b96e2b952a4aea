package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/diceguess/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenMigrated(context.Background(), database.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.Create(ctx, "  alice ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	_, err = s.Create(ctx, "ALICE", "another-password")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := s.Authenticate(ctx, "Alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Nil(t, got.BestScore)

	_, err = s.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateSignup(t *testing.T) {
	cases := []struct {
		name, user, pw string
		ok             bool
	}{
		{"valid", "bob_42", "password1", true},
		{"short user", "bo", "password1", false},
		{"bad chars", "bob!", "password1", false},
		{"short password", "bob", "short", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateSignup(c.user, c.pw)
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestBumpStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u, err := s.Create(ctx, "carol", "password123")
	require.NoError(t, err)

	require.NoError(t, BumpStats(ctx, s.db, u.ID, true, 52))
	require.NoError(t, BumpStats(ctx, s.db, u.ID, true, 50))
	require.NoError(t, BumpStats(ctx, s.db, u.ID, false, -12))

	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.GamesPlayed)
	assert.Equal(t, 2, got.Wins)
	assert.Equal(t, 0, got.Streak)
	require.NotNil(t, got.BestScore)
	assert.Equal(t, 52, *got.BestScore)

	tx, err := s.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, BumpStats(ctx, tx, u.ID, true, 60))
	require.NoError(t, tx.Rollback())

	got, err = s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.GamesPlayed)
}
