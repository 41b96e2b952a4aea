package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/diceguess/internal/dice"
	"github.com/robalobadob/diceguess/internal/game"
)

func TestSaveGet(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g := game.New(game.ModeClassic, game.DefaultRules(), dice.NewSequence(1))

	require.NoError(t, st.Save(ctx, Entry{Game: g, Owner: "anon-1"}))
	assert.Equal(t, 1, st.Len())

	snap, err := st.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "anon-1", snap.Owner)
	assert.Equal(t, g.ID, snap.ID)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, game.ModeClassic, snap.Mode)
	assert.Equal(t, game.InitialDieFace, snap.State.DieFace)

	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	st := &memory{games: make(map[string]*item), now: func() time.Time { return clock }}

	idle := game.New(game.ModeClassic, game.DefaultRules(), nil)
	busy := game.New(game.ModeClassic, game.DefaultRules(), nil)
	require.NoError(t, st.Save(ctx, Entry{Game: idle}))
	require.NoError(t, st.Save(ctx, Entry{Game: busy}))

	clock = clock.Add(3 * time.Hour)
	require.NoError(t, st.Update(ctx, busy.ID, func(Entry) error { return nil }))

	assert.Equal(t, []string{idle.ID}, st.Sweep(ctx, clock.Add(-2*time.Hour)))
	assert.Empty(t, st.Sweep(ctx, clock.Add(-2*time.Hour)))
	_, err := st.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(ctx, busy.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, st.Len())
}

func TestSaveRejectsNilGame(t *testing.T) {
	assert.Error(t, NewMemoryStore().Save(context.Background(), Entry{}))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g := game.New(game.ModeClassic, game.DefaultRules(), dice.NewSequence(3))
	require.NoError(t, st.Save(ctx, Entry{Game: g}))

	err := st.Update(ctx, g.ID, func(e Entry) error {
		if err := e.Game.SelectNumber(3); err != nil {
			return err
		}
		_, err := e.Game.ApplyRoll()
		return err
	})
	require.NoError(t, err)

	snap, err := st.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.State.Score)

	boom := errors.New("boom")
	assert.Same(t, boom, st.Update(ctx, g.ID, func(Entry) error { return boom }))
	assert.ErrorIs(t, st.Update(ctx, "missing", func(Entry) error { return nil }), ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, st.Update(cancelled, g.ID, func(Entry) error { return nil }), context.Canceled)
}

func TestUpdateSerializesRolls(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g := game.New(game.ModeClassic, game.Rules{MaxPoints: 1000, MaxRolls: 1000}, dice.NewSequence(1))
	require.NoError(t, st.Save(ctx, Entry{Game: g}))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Update(ctx, g.ID, func(e Entry) error {
				if err := e.Game.SelectNumber(1); err != nil {
					return err
				}
				_, err := e.Game.ApplyRoll()
				return err
			})
		}()
	}
	wg.Wait()

	snap, err := st.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, snap.State.RollCount)
	assert.Len(t, snap.State.History, 100)
	assert.Equal(t, 100, snap.State.Score)
}
