package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/diceguess/internal/dice"
)

func newTestGame(faces ...int) *Game {
	return New(ModeClassic, DefaultRules(), dice.NewSequence(faces...))
}

func TestNewGameDefaults(t *testing.T) {
	g := newTestGame(1)
	s := g.Snapshot()

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, 1, g.Round)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 0, s.RollCount)
	assert.Equal(t, InitialDieFace, s.DieFace)
	assert.Nil(t, s.Selected)
	assert.Empty(t, s.History)
	assert.False(t, s.Over)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, MaxRolls, s.RollsLeft)
}

func TestNewFallsBackToDefaults(t *testing.T) {
	g := New("", Rules{}, nil)
	assert.Equal(t, ModeClassic, g.Mode)
	assert.Equal(t, DefaultRules(), g.Rules)
	assert.IsType(t, dice.Crypto{}, g.roller)
}

func TestSelectNumber(t *testing.T) {
	g := newTestGame(1)

	for _, n := range []int{0, 7, -1} {
		err := g.SelectNumber(n)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "n=%d", n)
		assert.Equal(t, ErrOutOfRange, err)
		assert.Nil(t, g.Snapshot().Selected)
	}

	require.NoError(t, g.SelectNumber(4))
	require.NotNil(t, g.Snapshot().Selected)
	assert.Equal(t, 4, *g.Snapshot().Selected)

	require.NoError(t, g.SelectNumber(2))
	assert.Equal(t, 2, *g.Snapshot().Selected)
}

func TestScenarioMatch(t *testing.T) {
	g := newTestGame(3)
	require.NoError(t, g.SelectNumber(3))

	out, err := g.ApplyRoll()
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.False(t, out.Ended)
	assert.Equal(t, RollRecord{RollNumber: 1, Guessed: 3, Rolled: 3, Points: 3}, out.Record)

	s := g.Snapshot()
	assert.Equal(t, 3, s.Score)
	assert.Equal(t, 1, s.RollCount)
	assert.Equal(t, 3, s.DieFace)
	assert.Equal(t, []RollRecord{{1, 3, 3, 3}}, s.History)
}

func TestScenarioMiss(t *testing.T) {
	g := newTestGame(2)
	require.NoError(t, g.SelectNumber(5))

	out, err := g.ApplyRoll()
	require.NoError(t, err)
	assert.Equal(t, RollRecord{RollNumber: 1, Guessed: 5, Rolled: 2, Points: -2}, out.Record)

	s := g.Snapshot()
	assert.Equal(t, -2, s.Score)
	assert.Equal(t, 1, s.RollCount)
	assert.Equal(t, []RollRecord{{1, 5, 2, -2}}, s.History)
}

func TestScenarioWinAtThreshold(t *testing.T) {
	g := newTestGame(6)
	g.score = 48
	require.NoError(t, g.SelectNumber(6))

	out, err := g.ApplyRoll()
	require.NoError(t, err)

	assert.Equal(t, 54, g.Score())
	assert.True(t, out.Ended)
	assert.True(t, out.Won)
	assert.True(t, g.Over())
	assert.Equal(t, StatusWon, g.Status())
}

func TestScenarioTenRollsBelowTarget(t *testing.T) {
	// Alternate hits on 6 and misses so the score climbs but stays below 50.
	g := newTestGame(6, 1)
	for i := 1; i <= MaxRolls; i++ {
		require.NoError(t, g.SelectNumber(6))
		out, err := g.ApplyRoll()
		require.NoError(t, err)
		assert.Equal(t, i == MaxRolls, out.Ended, "roll %d", i)
		assert.False(t, out.Won)
	}

	s := g.Snapshot()
	assert.Equal(t, MaxRolls, s.RollCount)
	assert.Equal(t, 5*6+5*MissPenalty, s.Score)
	assert.True(t, s.Over)
	assert.Equal(t, StatusLost, s.Status)
	assert.Equal(t, 0, s.RollsLeft)
}

func TestRollWithoutSelection(t *testing.T) {
	roller := dice.NewSequence(4)
	g := New(ModeClassic, DefaultRules(), roller)
	before := g.Snapshot()

	out, err := g.ApplyRoll()

	assert.Same(t, ErrNoSelection, err)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.False(t, out.Applied)
	assert.Equal(t, before, g.Snapshot())
	assert.Zero(t, roller.Rolled(), "no face may be drawn on a rejected roll")
}

func TestRollAfterGameOverIsNoOp(t *testing.T) {
	roller := dice.NewSequence(1)
	g := New(ModeClassic, Rules{MaxPoints: 50, MaxRolls: 1}, roller)
	require.NoError(t, g.SelectNumber(3))
	_, err := g.ApplyRoll()
	require.NoError(t, err)
	require.True(t, g.Over())

	before := g.Snapshot()
	out, err := g.ApplyRoll()
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, before, g.Snapshot())
	assert.Equal(t, 1, roller.Rolled())

	assert.Same(t, ErrGameFinished, g.SelectNumber(2))
	assert.Equal(t, before, g.Snapshot())
}

func TestSelectionClearedAfterEveryRoll(t *testing.T) {
	g := newTestGame(1, 2, 3, 4, 5, 6)
	for i, guess := range []int{1, 5, 3, 2, 5, 6} {
		require.NoError(t, g.SelectNumber(guess))
		_, err := g.ApplyRoll()
		require.NoError(t, err)
		assert.Nil(t, g.Snapshot().Selected, "roll %d", i+1)
	}
}

func TestInvariantsOverRandomPlay(t *testing.T) {
	g := New(ModeClassic, DefaultRules(), dice.NewSeeded(7))
	for round := 0; round < 200; round++ {
		for !g.Over() {
			require.NoError(t, g.SelectNumber(round%6+1))
			_, err := g.ApplyRoll()
			require.NoError(t, err)

			s := g.Snapshot()
			require.Len(t, s.History, s.RollCount)
			require.LessOrEqual(t, s.RollCount, MaxRolls)
			for i, r := range s.History {
				require.Equal(t, i+1, r.RollNumber)
				if r.Matched() {
					require.Equal(t, r.Rolled, r.Points)
				} else {
					require.Equal(t, MissPenalty, r.Points)
				}
			}
			if s.Score >= MaxPoints {
				require.True(t, s.Over)
				require.Equal(t, StatusWon, s.Status)
			}
			if s.RollCount == MaxRolls {
				require.True(t, s.Over)
			}
		}
		g.Reset()
	}
}

func TestReset(t *testing.T) {
	g := newTestGame(6)
	g.score = 48
	require.NoError(t, g.SelectNumber(6))
	_, err := g.ApplyRoll()
	require.NoError(t, err)
	require.True(t, g.Over())
	id := g.ID

	g.Reset()

	s := g.Snapshot()
	assert.Equal(t, id, g.ID)
	assert.Equal(t, 2, g.Round)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 0, s.RollCount)
	assert.Empty(t, s.History)
	assert.Nil(t, s.Selected)
	assert.False(t, s.Over)
	assert.Equal(t, InitialDieFace, s.DieFace)
	assert.Equal(t, StatusPlaying, s.Status)

	// Playable again after reset.
	require.NoError(t, g.SelectNumber(6))
	out, err := g.ApplyRoll()
	require.NoError(t, err)
	assert.True(t, out.Applied)
}

func TestSnapshotIsACopy(t *testing.T) {
	g := newTestGame(2)
	require.NoError(t, g.SelectNumber(2))
	_, err := g.ApplyRoll()
	require.NoError(t, err)

	s := g.Snapshot()
	s.History[0].Points = 100
	assert.Equal(t, 2, g.Snapshot().History[0].Points)
}

func TestSummarize(t *testing.T) {
	hist := []RollRecord{
		{RollNumber: 1, Guessed: 3, Rolled: 3, Points: 3},
		{RollNumber: 2, Guessed: 5, Rolled: 2, Points: -2},
		{RollNumber: 3, Guessed: 6, Rolled: 6, Points: 6},
		{RollNumber: 4, Guessed: 1, Rolled: 4, Points: -2},
	}
	assert.Equal(t, Summary{Rolls: 4, Hits: 2, Misses: 2, PointsWon: 9, PointsLost: 4, Net: 5}, Summarize(hist))
	assert.Equal(t, Summary{}, Summarize(nil))
}
