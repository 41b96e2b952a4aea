// internal/game/engine.go
//
// Rule engine for a single dice guessing game.
// Responsibilities:
//   - Hold the game state (score, roll count, die face, selection, history).
//   - Validate number selection (1–6, game not over).
//   - Resolve rolls: draw, compare, score, record, evaluate end conditions.
//   - Track state transitions: playing → won/lost, and back via Reset.
//
// Notes:
//   - The engine is synchronous and not safe for concurrent use; callers
//     serialize access (see store.Store.Update).
//   - Randomness comes from an injected dice.Roller.
//   - Animation and reveal timing belong to the presentation layer.
package game

import (
	"github.com/google/uuid"

	"github.com/robalobadob/diceguess/internal/dice"
)

// Game is one player's dice guessing game.
type Game struct {
	ID    string // unique game identifier
	Mode  Mode   // classic or daily
	Round int    // incremented on every Reset, starts at 1
	Rules Rules

	score     int
	rollCount int
	dieFace   int
	selected  int // 0 when nothing is selected
	history   []RollRecord
	over      bool

	roller dice.Roller
}

// New constructs a game in its initial state.
// A nil roller falls back to dice.Crypto; zero rule fields fall back to the defaults.
func New(mode Mode, rules Rules, roller dice.Roller) *Game {
	if roller == nil {
		roller = dice.Crypto{}
	}
	if rules.MaxPoints <= 0 {
		rules.MaxPoints = MaxPoints
	}
	if rules.MaxRolls <= 0 {
		rules.MaxRolls = MaxRolls
	}
	if mode == "" {
		mode = ModeClassic
	}
	g := &Game{
		ID:     uuid.NewString(),
		Mode:   mode,
		Round:  1,
		Rules:  rules,
		roller: roller,
	}
	g.clear()
	return g
}

// SelectNumber records the player's guess for the next roll.
// Rejects numbers outside 1–6 and selections on a finished game.
func (g *Game) SelectNumber(n int) error {
	if g.over {
		return ErrGameFinished
	}
	if !dice.Valid(n) {
		return ErrOutOfRange
	}
	g.selected = n
	return nil
}

// ApplyRoll resolves one roll against the current selection.
//
// A roll on a finished game is ignored (Outcome.Applied == false, nil error).
// A roll without a selection fails with ErrNoSelection and changes nothing.
//
// On success the selection is always cleared and the game ends once the
// score reaches Rules.MaxPoints or the roll count reaches Rules.MaxRolls.
func (g *Game) ApplyRoll() (Outcome, error) {
	if g.over {
		return Outcome{}, nil
	}
	if g.selected == 0 {
		return Outcome{}, ErrNoSelection
	}

	rolled := g.roller.Roll()
	points := MissPenalty
	if rolled == g.selected {
		points = rolled
	}

	g.score += points
	g.rollCount++
	rec := RollRecord{
		RollNumber: g.rollCount,
		Guessed:    g.selected,
		Rolled:     rolled,
		Points:     points,
	}
	g.history = append(g.history, rec)
	g.dieFace = rolled
	g.selected = 0

	if g.score >= g.Rules.MaxPoints || g.rollCount >= g.Rules.MaxRolls {
		g.over = true
	}
	return Outcome{Applied: true, Record: rec, Ended: g.over, Won: g.Won()}, nil
}

// Reset discards the current state and starts a new round.
func (g *Game) Reset() {
	g.clear()
	g.Round++
}

// clear puts the state fields back to their defaults.
func (g *Game) clear() {
	g.score = 0
	g.rollCount = 0
	g.dieFace = InitialDieFace
	g.selected = 0
	g.history = []RollRecord{}
	g.over = false
}

// Over reports whether the game has ended.
func (g *Game) Over() bool { return g.over }

// Won reports whether the game ended with the winning score.
func (g *Game) Won() bool { return g.over && g.score >= g.Rules.MaxPoints }

// Score returns the current score.
func (g *Game) Score() int { return g.score }

// Status reports the state machine position.
func (g *Game) Status() Status {
	switch {
	case !g.over:
		return StatusPlaying
	case g.Won():
		return StatusWon
	default:
		return StatusLost
	}
}

// Snapshot returns a copy of the state safe to hand to a renderer.
func (g *Game) Snapshot() State {
	var sel *int
	if g.selected != 0 {
		n := g.selected
		sel = &n
	}
	hist := make([]RollRecord, len(g.history))
	copy(hist, g.history)
	return State{
		Score:     g.score,
		RollCount: g.rollCount,
		DieFace:   g.dieFace,
		Selected:  sel,
		History:   hist,
		Over:      g.over,
		Status:    g.Status(),
		RollsLeft: g.Rules.MaxRolls - g.rollCount,
	}
}
