// internal/game/types.go
//
// Core type definitions for the dice guessing engine.
// Defines:
//   - Rules: the two end-condition thresholds.
//   - RollRecord: immutable log entry for one resolved roll.
//   - State: read-only snapshot handed to the presentation layer.
//   - Outcome: what a single ApplyRoll did.
//   - ValidationError: the only recoverable engine error.

package game

const (
	MaxPoints      = 50 // winning score
	MaxRolls       = 10 // game ends after this many rolls
	InitialDieFace = 4  // face shown before the first roll
	MissPenalty    = -2 // points lost on a wrong guess
)

// Status is the coarse state machine position of a game.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Mode distinguishes free play from the seeded daily challenge.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeDaily   Mode = "daily"
)

// Rules holds the end-condition thresholds.
type Rules struct {
	MaxPoints int // score at or above which the game is won
	MaxRolls  int // roll count at which the game is over
}

// DefaultRules returns the standard 50 point / 10 roll rules.
func DefaultRules() Rules {
	return Rules{MaxPoints: MaxPoints, MaxRolls: MaxRolls}
}

// RollRecord is one entry of a game's roll history.
type RollRecord struct {
	RollNumber int `json:"rollNumber"` // 1-based, equals position in history
	Guessed    int `json:"guessed"`
	Rolled     int `json:"rolled"`
	Points     int `json:"points"` // Rolled on a match, MissPenalty otherwise
}

// Matched reports whether the guess hit the rolled face.
func (r RollRecord) Matched() bool { return r.Guessed == r.Rolled }

// State is a copy of a game's state for rendering.
type State struct {
	Score     int          `json:"score"`
	RollCount int          `json:"rollCount"`
	DieFace   int          `json:"dieFace"`
	Selected  *int         `json:"selected"` // nil when nothing is selected
	History   []RollRecord `json:"history"`
	Over      bool         `json:"over"`
	Status    Status       `json:"status"`
	RollsLeft int          `json:"rollsLeft"`
}

// Outcome describes the effect of one ApplyRoll call.
type Outcome struct {
	Applied bool       // false when the game was already over
	Record  RollRecord // zero when !Applied
	Ended   bool       // this roll finished the game
	Won     bool       // the game is over with score >= MaxPoints
}

// ValidationError rejects an intent without touching state.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

var (
	ErrNoSelection  = &ValidationError{Msg: "no number selected"}
	ErrOutOfRange   = &ValidationError{Msg: "number must be between 1 and 6"}
	ErrGameFinished = &ValidationError{Msg: "game is over"}
)
