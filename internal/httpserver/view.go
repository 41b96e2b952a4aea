// internal/httpserver/view.go
//
// JSON rendering of game state: snapshot fields plus the messages and reveal
// timings the client needs to present a roll.

package httpserver

import (
	"github.com/robalobadob/diceguess/internal/game"
	"github.com/robalobadob/diceguess/internal/store"
)

// Messages shown by the client.
const (
	msgWin         = "You Win!"
	msgLose        = "Game Over!"
	msgNoSelection = "You have not selected any number"
)

// reveal tells the client how long to animate the die and flash the result.
// The engine has already applied the roll by the time the client sees it.
type reveal struct {
	RollMs  int64 `json:"rollMs"`
	FlashMs int64 `json:"flashMs"`
}

// stateView is the JSON rendering of one game.
type stateView struct {
	GameID string    `json:"gameId"`
	Mode   game.Mode `json:"mode"`
	Round  int       `json:"round"`
	game.State
	Win     bool          `json:"win"`
	Message string        `json:"message,omitempty"`
	Summary *game.Summary `json:"summary,omitempty"` // set once the game is over
	Reveal  reveal        `json:"reveal"`
}

func (s *Server) view(snap store.Snapshot) stateView {
	v := stateView{
		GameID: snap.ID,
		Mode:   snap.Mode,
		Round:  snap.Round,
		State:  snap.State,
		Win:    snap.State.Status == game.StatusWon,
		Reveal: reveal{
			RollMs:  s.cfg.RollAnimation.Milliseconds(),
			FlashMs: s.cfg.ResultFlash.Milliseconds(),
		},
	}
	if v.History == nil {
		v.History = []game.RollRecord{}
	}
	if snap.State.Over {
		sum := game.Summarize(snap.State.History)
		v.Summary = &sum
		v.Message = msgLose
		if v.Win {
			v.Message = msgWin
		}
	}
	return v
}
