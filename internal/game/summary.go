// internal/game/summary.go
//
// Aggregates over a roll history for the end-of-game panel.

package game

import "github.com/samber/lo"

// Summary aggregates a roll history for the end-of-game panel.
type Summary struct {
	Rolls      int `json:"rolls"`
	Hits       int `json:"hits"`
	Misses     int `json:"misses"`
	PointsWon  int `json:"pointsWon"`
	PointsLost int `json:"pointsLost"` // positive number of points lost to misses
	Net        int `json:"net"`
}

// Summarize folds a history into a Summary.
func Summarize(history []RollRecord) Summary {
	hits, misses := lo.FilterReject(history, func(r RollRecord, _ int) bool {
		return r.Matched()
	})
	won := lo.SumBy(hits, func(r RollRecord) int { return r.Points })
	lost := -lo.SumBy(misses, func(r RollRecord) int { return r.Points })
	return Summary{
		Rolls:      len(history),
		Hits:       len(hits),
		Misses:     len(misses),
		PointsWon:  won,
		PointsLost: lost,
		Net:        won - lost,
	}
}
