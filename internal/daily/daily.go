// internal/daily/daily.go
//
// Daily challenge seeding.
// Every player rolls the same sequence of faces on a given UTC date, and one
// result per player per day goes on the leaderboard (see store.go).

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/diceguess/internal/dice"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic seed for a date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as a big-endian uint64
	return binary.BigEndian.Uint64(sum[:8])
}

// Roller returns the die for a date; a fresh Roller always starts the day's
// sequence from the first face.
func Roller(date time.Time, salt string) dice.Roller {
	return dice.NewSeeded(Seed(date, salt))
}
