// internal/dice/dice.go
//
// Randomness for the game engine.
// Provides:
//   - Roller: a uniform draw over the six faces of a die.
//   - Crypto: crypto/rand backed roller used for classic games.
//   - Seeded: deterministic PCG roller used for the daily challenge.
//   - Sequence: scripted faces for tests and replays.
//
// Every roller returns a value in [MinFace, MaxFace].

package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

const (
	MinFace = 1
	MaxFace = 6
	Faces   = MaxFace - MinFace + 1
)

// Roller draws one die face.
type Roller interface {
	Roll() int
}

// Valid reports whether face is a real die face.
func Valid(face int) bool { return face >= MinFace && face <= MaxFace }

// Crypto draws faces from crypto/rand.
type Crypto struct{}

// Roll returns a uniformly distributed face.
// If the system entropy source fails, it falls back to math/rand.
func (Crypto) Roll() int {
	n, err := rand.Int(rand.Reader, big.NewInt(Faces))
	if err != nil {
		return mrand.IntN(Faces) + MinFace
	}
	return int(n.Int64()) + MinFace
}

// Seeded is a deterministic roller: two Seeded rollers built from the same
// seed produce the same faces in the same order.
type Seeded struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeeded constructs a Seeded roller.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Roll returns the next face of the seeded stream.
func (s *Seeded) Roll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(Faces) + MinFace
}

// Sequence replays a fixed list of faces, wrapping around when exhausted.
// An empty Sequence always rolls MinFace.
type Sequence struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewSequence constructs a Sequence. Faces outside [MinFace, MaxFace] are
// clamped into range.
func NewSequence(faces ...int) *Sequence {
	out := make([]int, len(faces))
	for i, f := range faces {
		out[i] = min(max(f, MinFace), MaxFace)
	}
	return &Sequence{faces: out}
}

// Roll returns the next scripted face.
func (s *Sequence) Roll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.faces) == 0 {
		return MinFace
	}
	f := s.faces[s.next%len(s.faces)]
	s.next++
	return f
}

// Rolled reports how many faces have been drawn so far.
func (s *Sequence) Rolled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
