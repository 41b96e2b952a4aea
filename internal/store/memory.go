// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds the live engine state of every active game session.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map, each with its owner.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update runs the mutation while holding the write lock, so one game is
//     never touched by two requests at once.
//   - Sweep drops games that have not been touched for a while.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/diceguess/internal/game"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("not found")

// Entry is a stored game plus the identity that owns it.
type Entry struct {
	Game  *game.Game
	Owner string // user ID or anonymous ID
}

// Snapshot is a copy of a stored game taken under the store lock.
type Snapshot struct {
	ID    string
	Mode  game.Mode
	Round int
	Owner string
	State game.State
}

// Store defines the session interface for live games.
type Store interface {
	// Save persists or updates a game and its owner.
	Save(ctx context.Context, e Entry) error

	// Get returns a snapshot of the game and its owner.
	Get(ctx context.Context, id string) (Snapshot, error)

	// Update runs fn with exclusive access to the stored game.
	// The error from fn is returned unchanged.
	Update(ctx context.Context, id string, fn func(e Entry) error) error

	// Sweep drops games last touched before cutoff and returns their IDs.
	Sweep(ctx context.Context, cutoff time.Time) []string

	// Len reports how many games are held.
	Len() int
}

// item is an Entry plus its last access time.
type item struct {
	Entry
	touched time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex     // guards games map and the games in it
	games map[string]*item // keyed by Game.ID
	now   func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*item), now: time.Now}
}

// Save adds or updates the game in the map.
func (m *memory) Save(ctx context.Context, e Entry) error {
	if e.Game == nil {
		return errors.New("nil game")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[e.Game.ID] = &item{Entry: e, touched: m.now()}
	return nil
}

// Get looks up a game by ID.
func (m *memory) Get(ctx context.Context, id string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if it, ok := m.games[id]; ok {
		return SnapshotOf(it.Entry), nil
	}
	return Snapshot{}, ErrNotFound
}

// SnapshotOf copies an entry; call it only while holding access to the game
// (inside Update, or on a game no other goroutine can reach).
func SnapshotOf(e Entry) Snapshot {
	return Snapshot{
		ID:    e.Game.ID,
		Mode:  e.Game.Mode,
		Round: e.Game.Round,
		Owner: e.Owner,
		State: e.Game.Snapshot(),
	}
}

func (m *memory) Update(ctx context.Context, id string, fn func(e Entry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	it.touched = m.now()
	return fn(it.Entry)
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []string
	for id, it := range m.games {
		if it.touched.Before(cutoff) {
			delete(m.games, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
