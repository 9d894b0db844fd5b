// apps/go-server/internal/store/memory.go
//
// In-memory session store for running word-chain games.
//
// Characteristics:
//   - Stores *game.Session keyed by ID.
//   - Concurrency-safe via RWMutex; sessions guard their own state.
//   - State is lost when the process restarts.
//   - Save and Get both count as activity; Sweep drops sessions idle for
//     longer than a TTL.

package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robalobadob/wordchain/apps/go-server/internal/game"
)

var ErrNotFound = errors.New("session not found")

// Store holds live game sessions.
type Store interface {
	Save(ctx context.Context, s *game.Session) error
	Get(ctx context.Context, id string) (*game.Session, error)
	Delete(ctx context.Context, id string) error
	Len() int
}

type entry struct {
	s       *game.Session
	touched atomic.Int64 // unix nanos of the last Save or Get
}

// Memory is the map-backed Store.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{sessions: make(map[string]*entry), now: time.Now}
}

// Save adds or refreshes a session.
func (m *Memory) Save(ctx context.Context, s *game.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &entry{s: s}
	e.touched.Store(m.now().UnixNano())
	m.sessions[s.ID] = e
	return nil
}

// Get looks up a session by ID and marks it active.
func (m *Memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		e.touched.Store(m.now().UnixNano())
		return e.s, nil
	}
	return nil, ErrNotFound
}

// Delete removes a session. Missing IDs are not an error.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len is the number of stored sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions not saved within ttl and returns how many went.
func (m *Memory) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl).UnixNano()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.touched.Load() < cutoff {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, every, ttl time.Duration, onSweep func(n int)) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(ttl); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
