package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/wordchain/apps/go-server/internal/chain"
	"github.com/robalobadob/wordchain/apps/go-server/internal/game"
	"github.com/robalobadob/wordchain/apps/go-server/internal/scoring"
	"github.com/robalobadob/wordchain/apps/go-server/internal/words"
)

func newSession(t *testing.T) *game.Session {
	t.Helper()
	v := chain.New(words.Build([]string{"lemon", "onset", "etcher"}))
	s, err := game.New(v, scoring.DefaultConfig(), scoring.ModeEndless, "lemon", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	s := newSession(t)

	if _, err := m.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Save: %v", err)
	}
	if err := m.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %p, %v", got, err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d", m.Len())
	}
	if err := m.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Errorf("Len after delete = %d", m.Len())
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := m.Save(cancelled, s); !errors.Is(err, context.Canceled) {
		t.Errorf("Save with cancelled ctx: %v", err)
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	old, fresh := newSession(t), newSession(t)
	_ = m.Save(ctx, old)
	now = now.Add(time.Hour)
	_ = m.Save(ctx, fresh)

	if n := m.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, err := m.Get(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Error("stale session kept")
	}
	if _, err := m.Get(ctx, fresh.ID); err != nil {
		t.Error("fresh session dropped")
	}
}

func TestSweepKeepsActiveSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	active, idle := newSession(t), newSession(t)
	_ = m.Save(ctx, active)
	_ = m.Save(ctx, idle)

	// The player keeps playing every ten minutes for an hour.
	for range 6 {
		now = now.Add(10 * time.Minute)
		if _, err := m.Get(ctx, active.ID); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}

	if n := m.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, err := m.Get(ctx, active.ID); err != nil {
		t.Error("active session swept")
	}
	if _, err := m.Get(ctx, idle.ID); !errors.Is(err, ErrNotFound) {
		t.Error("idle session kept")
	}
}
