// Package presence tracks which users were recently active and pushes the
// online list to connected websocket clients.
package presence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Tracker interface {
	Touch(ctx context.Context, userID uuid.UUID) error
	Online(ctx context.Context) ([]uuid.UUID, error)
	// Sweep forgets users whose last activity is older than the window.
	Sweep(ctx context.Context) error
}

type MemoryTracker struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[uuid.UUID]time.Time
}

func NewMemoryTracker(window time.Duration) *MemoryTracker {
	return &MemoryTracker{
		window: window,
		now:    time.Now,
		seen:   make(map[uuid.UUID]time.Time),
	}
}

func (m *MemoryTracker) Touch(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[userID] = m.now()
	return nil
}

func (m *MemoryTracker) Online(_ context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.window)
	out := make([]uuid.UUID, 0, len(m.seen))
	for id, at := range m.seen {
		if at.After(cutoff) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (m *MemoryTracker) Sweep(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.window)
	for id, at := range m.seen {
		if !at.After(cutoff) {
			delete(m.seen, id)
		}
	}
	return nil
}
