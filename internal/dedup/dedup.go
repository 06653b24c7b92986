// Package dedup guards the webhook against redelivered updates.
package dedup

import (
	"context"
	"sync"
)

// Store records update identifiers that have already been handled.
//
// Exact-once semantics across multiple instances require a shared
// backing store (see Redis); the in-memory set covers single-instance
// deployments only.
type Store interface {
	// Seen marks the update as processed and reports whether it had
	// been processed before. The mark and the check are atomic, so a
	// redelivered update short-circuits even if it races the original.
	Seen(ctx context.Context, updateID int) (bool, error)
	Close() error
}

// Memory is a process-lifetime set of update identifiers. It grows
// without bound and is lost on restart.
type Memory struct {
	mu  sync.Mutex
	ids map[int]struct{}
}

func NewMemory() *Memory {
	return &Memory{ids: make(map[int]struct{})}
}

func (m *Memory) Seen(_ context.Context, updateID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[updateID]; ok {
		return true, nil
	}
	m.ids[updateID] = struct{}{}
	return false, nil
}

func (m *Memory) Close() error {
	return nil
}
