package checkins

import (
	"context"
	"sync"
)

// PoolLockKey is the session flag set while a pool check-in is open.
const PoolLockKey = "pool_locked"

// FlagStore is a per-session boolean store.
type FlagStore interface {
	Get(ctx context.Context, sessionID, key string) (bool, error)
	Set(ctx context.Context, sessionID, key string, v bool) error
	// Clear unsets the flag and reports whether it was set. Only one of
	// several concurrent callers sees true.
	Clear(ctx context.Context, sessionID, key string) (bool, error)
}

// MemoryFlagStore is a process-local FlagStore for tests and single-node dev runs.
type MemoryFlagStore struct {
	mu    sync.Mutex
	flags map[string]bool
}

func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{flags: make(map[string]bool)}
}

func (m *MemoryFlagStore) Get(_ context.Context, sessionID, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[sessionID+"|"+key], nil
}

func (m *MemoryFlagStore) Set(_ context.Context, sessionID, key string, v bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v {
		m.flags[sessionID+"|"+key] = true
	} else {
		delete(m.flags, sessionID+"|"+key)
	}
	return nil
}

func (m *MemoryFlagStore) Clear(_ context.Context, sessionID, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := sessionID + "|" + key
	was := m.flags[k]
	delete(m.flags, k)
	return was, nil
}
