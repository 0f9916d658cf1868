package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is an in-process Cache. Expired entries are dropped lazily on
// read.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]entry), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return "", ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.items, key)
		return "", ErrCacheMiss
	}
	return e.value, nil
}

// Set stores value. A non-positive expiration keeps the entry until deleted.
func (m *MemoryCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: value}
	if expiration > 0 {
		e.expiresAt = m.now().Add(expiration)
	}
	m.items[key] = e
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryCache) Ping(context.Context) error { return nil }

// Len returns the number of stored entries, including expired ones not yet
// read.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
