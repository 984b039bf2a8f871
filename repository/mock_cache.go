package repository

import (
	"context"
	"sync"
	"time"
)

// MockCache is an in-process CacheRepository. Entries never expire; the
// ttl argument is recorded for inspection in tests.
type MockCache struct {
	mu      sync.RWMutex
	Data    map[string]string
	LastTTL time.Duration
}

func NewMockCache() *MockCache {
	return &MockCache{
		Data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
	m.LastTTL = ttl
	return nil
}
