package session

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Entries idle for longer than ttl are evicted
// by the go-cache janitor.
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemoryStore creates a store; ttl <= 0 keeps sessions until they are cleared.
func NewMemoryStore(ttl, cleanup time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &MemoryStore{cache: cache.New(ttl, cleanup), ttl: ttl}
}

func memoryKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, bool, error) {
	v, ok := m.cache.Get(memoryKey(userID))
	if !ok {
		return nil, false, nil
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, false, nil
	}
	return s.Clone(), true, nil
}

func (m *MemoryStore) Put(_ context.Context, userID int64, s *Session) error {
	m.cache.Set(memoryKey(userID), s.Clone(), m.ttl)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID int64) error {
	m.cache.Delete(memoryKey(userID))
	return nil
}

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}

func (m *MemoryStore) Close() error {
	m.cache.Flush()
	return nil
}
