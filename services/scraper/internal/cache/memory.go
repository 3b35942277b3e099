package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// memoryStore is a development-only in-memory cache with per-entry expiry
// and optional NATS key-level invalidation.
// WARNING: not suitable for production — state is lost on restart and
// does not work across multiple instances.
type memoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
}

type memoryItem struct {
	payload   []byte
	expiresAt time.Time
}

func newMemoryStore(ttl time.Duration, nc *nats.Conn, subj string) *memoryStore {
	if ttl <= 0 {
		ttl = time.Minute
	}
	s := &memoryStore{
		items: make(map[string]memoryItem),
		ttl:   ttl,
	}
	if nc != nil && subj != "" {
		_, _ = nc.Subscribe(subj, func(m *nats.Msg) {
			key := string(m.Data)
			s.mu.Lock()
			defer s.mu.Unlock()
			if key == "" || strings.EqualFold(key, "ALL") {
				s.items = make(map[string]memoryItem)
				return
			}
			delete(s.items, key)
		})
	}
	return s
}

func (s *memoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(it.expiresAt) {
		s.mu.Lock()
		if cur, ok2 := s.items[key]; ok2 && time.Now().After(cur.expiresAt) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(it.payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items[key] = memoryItem{payload: b, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Purge(_ context.Context) error {
	s.mu.Lock()
	s.items = make(map[string]memoryItem)
	s.mu.Unlock()
	return nil
}
