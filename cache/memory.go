package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memItem struct {
	v       []byte
	expires time.Time
}

// MemoryStore is an in-process cache holding at most a fixed number of entries.
// The least recently used entry is replaced when the store is full.
type MemoryStore struct {
	items *lru.Cache[string, memItem]
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	items, err := lru.New[string, memItem](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &MemoryStore{items: items}, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	it, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !it.expires.IsZero() && time.Now().After(it.expires) {
		s.items.Remove(key)
		return nil, false, nil
	}
	return clone(it.v), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	it := memItem{v: clone(value)}
	if ttl > 0 {
		it.expires = time.Now().Add(ttl)
	}
	s.items.Add(key, it)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.items.Remove(key)
	return nil
}

// Len reports the number of cached entries, expired ones included.
func (s *MemoryStore) Len() int {
	return s.items.Len()
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
