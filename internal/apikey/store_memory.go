package apikey

import (
	"context"
	"sync"

	"idverify/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu   sync.RWMutex
	keys map[string]Key
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{keys: make(map[string]Key)}
}

func (s *InMemoryStore) Add(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.keys[key.ID]; exists {
		return sentinel.ErrConflict
	}
	s.keys[key.ID] = key
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[id]
	if !ok {
		return Key{}, sentinel.ErrNotFound
	}
	return key, nil
}

func (s *InMemoryStore) Update(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.keys[key.ID] = key
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Key, 0, len(s.keys))
	for _, key := range s.keys {
		out = append(out, key)
	}
	return out, nil
}
