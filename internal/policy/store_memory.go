package policy

import (
	"context"
	"sync"

	"idverify/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	settings *Settings
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load(_ context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return Settings{}, sentinel.ErrNotFound
	}
	return *s.settings, nil
}

func (s *InMemoryStore) Save(_ context.Context, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}
