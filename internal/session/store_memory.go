package session

import (
	"context"
	"sync"
	"time"

	"idverify/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in a map. Suitable for single-instance
// deployments and tests; distributed deployments use the Redis store.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]Session)}
}

func (s *InMemoryStore) Create(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return Session{}, sentinel.ErrNotFound
	}
	return session, nil
}

func (s *InMemoryStore) Mutate(_ context.Context, id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, sentinel.ErrNotFound
	}

	// fn works on a copy; the map is only updated on success.
	if err := fn(&session); err != nil {
		return Session{}, err
	}
	s.sessions[id] = session
	return session, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.ExpiredAt(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemoryStore) All(_ context.Context) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out, nil
}
