package session

import (
	"context"
	"time"
)

// Store persists sessions by ID. Implementations return
// sentinel.ErrNotFound for unknown IDs and sentinel.ErrConflict when Create
// sees a duplicate ID.
type Store interface {
	Create(ctx context.Context, s Session) error
	FindByID(ctx context.Context, id string) (Session, error)

	// Mutate applies fn to the stored session as one atomic
	// read-modify-write. fn sees a copy; the store persists it only when fn
	// returns nil. Two concurrent Mutate calls on the same ID never
	// interleave.
	Mutate(ctx context.Context, id string, fn func(*Session) error) (Session, error)

	Delete(ctx context.Context, id string) error

	// DeleteExpired removes sessions past their deadline. It is space
	// hygiene only; expiry semantics never depend on it having run.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// All returns every stored session, for statistics.
	All(ctx context.Context) ([]Session, error)
}
