package apikey

import "context"

// Store persists API key records. FindByID returns sentinel.ErrNotFound for
// unknown IDs; Add returns sentinel.ErrConflict on duplicates.
type Store interface {
	Add(ctx context.Context, key Key) error
	FindByID(ctx context.Context, id string) (Key, error)
	Update(ctx context.Context, key Key) error
	List(ctx context.Context) ([]Key, error)
}
