package policy

import "context"

// Store persists the single settings document. Load returns
// sentinel.ErrNotFound when no document has been saved yet; the service turns
// that into the defaults.
type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, settings Settings) error
}
