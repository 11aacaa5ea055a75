package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"idverify/internal/policy/metrics"
	dErrors "idverify/pkg/domain-errors"
	"idverify/pkg/platform/sentinel"
	"idverify/pkg/requestcontext"
)

// Service loads and updates the policy settings. Loading never fails: when
// the store is empty or unreadable the defaults are served and the fallback
// is surfaced through the return flag, a warning log and a metric, so a
// misconfigured store cannot silently change judgements.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m}
}

// Load returns the active settings. usedFallback reports whether the defaults
// were served instead of a stored document.
func (s *Service) Load(ctx context.Context) (Settings, bool) {
	settings, err := s.store.Load(ctx)
	if err == nil {
		err = settings.Validate()
		if err == nil {
			return settings, false
		}
	}

	if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "settings unavailable, using defaults",
			"request_id", requestcontext.RequestID(ctx),
			"error", err)
	}
	s.metrics.IncrementFallback()
	return Default(), true
}

// Update applies a partial update over the current settings, validates the
// result and persists it. The stored metadata is restamped with the request
// time and acting principal.
func (s *Service) Update(ctx context.Context, partial Partial, updatedBy string) (Settings, error) {
	current, _ := s.Load(ctx)

	updated := current.Apply(partial, updatedBy, requestcontext.Now(ctx))
	if err := updated.Validate(); err != nil {
		return Settings{}, dErrors.New(dErrors.CodeInvalidInput, err.Error())
	}

	if err := s.store.Save(ctx, updated); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}

	s.metrics.IncrementWrite("update")
	s.logger.InfoContext(ctx, "settings updated",
		"request_id", requestcontext.RequestID(ctx),
		"updated_by", updatedBy)
	return updated, nil
}

// Reset discards any stored document and persists the defaults.
func (s *Service) Reset(ctx context.Context, updatedBy string) (Settings, error) {
	settings := Default()
	settings.Metadata.LastUpdated = requestcontext.Now(ctx)
	settings.Metadata.UpdatedBy = updatedBy

	if err := s.store.Save(ctx, settings); err != nil {
		return Settings{}, fmt.Errorf("reset settings: %w", err)
	}

	s.metrics.IncrementWrite("reset")
	s.logger.InfoContext(ctx, "settings reset to defaults",
		"request_id", requestcontext.RequestID(ctx),
		"updated_by", updatedBy)
	return settings, nil
}
