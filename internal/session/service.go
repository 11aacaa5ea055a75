package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"idverify/internal/session/metrics"
	dErrors "idverify/pkg/domain-errors"
	"idverify/pkg/platform/sentinel"
	"idverify/pkg/requestcontext"
)

// Service orchestrates the session lifecycle. Expiry is enforced lazily
// against the request clock on every read and write; the background sweeper
// only reclaims space.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	ttl     time.Duration
	baseURL string
}

func NewService(store Store, logger *slog.Logger, m *metrics.Metrics, ttl time.Duration, baseURL string) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
		ttl:     ttl,
		baseURL: baseURL,
	}
}

// Create starts a new pending session with an unguessable ID and the handoff
// URLs for both devices.
func (s *Service) Create(ctx context.Context) (Session, error) {
	now := requestcontext.Now(ctx)
	id := uuid.NewString()

	session := Session{
		ID:         id,
		Status:     StatusPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
		MobileURL:  fmt.Sprintf("%s/id-verify/mobile/%s", s.baseURL, id),
		DesktopURL: fmt.Sprintf("%s/id-verify/desktop/%s", s.baseURL, id),
	}

	if err := s.store.Create(ctx, session); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	s.metrics.IncrementLifecycle("created")
	s.logger.InfoContext(ctx, "session created",
		"request_id", requestcontext.RequestID(ctx),
		"expires_at", session.ExpiresAt)
	return session, nil
}

// Get returns the session, reporting expired for anything past its deadline.
// The stored status flip is persisted best-effort; the returned status is
// correct either way.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	session, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Session{}, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	now := requestcontext.Now(ctx)
	if session.Status != StatusExpired && session.ExpiredAt(now) {
		s.expireStored(ctx, id)
		session.Status = StatusExpired
	}
	return session, nil
}

// Claim moves a pending session to active when the participant device joins.
// The claiming device kind comes from the request context.
func (s *Service) Claim(ctx context.Context, id string) (Session, error) {
	now := requestcontext.Now(ctx)
	device := requestcontext.Device(ctx)

	session, err := s.store.Mutate(ctx, id, func(sess *Session) error {
		if sess.EffectiveStatus(now) == StatusExpired {
			return sentinel.ErrExpired
		}
		if sess.Status != StatusPending {
			return sentinel.ErrInvalidState
		}
		sess.Status = StatusActive
		sess.ClaimedBy = device
		return nil
	})
	if err != nil {
		return Session{}, s.translate(err, "claim")
	}

	s.metrics.IncrementLifecycle("claimed")
	s.metrics.IncrementClaim(string(device))
	s.logger.InfoContext(ctx, "session claimed",
		"request_id", requestcontext.RequestID(ctx),
		"device", device)
	return session, nil
}

// Update applies a status or result patch. Transitions are forward-only and
// a stored result is write-once. A write against an expired session returns
// the expired record with nothing else changed.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Session, error) {
	now := requestcontext.Now(ctx)

	if patch.Status != nil && !patch.Status.Valid() {
		return Session{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("unknown session status %q", *patch.Status))
	}

	completed := false
	session, err := s.store.Mutate(ctx, id, func(sess *Session) error {
		if sess.EffectiveStatus(now) == StatusExpired {
			// Persist the flip and drop the patch.
			sess.Status = StatusExpired
			return nil
		}

		if patch.Status != nil {
			if patch.Status.rank() < sess.Status.rank() {
				return dErrors.New(dErrors.CodeConflict,
					fmt.Sprintf("cannot transition session from %s to %s", sess.Status, *patch.Status))
			}
			sess.Status = *patch.Status
		}

		if patch.Result != nil {
			if sess.Result != nil {
				return dErrors.New(dErrors.CodeConflict, "session result already recorded")
			}
			sess.Result = patch.Result
			sess.Status = StatusCompleted
		}

		completed = sess.Status == StatusCompleted
		return nil
	})
	if err != nil {
		return Session{}, s.translate(err, "update")
	}

	if completed {
		s.metrics.IncrementLifecycle("completed")
	}
	return session, nil
}

// Complete records the final verification result on the session.
func (s *Service) Complete(ctx context.Context, id string, result Result) (Session, error) {
	return s.Update(ctx, id, Patch{Result: &result})
}

// Stats counts sessions per effective lifecycle state.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	sessions, err := s.store.All(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list sessions: %w", err)
	}

	now := requestcontext.Now(ctx)
	var stats Stats
	for _, session := range sessions {
		stats.Total++
		switch session.EffectiveStatus(now) {
		case StatusPending:
			stats.Pending++
		case StatusActive:
			stats.Active++
		case StatusCompleted:
			stats.Completed++
		case StatusExpired:
			stats.Expired++
		}
	}
	return stats, nil
}

// Sweep deletes sessions past their deadline and refreshes the live gauge.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.DeleteExpired(ctx, requestcontext.Now(ctx))
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	if removed > 0 {
		s.metrics.IncrementLifecycle("swept")
	}

	if stats, err := s.Stats(ctx); err == nil {
		s.metrics.SetActive(stats.Pending + stats.Active)
	}
	return removed, nil
}

// expireStored flips a stored session to expired. Failures are logged and
// ignored: the caller already reports expired from the wall clock.
func (s *Service) expireStored(ctx context.Context, id string) {
	_, err := s.store.Mutate(ctx, id, func(sess *Session) error {
		sess.Status = StatusExpired
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist session expiry",
			"request_id", requestcontext.RequestID(ctx),
			"error", err)
		return
	}
	s.metrics.IncrementLifecycle("expired")
}

func (s *Service) translate(err error, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeExpired, "session has expired")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeConflict, "session is not in a claimable state")
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("%s session: %w", op, err)
}
