package session

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically reclaims expired sessions. It is space hygiene only;
// expiry is always decided against the wall clock at read time.
type Sweeper struct {
	service  *Service
	logger   *slog.Logger
	interval time.Duration
}

func NewSweeper(service *Service, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, logger: logger, interval: interval}
}

// Run sweeps on a ticker until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.service.Sweep(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.InfoContext(ctx, "expired sessions reclaimed", "count", removed)
			}
		}
	}
}
