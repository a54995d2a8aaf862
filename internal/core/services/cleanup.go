package services

import (
	"context"
	"time"

	"github.com/srgjo27/community_ticket/internal/core/domain"
)

// RunBackgroundCleanup cancels abandoned checkouts every interval until ctx
// is done.
func (s *EventService) RunBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("checkout cleanup worker started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("checkout cleanup worker stopped")
			return
		case <-ticker.C:
			s.ExpireStaleCheckouts(ctx)
		}
	}
}

// ExpireStaleCheckouts cancels preliminary registrations whose checkout
// window has closed and returns how many were cancelled. Events that fail are
// logged and retried on the next run.
func (s *EventService) ExpireStaleCheckouts(ctx context.Context) int {
	now := s.now()
	ids, err := s.events.ListEventsWithExpiredCheckouts(ctx, now, s.batchSize)
	if err != nil {
		s.log.Error("failed to fetch events with expired checkouts", "error", err)
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	s.log.Info("expiring stale checkouts", "events", len(ids))

	total := 0
	for _, id := range ids {
		expired := 0
		_, err := s.mutate(ctx, id, func(ev *domain.Event) error {
			if expired = ev.ExpireCheckouts(now); expired == 0 {
				return errUnchanged
			}
			return nil
		})
		if err != nil {
			s.log.Warn("failed to expire checkouts", "event_id", id, "error", err)
			continue
		}
		if expired == 0 {
			continue
		}
		total += expired
		checkoutsExpiredTotal.Add(float64(expired))
		s.log.Info("checkouts expired and seats released", "event_id", id, "count", expired)
	}
	return total
}
