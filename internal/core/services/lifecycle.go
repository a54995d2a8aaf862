package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
)

func (s *EventService) PublishEvent(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return s.changeStatus(ctx, eventID, "publish", func(ev *domain.Event) error {
		return ev.Publish()
	})
}

// PostponeEvent closes registration until the event is published again.
func (s *EventService) PostponeEvent(ctx context.Context, eventID uuid.UUID, reason string) (*domain.Event, error) {
	return s.changeStatus(ctx, eventID, "postpone", func(ev *domain.Event) error {
		return ev.Postpone(reason)
	})
}

func (s *EventService) CancelEvent(ctx context.Context, eventID uuid.UUID, reason string) (*domain.Event, error) {
	return s.changeStatus(ctx, eventID, "cancel", func(ev *domain.Event) error {
		return ev.Cancel(reason)
	})
}

func (s *EventService) CompleteEvent(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return s.changeStatus(ctx, eventID, "complete", func(ev *domain.Event) error {
		return ev.Complete()
	})
}

func (s *EventService) ArchiveEvent(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return s.changeStatus(ctx, eventID, "archive", func(ev *domain.Event) error {
		return ev.Archive()
	})
}

func (s *EventService) changeStatus(ctx context.Context, eventID uuid.UUID, transition string, fn func(ev *domain.Event) error) (*domain.Event, error) {
	ev, err := s.mutate(ctx, eventID, fn)
	eventTransitionsTotal.WithLabelValues(transition, outcomeOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.log.Info("event status changed", "event_id", eventID, "transition", transition, "status", ev.Status)
	return ev, nil
}
