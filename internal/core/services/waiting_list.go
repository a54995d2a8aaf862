package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
)

// JoinWaitingList queues a user on a full event and returns their position.
func (s *EventService) JoinWaitingList(ctx context.Context, eventID, userID uuid.UUID) (int, error) {
	var position int
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		if err := ev.AddToWaitingList(userID); err != nil {
			return err
		}
		position = ev.GetWaitingListPosition(userID)
		return nil
	})
	waitingListOpsTotal.WithLabelValues("join", outcomeOf(err)).Inc()
	if err != nil {
		return 0, err
	}
	s.log.Info("user joined waiting list", "event_id", eventID, "user_id", userID, "position", position)
	return position, nil
}

func (s *EventService) LeaveWaitingList(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		return ev.RemoveFromWaitingList(userID)
	})
	waitingListOpsTotal.WithLabelValues("leave", outcomeOf(err)).Inc()
	return err
}

// WaitingListPosition returns the 1-based position of the user, or 0 when
// the user is not waiting.
func (s *EventService) WaitingListPosition(ctx context.Context, eventID, userID uuid.UUID) (int, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return ev.GetWaitingListPosition(userID), nil
}

// PromoteFromWaitingList registers a waiting user who accepted a freed spot.
func (s *EventService) PromoteFromWaitingList(ctx context.Context, eventID uuid.UUID, req domain.RegistrationRequest) (*domain.Registration, error) {
	var reg *domain.Registration
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		var err error
		reg, err = ev.PromoteFromWaitingList(req)
		return err
	})
	waitingListOpsTotal.WithLabelValues("promote", outcomeOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.log.Info("user promoted from waiting list", "event_id", eventID, "user_id", req.UserID, "registration_id", reg.ID)
	return reg, nil
}
