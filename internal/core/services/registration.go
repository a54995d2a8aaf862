package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
)

// Register signs a user up. A capacity error means the caller should offer
// the waiting list.
func (s *EventService) Register(ctx context.Context, eventID uuid.UUID, req domain.RegistrationRequest) (*domain.Registration, error) {
	var reg *domain.Registration
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		var err error
		reg, err = ev.Register(req)
		return err
	})
	registrationsTotal.WithLabelValues(outcomeOf(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			s.log.Error("event pricing is misconfigured", "event_id", eventID, "error", err)
		}
		return nil, err
	}

	s.log.Info("registration created",
		"event_id", eventID,
		"registration_id", reg.ID,
		"quantity", reg.Quantity,
		"status", reg.Status,
	)
	return reg, nil
}

func (s *EventService) CancelRegistration(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		return ev.CancelRegistration(userID)
	})
	if err != nil {
		return err
	}
	s.log.Info("registration cancelled", "event_id", eventID, "user_id", userID)
	return nil
}

func (s *EventService) GetRegistration(ctx context.Context, registrationID uuid.UUID) (*domain.Registration, error) {
	eventID, err := s.events.EventIDForRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	reg, ok := ev.Registration(registrationID)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return reg, nil
}

func (s *EventService) SetCheckoutSession(ctx context.Context, registrationID uuid.UUID, sessionID string) (*domain.Registration, error) {
	return s.mutateRegistration(ctx, registrationID, func(_ *domain.Event, reg *domain.Registration) error {
		return reg.SetCheckoutSession(sessionID)
	})
}

// CompletePayment is called once the gateway captured the charge.
func (s *EventService) CompletePayment(ctx context.Context, registrationID uuid.UUID, paymentIntentID string) (*domain.Registration, error) {
	reg, err := s.mutateRegistration(ctx, registrationID, func(_ *domain.Event, reg *domain.Registration) error {
		return reg.CompletePayment(paymentIntentID)
	})
	paymentTransitionsTotal.WithLabelValues("complete", outcomeOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.log.Info("payment completed", "registration_id", registrationID, "payment_intent_id", paymentIntentID)
	return reg, nil
}

// FailPayment is called when the gateway declined the charge. The seats go
// back on sale and the head of the waiting list is told.
func (s *EventService) FailPayment(ctx context.Context, registrationID uuid.UUID, reason string) (*domain.Registration, error) {
	reg, err := s.mutateRegistration(ctx, registrationID, func(ev *domain.Event, _ *domain.Registration) error {
		return ev.FailPayment(registrationID, reason)
	})
	paymentTransitionsTotal.WithLabelValues("fail", outcomeOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.log.Info("payment failed", "registration_id", registrationID, "reason", reason)
	return reg, nil
}

func (s *EventService) RequestRefund(ctx context.Context, registrationID uuid.UUID) (*domain.Registration, error) {
	reg, err := s.mutateRegistration(ctx, registrationID, func(_ *domain.Event, reg *domain.Registration) error {
		return reg.RequestRefund()
	})
	refundTransitionsTotal.WithLabelValues("request", outcomeOf(err)).Inc()
	return reg, err
}

func (s *EventService) WithdrawRefundRequest(ctx context.Context, registrationID uuid.UUID) (*domain.Registration, error) {
	reg, err := s.mutateRegistration(ctx, registrationID, func(_ *domain.Event, reg *domain.Registration) error {
		return reg.WithdrawRefundRequest()
	})
	refundTransitionsTotal.WithLabelValues("withdraw", outcomeOf(err)).Inc()
	return reg, err
}

// CompleteRefund records the gateway refund. Replays of the same webhook get
// a state conflict and change nothing.
func (s *EventService) CompleteRefund(ctx context.Context, registrationID uuid.UUID, stripeRefundID string) (*domain.Registration, error) {
	reg, err := s.mutateRegistration(ctx, registrationID, func(_ *domain.Event, reg *domain.Registration) error {
		return reg.CompleteRefund(stripeRefundID)
	})
	refundTransitionsTotal.WithLabelValues("complete", outcomeOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.log.Info("refund completed", "registration_id", registrationID, "stripe_refund_id", stripeRefundID)
	return reg, nil
}

func (s *EventService) UpdateRegistrationDetails(ctx context.Context, registrationID uuid.UUID, attendees []domain.AttendeeDetails, contact *domain.Contact) (*domain.Registration, error) {
	return s.mutateRegistration(ctx, registrationID, func(ev *domain.Event, _ *domain.Registration) error {
		return ev.UpdateRegistrationDetails(registrationID, attendees, contact)
	})
}
