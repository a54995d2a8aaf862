package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
)

// AddSignUpList attaches a sign-up list; a non-empty items list makes it
// predefined.
func (s *EventService) AddSignUpList(ctx context.Context, eventID uuid.UUID, category, description string, items []string) (*domain.SignUpList, error) {
	var (
		list *domain.SignUpList
		err  error
	)
	if len(items) > 0 {
		list, err = domain.NewSignUpListWithPredefinedItems(category, description, items)
	} else {
		list, err = domain.NewSignUpList(category, description, domain.SignUpOpen)
	}
	if err != nil {
		return nil, err
	}

	_, err = s.mutate(ctx, eventID, func(ev *domain.Event) error {
		return ev.AddSignUpList(list)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *EventService) RemoveSignUpList(ctx context.Context, eventID, listID uuid.UUID) error {
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		return ev.RemoveSignUpList(listID)
	})
	return err
}

func (s *EventService) CommitToSignUp(ctx context.Context, eventID, listID, userID uuid.UUID, item string, quantity int) error {
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		list, err := signUpList(ev, listID)
		if err != nil {
			return err
		}
		return list.AddCommitment(userID, item, quantity)
	})
	return err
}

func (s *EventService) CancelSignUpCommitment(ctx context.Context, eventID, listID, userID uuid.UUID) error {
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		list, err := signUpList(ev, listID)
		if err != nil {
			return err
		}
		return list.CancelCommitment(userID)
	})
	return err
}

func signUpList(ev *domain.Event, listID uuid.UUID) (*domain.SignUpList, error) {
	list, ok := ev.SignUpList(listID)
	if !ok {
		return nil, fmt.Errorf("sign-up list %s: %w", listID, ports.ErrNotFound)
	}
	return list, nil
}

func (s *EventService) AddPass(ctx context.Context, eventID uuid.UUID, name, description string, price domain.Money, quantity int) (*domain.EventPass, error) {
	pass, err := domain.NewEventPass(name, description, price, quantity)
	if err != nil {
		return nil, err
	}
	_, err = s.mutate(ctx, eventID, func(ev *domain.Event) error {
		return ev.AddPass(pass)
	})
	if err != nil {
		return nil, err
	}
	return pass, nil
}

func (s *EventService) RemovePass(ctx context.Context, eventID, passID uuid.UUID) error {
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		return ev.RemovePass(passID)
	})
	return err
}

func (s *EventService) PurchasePass(ctx context.Context, eventID, userID, passID uuid.UUID, quantity int) (*domain.PassPurchase, error) {
	var purchase *domain.PassPurchase
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		var err error
		purchase, err = ev.PurchasePass(userID, passID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("pass reserved", "event_id", eventID, "purchase_id", purchase.ID, "quantity", quantity)
	return purchase, nil
}

func (s *EventService) ConfirmPassPurchase(ctx context.Context, eventID, purchaseID uuid.UUID) error {
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		return ev.ConfirmPassPurchase(purchaseID)
	})
	return err
}

func (s *EventService) CancelPassPurchase(ctx context.Context, eventID, purchaseID uuid.UUID) error {
	_, err := s.mutate(ctx, eventID, func(ev *domain.Event) error {
		return ev.CancelPassPurchase(purchaseID)
	})
	return err
}
