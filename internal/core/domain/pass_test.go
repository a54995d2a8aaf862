package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventWithPass(t *testing.T, stock int) (*domain.Event, *domain.EventPass) {
	t.Helper()
	ev := newEvent(t, 50, nil)
	pass, err := domain.NewEventPass("Food pass", "Lunch and dinner", usd("15"), stock)
	require.NoError(t, err)
	require.NoError(t, ev.AddPass(pass))
	ev.PullDomainEvents()
	return ev, pass
}

func TestNewEventPass_Validation(t *testing.T) {
	_, err := domain.NewEventPass("", "", usd("1"), 0)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, domain.Messages(err), 2)
}

func TestPurchasePass_ReservesStock(t *testing.T) {
	ev, pass := eventWithPass(t, 3)

	purchase, err := ev.PurchasePass(uuid.New(), pass.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.PassPurchasePending, purchase.Status)
	assert.True(t, purchase.TotalPrice.Equal(usd("30")))
	assert.Len(t, purchase.QRCode, 32)
	assert.Equal(t, 1, pass.AvailableQuantity())

	_, err = ev.PurchasePass(uuid.New(), pass.ID, 2)
	require.ErrorIs(t, err, domain.ErrCapacity)
	assert.Contains(t, err.Error(), "Insufficient passes available")
	assert.Equal(t, 1, pass.AvailableQuantity())
}

func TestPassPurchase_ConfirmAndCancel(t *testing.T) {
	ev, pass := eventWithPass(t, 3)
	purchase, err := ev.PurchasePass(uuid.New(), pass.ID, 2)
	require.NoError(t, err)

	require.NoError(t, ev.ConfirmPassPurchase(purchase.ID))
	assert.ErrorIs(t, ev.ConfirmPassPurchase(purchase.ID), domain.ErrStateConflict)

	require.NoError(t, ev.CancelPassPurchase(purchase.ID))
	assert.Equal(t, domain.PassPurchaseCancelled, purchase.Status)
	assert.Equal(t, 3, pass.AvailableQuantity())
	assert.ErrorIs(t, ev.CancelPassPurchase(purchase.ID), domain.ErrStateConflict)
	assert.Equal(t, 3, pass.AvailableQuantity())

	assert.Equal(t, []string{"pass.purchased", "pass.cancelled"}, eventNames(ev.PullDomainEvents()))
}

func TestEventPasses_NamesAndRemoval(t *testing.T) {
	ev, pass := eventWithPass(t, 2)

	dup, err := domain.NewEventPass("FOOD PASS", "", usd("10"), 1)
	require.NoError(t, err)
	assert.ErrorIs(t, ev.AddPass(dup), domain.ErrStateConflict)

	purchase, err := ev.PurchasePass(uuid.New(), pass.ID, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, ev.RemovePass(pass.ID), domain.ErrStateConflict)

	require.NoError(t, ev.CancelPassPurchase(purchase.ID))
	require.NoError(t, ev.RemovePass(pass.ID))
	_, ok := ev.Pass(pass.ID)
	assert.False(t, ok)
}

func TestPullDomainEvents_DrainsEverything(t *testing.T) {
	ev, pass := eventWithPass(t, 5)
	reg, err := ev.Register(request(uuid.New(), 1))
	require.NoError(t, err)
	list, err := domain.NewSignUpList("Food", "", domain.SignUpOpen)
	require.NoError(t, err)
	require.NoError(t, ev.AddSignUpList(list))
	require.NoError(t, list.AddCommitment(reg.UserID, "Bread", 1))
	purchase, err := ev.PurchasePass(reg.UserID, pass.ID, 1)
	require.NoError(t, err)
	require.NoError(t, ev.ConfirmPassPurchase(purchase.ID))

	first := ev.PullDomainEvents()
	assert.Equal(t, []string{
		"registration.created",
		"signup.list_added",
		"signup.committed",
		"pass.purchased",
	}, eventNames(first))

	assert.Empty(t, ev.PullDomainEvents())
	assert.Empty(t, reg.DomainEvents())
}
