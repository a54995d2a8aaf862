package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEvent returns a published event with no pending domain events.
func newEvent(t *testing.T, capacity int, pricing domain.TicketPricing) *domain.Event {
	t.Helper()
	ev, err := domain.NewEvent("Community picnic", uuid.New(), capacity, pricing)
	require.NoError(t, err)
	require.NoError(t, ev.Publish())
	ev.PullDomainEvents()
	return ev
}

func fullEvent(t *testing.T, capacity int) *domain.Event {
	t.Helper()
	ev := newEvent(t, capacity, nil)
	for i := 0; i < capacity; i++ {
		_, err := ev.Register(request(uuid.New(), 1))
		require.NoError(t, err)
	}
	ev.PullDomainEvents()
	return ev
}

func assertContiguous(t *testing.T, ev *domain.Event) {
	t.Helper()
	for i, w := range ev.WaitingList {
		assert.Equal(t, i+1, w.Position, "entry %d of %v", i, ev.WaitingList)
	}
}

func TestNewEvent_Validation(t *testing.T) {
	_, err := domain.NewEvent(" ", uuid.Nil, 0, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, domain.Messages(err), 3)
}

func TestRegister_FreeAndPaid(t *testing.T) {
	free := newEvent(t, 10, nil)
	reg, err := free.Register(request(uuid.New(), 2))
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationConfirmed, reg.Status)
	assert.True(t, reg.Price.IsZero())
	assert.Equal(t, 2, free.ActiveAttendeeCount())

	single, err := domain.NewSinglePrice(usd("12"))
	require.NoError(t, err)
	paid := newEvent(t, 10, single)
	reg, err = paid.Register(request(uuid.New(), 3))
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationPreliminary, reg.Status)
	assert.True(t, reg.Price.Equal(usd("36")))
	assert.Equal(t, []string{"registration.created"}, eventNames(paid.PullDomainEvents()))
}

func TestRegister_RejectsDuplicateUser(t *testing.T) {
	ev := newEvent(t, 10, nil)
	user := uuid.New()
	_, err := ev.Register(request(user, 1))
	require.NoError(t, err)

	_, err = ev.Register(request(user, 1))
	assert.ErrorIs(t, err, domain.ErrStateConflict)
	assert.Len(t, ev.Registrations, 1)
}

// Scenario: five single-seat registrations fill the event; the waiting list
// opens and a sixth attendee is turned away.
func TestWaitingList_OpensWhenFull(t *testing.T) {
	ev := fullEvent(t, 5)
	u1 := uuid.New()

	require.NoError(t, ev.AddToWaitingList(u1))
	assert.Equal(t, 1, ev.GetWaitingListPosition(u1))

	_, err := ev.Register(request(uuid.New(), 1))
	assert.ErrorIs(t, err, domain.ErrCapacity)
	assert.Equal(t, 5, ev.ActiveAttendeeCount())
}

func TestAddToWaitingList_Rules(t *testing.T) {
	open := newEvent(t, 3, nil)
	err := open.AddToWaitingList(uuid.New())
	require.ErrorIs(t, err, domain.ErrCapacity)
	assert.Contains(t, err.Error(), "Event still has available capacity")

	ev := fullEvent(t, 1)
	registered := ev.Registrations[0].UserID
	assert.ErrorIs(t, ev.AddToWaitingList(registered), domain.ErrStateConflict)

	u := uuid.New()
	require.NoError(t, ev.AddToWaitingList(u))
	assert.ErrorIs(t, ev.AddToWaitingList(u), domain.ErrStateConflict)
	assert.Len(t, ev.WaitingList, 1)
}

func TestRemoveFromWaitingList_Renumbers(t *testing.T) {
	ev := fullEvent(t, 1)
	u1, u2, u3 := uuid.New(), uuid.New(), uuid.New()
	for _, u := range []uuid.UUID{u1, u2, u3} {
		require.NoError(t, ev.AddToWaitingList(u))
	}

	require.NoError(t, ev.RemoveFromWaitingList(u2))

	require.Len(t, ev.WaitingList, 2)
	assert.Equal(t, u1, ev.WaitingList[0].UserID)
	assert.Equal(t, 1, ev.WaitingList[0].Position)
	assert.Equal(t, u3, ev.WaitingList[1].UserID)
	assert.Equal(t, 2, ev.WaitingList[1].Position)
	assert.Equal(t, 0, ev.GetWaitingListPosition(u2))

	assert.ErrorIs(t, ev.RemoveFromWaitingList(u2), domain.ErrStateConflict)
}

func TestCancelRegistration_NotifiesWaitingListHead(t *testing.T) {
	ev := fullEvent(t, 2)
	head, second := uuid.New(), uuid.New()
	require.NoError(t, ev.AddToWaitingList(head))
	require.NoError(t, ev.AddToWaitingList(second))
	ev.PullDomainEvents()

	require.NoError(t, ev.CancelRegistration(ev.Registrations[0].UserID))

	events := ev.PullDomainEvents()
	require.Equal(t, []string{"registration.cancelled", "waiting_list.spot_available"}, eventNames(events))
	spot := events[1].(domain.WaitingListSpotAvailableEvent)
	assert.Equal(t, head, spot.UserID)

	// notification only; nobody is promoted automatically
	assert.Len(t, ev.WaitingList, 2)
	assert.Equal(t, 1, ev.ActiveAttendeeCount())
}

func TestCancelRegistration_UnknownUser(t *testing.T) {
	ev := newEvent(t, 2, nil)
	assert.ErrorIs(t, ev.CancelRegistration(uuid.New()), domain.ErrStateConflict)
}

func TestPromoteFromWaitingList(t *testing.T) {
	ev := fullEvent(t, 2)
	u1, u2 := uuid.New(), uuid.New()
	require.NoError(t, ev.AddToWaitingList(u1))
	require.NoError(t, ev.AddToWaitingList(u2))

	_, err := ev.PromoteFromWaitingList(request(u1, 1))
	require.ErrorIs(t, err, domain.ErrCapacity)
	assert.Equal(t, 1, ev.GetWaitingListPosition(u1))

	require.NoError(t, ev.CancelRegistration(ev.Registrations[0].UserID))
	ev.PullDomainEvents()

	_, err = ev.PromoteFromWaitingList(request(uuid.New(), 1))
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	reg, err := ev.PromoteFromWaitingList(request(u1, 1))
	require.NoError(t, err)
	assert.Equal(t, u1, reg.UserID)
	assert.Equal(t, 0, ev.GetWaitingListPosition(u1))
	assert.Equal(t, 1, ev.GetWaitingListPosition(u2))
	assert.Equal(t, 2, ev.ActiveAttendeeCount())
	assert.Contains(t, eventNames(ev.PullDomainEvents()), "waiting_list.user_promoted")
}

func TestPromoteFromWaitingList_RestoresEntryOnFailure(t *testing.T) {
	ev := fullEvent(t, 1)
	u1, u2 := uuid.New(), uuid.New()
	require.NoError(t, ev.AddToWaitingList(u1))
	require.NoError(t, ev.AddToWaitingList(u2))
	require.NoError(t, ev.CancelRegistration(ev.Registrations[0].UserID))

	bad := request(u2, 1)
	bad.Contact = nil
	_, err := ev.PromoteFromWaitingList(bad)
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, 2, ev.GetWaitingListPosition(u2))
	assertContiguous(t, ev)
}

func TestRegister_RemovesUserFromWaitingList(t *testing.T) {
	ev := fullEvent(t, 1)
	u1, u2 := uuid.New(), uuid.New()
	require.NoError(t, ev.AddToWaitingList(u1))
	require.NoError(t, ev.AddToWaitingList(u2))
	require.NoError(t, ev.CancelRegistration(ev.Registrations[0].UserID))

	_, err := ev.Register(request(u2, 1))
	require.NoError(t, err)
	require.Len(t, ev.WaitingList, 1)
	assert.Equal(t, u1, ev.WaitingList[0].UserID)
	assertContiguous(t, ev)
}

func TestRefundRequestedStillHoldsSeats(t *testing.T) {
	single, err := domain.NewSinglePrice(usd("5"))
	require.NoError(t, err)
	ev := newEvent(t, 1, single)
	reg, err := ev.Register(request(uuid.New(), 1))
	require.NoError(t, err)
	require.NoError(t, reg.CompletePayment("pi_1"))
	require.NoError(t, reg.RequestRefund())

	assert.True(t, ev.IsAtCapacity())
	_, err = ev.Register(request(uuid.New(), 1))
	assert.ErrorIs(t, err, domain.ErrCapacity)

	require.NoError(t, reg.CompleteRefund("re_1"))
	assert.False(t, ev.IsAtCapacity())
}

func TestExpireCheckouts(t *testing.T) {
	single, err := domain.NewSinglePrice(usd("5"))
	require.NoError(t, err)
	ev := newEvent(t, 2, single)
	stale, err := ev.Register(request(uuid.New(), 1))
	require.NoError(t, err)
	paid, err := ev.Register(request(uuid.New(), 1))
	require.NoError(t, err)
	require.NoError(t, paid.CompletePayment("pi_1"))
	waiting := uuid.New()
	require.NoError(t, ev.AddToWaitingList(waiting))
	ev.PullDomainEvents()

	n := ev.ExpireCheckouts(time.Now().Add(domain.DefaultCheckoutWindow + time.Hour))

	assert.Equal(t, 1, n)
	assert.Equal(t, domain.RegistrationCancelled, stale.Status)
	assert.Equal(t, domain.RegistrationConfirmed, paid.Status)
	assert.Equal(t, []string{"registration.cancelled", "waiting_list.spot_available"}, eventNames(ev.PullDomainEvents()))
}

func TestUpdateRegistrationDetails_FreeGrowthChecksCapacity(t *testing.T) {
	ev := newEvent(t, 3, nil)
	reg, err := ev.Register(request(uuid.New(), 2))
	require.NoError(t, err)

	err = ev.UpdateRegistrationDetails(reg.ID, adults(4), contact())
	assert.ErrorIs(t, err, domain.ErrCapacity)
	assert.Equal(t, 2, reg.Quantity)

	require.NoError(t, ev.UpdateRegistrationDetails(reg.ID, adults(3), contact()))
	assert.Equal(t, 3, ev.ActiveAttendeeCount())
}

func TestUpdateCapacity(t *testing.T) {
	ev := fullEvent(t, 2)
	u := uuid.New()
	require.NoError(t, ev.AddToWaitingList(u))
	ev.PullDomainEvents()

	assert.ErrorIs(t, ev.UpdateCapacity(1), domain.ErrCapacity)
	assert.ErrorIs(t, ev.UpdateCapacity(0), domain.ErrValidation)

	require.NoError(t, ev.UpdateCapacity(3))
	assert.Equal(t, 3, ev.Capacity)
	assert.Equal(t, []string{"event.capacity_updated", "waiting_list.spot_available"}, eventNames(ev.PullDomainEvents()))
}

func TestSetPricingAndMakeFree(t *testing.T) {
	ev := newEvent(t, 5, nil)
	assert.True(t, ev.Free)
	assert.ErrorIs(t, ev.SetPricing(nil), domain.ErrValidation)

	single, err := domain.NewSinglePrice(usd("9"))
	require.NoError(t, err)
	require.NoError(t, ev.SetPricing(single))
	assert.False(t, ev.Free)

	ev.MakeFree()
	assert.True(t, ev.Free)
	assert.Nil(t, ev.Pricing)
}

func TestFailedOperationsRaiseNothing(t *testing.T) {
	ev := fullEvent(t, 1)

	_, _ = ev.Register(request(uuid.New(), 1))
	_ = ev.RemoveFromWaitingList(uuid.New())
	_ = ev.CancelRegistration(uuid.New())

	assert.Empty(t, ev.PullDomainEvents())
}

func TestCapacityInvariantUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ev := newEvent(t, 8, nil)
	users := make([]uuid.UUID, 12)
	for i := range users {
		users[i] = uuid.New()
	}

	for step := 0; step < 500; step++ {
		u := users[rng.Intn(len(users))]
		switch rng.Intn(5) {
		case 0:
			_, _ = ev.Register(request(u, 1+rng.Intn(3)))
		case 1:
			_ = ev.CancelRegistration(u)
		case 2:
			_ = ev.AddToWaitingList(u)
		case 3:
			_, _ = ev.PromoteFromWaitingList(request(u, 1+rng.Intn(2)))
		case 4:
			_ = ev.RemoveFromWaitingList(u)
		}

		require.LessOrEqual(t, ev.ActiveAttendeeCount(), ev.Capacity, "step %d", step)
		assertContiguous(t, ev)
		for _, w := range ev.WaitingList {
			assert.False(t, ev.IsUserRegistered(w.UserID), "step %d: user both waiting and registered", step)
		}
	}
}

func TestFailPayment_ReleasesSeatsAndNotifiesWaitingListHead(t *testing.T) {
	single, err := domain.NewSinglePrice(usd("8"))
	require.NoError(t, err)
	ev := newEvent(t, 2, single)
	pending, err := ev.Register(request(uuid.New(), 2))
	require.NoError(t, err)
	head := uuid.New()
	require.NoError(t, ev.AddToWaitingList(head))
	ev.PullDomainEvents()

	require.NoError(t, ev.FailPayment(pending.ID, "insufficient funds"))

	assert.Equal(t, 2, ev.RemainingCapacity())
	events := ev.PullDomainEvents()
	require.Equal(t, []string{"registration.payment_failed", "waiting_list.spot_available"}, eventNames(events))
	assert.Equal(t, head, events[1].(domain.WaitingListSpotAvailableEvent).UserID)

	assert.ErrorIs(t, ev.FailPayment(uuid.New(), ""), domain.ErrStateConflict)
}
