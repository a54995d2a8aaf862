package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_StartsAsDraft(t *testing.T) {
	ev, err := domain.NewEvent("Book swap", uuid.New(), 5, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.EventDraft, ev.Status)
	assert.False(t, ev.IsOpen())
	assert.Empty(t, ev.PullDomainEvents())
}

func TestDraftEvent_RejectsRegistrationAndWaitingList(t *testing.T) {
	ev, err := domain.NewEvent("Book swap", uuid.New(), 1, nil)
	require.NoError(t, err)

	_, err = ev.Register(request(uuid.New(), 1))
	require.ErrorIs(t, err, domain.ErrStateConflict)
	assert.Equal(t, []string{"Cannot register for draft event"}, domain.Messages(err))

	assert.ErrorIs(t, ev.AddToWaitingList(uuid.New()), domain.ErrStateConflict)
	_, err = ev.PromoteFromWaitingList(request(uuid.New(), 1))
	assert.ErrorIs(t, err, domain.ErrStateConflict)
	assert.Empty(t, ev.Registrations)
}

func TestEventLifecycle_Transitions(t *testing.T) {
	ev, err := domain.NewEvent("Street fair", uuid.New(), 2, nil)
	require.NoError(t, err)

	require.NoError(t, ev.Publish())
	assert.ErrorIs(t, ev.Publish(), domain.ErrStateConflict)

	assert.ErrorIs(t, ev.Postpone("  "), domain.ErrValidation)
	require.NoError(t, ev.Postpone("Storm warning"))
	assert.Equal(t, domain.EventPostponed, ev.Status)
	assert.Equal(t, "Storm warning", ev.StatusReason)

	_, err = ev.Register(request(uuid.New(), 1))
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	require.NoError(t, ev.Publish())
	assert.Empty(t, ev.StatusReason)
	_, err = ev.Register(request(uuid.New(), 1))
	require.NoError(t, err)

	require.NoError(t, ev.Complete())
	assert.ErrorIs(t, ev.Cancel("Too late"), domain.ErrStateConflict)
	require.NoError(t, ev.Archive())
	assert.Equal(t, domain.EventArchived, ev.Status)

	assert.Equal(t, []string{
		"event.published",
		"event.postponed",
		"event.published",
		"registration.created",
		"event.completed",
		"event.archived",
	}, eventNames(ev.PullDomainEvents()))
}

func TestCancelEvent_IsTerminal(t *testing.T) {
	ev := newEvent(t, 3, nil)
	reg, err := ev.Register(request(uuid.New(), 1))
	require.NoError(t, err)

	assert.ErrorIs(t, ev.Cancel(""), domain.ErrValidation)
	require.NoError(t, ev.Cancel("Venue unavailable"))

	assert.Equal(t, domain.EventCancelled, ev.Status)
	assert.Equal(t, domain.RegistrationConfirmed, reg.Status)
	for _, err := range []error{ev.Publish(), ev.Postpone("x"), ev.Complete(), ev.Archive()} {
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	}
	assert.ErrorIs(t, ev.AddToWaitingList(uuid.New()), domain.ErrStateConflict)

	events := ev.PullDomainEvents()
	require.Equal(t, []string{"registration.created", "event.cancelled"}, eventNames(events))
	cancelled, ok := events[1].(domain.EventCancelledEvent)
	require.True(t, ok)
	assert.Equal(t, "Venue unavailable", cancelled.Reason)
}
