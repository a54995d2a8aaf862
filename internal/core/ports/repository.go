package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification means the aggregate was saved by someone else
	// after it was loaded. Nothing was written.
	ErrConcurrentModification = errors.New("optimistic lock failed: event was modified by another transaction")
)

type EventRepository interface {
	GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	Create(ctx context.Context, event *domain.Event, events []domain.DomainEvent) error
	// Save persists the aggregate if its version is unchanged and stores
	// events in the outbox in the same transaction.
	Save(ctx context.Context, event *domain.Event, events []domain.DomainEvent) error
	EventIDForRegistration(ctx context.Context, registrationID uuid.UUID) (uuid.UUID, error)
	ListEventsWithExpiredCheckouts(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}

type OutboxMessage struct {
	ID         uuid.UUID
	EventID    uuid.UUID
	Name       string
	Payload    []byte
	OccurredAt time.Time
}

type OutboxRepository interface {
	FetchPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkDispatched(ctx context.Context, ids []uuid.UUID) error
}
