package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
)

var (
	ErrLockNotAcquired = errors.New("event is busy, try again")
	ErrCacheMiss       = errors.New("cache miss")
)

// Locker serializes writers of one key across processes.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type AvailabilityCache interface {
	Get(ctx context.Context, eventID uuid.UUID) (domain.Availability, error)
	Set(ctx context.Context, availability domain.Availability) error
	Invalidate(ctx context.Context, eventID uuid.UUID) error
}

type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}
