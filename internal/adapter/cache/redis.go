package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock taken over by another writer is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	client redis.Cmdable
}

func NewLocker(client redis.Cmdable) *Locker {
	return &Locker{client: client}
}

func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", ports.ErrLockNotAcquired
	}
	return token, nil
}

func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	if err := unlockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// AvailabilityCache keeps a JSON snapshot of each event's seat counts.
type AvailabilityCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewAvailabilityCache(client redis.Cmdable, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func availabilityKey(eventID uuid.UUID) string {
	return fmt.Sprintf("availability:%s", eventID.String())
}

func (c *AvailabilityCache) Get(ctx context.Context, eventID uuid.UUID) (domain.Availability, error) {
	var a domain.Availability

	raw, err := c.client.Get(ctx, availabilityKey(eventID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return a, ports.ErrCacheMiss
		}
		return a, err
	}

	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return a, fmt.Errorf("corrupt availability entry for %s: %w", eventID, err)
	}
	return a, nil
}

func (c *AvailabilityCache) Set(ctx context.Context, a domain.Availability) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, availabilityKey(a.EventID), string(b), c.ttl).Err()
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	return c.client.Del(ctx, availabilityKey(eventID)).Err()
}
