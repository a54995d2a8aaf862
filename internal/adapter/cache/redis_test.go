package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_LockAndUnlock(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	locker := NewLocker(db)
	ctx := context.Background()

	mockRedis.Regexp().ExpectSetNX("lock:event:1", `.+`, 10*time.Second).SetVal(true)

	token, err := locker.Lock(ctx, "lock:event:1", 10*time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	mockRedis.ExpectEvalSha(unlockScript.Hash(), []string{"lock:event:1"}, token).SetVal(int64(1))

	assert.NoError(t, locker.Unlock(ctx, "lock:event:1", token))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestLocker_Busy(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	locker := NewLocker(db)

	mockRedis.Regexp().ExpectSetNX("lock:event:1", `.+`, time.Second).SetVal(false)

	_, err := locker.Lock(context.Background(), "lock:event:1", time.Second)

	assert.ErrorIs(t, err, ports.ErrLockNotAcquired)
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestLocker_RedisDown(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	locker := NewLocker(db)

	mockRedis.Regexp().ExpectSetNX("lock:event:1", `.+`, time.Second).SetErr(errors.New("connection refused"))

	_, err := locker.Lock(context.Background(), "lock:event:1", time.Second)

	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ports.ErrLockNotAcquired)
}

func TestAvailabilityCache(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := NewAvailabilityCache(db, time.Minute)
	ctx := context.Background()

	a := domain.Availability{EventID: uuid.New(), Capacity: 10, Active: 4, Remaining: 6}
	key := availabilityKey(a.EventID)
	stored := `{"event_id":"` + a.EventID.String() + `","capacity":10,"active_attendees":4,"remaining":6,"waiting_list_length":0,"at_capacity":false}`

	mockRedis.ExpectGet(key).RedisNil()
	mockRedis.ExpectSet(key, stored, time.Minute).SetVal("OK")
	mockRedis.ExpectGet(key).SetVal(stored)
	mockRedis.ExpectDel(key).SetVal(1)

	_, err := c.Get(ctx, a.EventID)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, a))

	got, err := c.Get(ctx, a.EventID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	assert.NoError(t, c.Invalidate(ctx, a.EventID))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestAvailabilityCache_CorruptEntry(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := NewAvailabilityCache(db, time.Minute)
	id := uuid.New()

	mockRedis.ExpectGet(availabilityKey(id)).SetVal("not json")

	_, err := c.Get(context.Background(), id)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss)
}
