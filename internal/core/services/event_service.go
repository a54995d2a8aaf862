package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
)

const (
	defaultLockTTL          = 10 * time.Second
	defaultCleanupBatchSize = 100
)

type Options struct {
	// LockTTL bounds how long a crashed writer can block an event.
	LockTTL          time.Duration
	CleanupBatchSize int
}

type CreateEventRequest struct {
	Title       string
	OrganizerID uuid.UUID
	Capacity    int
	// Pricing is nil for a free event.
	Pricing domain.TicketPricing
	// Publish opens the event for registration right away instead of
	// leaving it as a draft.
	Publish bool
}

// EventService runs every change to an event aggregate as one unit of work:
// lock the event, load it, apply the change, save it with a version check
// and drop the cached availability.
type EventService struct {
	events ports.EventRepository
	locker ports.Locker
	cache  ports.AvailabilityCache
	log    *slog.Logger

	lockTTL   time.Duration
	batchSize int
	now       func() time.Time
}

func NewEventService(events ports.EventRepository, locker ports.Locker, cache ports.AvailabilityCache, logger *slog.Logger, opts Options) *EventService {
	if events == nil || locker == nil || cache == nil {
		panic("services: NewEventService needs a repository, a locker and a cache")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.CleanupBatchSize <= 0 {
		opts.CleanupBatchSize = defaultCleanupBatchSize
	}
	return &EventService{
		events:    events,
		locker:    locker,
		cache:     cache,
		log:       logger.With("component", "event_service"),
		lockTTL:   opts.LockTTL,
		batchSize: opts.CleanupBatchSize,
		now:       time.Now,
	}
}

// errUnchanged tells mutate that fn left the event as it was, so there is
// nothing to save.
var errUnchanged = errors.New("event unchanged")

func lockKey(eventID uuid.UUID) string {
	return fmt.Sprintf("lock:event:%s", eventID)
}

func (s *EventService) mutate(ctx context.Context, eventID uuid.UUID, fn func(ev *domain.Event) error) (*domain.Event, error) {
	key := lockKey(eventID)
	token, err := s.locker.Lock(ctx, key, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("failed to release event lock", "event_id", eventID, "error", err)
		}
	}()

	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := fn(ev); err != nil {
		if errors.Is(err, errUnchanged) {
			return ev, nil
		}
		return nil, err
	}

	if err := s.events.Save(ctx, ev, ev.PullDomainEvents()); err != nil {
		if errors.Is(err, ports.ErrConcurrentModification) {
			s.log.Warn("event changed concurrently", "event_id", eventID, "version", ev.Version)
		}
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.Warn("failed to invalidate availability cache", "event_id", eventID, "error", err)
	}
	return ev, nil
}

// mutateRegistration is mutate for callers that only know a registration,
// such as payment webhooks.
func (s *EventService) mutateRegistration(ctx context.Context, registrationID uuid.UUID, fn func(ev *domain.Event, reg *domain.Registration) error) (*domain.Registration, error) {
	eventID, err := s.events.EventIDForRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	var reg *domain.Registration
	_, err = s.mutate(ctx, eventID, func(ev *domain.Event) error {
		r, ok := ev.Registration(registrationID)
		if !ok {
			return fmt.Errorf("registration %s: %w", registrationID, ports.ErrNotFound)
		}
		reg = r
		return fn(ev, r)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*domain.Event, error) {
	ev, err := domain.NewEvent(req.Title, req.OrganizerID, req.Capacity, req.Pricing)
	if err != nil {
		return nil, err
	}
	if req.Publish {
		if err := ev.Publish(); err != nil {
			return nil, err
		}
	}
	if err := s.events.Create(ctx, ev, ev.PullDomainEvents()); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.log.Info("event created", "event_id", ev.ID, "status", ev.Status, "capacity", ev.Capacity, "free", ev.Free)
	return ev, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return s.events.GetByID(ctx, eventID)
}

// Availability serves the seat snapshot from cache, filling it on a miss.
// Cache failures only cost a database read.
func (s *EventService) Availability(ctx context.Context, eventID uuid.UUID) (domain.Availability, error) {
	cached, err := s.cache.Get(ctx, eventID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		s.log.Warn("availability cache read failed", "event_id", eventID, "error", err)
	}

	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return domain.Availability{}, err
	}
	availability := ev.Availability()
	if err := s.cache.Set(ctx, availability); err != nil {
		s.log.Warn("availability cache write failed", "event_id", eventID, "error", err)
	}
	return availability, nil
}

func (s *EventService) UpdateCapacity(ctx context.Context, eventID uuid.UUID, capacity int) (*domain.Event, error) {
	return s.mutate(ctx, eventID, func(ev *domain.Event) error {
		return ev.UpdateCapacity(capacity)
	})
}

// SetPricing replaces the event pricing; a nil pricing makes the event free.
func (s *EventService) SetPricing(ctx context.Context, eventID uuid.UUID, pricing domain.TicketPricing) (*domain.Event, error) {
	return s.mutate(ctx, eventID, func(ev *domain.Event) error {
		if pricing == nil {
			ev.MakeFree()
			return nil
		}
		return ev.SetPricing(pricing)
	})
}
