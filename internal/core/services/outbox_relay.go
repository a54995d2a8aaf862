package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/ports"
)

const defaultRelayBatchSize = 100

// OutboxRelay publishes stored domain events to the broker in the order they
// were written. A message is marked dispatched only after the broker took it,
// so delivery is at least once.
type OutboxRelay struct {
	outbox    ports.OutboxRepository
	publisher ports.MessagePublisher
	log       *slog.Logger
	batchSize int
}

func NewOutboxRelay(outbox ports.OutboxRepository, publisher ports.MessagePublisher, logger *slog.Logger) *OutboxRelay {
	if outbox == nil || publisher == nil {
		panic("services: NewOutboxRelay needs an outbox and a publisher")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		log:       logger.With("component", "outbox_relay"),
		batchSize: defaultRelayBatchSize,
	}
}

func (r *OutboxRelay) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Info("outbox relay started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil {
				r.log.Error("outbox flush failed", "error", err)
			}
		}
	}
}

// Flush relays one batch. It stops at the first publish failure so later
// events never overtake earlier ones.
func (r *OutboxRelay) Flush(ctx context.Context) (int, error) {
	msgs, err := r.outbox.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch pending outbox messages: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	var (
		sent       []uuid.UUID
		publishErr error
	)
	for _, msg := range msgs {
		if err := r.publisher.Publish(ctx, msg.Name, msg.Payload); err != nil {
			outboxMessagesTotal.WithLabelValues("failed").Inc()
			publishErr = fmt.Errorf("publish %s (%s): %w", msg.Name, msg.ID, err)
			break
		}
		outboxMessagesTotal.WithLabelValues("published").Inc()
		sent = append(sent, msg.ID)
	}

	if len(sent) > 0 {
		if err := r.outbox.MarkDispatched(ctx, sent); err != nil {
			return 0, fmt.Errorf("mark outbox messages dispatched: %w", err)
		}
		r.log.Debug("outbox messages relayed", "count", len(sent))
	}
	return len(sent), publishErr
}
