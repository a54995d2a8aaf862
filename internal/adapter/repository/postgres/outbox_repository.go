package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/community_ticket/internal/core/ports"
)

type OutboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// FetchPending returns undelivered messages in the order they were committed.
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	query := `
	SELECT id, event_id, name, payload, occurred_at
	FROM outbox_messages
	WHERE dispatched_at IS NULL
	ORDER BY seq
	LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox messages: %w", err)
	}

	defer rows.Close()

	var messages []ports.OutboxMessage
	for rows.Next() {
		var m ports.OutboxMessage
		if err := rows.Scan(&m.ID, &m.EventID, &m.Name, &m.Payload, &m.OccurredAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (r *OutboxRepository) MarkDispatched(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make(pq.StringArray, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	_, err := r.db.ExecContext(ctx, `UPDATE outbox_messages SET dispatched_at = NOW() WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		return fmt.Errorf("failed to mark outbox messages dispatched: %w", err)
	}
	return nil
}
