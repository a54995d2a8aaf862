package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
)

const registrationColumns = `id, event_id, user_id, attendees, contact, quantity, price_amount, price_currency,
	is_free_event, status, payment_intent_id, checkout_session_id, checkout_expires_at,
	refund_requested_at, refund_withdrawn_at, refund_completed_at, stripe_refund_id, created_at, updated_at`

func saveRegistrations(ctx context.Context, tx *sql.Tx, regs []*domain.Registration) error {
	if len(regs) == 0 {
		return nil
	}

	query := `
	INSERT INTO registrations (` + registrationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	ON CONFLICT (id) DO UPDATE
	SET attendees = EXCLUDED.attendees,
		contact = EXCLUDED.contact,
		quantity = EXCLUDED.quantity,
		status = EXCLUDED.status,
		payment_intent_id = EXCLUDED.payment_intent_id,
		checkout_session_id = EXCLUDED.checkout_session_id,
		checkout_expires_at = EXCLUDED.checkout_expires_at,
		refund_requested_at = EXCLUDED.refund_requested_at,
		refund_withdrawn_at = EXCLUDED.refund_withdrawn_at,
		refund_completed_at = EXCLUDED.refund_completed_at,
		stripe_refund_id = EXCLUDED.stripe_refund_id,
		updated_at = EXCLUDED.updated_at
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare registration statement: %w", err)
	}

	defer stmt.Close()

	for _, reg := range regs {
		attendees, err := json.Marshal(reg.Attendees)
		if err != nil {
			return err
		}
		var contact any
		if reg.Contact != nil {
			b, err := json.Marshal(reg.Contact)
			if err != nil {
				return err
			}
			contact = string(b)
		}

		_, err = stmt.ExecContext(ctx,
			reg.ID, reg.EventID, reg.UserID, string(attendees), contact, reg.Quantity,
			reg.Price.Amount, string(reg.Price.Currency), reg.IsFreeEvent, reg.Status,
			reg.PaymentIntentID, reg.CheckoutSessionID, reg.CheckoutExpiresAt,
			reg.RefundRequestedAt, reg.RefundWithdrawnAt, reg.RefundCompletedAt,
			reg.StripeRefundID, reg.CreatedAt, reg.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert registration %s: %w", reg.ID, err)
		}
	}

	return nil
}

func (r *EventRepository) loadRegistrations(ctx context.Context, eventID uuid.UUID) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}

	defer rows.Close()

	var regs []*domain.Registration
	for rows.Next() {
		var reg domain.Registration
		var attendees, contact []byte
		var currency string
		var checkoutExpiresAt, refundRequestedAt, refundWithdrawnAt, refundCompletedAt, updatedAt sql.NullTime

		if err := rows.Scan(
			&reg.ID,
			&reg.EventID,
			&reg.UserID,
			&attendees,
			&contact,
			&reg.Quantity,
			&reg.Price.Amount,
			&currency,
			&reg.IsFreeEvent,
			&reg.Status,
			&reg.PaymentIntentID,
			&reg.CheckoutSessionID,
			&checkoutExpiresAt,
			&refundRequestedAt,
			&refundWithdrawnAt,
			&refundCompletedAt,
			&reg.StripeRefundID,
			&reg.CreatedAt,
			&updatedAt,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(attendees, &reg.Attendees); err != nil {
			return nil, fmt.Errorf("registration %s has unreadable attendees: %w", reg.ID, err)
		}
		if len(contact) > 0 {
			reg.Contact = &domain.Contact{}
			if err := json.Unmarshal(contact, reg.Contact); err != nil {
				return nil, fmt.Errorf("registration %s has unreadable contact: %w", reg.ID, err)
			}
		}
		reg.Price.Currency = domain.Currency(currency)
		reg.CheckoutExpiresAt = nullTime(checkoutExpiresAt)
		reg.RefundRequestedAt = nullTime(refundRequestedAt)
		reg.RefundWithdrawnAt = nullTime(refundWithdrawnAt)
		reg.RefundCompletedAt = nullTime(refundCompletedAt)
		reg.UpdatedAt = nullTime(updatedAt)

		regs = append(regs, &reg)
	}

	return regs, rows.Err()
}

func (r *EventRepository) EventIDForRegistration(ctx context.Context, registrationID uuid.UUID) (uuid.UUID, error) {
	var eventID uuid.UUID
	err := r.db.QueryRowContext(ctx, `SELECT event_id FROM registrations WHERE id = $1`, registrationID).Scan(&eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("registration %s: %w", registrationID, ports.ErrNotFound)
		}
		return uuid.Nil, err
	}
	return eventID, nil
}

func (r *EventRepository) ListEventsWithExpiredCheckouts(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	query := `
	SELECT DISTINCT event_id FROM registrations
	WHERE status = 'PRELIMINARY' AND checkout_expires_at < $1
	LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
