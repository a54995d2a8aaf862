package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/community_ticket/internal/core/domain"
)

// The waiting list is small and renumbered as a whole, so it is rewritten on
// every save.
func saveWaitingList(ctx context.Context, tx *sql.Tx, eventID uuid.UUID, entries []domain.WaitingListEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM waiting_list_entries WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to clear waiting list: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO waiting_list_entries (event_id, user_id, position, joined_at)
	VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare waiting list statement: %w", err)
	}

	defer stmt.Close()

	for _, w := range entries {
		if _, err := stmt.ExecContext(ctx, eventID, w.UserID, w.Position, w.JoinedAt); err != nil {
			return fmt.Errorf("failed to insert waiting list entry %s: %w", w.UserID, err)
		}
	}
	return nil
}

func (r *EventRepository) loadWaitingList(ctx context.Context, eventID uuid.UUID) ([]domain.WaitingListEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT user_id, position, joined_at
	FROM waiting_list_entries
	WHERE event_id = $1
	ORDER BY position
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load waiting list: %w", err)
	}

	defer rows.Close()

	var entries []domain.WaitingListEntry
	for rows.Next() {
		var w domain.WaitingListEntry
		if err := rows.Scan(&w.UserID, &w.Position, &w.JoinedAt); err != nil {
			return nil, err
		}
		entries = append(entries, w)
	}
	return entries, rows.Err()
}

func idStrings[T any](items []T, id func(T) uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(items))
	for i, item := range items {
		out[i] = id(item).String()
	}
	return out
}

func saveSignUpLists(ctx context.Context, tx *sql.Tx, eventID uuid.UUID, lists []*domain.SignUpList) error {
	keep := idStrings(lists, func(l *domain.SignUpList) uuid.UUID { return l.ID })
	_, err := tx.ExecContext(ctx, `DELETE FROM sign_up_lists WHERE event_id = $1 AND NOT (id = ANY($2::uuid[]))`, eventID, keep)
	if err != nil {
		return fmt.Errorf("failed to delete removed sign-up lists: %w", err)
	}

	for _, l := range lists {
		items, err := json.Marshal(nonNil(l.PredefinedItems))
		if err != nil {
			return err
		}
		commitments, err := json.Marshal(nonNil(l.Commitments))
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO sign_up_lists (id, event_id, category, description, type, predefined_items, commitments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET description = EXCLUDED.description,
			predefined_items = EXCLUDED.predefined_items,
			commitments = EXCLUDED.commitments
		`, l.ID, eventID, l.Category, l.Description, l.Type, string(items), string(commitments), l.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert sign-up list %s: %w", l.ID, err)
		}
	}
	return nil
}

func (r *EventRepository) loadSignUpLists(ctx context.Context, eventID uuid.UUID) ([]*domain.SignUpList, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, category, description, type, predefined_items, commitments, created_at
	FROM sign_up_lists
	WHERE event_id = $1
	ORDER BY created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sign-up lists: %w", err)
	}

	defer rows.Close()

	var lists []*domain.SignUpList
	for rows.Next() {
		var l domain.SignUpList
		var items, commitments []byte
		if err := rows.Scan(&l.ID, &l.Category, &l.Description, &l.Type, &items, &commitments, &l.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &l.PredefinedItems); err != nil {
			return nil, fmt.Errorf("sign-up list %s has unreadable items: %w", l.ID, err)
		}
		if err := json.Unmarshal(commitments, &l.Commitments); err != nil {
			return nil, fmt.Errorf("sign-up list %s has unreadable commitments: %w", l.ID, err)
		}
		lists = append(lists, &l)
	}
	return lists, rows.Err()
}

func savePasses(ctx context.Context, tx *sql.Tx, eventID uuid.UUID, passes []*domain.EventPass) error {
	keep := idStrings(passes, func(p *domain.EventPass) uuid.UUID { return p.ID })
	_, err := tx.ExecContext(ctx, `DELETE FROM event_passes WHERE event_id = $1 AND NOT (id = ANY($2::uuid[]))`, eventID, keep)
	if err != nil {
		return fmt.Errorf("failed to delete removed passes: %w", err)
	}

	for _, p := range passes {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO event_passes (id, event_id, name, description, price_amount, price_currency, total_quantity, reserved_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET reserved_quantity = EXCLUDED.reserved_quantity
		`, p.ID, eventID, p.Name, p.Description, p.Price.Amount, string(p.Price.Currency), p.TotalQuantity, p.ReservedQuantity)
		if err != nil {
			return fmt.Errorf("failed to upsert pass %s: %w", p.ID, err)
		}
	}
	return nil
}

func (r *EventRepository) loadPasses(ctx context.Context, eventID uuid.UUID) ([]*domain.EventPass, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, description, price_amount, price_currency, total_quantity, reserved_quantity
	FROM event_passes
	WHERE event_id = $1
	ORDER BY name
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load passes: %w", err)
	}

	defer rows.Close()

	var passes []*domain.EventPass
	for rows.Next() {
		var p domain.EventPass
		var currency string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price.Amount, &currency, &p.TotalQuantity, &p.ReservedQuantity); err != nil {
			return nil, err
		}
		p.Price.Currency = domain.Currency(currency)
		passes = append(passes, &p)
	}
	return passes, rows.Err()
}

func savePurchases(ctx context.Context, tx *sql.Tx, purchases []*domain.PassPurchase) error {
	for _, p := range purchases {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO pass_purchases (id, event_id, pass_id, user_id, quantity, total_amount, total_currency,
			status, qr_code, created_at, confirmed_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
			confirmed_at = EXCLUDED.confirmed_at,
			cancelled_at = EXCLUDED.cancelled_at
		`, p.ID, p.EventID, p.PassID, p.UserID, p.Quantity, p.TotalPrice.Amount, string(p.TotalPrice.Currency),
			p.Status, p.QRCode, p.CreatedAt, p.ConfirmedAt, p.CancelledAt)
		if err != nil {
			return fmt.Errorf("failed to upsert pass purchase %s: %w", p.ID, err)
		}
	}
	return nil
}

func (r *EventRepository) loadPurchases(ctx context.Context, eventID uuid.UUID) ([]*domain.PassPurchase, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, event_id, pass_id, user_id, quantity, total_amount, total_currency,
		status, qr_code, created_at, confirmed_at, cancelled_at
	FROM pass_purchases
	WHERE event_id = $1
	ORDER BY created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pass purchases: %w", err)
	}

	defer rows.Close()

	var purchases []*domain.PassPurchase
	for rows.Next() {
		var p domain.PassPurchase
		var currency string
		var confirmedAt, cancelledAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.EventID, &p.PassID, &p.UserID, &p.Quantity, &p.TotalPrice.Amount, &currency,
			&p.Status, &p.QRCode, &p.CreatedAt, &confirmedAt, &cancelledAt); err != nil {
			return nil, err
		}
		p.TotalPrice.Currency = domain.Currency(currency)
		p.ConfirmedAt = nullTime(confirmedAt)
		p.CancelledAt = nullTime(cancelledAt)
		purchases = append(purchases, &p)
	}
	return purchases, rows.Err()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
