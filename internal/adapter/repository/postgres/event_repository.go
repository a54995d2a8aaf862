package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// EventRepository stores the event aggregate across several tables. Every
// write goes through one transaction guarded by the events.version column.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	query := `
	SELECT id, title, organizer_id, capacity, status, status_reason, is_free, pricing,
		legacy_price_amount, legacy_price_currency, version, created_at, updated_at
	FROM events
	WHERE id = $1
	`

	var ev domain.Event
	var pricing []byte
	var legacyAmount decimal.NullDecimal
	var legacyCurrency sql.NullString
	var updatedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&ev.ID,
		&ev.Title,
		&ev.OrganizerID,
		&ev.Capacity,
		&ev.Status,
		&ev.StatusReason,
		&ev.Free,
		&pricing,
		&legacyAmount,
		&legacyCurrency,
		&ev.Version,
		&ev.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", eventID, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if ev.Pricing, err = domain.UnmarshalPricing(pricing); err != nil {
		return nil, fmt.Errorf("event %s has unreadable pricing: %w", eventID, err)
	}
	if legacyAmount.Valid && legacyCurrency.Valid {
		price := domain.Money{Amount: legacyAmount.Decimal, Currency: domain.Currency(legacyCurrency.String)}
		ev.LegacyTicketPrice = &price
	}
	if updatedAt.Valid {
		ev.UpdatedAt = &updatedAt.Time
	}

	if ev.Registrations, err = r.loadRegistrations(ctx, eventID); err != nil {
		return nil, err
	}
	if ev.WaitingList, err = r.loadWaitingList(ctx, eventID); err != nil {
		return nil, err
	}
	if ev.SignUpLists, err = r.loadSignUpLists(ctx, eventID); err != nil {
		return nil, err
	}
	if ev.Passes, err = r.loadPasses(ctx, eventID); err != nil {
		return nil, err
	}
	if ev.Purchases, err = r.loadPurchases(ctx, eventID); err != nil {
		return nil, err
	}

	return &ev, nil
}

func (r *EventRepository) Create(ctx context.Context, ev *domain.Event, events []domain.DomainEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	pricing, err := pricingColumn(ev.Pricing)
	if err != nil {
		return err
	}
	legacyAmount, legacyCurrency := legacyPriceColumns(ev.LegacyTicketPrice)

	query := `
	INSERT INTO events (id, title, organizer_id, capacity, status, status_reason, is_free, pricing,
		legacy_price_amount, legacy_price_currency, version, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12)
	`
	_, err = tx.ExecContext(ctx, query, ev.ID, ev.Title, ev.OrganizerID, ev.Capacity, ev.Status, ev.StatusReason,
		ev.Free, pricing, legacyAmount, legacyCurrency, ev.CreatedAt, ev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := saveChildren(ctx, tx, ev); err != nil {
		return err
	}
	if err := appendOutbox(ctx, tx, ev.ID, events); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	ev.Version = 1
	return nil
}

// Save writes the aggregate only if nobody saved it since it was loaded.
func (r *EventRepository) Save(ctx context.Context, ev *domain.Event, events []domain.DomainEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	pricing, err := pricingColumn(ev.Pricing)
	if err != nil {
		return err
	}
	legacyAmount, legacyCurrency := legacyPriceColumns(ev.LegacyTicketPrice)

	query := `
	UPDATE events
	SET title = $1,
		capacity = $2,
		status = $3,
		status_reason = $4,
		is_free = $5,
		pricing = $6,
		legacy_price_amount = $7,
		legacy_price_currency = $8,
		updated_at = $9,
		version = version + 1
	WHERE id = $10 AND version = $11
	`

	result, err := tx.ExecContext(ctx, query, ev.Title, ev.Capacity, ev.Status, ev.StatusReason, ev.Free, pricing,
		legacyAmount, legacyCurrency, ev.UpdatedAt, ev.ID, ev.Version)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ports.ErrConcurrentModification
	}

	if err := saveChildren(ctx, tx, ev); err != nil {
		return err
	}
	if err := appendOutbox(ctx, tx, ev.ID, events); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	ev.Version++
	return nil
}

func saveChildren(ctx context.Context, tx *sql.Tx, ev *domain.Event) error {
	if err := saveRegistrations(ctx, tx, ev.Registrations); err != nil {
		return err
	}
	if err := saveWaitingList(ctx, tx, ev.ID, ev.WaitingList); err != nil {
		return err
	}
	if err := saveSignUpLists(ctx, tx, ev.ID, ev.SignUpLists); err != nil {
		return err
	}
	if err := savePasses(ctx, tx, ev.ID, ev.Passes); err != nil {
		return err
	}
	return savePurchases(ctx, tx, ev.Purchases)
}

func appendOutbox(ctx context.Context, tx *sql.Tx, eventID uuid.UUID, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO outbox_messages (id, event_id, name, payload, occurred_at)
	VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare outbox statement: %w", err)
	}

	defer stmt.Close()

	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", e.EventName(), err)
		}
		if _, err := stmt.ExecContext(ctx, uuid.New(), eventID, e.EventName(), string(payload), e.OccurredOn()); err != nil {
			return fmt.Errorf("failed to insert outbox message %s: %w", e.EventName(), err)
		}
	}
	return nil
}

// pricingColumn returns the JSONB value for pricing, or NULL for free
// events. JSON goes over the wire as text; lib/pq would send []byte as
// bytea.
func pricingColumn(pricing domain.TicketPricing) (any, error) {
	if pricing == nil {
		return nil, nil
	}
	b, err := domain.MarshalPricing(pricing)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func legacyPriceColumns(price *domain.Money) (any, any) {
	if price == nil {
		return nil, nil
	}
	return price.Amount, string(price.Currency)
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
