package domain

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by a successful state transition.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
}

type eventBuffer struct {
	pending []DomainEvent
}

func (b *eventBuffer) raise(e DomainEvent) {
	b.pending = append(b.pending, e)
}

// DomainEvents returns the events raised since the last clear, oldest first.
func (b *eventBuffer) DomainEvents() []DomainEvent {
	return append([]DomainEvent(nil), b.pending...)
}

func (b *eventBuffer) ClearDomainEvents() {
	b.pending = nil
}

func (b *eventBuffer) drain() []DomainEvent {
	out := b.pending
	b.pending = nil
	return out
}

// raised orders events across every buffer of an aggregate, since two
// events raised in the same clock tick share a timestamp.
var raised atomic.Uint64

type eventMeta struct {
	OccurredAt time.Time `json:"occurred_at"`
	seq        uint64
}

func (m eventMeta) OccurredOn() time.Time { return m.OccurredAt }

func (m eventMeta) sequence() uint64 { return m.seq }

func sequenceOf(e DomainEvent) uint64 {
	if s, ok := e.(interface{ sequence() uint64 }); ok {
		return s.sequence()
	}
	return 0
}

func stamp() eventMeta { return eventMeta{OccurredAt: now(), seq: raised.Add(1)} }

func now() time.Time { return time.Now().UTC() }

type RegistrationCreatedEvent struct {
	eventMeta
	EventID        uuid.UUID          `json:"event_id"`
	RegistrationID uuid.UUID          `json:"registration_id"`
	UserID         uuid.UUID          `json:"user_id"`
	Quantity       int                `json:"quantity"`
	Status         RegistrationStatus `json:"status"`
	TotalPrice     Money              `json:"total_price"`
}

func (RegistrationCreatedEvent) EventName() string { return "registration.created" }

type PaymentCompletedEvent struct {
	eventMeta
	EventID         uuid.UUID `json:"event_id"`
	RegistrationID  uuid.UUID `json:"registration_id"`
	UserID          uuid.UUID `json:"user_id"`
	ContactEmail    string    `json:"contact_email"`
	PaymentIntentID string    `json:"payment_intent_id"`
	AmountPaid      Money     `json:"amount_paid"`
	AttendeeCount   int       `json:"attendee_count"`
}

func (PaymentCompletedEvent) EventName() string { return "registration.payment_completed" }

type PaymentFailedEvent struct {
	eventMeta
	EventID        uuid.UUID `json:"event_id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	UserID         uuid.UUID `json:"user_id"`
	ContactEmail   string    `json:"contact_email"`
	Quantity       int       `json:"quantity"`
	Reason         string    `json:"reason,omitempty"`
}

func (PaymentFailedEvent) EventName() string { return "registration.payment_failed" }

type RegistrationCancelledEvent struct {
	eventMeta
	EventID        uuid.UUID `json:"event_id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	UserID         uuid.UUID `json:"user_id"`
	Quantity       int       `json:"quantity"`
}

func (RegistrationCancelledEvent) EventName() string { return "registration.cancelled" }

type RegistrationDetailsUpdatedEvent struct {
	eventMeta
	EventID          uuid.UUID `json:"event_id"`
	RegistrationID   uuid.UUID `json:"registration_id"`
	UserID           uuid.UUID `json:"user_id"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
}

func (RegistrationDetailsUpdatedEvent) EventName() string { return "registration.details_updated" }

type RefundRequestedEvent struct {
	eventMeta
	EventID         uuid.UUID `json:"event_id"`
	RegistrationID  uuid.UUID `json:"registration_id"`
	UserID          uuid.UUID `json:"user_id"`
	ContactEmail    string    `json:"contact_email"`
	PaymentIntentID string    `json:"payment_intent_id"`
	RefundAmount    Money     `json:"refund_amount"`
}

func (RefundRequestedEvent) EventName() string { return "registration.refund_requested" }

type RefundWithdrawnEvent struct {
	eventMeta
	EventID        uuid.UUID `json:"event_id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	UserID         uuid.UUID `json:"user_id"`
	ContactEmail   string    `json:"contact_email"`
}

func (RefundWithdrawnEvent) EventName() string { return "registration.refund_withdrawn" }

type RefundCompletedEvent struct {
	eventMeta
	EventID        uuid.UUID `json:"event_id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	UserID         uuid.UUID `json:"user_id"`
	ContactEmail   string    `json:"contact_email"`
	StripeRefundID string    `json:"stripe_refund_id"`
	RefundAmount   Money     `json:"refund_amount"`
}

func (RefundCompletedEvent) EventName() string { return "registration.refund_completed" }

type UserAddedToWaitingListEvent struct {
	eventMeta
	EventID  uuid.UUID `json:"event_id"`
	UserID   uuid.UUID `json:"user_id"`
	Position int       `json:"position"`
}

func (UserAddedToWaitingListEvent) EventName() string { return "waiting_list.user_added" }

type UserRemovedFromWaitingListEvent struct {
	eventMeta
	EventID uuid.UUID `json:"event_id"`
	UserID  uuid.UUID `json:"user_id"`
}

func (UserRemovedFromWaitingListEvent) EventName() string { return "waiting_list.user_removed" }

type UserPromotedFromWaitingListEvent struct {
	eventMeta
	EventID        uuid.UUID `json:"event_id"`
	UserID         uuid.UUID `json:"user_id"`
	RegistrationID uuid.UUID `json:"registration_id"`
}

func (UserPromotedFromWaitingListEvent) EventName() string { return "waiting_list.user_promoted" }

// WaitingListSpotAvailableEvent tells the head of the waiting list that a
// seat opened up. The user still has to accept it.
type WaitingListSpotAvailableEvent struct {
	eventMeta
	EventID uuid.UUID `json:"event_id"`
	UserID  uuid.UUID `json:"user_id"`
}

func (WaitingListSpotAvailableEvent) EventName() string { return "waiting_list.spot_available" }

type EventCapacityUpdatedEvent struct {
	eventMeta
	EventID          uuid.UUID `json:"event_id"`
	PreviousCapacity int       `json:"previous_capacity"`
	NewCapacity      int       `json:"new_capacity"`
}

func (EventCapacityUpdatedEvent) EventName() string { return "event.capacity_updated" }

type EventPricingUpdatedEvent struct {
	eventMeta
	EventID     uuid.UUID   `json:"event_id"`
	PricingType PricingType `json:"pricing_type,omitempty"`
	Free        bool        `json:"free"`
}

func (EventPricingUpdatedEvent) EventName() string { return "event.pricing_updated" }

type EventPublishedEvent struct {
	eventMeta
	EventID        uuid.UUID   `json:"event_id"`
	OrganizerID    uuid.UUID   `json:"organizer_id"`
	PreviousStatus EventStatus `json:"previous_status"`
}

func (EventPublishedEvent) EventName() string { return "event.published" }

type EventPostponedEvent struct {
	eventMeta
	EventID uuid.UUID `json:"event_id"`
	Reason  string    `json:"reason"`
}

func (EventPostponedEvent) EventName() string { return "event.postponed" }

type EventCancelledEvent struct {
	eventMeta
	EventID uuid.UUID `json:"event_id"`
	Reason  string    `json:"reason"`
}

func (EventCancelledEvent) EventName() string { return "event.cancelled" }

type EventCompletedEvent struct {
	eventMeta
	EventID uuid.UUID `json:"event_id"`
}

func (EventCompletedEvent) EventName() string { return "event.completed" }

type EventArchivedEvent struct {
	eventMeta
	EventID uuid.UUID `json:"event_id"`
}

func (EventArchivedEvent) EventName() string { return "event.archived" }

type SignUpListAddedEvent struct {
	eventMeta
	EventID      uuid.UUID `json:"event_id"`
	SignUpListID uuid.UUID `json:"signup_list_id"`
	Category     string    `json:"category"`
}

func (SignUpListAddedEvent) EventName() string { return "signup.list_added" }

type SignUpListRemovedEvent struct {
	eventMeta
	EventID      uuid.UUID `json:"event_id"`
	SignUpListID uuid.UUID `json:"signup_list_id"`
}

func (SignUpListRemovedEvent) EventName() string { return "signup.list_removed" }

type UserCommittedToSignUpEvent struct {
	eventMeta
	SignUpListID    uuid.UUID `json:"signup_list_id"`
	UserID          uuid.UUID `json:"user_id"`
	ItemDescription string    `json:"item_description"`
	Quantity        int       `json:"quantity"`
}

func (UserCommittedToSignUpEvent) EventName() string { return "signup.committed" }

type UserCancelledSignUpCommitmentEvent struct {
	eventMeta
	SignUpListID    uuid.UUID `json:"signup_list_id"`
	UserID          uuid.UUID `json:"user_id"`
	ItemDescription string    `json:"item_description"`
}

func (UserCancelledSignUpCommitmentEvent) EventName() string { return "signup.commitment_cancelled" }

type PassAddedEvent struct {
	eventMeta
	EventID uuid.UUID `json:"event_id"`
	PassID  uuid.UUID `json:"pass_id"`
	Name    string    `json:"name"`
}

func (PassAddedEvent) EventName() string { return "pass.added" }

type PassRemovedEvent struct {
	eventMeta
	EventID uuid.UUID `json:"event_id"`
	PassID  uuid.UUID `json:"pass_id"`
}

func (PassRemovedEvent) EventName() string { return "pass.removed" }

type PassPurchasedEvent struct {
	eventMeta
	EventID    uuid.UUID `json:"event_id"`
	PurchaseID uuid.UUID `json:"purchase_id"`
	PassID     uuid.UUID `json:"pass_id"`
	UserID     uuid.UUID `json:"user_id"`
	Quantity   int       `json:"quantity"`
}

func (PassPurchasedEvent) EventName() string { return "pass.purchased" }

type PassCancelledEvent struct {
	eventMeta
	EventID    uuid.UUID `json:"event_id"`
	PurchaseID uuid.UUID `json:"purchase_id"`
	PassID     uuid.UUID `json:"pass_id"`
	UserID     uuid.UUID `json:"user_id"`
	Quantity   int       `json:"quantity"`
}

func (PassCancelledEvent) EventName() string { return "pass.cancelled" }
