package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCheckoutWindow is how long a paid registration may stay
// preliminary before its checkout session is treated as abandoned.
const DefaultCheckoutWindow = 24 * time.Hour

// RegistrationRequest is one user's signup for an event.
type RegistrationRequest struct {
	UserID    uuid.UUID
	Attendees []AttendeeDetails
	Contact   *Contact
}

func (r RegistrationRequest) validate() error {
	var msgs []string
	if r.UserID == uuid.Nil {
		msgs = append(msgs, "User ID is required")
	}
	if err := validateAttendees(r.Attendees); err != nil {
		msgs = append(msgs, Messages(err)...)
	}
	if err := r.Contact.validate(); err != nil {
		msgs = append(msgs, Messages(err)...)
	}
	if len(msgs) > 0 {
		return validationError(msgs...)
	}
	return nil
}

// Registration is a user's signup for an event. Status only changes through
// the transition table in registration_status.go.
type Registration struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	UserID      uuid.UUID
	Attendees   []AttendeeDetails
	Contact     *Contact
	Quantity    int
	Price       Money
	IsFreeEvent bool
	Status      RegistrationStatus

	PaymentIntentID   string
	CheckoutSessionID string
	CheckoutExpiresAt *time.Time

	RefundRequestedAt *time.Time
	RefundWithdrawnAt *time.Time
	RefundCompletedAt *time.Time
	StripeRefundID    string

	CreatedAt time.Time
	UpdatedAt *time.Time

	eventBuffer
}

// NewRegistration creates a registration priced at price. Free registrations
// are confirmed immediately; paid ones wait for payment.
func NewRegistration(eventID uuid.UUID, req RegistrationRequest, price Money, isFree bool) (*Registration, error) {
	if eventID == uuid.Nil {
		return nil, validationError("Event ID is required")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	createdAt := now()
	reg := &Registration{
		ID:          uuid.New(),
		EventID:     eventID,
		UserID:      req.UserID,
		Attendees:   append([]AttendeeDetails(nil), req.Attendees...),
		Contact:     copyContact(req.Contact),
		Quantity:    len(req.Attendees),
		Price:       price,
		IsFreeEvent: isFree,
		Status:      RegistrationConfirmed,
		CreatedAt:   createdAt,
	}
	if !isFree {
		expiresAt := createdAt.Add(DefaultCheckoutWindow)
		reg.Status = RegistrationPreliminary
		reg.CheckoutExpiresAt = &expiresAt
	}
	return reg, nil
}

func (r *Registration) IsActive() bool {
	return r.Status.IsActive()
}

func (r *Registration) AttendeeCount() int {
	return len(r.Attendees)
}

func (r *Registration) contactEmail() string {
	if r.Contact == nil {
		return ""
	}
	return r.Contact.Email
}

func (r *Registration) apply(action registrationAction) (time.Time, error) {
	to, err := nextRegistrationStatus(r.Status, action)
	if err != nil {
		return time.Time{}, err
	}
	at := now()
	r.Status = to
	r.UpdatedAt = &at
	return at, nil
}

// CompletePayment records a captured charge and confirms the registration.
func (r *Registration) CompletePayment(paymentIntentID string) error {
	if strings.TrimSpace(paymentIntentID) == "" {
		return validationError("Payment intent ID cannot be empty")
	}
	if _, err := r.apply(actionCompletePayment); err != nil {
		return err
	}
	r.PaymentIntentID = paymentIntentID
	r.CheckoutExpiresAt = nil

	r.raise(PaymentCompletedEvent{
		eventMeta:       stamp(),
		EventID:         r.EventID,
		RegistrationID:  r.ID,
		UserID:          r.UserID,
		ContactEmail:    r.contactEmail(),
		PaymentIntentID: paymentIntentID,
		AmountPaid:      r.Price,
		AttendeeCount:   r.AttendeeCount(),
	})
	return nil
}

// FailPayment cancels a preliminary registration whose charge was declined,
// releasing its seats.
func (r *Registration) FailPayment(reason string) error {
	if _, err := r.apply(actionFailPayment); err != nil {
		return err
	}
	r.CheckoutExpiresAt = nil

	r.raise(PaymentFailedEvent{
		eventMeta:      stamp(),
		EventID:        r.EventID,
		RegistrationID: r.ID,
		UserID:         r.UserID,
		ContactEmail:   r.contactEmail(),
		Quantity:       r.Quantity,
		Reason:         strings.TrimSpace(reason),
	})
	return nil
}

// SetCheckoutSession records the gateway checkout session of a preliminary
// registration.
func (r *Registration) SetCheckoutSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return validationError("Session ID cannot be empty")
	}
	if r.Status != RegistrationPreliminary {
		return conflictError("Cannot set checkout session for registration with status %s", r.Status)
	}
	at := now()
	r.CheckoutSessionID = sessionID
	r.UpdatedAt = &at
	return nil
}

// IsCheckoutExpired reports whether a preliminary registration outlived its
// checkout window at t.
func (r *Registration) IsCheckoutExpired(t time.Time) bool {
	return r.Status == RegistrationPreliminary && r.CheckoutExpiresAt != nil && t.After(*r.CheckoutExpiresAt)
}

func (r *Registration) Cancel() error {
	if _, err := r.apply(actionCancel); err != nil {
		return err
	}
	r.raise(RegistrationCancelledEvent{
		eventMeta:      stamp(),
		EventID:        r.EventID,
		RegistrationID: r.ID,
		UserID:         r.UserID,
		Quantity:       r.Quantity,
	})
	return nil
}

func (r *Registration) RequestRefund() error {
	if _, err := nextRegistrationStatus(r.Status, actionRequestRefund); err != nil {
		return err
	}
	if strings.TrimSpace(r.PaymentIntentID) == "" {
		return conflictError("Cannot request refund without a payment intent. RegistrationId=%s", r.ID)
	}
	at, err := r.apply(actionRequestRefund)
	if err != nil {
		return err
	}
	r.RefundRequestedAt = &at

	r.raise(RefundRequestedEvent{
		eventMeta:       stamp(),
		EventID:         r.EventID,
		RegistrationID:  r.ID,
		UserID:          r.UserID,
		ContactEmail:    r.contactEmail(),
		PaymentIntentID: r.PaymentIntentID,
		RefundAmount:    r.Price,
	})
	return nil
}

func (r *Registration) WithdrawRefundRequest() error {
	at, err := r.apply(actionWithdrawRefund)
	if err != nil {
		return err
	}
	r.RefundWithdrawnAt = &at

	r.raise(RefundWithdrawnEvent{
		eventMeta:      stamp(),
		EventID:        r.EventID,
		RegistrationID: r.ID,
		UserID:         r.UserID,
		ContactEmail:   r.contactEmail(),
	})
	return nil
}

// CompleteRefund records the gateway refund. It succeeds at most once; the
// first refund id is kept.
func (r *Registration) CompleteRefund(stripeRefundID string) error {
	if strings.TrimSpace(stripeRefundID) == "" {
		return validationError("Stripe Refund ID is required to complete refund")
	}
	at, err := r.apply(actionCompleteRefund)
	if err != nil {
		return err
	}
	r.StripeRefundID = stripeRefundID
	r.RefundCompletedAt = &at

	r.raise(RefundCompletedEvent{
		eventMeta:      stamp(),
		EventID:        r.EventID,
		RegistrationID: r.ID,
		UserID:         r.UserID,
		ContactEmail:   r.contactEmail(),
		StripeRefundID: stripeRefundID,
		RefundAmount:   r.Price,
	})
	return nil
}

// UpdateDetails replaces attendees and contact. Paid registrations keep their
// seat count; free ones may grow or shrink.
func (r *Registration) UpdateDetails(attendees []AttendeeDetails, contact *Contact) error {
	if err := validateAttendees(attendees); err != nil {
		return err
	}
	if err := contact.validate(); err != nil {
		return err
	}
	if r.Status != RegistrationPreliminary && r.Status != RegistrationConfirmed {
		return conflictError("Cannot update details for a %s registration", humanStatus(r.Status))
	}
	if !r.IsFreeEvent && len(attendees) != r.AttendeeCount() {
		return validationErrorf(
			"Cannot change attendee count on a paid registration. Current: %d, Requested: %d",
			r.AttendeeCount(), len(attendees))
	}

	previous := r.Quantity
	at := now()
	r.Attendees = append([]AttendeeDetails(nil), attendees...)
	r.Contact = copyContact(contact)
	r.Quantity = len(attendees)
	r.UpdatedAt = &at

	r.raise(RegistrationDetailsUpdatedEvent{
		eventMeta:        stamp(),
		EventID:          r.EventID,
		RegistrationID:   r.ID,
		UserID:           r.UserID,
		PreviousQuantity: previous,
		NewQuantity:      r.Quantity,
	})
	return nil
}

func humanStatus(s RegistrationStatus) string {
	return strings.ToLower(strings.ReplaceAll(string(s), "_", " "))
}

func copyContact(c *Contact) *Contact {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
