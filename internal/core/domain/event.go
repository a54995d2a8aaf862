package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is the aggregate that owns capacity, registrations, the waiting list,
// sign-up lists and passes. Load, mutate and save it as one unit.
type Event struct {
	ID          uuid.UUID
	Title       string
	OrganizerID uuid.UUID
	Capacity    int
	Status      EventStatus
	// StatusReason explains the latest postponement or cancellation.
	StatusReason string

	// Pricing is nil for free events and for legacy events priced through
	// LegacyTicketPrice.
	Pricing           TicketPricing
	LegacyTicketPrice *Money
	Free              bool

	Registrations []*Registration
	WaitingList   []WaitingListEntry
	SignUpLists   []*SignUpList
	Passes        []*EventPass
	Purchases     []*PassPurchase

	Version   int
	CreatedAt time.Time
	UpdatedAt *time.Time

	eventBuffer
}

// NewEvent creates a draft event. A nil pricing makes the event free.
func NewEvent(title string, organizerID uuid.UUID, capacity int, pricing TicketPricing) (*Event, error) {
	var msgs []string
	title = strings.TrimSpace(title)
	if title == "" {
		msgs = append(msgs, "Title is required")
	}
	if organizerID == uuid.Nil {
		msgs = append(msgs, "Organizer ID is required")
	}
	if capacity <= 0 {
		msgs = append(msgs, "Capacity must be greater than 0")
	}
	if len(msgs) > 0 {
		return nil, validationError(msgs...)
	}

	return &Event{
		ID:          uuid.New(),
		Title:       title,
		OrganizerID: organizerID,
		Capacity:    capacity,
		Status:      EventDraft,
		Pricing:     pricing,
		Free:        pricing == nil,
		CreatedAt:   now(),
	}, nil
}

func (e *Event) touch() {
	at := now()
	e.UpdatedAt = &at
}

// SetPricing replaces the pricing as a whole and marks the event as paid.
func (e *Event) SetPricing(pricing TicketPricing) error {
	if pricing == nil {
		return validationError("Ticket pricing is required; use MakeFree for free events")
	}
	e.Pricing = pricing
	e.Free = false
	e.touch()
	e.raise(EventPricingUpdatedEvent{eventMeta: stamp(), EventID: e.ID, PricingType: pricing.Type()})
	return nil
}

func (e *Event) MakeFree() {
	e.Pricing = nil
	e.LegacyTicketPrice = nil
	e.Free = true
	e.touch()
	e.raise(EventPricingUpdatedEvent{eventMeta: stamp(), EventID: e.ID, Free: true})
}

// PriceFor prices attendees in the context of this event. A paid event
// without any pricing is a configuration fault, never a free ticket.
func (e *Event) PriceFor(attendees []AttendeeDetails) (Money, error) {
	if len(attendees) == 0 {
		return Money{}, ErrEmptyAttendeeList
	}
	switch {
	case e.Free:
		return CalculatePrice(nil, attendees)
	case e.Pricing != nil:
		return CalculatePrice(e.Pricing, attendees)
	case e.LegacyTicketPrice != nil:
		return e.LegacyTicketPrice.Multiply(len(attendees))
	default:
		return Money{}, ErrPricingNotConfigured
	}
}

// ActiveAttendeeCount sums the attendees of registrations that hold seats.
func (e *Event) ActiveAttendeeCount() int {
	total := 0
	for _, r := range e.Registrations {
		if r.IsActive() {
			total += r.AttendeeCount()
		}
	}
	return total
}

func (e *Event) RemainingCapacity() int {
	if left := e.Capacity - e.ActiveAttendeeCount(); left > 0 {
		return left
	}
	return 0
}

func (e *Event) HasCapacityFor(quantity int) bool {
	return e.ActiveAttendeeCount()+quantity <= e.Capacity
}

func (e *Event) IsAtCapacity() bool {
	return e.ActiveAttendeeCount() >= e.Capacity
}

// Availability is a read-only snapshot of seat usage.
type Availability struct {
	EventID       uuid.UUID `json:"event_id"`
	Capacity      int       `json:"capacity"`
	Active        int       `json:"active_attendees"`
	Remaining     int       `json:"remaining"`
	WaitingListed int       `json:"waiting_list_length"`
	AtCapacity    bool      `json:"at_capacity"`
}

func (e *Event) Availability() Availability {
	return Availability{
		EventID:       e.ID,
		Capacity:      e.Capacity,
		Active:        e.ActiveAttendeeCount(),
		Remaining:     e.RemainingCapacity(),
		WaitingListed: len(e.WaitingList),
		AtCapacity:    e.IsAtCapacity(),
	}
}

// ActiveRegistration returns the user's seat-holding registration, if any.
func (e *Event) ActiveRegistration(userID uuid.UUID) (*Registration, bool) {
	for _, r := range e.Registrations {
		if r.UserID == userID && r.IsActive() {
			return r, true
		}
	}
	return nil, false
}

func (e *Event) Registration(id uuid.UUID) (*Registration, bool) {
	for _, r := range e.Registrations {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (e *Event) IsUserRegistered(userID uuid.UUID) bool {
	_, ok := e.ActiveRegistration(userID)
	return ok
}

// Register signs a user up if their attendees fit in the remaining capacity.
// On a capacity error the caller should offer the waiting list instead.
func (e *Event) Register(req RegistrationRequest) (*Registration, error) {
	if err := e.requireOpen("register"); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if e.IsUserRegistered(req.UserID) {
		return nil, conflictError("User is already registered for this event")
	}
	if !e.HasCapacityFor(len(req.Attendees)) {
		return nil, capacityError("Event is at full capacity: %d of %d seats left, %d requested",
			e.RemainingCapacity(), e.Capacity, len(req.Attendees))
	}

	price, err := e.PriceFor(req.Attendees)
	if err != nil {
		return nil, err
	}
	reg, err := NewRegistration(e.ID, req, price, e.Free)
	if err != nil {
		return nil, err
	}

	if idx := e.waitingIndex(req.UserID); idx >= 0 {
		e.removeWaitingAt(idx)
		e.raise(UserRemovedFromWaitingListEvent{eventMeta: stamp(), EventID: e.ID, UserID: req.UserID})
	}

	e.Registrations = append(e.Registrations, reg)
	e.touch()
	e.raise(RegistrationCreatedEvent{
		eventMeta:      stamp(),
		EventID:        e.ID,
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		Quantity:       reg.Quantity,
		Status:         reg.Status,
		TotalPrice:     reg.Price,
	})
	return reg, nil
}

// CancelRegistration cancels the user's active registration. When seats free
// up and people are waiting, the head of the waiting list is notified; it is
// not promoted automatically.
func (e *Event) CancelRegistration(userID uuid.UUID) error {
	reg, ok := e.ActiveRegistration(userID)
	if !ok {
		return conflictError("User is not registered for this event")
	}
	return e.cancel(reg)
}

// CancelRegistrationByID is CancelRegistration for callers that only know
// the registration, such as checkout expiry.
func (e *Event) CancelRegistrationByID(registrationID uuid.UUID) error {
	reg, ok := e.Registration(registrationID)
	if !ok {
		return conflictError("Registration %s does not belong to this event", registrationID)
	}
	return e.cancel(reg)
}

// FailPayment cancels a registration whose payment was declined. Like a
// cancellation, the freed seats are offered to the head of the waiting list.
func (e *Event) FailPayment(registrationID uuid.UUID, reason string) error {
	reg, ok := e.Registration(registrationID)
	if !ok {
		return conflictError("Registration %s does not belong to this event", registrationID)
	}
	if err := reg.FailPayment(reason); err != nil {
		return err
	}
	e.touch()
	e.notifyWaitingListHead()
	return nil
}

func (e *Event) cancel(reg *Registration) error {
	if err := reg.Cancel(); err != nil {
		return err
	}
	e.touch()
	e.notifyWaitingListHead()
	return nil
}

// ExpireCheckouts cancels preliminary registrations whose checkout window
// closed before t and returns how many were cancelled.
func (e *Event) ExpireCheckouts(t time.Time) int {
	expired := 0
	for _, r := range e.Registrations {
		if !r.IsCheckoutExpired(t) {
			continue
		}
		if err := r.Cancel(); err == nil {
			expired++
		}
	}
	if expired > 0 {
		e.touch()
		e.notifyWaitingListHead()
	}
	return expired
}

func (e *Event) notifyWaitingListHead() {
	if len(e.WaitingList) == 0 || !e.HasCapacityFor(1) {
		return
	}
	e.raise(WaitingListSpotAvailableEvent{
		eventMeta: stamp(),
		EventID:   e.ID,
		UserID:    e.WaitingList[0].UserID,
	})
}

// UpdateRegistrationDetails changes attendees and contact of a registration.
// A free registration may only grow into seats that are still available.
func (e *Event) UpdateRegistrationDetails(registrationID uuid.UUID, attendees []AttendeeDetails, contact *Contact) error {
	reg, ok := e.Registration(registrationID)
	if !ok {
		return conflictError("Registration %s does not belong to this event", registrationID)
	}
	if delta := len(attendees) - reg.AttendeeCount(); reg.IsFreeEvent && reg.IsActive() && delta > 0 && !e.HasCapacityFor(delta) {
		return capacityError("Insufficient capacity to add %d attendees", delta)
	}
	if err := reg.UpdateDetails(attendees, contact); err != nil {
		return err
	}
	e.touch()
	return nil
}

func (e *Event) UpdateCapacity(capacity int) error {
	if capacity <= 0 {
		return validationError("Capacity must be greater than 0")
	}
	if active := e.ActiveAttendeeCount(); capacity < active {
		return capacityError("Cannot reduce capacity below current registrations (%d)", active)
	}
	previous := e.Capacity
	e.Capacity = capacity
	e.touch()
	e.raise(EventCapacityUpdatedEvent{
		eventMeta:        stamp(),
		EventID:          e.ID,
		PreviousCapacity: previous,
		NewCapacity:      capacity,
	})
	e.notifyWaitingListHead()
	return nil
}

// PullDomainEvents drains the events raised by the aggregate and everything
// it owns, in the order they were raised.
func (e *Event) PullDomainEvents() []DomainEvent {
	out := e.drain()
	for _, r := range e.Registrations {
		out = append(out, r.drain()...)
	}
	for _, l := range e.SignUpLists {
		out = append(out, l.drain()...)
	}
	for _, p := range e.Purchases {
		out = append(out, p.drain()...)
	}
	slices.SortStableFunc(out, func(a, b DomainEvent) int {
		return cmp.Compare(sequenceOf(a), sequenceOf(b))
	})
	return out
}
