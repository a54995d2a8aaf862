package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventPass is a sellable ticket type with a fixed stock, such as a food
// pass or a parking pass.
type EventPass struct {
	ID               uuid.UUID
	Name             string
	Description      string
	Price            Money
	TotalQuantity    int
	ReservedQuantity int
}

func NewEventPass(name, description string, price Money, totalQuantity int) (*EventPass, error) {
	var msgs []string
	name = strings.TrimSpace(name)
	if name == "" {
		msgs = append(msgs, "Pass name is required")
	}
	if price.Currency == "" {
		msgs = append(msgs, "Pass price is required")
	} else if err := price.validate(); err != nil {
		msgs = append(msgs, Messages(err)...)
	}
	if totalQuantity <= 0 {
		msgs = append(msgs, "Quantity must be greater than 0")
	}
	if len(msgs) > 0 {
		return nil, validationError(msgs...)
	}
	return &EventPass{
		ID:            uuid.New(),
		Name:          name,
		Description:   strings.TrimSpace(description),
		Price:         price,
		TotalQuantity: totalQuantity,
	}, nil
}

func (p *EventPass) AvailableQuantity() int {
	return p.TotalQuantity - p.ReservedQuantity
}

func (p *EventPass) Reserve(quantity int) error {
	if quantity <= 0 {
		return validationError("Quantity must be greater than 0")
	}
	if quantity > p.AvailableQuantity() {
		return capacityError("Insufficient passes available")
	}
	p.ReservedQuantity += quantity
	return nil
}

func (p *EventPass) Release(quantity int) {
	p.ReservedQuantity -= quantity
	if p.ReservedQuantity < 0 {
		p.ReservedQuantity = 0
	}
}

type PassPurchaseStatus string

const (
	PassPurchasePending   PassPurchaseStatus = "PENDING"
	PassPurchaseConfirmed PassPurchaseStatus = "CONFIRMED"
	PassPurchaseCancelled PassPurchaseStatus = "CANCELLED"
)

type PassPurchase struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	PassID      uuid.UUID
	UserID      uuid.UUID
	Quantity    int
	TotalPrice  Money
	Status      PassPurchaseStatus
	QRCode      string
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	CancelledAt *time.Time

	eventBuffer
}

func (p *PassPurchase) confirm() error {
	switch p.Status {
	case PassPurchaseConfirmed:
		return conflictError("Purchase is already confirmed")
	case PassPurchaseCancelled:
		return conflictError("Cannot confirm a cancelled purchase")
	}
	at := now()
	p.Status = PassPurchaseConfirmed
	p.ConfirmedAt = &at
	p.raise(PassPurchasedEvent{
		eventMeta:  stamp(),
		EventID:    p.EventID,
		PurchaseID: p.ID,
		PassID:     p.PassID,
		UserID:     p.UserID,
		Quantity:   p.Quantity,
	})
	return nil
}

func (p *PassPurchase) cancel() error {
	if p.Status == PassPurchaseCancelled {
		return conflictError("Purchase is already cancelled")
	}
	at := now()
	p.Status = PassPurchaseCancelled
	p.CancelledAt = &at
	p.raise(PassCancelledEvent{
		eventMeta:  stamp(),
		EventID:    p.EventID,
		PurchaseID: p.ID,
		PassID:     p.PassID,
		UserID:     p.UserID,
		Quantity:   p.Quantity,
	})
	return nil
}

// AddPass registers a pass type; names are unique per event ignoring case.
func (e *Event) AddPass(pass *EventPass) error {
	if pass == nil {
		return validationError("Event pass cannot be nil")
	}
	for _, p := range e.Passes {
		if strings.EqualFold(p.Name, pass.Name) {
			return conflictError("A pass with the name '%s' already exists", pass.Name)
		}
	}
	e.Passes = append(e.Passes, pass)
	e.touch()
	e.raise(PassAddedEvent{eventMeta: stamp(), EventID: e.ID, PassID: pass.ID, Name: pass.Name})
	return nil
}

func (e *Event) RemovePass(passID uuid.UUID) error {
	for i, p := range e.Passes {
		if p.ID != passID {
			continue
		}
		if p.ReservedQuantity > 0 {
			return conflictError("Cannot remove pass with existing reservations")
		}
		e.Passes = append(e.Passes[:i], e.Passes[i+1:]...)
		e.touch()
		e.raise(PassRemovedEvent{eventMeta: stamp(), EventID: e.ID, PassID: passID})
		return nil
	}
	return conflictError("Pass with ID %s not found", passID)
}

func (e *Event) Pass(passID uuid.UUID) (*EventPass, bool) {
	for _, p := range e.Passes {
		if p.ID == passID {
			return p, true
		}
	}
	return nil, false
}

func (e *Event) Purchase(purchaseID uuid.UUID) (*PassPurchase, bool) {
	for _, p := range e.Purchases {
		if p.ID == purchaseID {
			return p, true
		}
	}
	return nil, false
}

// PurchasePass reserves passes for a user. The purchase stays pending until
// payment confirms it.
func (e *Event) PurchasePass(userID, passID uuid.UUID, quantity int) (*PassPurchase, error) {
	if userID == uuid.Nil {
		return nil, validationError("User ID is required")
	}
	pass, ok := e.Pass(passID)
	if !ok {
		return nil, conflictError("Pass with ID %s not found", passID)
	}
	total, err := pass.Price.Multiply(quantity)
	if err != nil {
		return nil, err
	}
	if err := pass.Reserve(quantity); err != nil {
		return nil, err
	}

	purchase := &PassPurchase{
		ID:         uuid.New(),
		EventID:    e.ID,
		PassID:     pass.ID,
		UserID:     userID,
		Quantity:   quantity,
		TotalPrice: total,
		Status:     PassPurchasePending,
		QRCode:     strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")),
		CreatedAt:  now(),
	}
	e.Purchases = append(e.Purchases, purchase)
	e.touch()
	return purchase, nil
}

func (e *Event) ConfirmPassPurchase(purchaseID uuid.UUID) error {
	purchase, ok := e.Purchase(purchaseID)
	if !ok {
		return conflictError("Purchase %s not found", purchaseID)
	}
	if err := purchase.confirm(); err != nil {
		return err
	}
	e.touch()
	return nil
}

// CancelPassPurchase cancels a pending or confirmed purchase and returns its
// passes to stock.
func (e *Event) CancelPassPurchase(purchaseID uuid.UUID) error {
	purchase, ok := e.Purchase(purchaseID)
	if !ok {
		return conflictError("Purchase %s not found", purchaseID)
	}
	if err := purchase.cancel(); err != nil {
		return err
	}
	if pass, ok := e.Pass(purchase.PassID); ok {
		pass.Release(purchase.Quantity)
	}
	e.touch()
	return nil
}
