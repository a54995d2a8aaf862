package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
)

type ErrorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

type createEventRequest struct {
	Title       string                  `json:"title"`
	OrganizerID uuid.UUID               `json:"organizer_id"`
	Capacity    int                     `json:"capacity"`
	Pricing     *domain.PricingDocument `json:"pricing"`
	Publish     bool                    `json:"publish"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type capacityRequest struct {
	Capacity int `json:"capacity"`
}

type pricingRequest struct {
	Pricing *domain.PricingDocument `json:"pricing"`
}

type registerRequest struct {
	UserID    uuid.UUID                `json:"user_id"`
	Attendees []domain.AttendeeDetails `json:"attendees"`
	Contact   *domain.Contact          `json:"contact"`
}

func (r registerRequest) toDomain() domain.RegistrationRequest {
	return domain.RegistrationRequest{UserID: r.UserID, Attendees: r.Attendees, Contact: r.Contact}
}

type updateDetailsRequest struct {
	Attendees []domain.AttendeeDetails `json:"attendees"`
	Contact   *domain.Contact          `json:"contact"`
}

type userRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type checkoutSessionRequest struct {
	SessionID string `json:"session_id"`
}

type paymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

type paymentFailureRequest struct {
	Reason string `json:"reason"`
}

type refundRequest struct {
	StripeRefundID string `json:"stripe_refund_id"`
}

type signUpListRequest struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

type commitmentRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	Item     string    `json:"item"`
	Quantity int       `json:"quantity"`
}

type passRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       domain.Money `json:"price"`
	Quantity    int          `json:"quantity"`
}

type purchaseRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	Quantity int       `json:"quantity"`
}

type positionResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Position int       `json:"position"`
}

type eventResponse struct {
	ID                uuid.UUID               `json:"id"`
	Title             string                  `json:"title"`
	OrganizerID       uuid.UUID               `json:"organizer_id"`
	Capacity          int                     `json:"capacity"`
	Status            domain.EventStatus      `json:"status"`
	StatusReason      string                  `json:"status_reason,omitempty"`
	IsFree            bool                    `json:"is_free"`
	Pricing           *domain.PricingDocument `json:"pricing,omitempty"`
	LegacyTicketPrice *domain.Money           `json:"legacy_ticket_price,omitempty"`
	Availability      domain.Availability     `json:"availability"`
	SignUpLists       []signUpListResponse    `json:"sign_up_lists"`
	Passes            []passResponse          `json:"passes"`
	Version           int                     `json:"version"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         *time.Time              `json:"updated_at,omitempty"`
}

func newEventResponse(ev *domain.Event) eventResponse {
	resp := eventResponse{
		ID:                ev.ID,
		Title:             ev.Title,
		OrganizerID:       ev.OrganizerID,
		Capacity:          ev.Capacity,
		Status:            ev.Status,
		StatusReason:      ev.StatusReason,
		IsFree:            ev.Free,
		Pricing:           domain.DocumentFor(ev.Pricing),
		LegacyTicketPrice: ev.LegacyTicketPrice,
		Availability:      ev.Availability(),
		SignUpLists:       []signUpListResponse{},
		Passes:            []passResponse{},
		Version:           ev.Version,
		CreatedAt:         ev.CreatedAt,
		UpdatedAt:         ev.UpdatedAt,
	}
	for _, l := range ev.SignUpLists {
		resp.SignUpLists = append(resp.SignUpLists, newSignUpListResponse(l))
	}
	for _, p := range ev.Passes {
		resp.Passes = append(resp.Passes, newPassResponse(p))
	}
	return resp
}

type registrationResponse struct {
	ID                uuid.UUID                 `json:"id"`
	EventID           uuid.UUID                 `json:"event_id"`
	UserID            uuid.UUID                 `json:"user_id"`
	Status            domain.RegistrationStatus `json:"status"`
	Attendees         []domain.AttendeeDetails  `json:"attendees"`
	Contact           *domain.Contact           `json:"contact,omitempty"`
	Quantity          int                       `json:"quantity"`
	TotalPrice        domain.Money              `json:"total_price"`
	IsFreeEvent       bool                      `json:"is_free_event"`
	PaymentIntentID   string                    `json:"payment_intent_id,omitempty"`
	CheckoutSessionID string                    `json:"checkout_session_id,omitempty"`
	CheckoutExpiresAt *time.Time                `json:"checkout_expires_at,omitempty"`
	RefundRequestedAt *time.Time                `json:"refund_requested_at,omitempty"`
	RefundWithdrawnAt *time.Time                `json:"refund_withdrawn_at,omitempty"`
	RefundCompletedAt *time.Time                `json:"refund_completed_at,omitempty"`
	StripeRefundID    string                    `json:"stripe_refund_id,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         *time.Time                `json:"updated_at,omitempty"`
}

func newRegistrationResponse(reg *domain.Registration) registrationResponse {
	return registrationResponse{
		ID:                reg.ID,
		EventID:           reg.EventID,
		UserID:            reg.UserID,
		Status:            reg.Status,
		Attendees:         reg.Attendees,
		Contact:           reg.Contact,
		Quantity:          reg.Quantity,
		TotalPrice:        reg.Price,
		IsFreeEvent:       reg.IsFreeEvent,
		PaymentIntentID:   reg.PaymentIntentID,
		CheckoutSessionID: reg.CheckoutSessionID,
		CheckoutExpiresAt: reg.CheckoutExpiresAt,
		RefundRequestedAt: reg.RefundRequestedAt,
		RefundWithdrawnAt: reg.RefundWithdrawnAt,
		RefundCompletedAt: reg.RefundCompletedAt,
		StripeRefundID:    reg.StripeRefundID,
		CreatedAt:         reg.CreatedAt,
		UpdatedAt:         reg.UpdatedAt,
	}
}

type signUpListResponse struct {
	ID              uuid.UUID                 `json:"id"`
	Category        string                    `json:"category"`
	Description     string                    `json:"description"`
	Type            domain.SignUpType         `json:"type"`
	PredefinedItems []string                  `json:"predefined_items,omitempty"`
	Commitments     []domain.SignUpCommitment `json:"commitments"`
}

func newSignUpListResponse(l *domain.SignUpList) signUpListResponse {
	commitments := l.Commitments
	if commitments == nil {
		commitments = []domain.SignUpCommitment{}
	}
	return signUpListResponse{
		ID:              l.ID,
		Category:        l.Category,
		Description:     l.Description,
		Type:            l.Type,
		PredefinedItems: l.PredefinedItems,
		Commitments:     commitments,
	}
}

type passResponse struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       domain.Money `json:"price"`
	Total       int          `json:"total_quantity"`
	Available   int          `json:"available_quantity"`
}

func newPassResponse(p *domain.EventPass) passResponse {
	return passResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Total:       p.TotalQuantity,
		Available:   p.AvailableQuantity(),
	}
}

type purchaseResponse struct {
	ID         uuid.UUID                 `json:"id"`
	PassID     uuid.UUID                 `json:"pass_id"`
	UserID     uuid.UUID                 `json:"user_id"`
	Quantity   int                       `json:"quantity"`
	TotalPrice domain.Money              `json:"total_price"`
	Status     domain.PassPurchaseStatus `json:"status"`
	QRCode     string                    `json:"qr_code"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func newPurchaseResponse(p *domain.PassPurchase) purchaseResponse {
	return purchaseResponse{
		ID:         p.ID,
		PassID:     p.PassID,
		UserID:     p.UserID,
		Quantity:   p.Quantity,
		TotalPrice: p.TotalPrice,
		Status:     p.Status,
		QRCode:     p.QRCode,
		CreatedAt:  p.CreatedAt,
	}
}
