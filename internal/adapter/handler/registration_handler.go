package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
)

// Register handles POST /events/{id}/registrations.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reg, err := h.svc.Register(r.Context(), eventID, req.toDomain())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newRegistrationResponse(reg))
}

func (h *EventHandler) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.svc.CancelRegistration(r.Context(), eventID, userID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID, ok := pathID(w, r, "registrationID")
	if !ok {
		return
	}

	reg, err := h.svc.GetRegistration(r.Context(), registrationID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newRegistrationResponse(reg))
}

func (h *EventHandler) UpdateRegistrationDetails(w http.ResponseWriter, r *http.Request) {
	registrationID, ok := pathID(w, r, "registrationID")
	if !ok {
		return
	}
	var req updateDetailsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reg, err := h.svc.UpdateRegistrationDetails(r.Context(), registrationID, req.Attendees, req.Contact)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newRegistrationResponse(reg))
}

// The payment endpoints below are called by the payment gateway's webhook
// adapter, which retries on any non-2xx answer.

func (h *EventHandler) SetCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req checkoutSessionRequest
	h.registrationTransition(w, r, &req, func(id uuid.UUID) (*domain.Registration, error) {
		return h.svc.SetCheckoutSession(r.Context(), id, req.SessionID)
	})
}

func (h *EventHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	h.registrationTransition(w, r, &req, func(id uuid.UUID) (*domain.Registration, error) {
		return h.svc.CompletePayment(r.Context(), id, req.PaymentIntentID)
	})
}

func (h *EventHandler) FailPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentFailureRequest
	h.registrationTransition(w, r, &req, func(id uuid.UUID) (*domain.Registration, error) {
		return h.svc.FailPayment(r.Context(), id, req.Reason)
	})
}

func (h *EventHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	h.registrationTransition(w, r, nil, func(id uuid.UUID) (*domain.Registration, error) {
		return h.svc.RequestRefund(r.Context(), id)
	})
}

func (h *EventHandler) WithdrawRefundRequest(w http.ResponseWriter, r *http.Request) {
	h.registrationTransition(w, r, nil, func(id uuid.UUID) (*domain.Registration, error) {
		return h.svc.WithdrawRefundRequest(r.Context(), id)
	})
}

func (h *EventHandler) CompleteRefund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	h.registrationTransition(w, r, &req, func(id uuid.UUID) (*domain.Registration, error) {
		return h.svc.CompleteRefund(r.Context(), id, req.StripeRefundID)
	})
}

// registrationTransition parses the registration id and the optional body,
// then runs op and renders the updated registration.
func (h *EventHandler) registrationTransition(w http.ResponseWriter, r *http.Request, body any, op func(uuid.UUID) (*domain.Registration, error)) {
	registrationID, ok := pathID(w, r, "registrationID")
	if !ok {
		return
	}
	if body != nil && !decodeBody(w, r, body) {
		return
	}

	reg, err := op(registrationID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newRegistrationResponse(reg))
}
