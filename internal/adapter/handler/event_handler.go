package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/services"
)

// CreateEvent handles POST /events. A missing pricing makes the event free.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pricing, err := pricingFrom(req.Pricing)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ev, err := h.svc.CreateEvent(r.Context(), services.CreateEventRequest{
		Title:       req.Title,
		OrganizerID: req.OrganizerID,
		Capacity:    req.Capacity,
		Pricing:     pricing,
		Publish:     req.Publish,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newEventResponse(ev))
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ev, err := h.svc.GetEvent(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(ev))
}

func (h *EventHandler) Availability(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.svc.Availability(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *EventHandler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req capacityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev, err := h.svc.UpdateCapacity(r.Context(), eventID, req.Capacity)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(ev))
}

// SetPricing handles PUT /events/{id}/pricing. A null pricing makes the
// event free.
func (h *EventHandler) SetPricing(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req pricingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pricing, err := pricingFrom(req.Pricing)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ev, err := h.svc.SetPricing(r.Context(), eventID, pricing)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(ev))
}

func (h *EventHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	h.eventTransition(w, r, nil, func(id uuid.UUID) (*domain.Event, error) {
		return h.svc.PublishEvent(r.Context(), id)
	})
}

func (h *EventHandler) PostponeEvent(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	h.eventTransition(w, r, &req, func(id uuid.UUID) (*domain.Event, error) {
		return h.svc.PostponeEvent(r.Context(), id, req.Reason)
	})
}

func (h *EventHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	h.eventTransition(w, r, &req, func(id uuid.UUID) (*domain.Event, error) {
		return h.svc.CancelEvent(r.Context(), id, req.Reason)
	})
}

func (h *EventHandler) CompleteEvent(w http.ResponseWriter, r *http.Request) {
	h.eventTransition(w, r, nil, func(id uuid.UUID) (*domain.Event, error) {
		return h.svc.CompleteEvent(r.Context(), id)
	})
}

func (h *EventHandler) ArchiveEvent(w http.ResponseWriter, r *http.Request) {
	h.eventTransition(w, r, nil, func(id uuid.UUID) (*domain.Event, error) {
		return h.svc.ArchiveEvent(r.Context(), id)
	})
}

// eventTransition is registrationTransition for lifecycle changes of the
// event itself.
func (h *EventHandler) eventTransition(w http.ResponseWriter, r *http.Request, body any, op func(uuid.UUID) (*domain.Event, error)) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if body != nil && !decodeBody(w, r, body) {
		return
	}

	ev, err := op(eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(ev))
}

func pricingFrom(doc *domain.PricingDocument) (domain.TicketPricing, error) {
	if doc == nil {
		return nil, nil
	}
	return doc.Pricing()
}
