package handler

import (
	"net/http"
)

// JoinWaitingList handles POST /events/{id}/waiting-list and answers with the
// 1-based queue position.
func (h *EventHandler) JoinWaitingList(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}

	position, err := h.svc.JoinWaitingList(r.Context(), eventID, req.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, positionResponse{UserID: req.UserID, Position: position})
}

func (h *EventHandler) LeaveWaitingList(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.svc.LeaveWaitingList(r.Context(), eventID, userID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) WaitingListPosition(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	position, err := h.svc.WaitingListPosition(r.Context(), eventID, userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, positionResponse{UserID: userID, Position: position})
}

// PromoteFromWaitingList registers the user at the head of the queue. The
// body must name that user along with their attendees and contact.
func (h *EventHandler) PromoteFromWaitingList(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reg, err := h.svc.PromoteFromWaitingList(r.Context(), eventID, req.toDomain())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newRegistrationResponse(reg))
}
