package handler

import (
	"net/http"
)

func (h *EventHandler) AddSignUpList(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req signUpListRequest
	if !decodeBody(w, r, &req) {
		return
	}

	list, err := h.svc.AddSignUpList(r.Context(), eventID, req.Category, req.Description, req.Items)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newSignUpListResponse(list))
}

func (h *EventHandler) RemoveSignUpList(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	listID, ok := pathID(w, r, "listID")
	if !ok {
		return
	}

	if err := h.svc.RemoveSignUpList(r.Context(), eventID, listID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) CommitToSignUp(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	listID, ok := pathID(w, r, "listID")
	if !ok {
		return
	}
	var req commitmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.CommitToSignUp(r.Context(), eventID, listID, req.UserID, req.Item, req.Quantity); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) CancelSignUpCommitment(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	listID, ok := pathID(w, r, "listID")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.svc.CancelSignUpCommitment(r.Context(), eventID, listID, userID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) AddPass(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req passRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pass, err := h.svc.AddPass(r.Context(), eventID, req.Name, req.Description, req.Price, req.Quantity)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newPassResponse(pass))
}

func (h *EventHandler) RemovePass(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	passID, ok := pathID(w, r, "passID")
	if !ok {
		return
	}

	if err := h.svc.RemovePass(r.Context(), eventID, passID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) PurchasePass(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	passID, ok := pathID(w, r, "passID")
	if !ok {
		return
	}
	var req purchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	purchase, err := h.svc.PurchasePass(r.Context(), eventID, req.UserID, passID, req.Quantity)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newPurchaseResponse(purchase))
}

func (h *EventHandler) ConfirmPassPurchase(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	purchaseID, ok := pathID(w, r, "purchaseID")
	if !ok {
		return
	}

	if err := h.svc.ConfirmPassPurchase(r.Context(), eventID, purchaseID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) CancelPassPurchase(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	purchaseID, ok := pathID(w, r, "purchaseID")
	if !ok {
		return
	}

	if err := h.svc.CancelPassPurchase(r.Context(), eventID, purchaseID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
