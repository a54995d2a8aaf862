package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
	"github.com/srgjo27/community_ticket/internal/core/services"
)

type EventHandler struct {
	svc *services.EventService
	log *slog.Logger
}

func NewEventHandler(svc *services.EventService, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{svc: svc, log: logger.With("component", "http")}
}

// Routes builds the router for the whole API.
func (h *EventHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetEvent)
			r.Get("/availability", h.Availability)
			r.Put("/capacity", h.UpdateCapacity)
			r.Put("/pricing", h.SetPricing)

			r.Post("/publish", h.PublishEvent)
			r.Post("/postpone", h.PostponeEvent)
			r.Post("/cancel", h.CancelEvent)
			r.Post("/complete", h.CompleteEvent)
			r.Post("/archive", h.ArchiveEvent)

			r.Post("/registrations", h.Register)
			r.Delete("/registrations/{userID}", h.CancelRegistration)

			r.Post("/waiting-list", h.JoinWaitingList)
			r.Post("/waiting-list/promote", h.PromoteFromWaitingList)
			r.Get("/waiting-list/{userID}", h.WaitingListPosition)
			r.Delete("/waiting-list/{userID}", h.LeaveWaitingList)

			r.Post("/signups", h.AddSignUpList)
			r.Delete("/signups/{listID}", h.RemoveSignUpList)
			r.Post("/signups/{listID}/commitments", h.CommitToSignUp)
			r.Delete("/signups/{listID}/commitments/{userID}", h.CancelSignUpCommitment)

			r.Post("/passes", h.AddPass)
			r.Delete("/passes/{passID}", h.RemovePass)
			r.Post("/passes/{passID}/purchases", h.PurchasePass)
			r.Post("/purchases/{purchaseID}/confirm", h.ConfirmPassPurchase)
			r.Post("/purchases/{purchaseID}/cancel", h.CancelPassPurchase)
		})
	})

	r.Route("/registrations/{registrationID}", func(r chi.Router) {
		r.Get("/", h.GetRegistration)
		r.Put("/", h.UpdateRegistrationDetails)
		r.Post("/checkout-session", h.SetCheckoutSession)
		r.Post("/payment", h.CompletePayment)
		r.Post("/payment-failure", h.FailPayment)
		r.Post("/refund-request", h.RequestRefund)
		r.Delete("/refund-request", h.WithdrawRefundRequest)
		r.Post("/refund", h.CompleteRefund)
	})

	return r
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Messages: details})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathID parses a uuid URL parameter, writing a 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// respondError maps core errors onto status codes. Anything unexpected is
// logged and hidden from the client.
func (h *EventHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation failed", domain.Messages(err)...)
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrCapacity):
		writeError(w, http.StatusConflict, "insufficient capacity", domain.Messages(err)...)
	case errors.Is(err, domain.ErrStateConflict):
		writeError(w, http.StatusConflict, "state conflict", domain.Messages(err)...)
	case errors.Is(err, ports.ErrConcurrentModification), errors.Is(err, ports.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
