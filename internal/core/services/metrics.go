package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
)

const metricsNamespace = "community_ticket"

var (
	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "registrations_total",
		Help:      "Registration attempts by outcome.",
	}, []string{"outcome"})

	waitingListOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "waiting_list_operations_total",
		Help:      "Waiting list joins, leaves and promotions by outcome.",
	}, []string{"operation", "outcome"})

	refundTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "refund_transitions_total",
		Help:      "Refund state changes by transition and outcome.",
	}, []string{"transition", "outcome"})

	paymentTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "payment_transitions_total",
		Help:      "Payment webhook outcomes by transition.",
	}, []string{"transition", "outcome"})

	eventTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "event_transitions_total",
		Help:      "Event lifecycle changes by transition and outcome.",
	}, []string{"transition", "outcome"})

	checkoutsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "checkouts_expired_total",
		Help:      "Preliminary registrations cancelled after their checkout window.",
	})

	outboxMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "outbox_messages_total",
		Help:      "Domain events relayed to the broker by result.",
	}, []string{"result"})
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrCapacity):
		return "capacity"
	case errors.Is(err, domain.ErrStateConflict),
		errors.Is(err, ports.ErrConcurrentModification),
		errors.Is(err, ports.ErrLockNotAcquired):
		return "conflict"
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
