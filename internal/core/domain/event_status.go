package domain

import "strings"

type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"
	EventPublished EventStatus = "PUBLISHED"
	EventPostponed EventStatus = "POSTPONED"
	EventCancelled EventStatus = "CANCELLED"
	EventCompleted EventStatus = "COMPLETED"
	EventArchived  EventStatus = "ARCHIVED"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventDraft, EventPublished, EventPostponed, EventCancelled, EventCompleted, EventArchived:
		return true
	}
	return false
}

type eventAction string

const (
	publishEvent  eventAction = "publish"
	postponeEvent eventAction = "postpone"
	cancelEvent   eventAction = "cancel"
	completeEvent eventAction = "complete"
	archiveEvent  eventAction = "archive"
)

// A postponed event goes back on sale through publish once it has a new date.
var eventTransitions = map[EventStatus]map[eventAction]EventStatus{
	EventDraft: {
		publishEvent: EventPublished,
	},
	EventPublished: {
		postponeEvent: EventPostponed,
		cancelEvent:   EventCancelled,
		completeEvent: EventCompleted,
	},
	EventPostponed: {
		publishEvent: EventPublished,
		cancelEvent:  EventCancelled,
	},
	EventCompleted: {
		archiveEvent: EventArchived,
	},
}

func (e *Event) transition(action eventAction) (EventStatus, error) {
	to, ok := eventTransitions[e.Status][action]
	if !ok {
		return e.Status, conflictError("Cannot %s event with status %s", action, e.Status)
	}
	previous := e.Status
	e.Status = to
	e.touch()
	return previous, nil
}

// IsOpen reports whether the event takes registrations and waiting-list
// entries.
func (e *Event) IsOpen() bool {
	return e.Status == EventPublished
}

func (e *Event) Publish() error {
	previous, err := e.transition(publishEvent)
	if err != nil {
		return err
	}
	e.StatusReason = ""
	e.raise(EventPublishedEvent{eventMeta: stamp(), EventID: e.ID, OrganizerID: e.OrganizerID, PreviousStatus: previous})
	return nil
}

func (e *Event) Postpone(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return validationError("Postponement reason is required")
	}
	if _, err := e.transition(postponeEvent); err != nil {
		return err
	}
	e.StatusReason = reason
	e.raise(EventPostponedEvent{eventMeta: stamp(), EventID: e.ID, Reason: reason})
	return nil
}

// Cancel calls the event off. Registrations are left as they are; refunds
// follow the normal refund flow.
func (e *Event) Cancel(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return validationError("Cancellation reason is required")
	}
	if _, err := e.transition(cancelEvent); err != nil {
		return err
	}
	e.StatusReason = reason
	e.raise(EventCancelledEvent{eventMeta: stamp(), EventID: e.ID, Reason: reason})
	return nil
}

func (e *Event) Complete() error {
	if _, err := e.transition(completeEvent); err != nil {
		return err
	}
	e.raise(EventCompletedEvent{eventMeta: stamp(), EventID: e.ID})
	return nil
}

func (e *Event) Archive() error {
	if _, err := e.transition(archiveEvent); err != nil {
		return err
	}
	e.raise(EventArchivedEvent{eventMeta: stamp(), EventID: e.ID})
	return nil
}

func (e *Event) requireOpen(what string) error {
	if !e.IsOpen() {
		return conflictError("Cannot %s for %s event", what, strings.ToLower(string(e.Status)))
	}
	return nil
}
