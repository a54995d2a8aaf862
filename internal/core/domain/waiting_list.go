package domain

import (
	"time"

	"github.com/google/uuid"
)

// WaitingListEntry is a user queued for a seat. Positions are 1-based and
// always contiguous across the list.
type WaitingListEntry struct {
	UserID   uuid.UUID `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	Position int       `json:"position"`
}

// AddToWaitingList queues a user behind everyone already waiting. Only a
// full event has a waiting list.
func (e *Event) AddToWaitingList(userID uuid.UUID) error {
	if err := e.requireOpen("join the waiting list"); err != nil {
		return err
	}
	if userID == uuid.Nil {
		return validationError("User ID is required")
	}
	if e.HasCapacityFor(1) {
		return capacityError("Event still has available capacity")
	}
	if e.IsUserRegistered(userID) {
		return conflictError("User is already registered for this event")
	}
	if e.waitingIndex(userID) >= 0 {
		return conflictError("User is already on the waiting list")
	}

	position := len(e.WaitingList) + 1
	e.WaitingList = append(e.WaitingList, WaitingListEntry{
		UserID:   userID,
		JoinedAt: now(),
		Position: position,
	})
	e.touch()
	e.raise(UserAddedToWaitingListEvent{eventMeta: stamp(), EventID: e.ID, UserID: userID, Position: position})
	return nil
}

func (e *Event) RemoveFromWaitingList(userID uuid.UUID) error {
	idx := e.waitingIndex(userID)
	if idx < 0 {
		return conflictError("User is not on the waiting list")
	}
	e.removeWaitingAt(idx)
	e.touch()
	e.raise(UserRemovedFromWaitingListEvent{eventMeta: stamp(), EventID: e.ID, UserID: userID})
	return nil
}

// PromoteFromWaitingList turns a waiting user's accepted offer into a
// registration. The result is the same as a direct Register.
func (e *Event) PromoteFromWaitingList(req RegistrationRequest) (*Registration, error) {
	if err := e.requireOpen("promote from the waiting list"); err != nil {
		return nil, err
	}
	idx := e.waitingIndex(req.UserID)
	if idx < 0 {
		return nil, conflictError("User is not on the waiting list")
	}
	if !e.HasCapacityFor(max(len(req.Attendees), 1)) {
		return nil, capacityError("No capacity available to promote user")
	}

	entry := e.WaitingList[idx]
	e.removeWaitingAt(idx)

	reg, err := e.Register(req)
	if err != nil {
		e.restoreWaitingAt(idx, entry)
		return nil, err
	}
	e.raise(UserPromotedFromWaitingListEvent{
		eventMeta:      stamp(),
		EventID:        e.ID,
		UserID:         req.UserID,
		RegistrationID: reg.ID,
	})
	return reg, nil
}

// GetWaitingListPosition returns the user's 1-based position, or 0 when the
// user is not waiting.
func (e *Event) GetWaitingListPosition(userID uuid.UUID) int {
	if idx := e.waitingIndex(userID); idx >= 0 {
		return e.WaitingList[idx].Position
	}
	return 0
}

func (e *Event) waitingIndex(userID uuid.UUID) int {
	for i, w := range e.WaitingList {
		if w.UserID == userID {
			return i
		}
	}
	return -1
}

func (e *Event) removeWaitingAt(idx int) {
	e.WaitingList = append(e.WaitingList[:idx], e.WaitingList[idx+1:]...)
	e.renumberWaitingList(idx)
}

func (e *Event) restoreWaitingAt(idx int, entry WaitingListEntry) {
	e.WaitingList = append(e.WaitingList, WaitingListEntry{})
	copy(e.WaitingList[idx+1:], e.WaitingList[idx:])
	e.WaitingList[idx] = entry
	e.renumberWaitingList(idx)
}

func (e *Event) renumberWaitingList(from int) {
	for i := from; i < len(e.WaitingList); i++ {
		e.WaitingList[i].Position = i + 1
	}
}
