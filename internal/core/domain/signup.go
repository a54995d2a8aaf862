package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SignUpType string

const (
	SignUpOpen       SignUpType = "OPEN"
	SignUpPredefined SignUpType = "PREDEFINED"
)

// SignUpList collects volunteer commitments for one category, such as food
// for a potluck. Each user commits at most once per list.
type SignUpList struct {
	ID              uuid.UUID
	Category        string
	Description     string
	Type            SignUpType
	PredefinedItems []string
	Commitments     []SignUpCommitment
	CreatedAt       time.Time

	eventBuffer
}

type SignUpCommitment struct {
	UserID          uuid.UUID `json:"user_id"`
	ItemDescription string    `json:"item_description"`
	Quantity        int       `json:"quantity"`
	CommittedAt     time.Time `json:"committed_at"`
}

// NewSignUpList creates an open list. Predefined lists carry their items and
// come from NewSignUpListWithPredefinedItems.
func NewSignUpList(category, description string, signUpType SignUpType) (*SignUpList, error) {
	switch signUpType {
	case SignUpOpen:
	case SignUpPredefined:
		return nil, validationError("Predefined sign-up lists need items; use NewSignUpListWithPredefinedItems")
	default:
		return nil, validationErrorf("Unknown sign-up type %q", signUpType)
	}
	return newSignUpList(category, description, SignUpOpen, nil)
}

func NewSignUpListWithPredefinedItems(category, description string, items []string) (*SignUpList, error) {
	if len(items) == 0 {
		return nil, validationError("Predefined items list cannot be empty")
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return nil, validationError("Predefined items cannot be blank")
		}
	}
	return newSignUpList(category, description, SignUpPredefined, append([]string(nil), items...))
}

func newSignUpList(category, description string, signUpType SignUpType, items []string) (*SignUpList, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, validationError("Category cannot be empty")
	}
	return &SignUpList{
		ID:              uuid.New(),
		Category:        category,
		Description:     strings.TrimSpace(description),
		Type:            signUpType,
		PredefinedItems: items,
		CreatedAt:       now(),
	}, nil
}

func (l *SignUpList) HasCommitments() bool {
	return len(l.Commitments) > 0
}

func (l *SignUpList) Commitment(userID uuid.UUID) (SignUpCommitment, bool) {
	if idx := l.commitmentIndex(userID); idx >= 0 {
		return l.Commitments[idx], true
	}
	return SignUpCommitment{}, false
}

// AddCommitment records what a user will bring. Predefined lists only accept
// their own items, matched exactly.
func (l *SignUpList) AddCommitment(userID uuid.UUID, itemDescription string, quantity int) error {
	if userID == uuid.Nil {
		return validationError("User ID is required")
	}
	if strings.TrimSpace(itemDescription) == "" {
		return validationError("Item description is required")
	}
	if quantity <= 0 {
		return validationError("Quantity must be greater than 0")
	}
	if l.Type == SignUpPredefined && !l.isPredefined(itemDescription) {
		return validationErrorf("Item '%s' is not in the predefined items list", itemDescription)
	}
	if l.commitmentIndex(userID) >= 0 {
		return conflictError("User has already committed to this sign-up")
	}

	l.Commitments = append(l.Commitments, SignUpCommitment{
		UserID:          userID,
		ItemDescription: itemDescription,
		Quantity:        quantity,
		CommittedAt:     now(),
	})
	l.raise(UserCommittedToSignUpEvent{
		eventMeta:       stamp(),
		SignUpListID:    l.ID,
		UserID:          userID,
		ItemDescription: itemDescription,
		Quantity:        quantity,
	})
	return nil
}

func (l *SignUpList) CancelCommitment(userID uuid.UUID) error {
	idx := l.commitmentIndex(userID)
	if idx < 0 {
		return conflictError("User has no commitment to cancel")
	}
	removed := l.Commitments[idx]
	l.Commitments = append(l.Commitments[:idx], l.Commitments[idx+1:]...)
	l.raise(UserCancelledSignUpCommitmentEvent{
		eventMeta:       stamp(),
		SignUpListID:    l.ID,
		UserID:          userID,
		ItemDescription: removed.ItemDescription,
	})
	return nil
}

func (l *SignUpList) isPredefined(item string) bool {
	for _, p := range l.PredefinedItems {
		if p == item {
			return true
		}
	}
	return false
}

func (l *SignUpList) commitmentIndex(userID uuid.UUID) int {
	for i, c := range l.Commitments {
		if c.UserID == userID {
			return i
		}
	}
	return -1
}

// AddSignUpList attaches a list; categories are unique per event ignoring
// case.
func (e *Event) AddSignUpList(list *SignUpList) error {
	if list == nil {
		return validationError("Sign-up list cannot be nil")
	}
	for _, existing := range e.SignUpLists {
		if strings.EqualFold(existing.Category, list.Category) {
			return conflictError("A sign-up list with category '%s' already exists", list.Category)
		}
	}
	e.SignUpLists = append(e.SignUpLists, list)
	e.touch()
	e.raise(SignUpListAddedEvent{eventMeta: stamp(), EventID: e.ID, SignUpListID: list.ID, Category: list.Category})
	return nil
}

// RemoveSignUpList detaches a list that nobody has committed to yet.
func (e *Event) RemoveSignUpList(listID uuid.UUID) error {
	for i, l := range e.SignUpLists {
		if l.ID != listID {
			continue
		}
		if l.HasCommitments() {
			return conflictError("Cannot remove sign-up list with existing commitments")
		}
		e.SignUpLists = append(e.SignUpLists[:i], e.SignUpLists[i+1:]...)
		e.pending = append(e.pending, l.drain()...)
		e.touch()
		e.raise(SignUpListRemovedEvent{eventMeta: stamp(), EventID: e.ID, SignUpListID: listID})
		return nil
	}
	return conflictError("Sign-up list with ID %s not found", listID)
}

func (e *Event) SignUpList(listID uuid.UUID) (*SignUpList, bool) {
	for _, l := range e.SignUpLists {
		if l.ID == listID {
			return l, true
		}
	}
	return nil, false
}
