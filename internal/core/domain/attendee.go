package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	MinAttendeesPerRegistration = 1
	MaxAttendeesPerRegistration = 10
)

type AgeCategory string

const (
	AgeUnspecified AgeCategory = ""
	AgeAdult       AgeCategory = "ADULT"
	AgeChild       AgeCategory = "CHILD"
)

// AttendeeDetails describes one person covered by a registration. Either
// AgeCategory or Age may be set; an explicit category wins.
type AttendeeDetails struct {
	Name        string      `json:"name"`
	AgeCategory AgeCategory `json:"age_category,omitempty"`
	Age         int         `json:"age,omitempty"`
}

func (a AttendeeDetails) IsChild(threshold int) bool {
	switch a.AgeCategory {
	case AgeChild:
		return true
	case AgeAdult:
		return false
	}
	return a.Age > 0 && a.Age <= threshold
}

// Contact is shared by every attendee of a registration.
type Contact struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

func (c *Contact) validate() error {
	if c == nil {
		return validationError("Contact information is required")
	}
	var msgs []string
	email := strings.TrimSpace(c.Email)
	if email == "" {
		msgs = append(msgs, "Contact email is required")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		msgs = append(msgs, "Contact email is not a valid email address")
	}
	if strings.TrimSpace(c.Phone) == "" {
		msgs = append(msgs, "Contact phone is required")
	}
	if len(msgs) > 0 {
		return validationError(msgs...)
	}
	return nil
}

func validateAttendees(attendees []AttendeeDetails) error {
	if len(attendees) < MinAttendeesPerRegistration {
		return ErrEmptyAttendeeList
	}
	if len(attendees) > MaxAttendeesPerRegistration {
		return validationErrorf("Maximum %d attendees per registration", MaxAttendeesPerRegistration)
	}
	var msgs []string
	for i, a := range attendees {
		if strings.TrimSpace(a.Name) == "" {
			msgs = append(msgs, fmt.Sprintf("Attendee %d name is required", i+1))
		}
		if a.Age < 0 {
			msgs = append(msgs, fmt.Sprintf("Attendee %d age cannot be negative", i+1))
		}
	}
	if len(msgs) > 0 {
		return validationError(msgs...)
	}
	return nil
}
