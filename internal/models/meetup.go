package models

import (
	"time"

	"github.com/google/uuid"
)

// Meetup represents an in-person or online community meetup.
type Meetup struct {
	ID                   uuid.UUID  `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Venue                string     `json:"venue"`
	StartsAt             time.Time  `json:"starts_at"`
	EndsAt               *time.Time `json:"ends_at,omitempty"`
	RegistrationStartsAt *time.Time `json:"registration_starts_at,omitempty"`
	RegistrationEndsAt   *time.Time `json:"registration_ends_at,omitempty"`
	RegisterUntilEnd     bool       `json:"register_until_end"`
	CreatedBy            uuid.UUID  `json:"created_by"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// RegistrationOpen reports whether the registration window admits a
// registration at the given instant. A missing start means "open since
// creation"; a missing end falls back to the meetup end when
// RegisterUntilEnd is set, otherwise to the meetup start.
func (m *Meetup) RegistrationOpen(now time.Time) bool {
	if m.RegistrationStartsAt != nil && now.Before(*m.RegistrationStartsAt) {
		return false
	}
	if m.RegistrationEndsAt != nil {
		return !now.After(*m.RegistrationEndsAt)
	}
	if m.RegisterUntilEnd && m.EndsAt != nil {
		return !now.After(*m.EndsAt)
	}
	return !now.After(m.StartsAt)
}

// MeetupWithRegistration is a meetup row merged with the caller's
// registration state for the listing endpoint.
type MeetupWithRegistration struct {
	Meetup
	Registered   bool                `json:"registered"`
	Registration *RegistrationTicket `json:"registration,omitempty"`
}
