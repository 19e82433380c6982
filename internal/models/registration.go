package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration is an attendee registration for a meetup. The name and
// email are snapshotted from the user's profile at registration time.
type Registration struct {
	ID          uuid.UUID  `json:"id"`
	MeetupID    uuid.UUID  `json:"meetup_id"`
	UserID      uuid.UUID  `json:"user_id"`
	UserName    string     `json:"user_name"`
	UserEmail   string     `json:"user_email"`
	Token       string     `json:"token"`
	IsCheckedIn bool       `json:"is_checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RegistrationTicket is the attendee-facing view of a registration,
// rendered on the ticket screen.
type RegistrationTicket struct {
	Token        string    `json:"token"`
	ShortCode    string    `json:"short_code"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Ticket builds the ticket view for a registration.
func (r *Registration) Ticket() RegistrationTicket {
	return RegistrationTicket{
		Token:        r.Token,
		ShortCode:    ShortCode(r.Token),
		Name:         r.UserName,
		Email:        r.UserEmail,
		RegisteredAt: r.CreatedAt,
	}
}

// ShortCode returns the human-readable code for a ticket token: its
// first 8 characters, or the whole token when shorter.
func ShortCode(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}

// AttendeeRow is one row of the admin registration listing: the
// registration joined with the registrant's current profile.
type AttendeeRow struct {
	Registration
	College   string `json:"college,omitempty"`
	Skills    string `json:"skills,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
