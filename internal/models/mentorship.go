package models

import (
	"time"

	"github.com/google/uuid"
)

// Mentorship request status.
const (
	MentorshipStatusPending  = "pending"
	MentorshipStatusAccepted = "accepted"
	MentorshipStatusDeclined = "declined"
)

// MentorshipRequest is a student's request for mentorship.
type MentorshipRequest struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
	Topic     string    `json:"topic"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feedback is a general feedback submission.
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
