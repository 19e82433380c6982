package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// Broadcast is an admin email broadcast to all approved students.
type Broadcast struct {
	ID         uuid.UUID `json:"id"`
	Subject    string    `json:"subject"`
	BodyHTML   string    `json:"body_html"`
	CreatedBy  uuid.UUID `json:"created_by"`
	Recipients int       `json:"recipients"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmailLog records one delivery attempt of a broadcast email.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	BroadcastID    uuid.UUID  `json:"broadcast_id"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
