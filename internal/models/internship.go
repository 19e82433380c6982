package models

import (
	"time"

	"github.com/google/uuid"
)

// Internship is an internship listing posted by an admin.
type Internship struct {
	ID        uuid.UUID  `json:"id"`
	Company   string     `json:"company"`
	RoleTitle string     `json:"role_title"`
	Location  string     `json:"location,omitempty"`
	Stipend   string     `json:"stipend,omitempty"`
	ApplyURL  string     `json:"apply_url,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	PostedBy  uuid.UUID  `json:"posted_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
