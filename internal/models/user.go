package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the platform.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// User represents a platform user.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	FullName      string    `json:"full_name"`
	Role          Role      `json:"role"`
	College       string    `json:"college,omitempty"`
	Skills        string    `json:"skills,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	ResumeKey     string    `json:"-"`
	AdminApproved bool      `json:"admin_approved"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Role          Role      `json:"role"`
	College       string    `json:"college,omitempty"`
	Skills        string    `json:"skills,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	AdminApproved bool      `json:"admin_approved"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          u.Role,
		College:       u.College,
		Skills:        u.Skills,
		AvatarURL:     u.AvatarURL,
		AdminApproved: u.AdminApproved,
		CreatedAt:     u.CreatedAt,
	}
}
