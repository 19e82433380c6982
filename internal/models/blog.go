package models

import (
	"time"

	"github.com/google/uuid"
)

// Blog is a community blog post.
type Blog struct {
	ID         uuid.UUID `json:"id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       string    `json:"tags,omitempty"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
