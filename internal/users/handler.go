// Package users exposes profile and admin user-management endpoints.
package users

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/pkg/response"
)

// UpdateProfileRequest is the body for PATCH /me.
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	College  string `json:"college"`
	Skills   string `json:"skills"`
}

// ApproveRequest is the body for PATCH /users/:id/approve.
type ApproveRequest struct {
	Approved bool `json:"approved"`
}

// Handler handles user profile HTTP endpoints.
type Handler struct {
	repo *auth.Repository
}

// NewHandler creates a users handler.
func NewHandler(repo *auth.Repository) *Handler {
	return &Handler{repo: repo}
}

// Me handles GET /me.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	u, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, u.ToPublic())
}

// UpdateMe handles PATCH /me.
func (h *Handler) UpdateMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.repo.UpdateProfile(c.Request.Context(), userID, req.FullName, req.College, req.Skills)
	if err != nil {
		response.Internal(c, "failed to update profile")
		return
	}
	response.OK(c, u.ToPublic())
}

// List handles GET /users (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// Approve handles PATCH /users/:id/approve (admin only).
func (h *Handler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.SetApproved(c.Request.Context(), id, req.Approved); err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, gin.H{"id": id, "approved": req.Approved})
}
