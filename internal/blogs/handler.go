package blogs

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/response"
)

// CreateRequest is the body for POST /blogs.
type CreateRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	Tags      string `json:"tags"`
	Published *bool  `json:"published"`
}

// UpdateRequest is the body for PATCH /blogs/:id.
type UpdateRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Tags      *string `json:"tags"`
	Published *bool   `json:"published"`
}

// Handler handles blog HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a blogs handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /blogs.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	b := &models.Blog{
		AuthorID:  userID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		Published: req.Published == nil || *req.Published,
	}
	if err := h.repo.Create(c.Request.Context(), b); err != nil {
		response.Internal(c, "failed to create blog")
		return
	}
	response.Created(c, b)
}

// List handles GET /blogs.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list blogs")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /blogs/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid blog id")
		return
	}
	b, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "blog not found")
		return
	}
	response.OK(c, b)
}

// Update handles PATCH /blogs/:id (author or admin).
func (h *Handler) Update(c *gin.Context) {
	b, ok := h.loadOwned(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Content != nil {
		b.Content = *req.Content
	}
	if req.Tags != nil {
		b.Tags = *req.Tags
	}
	if req.Published != nil {
		b.Published = *req.Published
	}
	if err := h.repo.Update(c.Request.Context(), b); err != nil {
		response.Internal(c, "failed to update blog")
		return
	}
	response.OK(c, b)
}

// Delete handles DELETE /blogs/:id (author or admin).
func (h *Handler) Delete(c *gin.Context) {
	b, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), b.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "blog not found")
			return
		}
		response.Internal(c, "failed to delete blog")
		return
	}
	response.NoContent(c)
}

// loadOwned fetches the blog and enforces author-or-admin access,
// replying on failure.
func (h *Handler) loadOwned(c *gin.Context) (*models.Blog, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid blog id")
		return nil, false
	}
	b, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "blog not found")
		return nil, false
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.Get(middleware.ContextUserRole)
	if b.AuthorID != userID && role != string(models.RoleAdmin) {
		response.Forbidden(c, "not the author of this blog")
		return nil, false
	}
	return b, true
}
