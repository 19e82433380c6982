package internships

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/response"
)

// CreateRequest is the body for POST /internships.
type CreateRequest struct {
	Company   string  `json:"company" binding:"required"`
	RoleTitle string  `json:"role_title" binding:"required"`
	Location  string  `json:"location"`
	Stipend   string  `json:"stipend"`
	ApplyURL  string  `json:"apply_url"`
	Deadline  *string `json:"deadline"`
}

// UpdateRequest is the body for PATCH /internships/:id.
type UpdateRequest struct {
	Company   *string `json:"company"`
	RoleTitle *string `json:"role_title"`
	Location  *string `json:"location"`
	Stipend   *string `json:"stipend"`
	ApplyURL  *string `json:"apply_url"`
	Deadline  *string `json:"deadline"`
}

// Handler handles internship HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an internships handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func parseDeadline(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create handles POST /internships (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		response.BadRequest(c, "invalid deadline")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	i := &models.Internship{
		Company:   req.Company,
		RoleTitle: req.RoleTitle,
		Location:  req.Location,
		Stipend:   req.Stipend,
		ApplyURL:  req.ApplyURL,
		Deadline:  deadline,
		PostedBy:  userID,
	}
	if err := h.repo.Create(c.Request.Context(), i); err != nil {
		response.Internal(c, "failed to create internship")
		return
	}
	response.Created(c, i)
}

// List handles GET /internships.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list internships")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /internships/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid internship id")
		return
	}
	i, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "internship not found")
		return
	}
	response.OK(c, i)
}

// Update handles PATCH /internships/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid internship id")
		return
	}
	i, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "internship not found")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if req.Company != nil {
		i.Company = *req.Company
	}
	if req.RoleTitle != nil {
		i.RoleTitle = *req.RoleTitle
	}
	if req.Location != nil {
		i.Location = *req.Location
	}
	if req.Stipend != nil {
		i.Stipend = *req.Stipend
	}
	if req.ApplyURL != nil {
		i.ApplyURL = *req.ApplyURL
	}
	if req.Deadline != nil {
		deadline, err := parseDeadline(req.Deadline)
		if err != nil {
			response.BadRequest(c, "invalid deadline")
			return
		}
		i.Deadline = deadline
	}
	if err := h.repo.Update(c.Request.Context(), i); err != nil {
		response.Internal(c, "failed to update internship")
		return
	}
	response.OK(c, i)
}

// Delete handles DELETE /internships/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid internship id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "internship not found")
			return
		}
		response.Internal(c, "failed to delete internship")
		return
	}
	response.NoContent(c)
}
