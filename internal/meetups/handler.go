package meetups

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/response"
)

// Store is the meetup persistence consumed by the handler.
type Store interface {
	Create(ctx context.Context, m *models.Meetup) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meetup, error)
	List(ctx context.Context) ([]models.Meetup, error)
	Update(ctx context.Context, m *models.Meetup) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegistrationLister returns a user's registrations, for merging
// registration state into the public listing.
type RegistrationLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error)
}

// CreateRequest is the body for POST /meetups.
type CreateRequest struct {
	Title            string  `json:"title" binding:"required"`
	Description      string  `json:"description"`
	Venue            string  `json:"venue"`
	StartsAt         string  `json:"starts_at" binding:"required"`
	EndsAt           *string `json:"ends_at"`
	RegStartsAt      *string `json:"registration_starts_at"`
	RegEndsAt        *string `json:"registration_ends_at"`
	RegisterUntilEnd bool    `json:"register_until_end"`
}

// UpdateRequest is the body for PATCH /meetups/:id. Absent fields keep
// their current values.
type UpdateRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Venue            *string `json:"venue"`
	StartsAt         *string `json:"starts_at"`
	EndsAt           *string `json:"ends_at"`
	RegStartsAt      *string `json:"registration_starts_at"`
	RegEndsAt        *string `json:"registration_ends_at"`
	RegisterUntilEnd *bool   `json:"register_until_end"`
}

// Handler handles meetup HTTP endpoints.
type Handler struct {
	store Store
	regs  RegistrationLister
}

// NewHandler creates a meetup handler.
func NewHandler(store Store, regs RegistrationLister) *Handler {
	return &Handler{store: store, regs: regs}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create handles POST /meetups (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	startsAt, err := parseTime(req.StartsAt)
	if err != nil {
		response.BadRequest(c, "invalid starts_at")
		return
	}
	endsAt, err := parseTimePtr(req.EndsAt)
	if err != nil {
		response.BadRequest(c, "invalid ends_at")
		return
	}
	regStartsAt, err := parseTimePtr(req.RegStartsAt)
	if err != nil {
		response.BadRequest(c, "invalid registration_starts_at")
		return
	}
	regEndsAt, err := parseTimePtr(req.RegEndsAt)
	if err != nil {
		response.BadRequest(c, "invalid registration_ends_at")
		return
	}

	m := &models.Meetup{
		Title:                req.Title,
		Description:          req.Description,
		Venue:                req.Venue,
		StartsAt:             startsAt,
		EndsAt:               endsAt,
		RegistrationStartsAt: regStartsAt,
		RegistrationEndsAt:   regEndsAt,
		RegisterUntilEnd:     req.RegisterUntilEnd,
		CreatedBy:            userID,
	}
	if err := h.store.Create(c.Request.Context(), m); err != nil {
		response.Internal(c, "failed to create meetup")
		return
	}
	response.Created(c, m)
}

// GetByID handles GET /meetups/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meetup id")
		return
	}
	m, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "meetup not found")
		return
	}
	response.OK(c, m)
}

// List handles GET /meetups. Anonymous callers get plain rows; signed-in
// callers get registered/registration merged in from a single query of
// their registrations.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list meetups")
		return
	}

	merged := make([]models.MeetupWithRegistration, 0, len(list))
	byMeetup := map[uuid.UUID]*models.Registration{}
	if v, ok := c.Get(middleware.ContextUserID); ok {
		userID := v.(uuid.UUID)
		regs, err := h.regs.ListByUser(c.Request.Context(), userID)
		if err != nil {
			response.Internal(c, "failed to load registrations")
			return
		}
		for i := range regs {
			byMeetup[regs[i].MeetupID] = &regs[i]
		}
	}
	for _, m := range list {
		row := models.MeetupWithRegistration{Meetup: m}
		if reg, ok := byMeetup[m.ID]; ok {
			t := reg.Ticket()
			row.Registered = true
			row.Registration = &t
		}
		merged = append(merged, row)
	}
	response.OK(c, merged)
}

// Update handles PATCH /meetups/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meetup id")
		return
	}
	m, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "meetup not found")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Venue != nil {
		m.Venue = *req.Venue
	}
	if req.StartsAt != nil {
		t, err := parseTime(*req.StartsAt)
		if err != nil {
			response.BadRequest(c, "invalid starts_at")
			return
		}
		m.StartsAt = t
	}
	for _, f := range []struct {
		src *string
		dst **time.Time
		bad string
	}{
		{req.EndsAt, &m.EndsAt, "invalid ends_at"},
		{req.RegStartsAt, &m.RegistrationStartsAt, "invalid registration_starts_at"},
		{req.RegEndsAt, &m.RegistrationEndsAt, "invalid registration_ends_at"},
	} {
		if f.src == nil {
			continue
		}
		t, err := parseTimePtr(f.src)
		if err != nil {
			response.BadRequest(c, f.bad)
			return
		}
		*f.dst = t
	}
	if req.RegisterUntilEnd != nil {
		m.RegisterUntilEnd = *req.RegisterUntilEnd
	}

	if err := h.store.Update(c.Request.Context(), m); err != nil {
		response.Internal(c, "failed to update meetup")
		return
	}
	response.OK(c, m)
}

// Delete handles DELETE /meetups/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meetup id")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete meetup")
		return
	}
	response.NoContent(c)
}
