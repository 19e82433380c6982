package mentorship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/response"
)

// Cooldown kinds, used as Redis key segments.
const (
	KindMentorship = "mentorship"
	KindFeedback   = "feedback"
)

// Store is the mentorship persistence consumed by the handler.
type Store interface {
	CreateRequest(ctx context.Context, m *models.MentorshipRequest) error
	ListRequests(ctx context.Context) ([]models.MentorshipRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CreateFeedback(ctx context.Context, f *models.Feedback) error
}

// RequestBody is the body for POST /mentorship.
type RequestBody struct {
	Topic   string `json:"topic" binding:"required"`
	Message string `json:"message"`
}

// FeedbackBody is the body for POST /feedback.
type FeedbackBody struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message"`
}

// StatusBody is the body for PATCH /mentorship/:id.
type StatusBody struct {
	Status string `json:"status" binding:"required,oneof=pending accepted declined"`
}

// Handler handles mentorship and feedback HTTP endpoints.
type Handler struct {
	store  Store
	gate   CooldownGate
	logger *zap.Logger
}

// NewHandler creates a mentorship handler. gate may be nil to disable
// cooldowns (tests, local runs without Redis).
func NewHandler(store Store, gate CooldownGate, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, gate: gate, logger: logger}
}

func (h *Handler) acquire(c *gin.Context, kind string, userID uuid.UUID) bool {
	if h.gate == nil {
		return true
	}
	remaining, err := h.gate.Acquire(c.Request.Context(), kind, userID)
	if errors.Is(err, ErrCooldownActive) {
		response.TooManyRequests(c, fmt.Sprintf("please wait %s before submitting again", remaining.Round(time.Second)))
		return false
	}
	if err != nil {
		h.logger.Error("cooldown check failed", zap.Error(err), zap.String("kind", kind))
		response.Internal(c, "failed to check cooldown")
		return false
	}
	return true
}

// CreateRequest handles POST /mentorship.
func (h *Handler) CreateRequest(c *gin.Context) {
	var req RequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if !h.acquire(c, KindMentorship, userID) {
		return
	}
	m := &models.MentorshipRequest{UserID: userID, Topic: req.Topic, Message: req.Message}
	if err := h.store.CreateRequest(c.Request.Context(), m); err != nil {
		response.Internal(c, "failed to submit mentorship request")
		return
	}
	response.Created(c, m)
}

// CreateFeedback handles POST /feedback.
func (h *Handler) CreateFeedback(c *gin.Context) {
	var req FeedbackBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if !h.acquire(c, KindFeedback, userID) {
		return
	}
	f := &models.Feedback{UserID: userID, Subject: req.Subject, Message: req.Message}
	if err := h.store.CreateFeedback(c.Request.Context(), f); err != nil {
		response.Internal(c, "failed to submit feedback")
		return
	}
	response.Created(c, f)
}

// List handles GET /mentorship (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.ListRequests(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list mentorship requests")
		return
	}
	response.OK(c, list)
}

// UpdateStatus handles PATCH /mentorship/:id (admin only).
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	var req StatusBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.store.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "mentorship request not found")
			return
		}
		response.Internal(c, "failed to update status")
		return
	}
	response.OK(c, gin.H{"id": id, "status": req.Status})
}
