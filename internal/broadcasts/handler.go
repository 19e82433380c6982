package broadcasts

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/queue"
	"github.com/campushub/backend/pkg/response"
)

// Store is the broadcast persistence consumed by the handler.
type Store interface {
	CreateBroadcast(ctx context.Context, b *models.Broadcast) error
	GetBroadcast(ctx context.Context, id uuid.UUID) (*models.Broadcast, error)
	ListBroadcasts(ctx context.Context) ([]models.Broadcast, error)
	CreateEmailLog(ctx context.Context, l *models.EmailLog) error
	ListEmailLogs(ctx context.Context, broadcastID uuid.UUID) ([]models.EmailLog, error)
}

// RecipientLister resolves the audience of a broadcast.
type RecipientLister interface {
	ListApprovedStudentEmails(ctx context.Context) ([]string, error)
}

// Enqueuer pushes email jobs onto the delivery queue.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// CreateBody is the body for POST /broadcasts.
type CreateBody struct {
	Subject  string `json:"subject" binding:"required"`
	BodyHTML string `json:"body_html" binding:"required"`
}

// Handler handles admin email broadcast endpoints.
type Handler struct {
	store      Store
	recipients RecipientLister
	enqueuer   Enqueuer
	logger     *zap.Logger
}

// NewHandler creates a broadcast handler.
func NewHandler(store Store, recipients RecipientLister, enqueuer Enqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, recipients: recipients, enqueuer: enqueuer, logger: logger}
}

// Create handles POST /broadcasts. One delivery log and one queue job is
// created per approved student; delivery itself happens in the worker.
func (h *Handler) Create(c *gin.Context) {
	var req CreateBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	emails, err := h.recipients.ListApprovedStudentEmails(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to resolve recipients")
		return
	}
	if len(emails) == 0 {
		response.BadRequest(c, "no approved students to email")
		return
	}

	b := &models.Broadcast{
		Subject:    req.Subject,
		BodyHTML:   req.BodyHTML,
		CreatedBy:  c.MustGet(middleware.ContextUserID).(uuid.UUID),
		Recipients: len(emails),
	}
	if err := h.store.CreateBroadcast(c.Request.Context(), b); err != nil {
		response.Internal(c, "failed to create broadcast")
		return
	}

	queued := 0
	for _, email := range emails {
		l := &models.EmailLog{BroadcastID: b.ID, RecipientEmail: email, Subject: req.Subject}
		if err := h.store.CreateEmailLog(c.Request.Context(), l); err != nil {
			h.logger.Error("failed to create email log", zap.Error(err), zap.String("recipient", email))
			continue
		}
		err := h.enqueuer.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
			BroadcastID:    b.ID,
			EmailLogID:     l.ID,
			RecipientEmail: email,
			Subject:        req.Subject,
			BodyHTML:       req.BodyHTML,
		})
		if err != nil {
			h.logger.Error("failed to enqueue email", zap.Error(err), zap.String("recipient", email))
			continue
		}
		queued++
	}

	h.logger.Info("broadcast created",
		zap.String("broadcast_id", b.ID.String()),
		zap.Int("recipients", len(emails)),
		zap.Int("queued", queued))
	response.Created(c, gin.H{"broadcast": b, "queued": queued})
}

// List handles GET /broadcasts.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.ListBroadcasts(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list broadcasts")
		return
	}
	response.OK(c, list)
}

// ListEmails handles GET /broadcasts/:id/emails.
func (h *Handler) ListEmails(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid broadcast id")
		return
	}
	if _, err := h.store.GetBroadcast(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "broadcast not found")
			return
		}
		response.Internal(c, "failed to load broadcast")
		return
	}
	logs, err := h.store.ListEmailLogs(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list delivery logs")
		return
	}
	response.OK(c, logs)
}
