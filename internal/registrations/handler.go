package registrations

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/response"
)

// PageSize is the fixed page size of the admin registration listing.
const PageSize = 10

// Store is the registration persistence consumed by the handler.
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	GetByToken(ctx context.Context, token string) (*models.Registration, error)
	GetByMeetupAndUser(ctx context.Context, meetupID, userID uuid.UUID) (*models.Registration, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error)
	ListByMeetup(ctx context.Context, meetupID uuid.UUID, search string, limit, offset int) ([]models.AttendeeRow, int, error)
	CountByMeetup(ctx context.Context, meetupID uuid.UUID) (total, checkedIn int, err error)
	ToggleCheckIn(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	CheckInByToken(ctx context.Context, meetupID uuid.UUID, token string) (*models.Registration, bool, error)
}

// MeetupGetter resolves meetups for window checks and token validation.
type MeetupGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meetup, error)
}

// UserGetter resolves the caller's profile for the name/email snapshot.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CheckInNotifier fans a check-in event out to live admin viewers.
type CheckInNotifier interface {
	NotifyCheckIn(meetupID uuid.UUID, reg *models.Registration)
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	store    Store
	meetups  MeetupGetter
	users    UserGetter
	notifier CheckInNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a registrations handler. notifier may be nil.
func NewHandler(store Store, meetups MeetupGetter, users UserGetter, notifier CheckInNotifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, meetups: meetups, users: users, notifier: notifier, logger: logger, now: time.Now}
}

// Register handles POST /meetups/:id/register. Creates the registration
// with a server-generated ticket token and returns the ticket view.
func (h *Handler) Register(c *gin.Context) {
	meetupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meetup id")
		return
	}
	m, err := h.meetups.GetByID(c.Request.Context(), meetupID)
	if err != nil || m == nil {
		response.NotFound(c, "meetup not found")
		return
	}
	if !m.RegistrationOpen(h.now()) {
		response.BadRequest(c, "registration is closed for this meetup")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	u, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil || u == nil {
		response.Unauthorized(c, "please log in to register")
		return
	}
	if strings.TrimSpace(u.FullName) == "" {
		response.BadRequest(c, "please set your display name before registering")
		return
	}

	token, err := GenerateToken()
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err))
		response.Internal(c, "failed to issue ticket")
		return
	}

	reg := &models.Registration{
		MeetupID:  meetupID,
		UserID:    userID,
		UserName:  u.FullName,
		UserEmail: u.Email,
		Token:     token,
	}
	if err := h.store.Create(c.Request.Context(), reg); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			response.Conflict(c, "already registered for this meetup")
			return
		}
		h.logger.Error("create registration failed", zap.Error(err), zap.String("meetup_id", meetupID.String()))
		response.Internal(c, "failed to register")
		return
	}

	response.Created(c, gin.H{
		"registration_id": reg.ID,
		"ticket":          reg.Ticket(),
	})
}

// MyTicket handles GET /meetups/:id/ticket. Returns the caller's ticket
// for the meetup.
func (h *Handler) MyTicket(c *gin.Context) {
	meetupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meetup id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	reg, err := h.store.GetByMeetupAndUser(c.Request.Context(), meetupID, userID)
	if err != nil {
		response.NotFound(c, "not registered for this meetup")
		return
	}
	response.OK(c, reg.Ticket())
}

// ValidateToken handles GET /tickets/:token/validate. Returns the
// registration and meetup behind a scanned token.
func (h *Handler) ValidateToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "token required")
		return
	}
	reg, err := h.store.GetByToken(c.Request.Context(), token)
	if err != nil {
		response.NotFound(c, "unknown ticket")
		return
	}
	m, err := h.meetups.GetByID(c.Request.Context(), reg.MeetupID)
	if err != nil || m == nil {
		response.NotFound(c, "meetup not found")
		return
	}
	response.OK(c, gin.H{
		"valid":         true,
		"registration":  reg,
		"meetup_id":     m.ID,
		"meetup_title":  m.Title,
		"meetup_starts": m.StartsAt,
	})
}

// ListByMeetup handles GET /meetups/:id/registrations (admin only).
// Supports ?search= over name/email and ?page= (1-based, 10 per page).
func (h *Handler) ListByMeetup(c *gin.Context) {
	meetupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meetup id")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	search := strings.TrimSpace(c.Query("search"))

	rows, total, err := h.store.ListByMeetup(c.Request.Context(), meetupID, search, PageSize, (page-1)*PageSize)
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err), zap.String("meetup_id", meetupID.String()))
		response.Internal(c, "failed to list registrations")
		return
	}
	_, checkedIn, err := h.store.CountByMeetup(c.Request.Context(), meetupID)
	if err != nil {
		response.Internal(c, "failed to count registrations")
		return
	}
	response.OK(c, gin.H{
		"registrations": rows,
		"total":         total,
		"checked_in":    checkedIn,
		"page":          page,
		"page_size":     PageSize,
	})
}

// ToggleCheckIn handles POST /registrations/:id/toggle-checkin (admin
// only). A pure state flip: both directions are always allowed.
func (h *Handler) ToggleCheckIn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	reg, err := h.store.ToggleCheckIn(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "registration not found")
			return
		}
		response.Internal(c, "failed to toggle check-in")
		return
	}
	if h.notifier != nil && reg.IsCheckedIn {
		h.notifier.NotifyCheckIn(reg.MeetupID, reg)
	}
	response.OK(c, reg)
}

// CheckInRequest is the body for POST /meetups/:id/checkin.
type CheckInRequest struct {
	Token string `json:"token" binding:"required"`
}

// CheckInByToken handles POST /meetups/:id/checkin (admin only): the QR
// scan path. Repeated scans of the same ticket are reported, not failed.
func (h *Handler) CheckInByToken(c *gin.Context) {
	meetupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meetup id")
		return
	}
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "token required")
		return
	}
	reg, already, err := h.store.CheckInByToken(c.Request.Context(), meetupID, req.Token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "unknown ticket for this meetup")
			return
		}
		response.Internal(c, "failed to check in")
		return
	}
	if h.notifier != nil && !already {
		h.notifier.NotifyCheckIn(meetupID, reg)
	}
	response.OK(c, gin.H{
		"registration":       reg,
		"already_checked_in": already,
	})
}
