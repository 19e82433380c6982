package resumes

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/response"
	"github.com/campushub/backend/pkg/storage"
)

// maxAnalyzeBytes caps how much stored resume content is fed to the analyzer.
const maxAnalyzeBytes = 256 * 1024

// UserStore is the subset of the user repository the resume handler needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetResumeKey(ctx context.Context, id uuid.UUID, key string) error
}

// ObjectStore is the blob storage consumed by the resume handler.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64, publicRead bool) (string, error)
	DeleteResume(ctx context.Context, key string) error
	GetObjectStream(ctx context.Context, bucket, key string) (io.ReadCloser, string, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	ResumesBucket() string
	PresignExpire() time.Duration
}

// Handler handles resume upload, download, deletion and analysis.
type Handler struct {
	users    UserStore
	objects  ObjectStore
	analyzer Analyzer
	logger   *zap.Logger
}

// NewHandler creates a resume handler. objects and analyzer may be nil when
// the corresponding backends are not configured; affected endpoints return
// 503 in that case.
func NewHandler(users UserStore, objects ObjectStore, analyzer Analyzer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{users: users, objects: objects, analyzer: analyzer, logger: logger}
}

// Upload handles POST /resume. Expects a multipart form with a "file" part.
func (h *Handler) Upload(c *gin.Context) {
	if h.objects == nil {
		response.ServiceUnavailable(c, "file storage not configured")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "resume file is required")
		return
	}
	if fileHeader.Size > storage.MaxResumeFileSize {
		response.BadRequest(c, "resume file exceeds the 5MB limit")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateResumeFileType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "resume must be a PDF, DOC, DOCX or TXT file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}

	key := storage.ResumeKey(userID.String(), fileHeader.Filename)
	if _, err := h.objects.Upload(c.Request.Context(), h.objects.ResumesBucket(), key, contentType, file, fileHeader.Size, false); err != nil {
		h.logger.Error("resume upload failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to store resume")
		return
	}

	// Replacing an existing resume removes the old object once the new one
	// is safely stored.
	if user.ResumeKey != "" && user.ResumeKey != key {
		if err := h.objects.DeleteResume(c.Request.Context(), user.ResumeKey); err != nil {
			h.logger.Warn("failed to delete previous resume", zap.Error(err), zap.String("key", user.ResumeKey))
		}
	}

	if err := h.users.SetResumeKey(c.Request.Context(), userID, key); err != nil {
		response.Internal(c, "failed to save resume reference")
		return
	}
	response.Created(c, gin.H{"filename": fileHeader.Filename})
}

// Download handles GET /resume, returning a short-lived download URL.
func (h *Handler) Download(c *gin.Context) {
	if h.objects == nil {
		response.ServiceUnavailable(c, "file storage not configured")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user.ResumeKey == "" {
		response.NotFound(c, "no resume uploaded")
		return
	}

	url, err := h.objects.GeneratePresignedDownloadURL(c.Request.Context(), h.objects.ResumesBucket(), user.ResumeKey, h.objects.PresignExpire())
	if err != nil {
		h.logger.Error("presign failed", zap.Error(err), zap.String("key", user.ResumeKey))
		response.Internal(c, "failed to generate download link")
		return
	}
	response.OK(c, gin.H{"url": url})
}

// Delete handles DELETE /resume.
func (h *Handler) Delete(c *gin.Context) {
	if h.objects == nil {
		response.ServiceUnavailable(c, "file storage not configured")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user.ResumeKey == "" {
		response.NotFound(c, "no resume uploaded")
		return
	}

	if err := h.objects.DeleteResume(c.Request.Context(), user.ResumeKey); err != nil {
		h.logger.Error("resume delete failed", zap.Error(err), zap.String("key", user.ResumeKey))
		response.Internal(c, "failed to delete resume")
		return
	}
	if err := h.users.SetResumeKey(c.Request.Context(), userID, ""); err != nil {
		response.Internal(c, "failed to clear resume reference")
		return
	}
	response.NoContent(c)
}

// AnalyzeBody is the body for POST /resume/analyze. Text is optional; when
// omitted the stored resume is used.
type AnalyzeBody struct {
	Text       string `json:"text"`
	TargetRole string `json:"target_role"`
}

// Analyze handles POST /resume/analyze.
func (h *Handler) Analyze(c *gin.Context) {
	if h.analyzer == nil {
		response.ServiceUnavailable(c, "resume analysis not configured")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req AnalyzeBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	text := req.Text
	if text == "" {
		stored, err := h.storedResumeText(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, errNoResume) {
				response.BadRequest(c, "provide resume text or upload a resume first")
				return
			}
			response.Internal(c, "failed to load stored resume")
			return
		}
		text = stored
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), text, req.TargetRole)
	if err != nil {
		if errors.Is(err, ErrAnalyzerUnavailable) {
			h.logger.Warn("analyzer unavailable", zap.Error(err))
			response.ServiceUnavailable(c, "resume analysis is temporarily unavailable")
			return
		}
		response.Internal(c, "failed to analyze resume")
		return
	}
	response.OK(c, analysis)
}

var errNoResume = errors.New("no resume uploaded")

func (h *Handler) storedResumeText(ctx context.Context, userID uuid.UUID) (string, error) {
	if h.objects == nil {
		return "", errNoResume
	}
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ResumeKey == "" {
		return "", errNoResume
	}
	body, _, err := h.objects.GetObjectStream(ctx, h.objects.ResumesBucket(), user.ResumeKey)
	if err != nil {
		return "", err
	}
	defer body.Close()
	raw, err := io.ReadAll(io.LimitReader(body, maxAnalyzeBytes))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
