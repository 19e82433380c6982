package tickets

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/response"
)

// RegistrationGetter resolves a registration by its ticket token.
type RegistrationGetter interface {
	GetByToken(ctx context.Context, token string) (*models.Registration, error)
}

// Handler serves ticket QR images.
type Handler struct {
	regs RegistrationGetter
}

// NewHandler creates a tickets handler.
func NewHandler(regs RegistrationGetter) *Handler {
	return &Handler{regs: regs}
}

// QR handles GET /tickets/:token/qr. Only the ticket holder or an admin
// may render the image. ?size= overrides the default edge length.
func (h *Handler) QR(c *gin.Context) {
	token := c.Param("token")
	reg, err := h.regs.GetByToken(c.Request.Context(), token)
	if err != nil {
		response.NotFound(c, "unknown ticket")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.Get(middleware.ContextUserRole)
	if reg.UserID != userID && role != string(models.RoleAdmin) {
		response.Forbidden(c, "not your ticket")
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	png, err := EncodePNG(reg.Token, size, nil)
	if err != nil {
		response.Internal(c, "failed to render ticket")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
