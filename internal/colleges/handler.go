package colleges

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushub/backend/pkg/response"
)

// maxResults caps how many directory entries one search returns.
const maxResults = 50

// Handler proxies college search requests to the directory.
type Handler struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewHandler creates a college search handler.
func NewHandler(searcher Searcher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{searcher: searcher, logger: logger}
}

// Search handles GET /colleges/search?q=&country=.
func (h *Handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}

	list, err := h.searcher.Search(c.Request.Context(), q, strings.TrimSpace(c.Query("country")))
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			h.logger.Warn("college search failed", zap.Error(err), zap.String("q", q))
			response.ServiceUnavailable(c, "college search is temporarily unavailable")
			return
		}
		response.Internal(c, "failed to search colleges")
		return
	}
	if len(list) > maxResults {
		list = list[:maxResults]
	}
	response.OK(c, list)
}
