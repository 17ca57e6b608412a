package notifications

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventboard/backend/internal/middleware"
	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/pkg/response"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Handler handles notification HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a notifications handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /api/notifications and returns the caller's own
// notifications, newest first.
func (h *Handler) List(c *gin.Context) {
	p := middleware.Principal(c)

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	list, err := h.store.ListByUser(c.Request.Context(), p.UserID, limit)
	if err != nil {
		h.logger.Error("list notifications", zap.Error(err))
		response.Internal(c, "failed to list notifications")
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	response.OK(c, list)
}
