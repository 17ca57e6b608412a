package events

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventboard/backend/internal/auth"
	"github.com/eventboard/backend/internal/middleware"
	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/pkg/response"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// bulk actions and the mutation each applies.
var bulkActions = map[string]func(*models.Event){
	"approve":   func(ev *models.Event) { ev.Status = models.StatusApproved },
	"reject":    func(ev *models.Event) { ev.Status = models.StatusRejected },
	"feature":   func(ev *models.Event) { ev.IsFeatured = true },
	"unfeature": func(ev *models.Event) { ev.IsFeatured = false },
}

// CreateRequest is the body for POST /api/events.
type CreateRequest struct {
	Title     string    `json:"title" binding:"required,max=200"`
	Category  string    `json:"category" binding:"required,max=100"`
	Tags      []string  `json:"tags"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// UpdateRequest is the body for PATCH /api/events/:id. Absent fields leave
// the record untouched; an empty title or category counts as absent.
type UpdateRequest struct {
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags"`
	IsFeatured *bool      `json:"is_featured"`
	Status     string     `json:"status"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
}

// BulkUpdateRequest is the body for PATCH /api/events/bulk.
type BulkUpdateRequest struct {
	Action string  `json:"action" binding:"required"`
	IDs    []int64 `json:"ids"`
}

// ListResponse is one page of events plus the cursor for the next page.
type ListResponse struct {
	Items      []models.Event `json:"items"`
	NextCursor *string        `json:"nextCursor,omitempty"`
}

// Notifier receives event status changes for asynchronous fan-out. A nil
// notifier disables fan-out.
type Notifier interface {
	EventStatusChanged(ctx context.Context, ev *models.Event)
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(store Store, notifier Notifier, logger *zap.Logger) *Handler {
	return &Handler{store: store, notifier: notifier, logger: logger}
}

// List handles GET /api/events with scope, category, status, free-text and
// cursor parameters. Pages are ordered by (updated_at DESC, id DESC); the
// returned cursor continues strictly after the last item of this page.
func (h *Handler) List(c *gin.Context) {
	p := middleware.Principal(c)

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	q := ListQuery{
		Filter:   ResolveScope(c.Query("scope"), p),
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Limit:    limit,
	}
	if status, ok := models.ParseStatus(c.Query("status")); ok {
		q.Status = &status
	}
	if cur := c.Query("cursor"); cur != "" {
		// an undecodable cursor means first page, never an error
		if key, ok := decodeCursor(cur); ok {
			q.Cursor = &key
		}
	}

	items, err := h.store.List(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("list events", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}

	var next *string
	if len(items) > limit {
		items = items[:limit]
		last := items[limit-1]
		cursor := encodeCursor(CursorKey{UpdatedAt: last.UpdatedAt, ID: last.ID})
		next = &cursor
	}
	if items == nil {
		items = []models.Event{}
	}
	response.OK(c, ListResponse{Items: items, NextCursor: next})
}

// Create handles POST /api/events. Org, creator and status are taken from
// the principal and fixed server-side, never from the payload.
func (h *Handler) Create(c *gin.Context) {
	p := middleware.Principal(c)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	now := time.Now().UTC()
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	ev := &models.Event{
		OrgID:      p.OrgID,
		CreatorID:  p.UserID,
		Title:      req.Title,
		Category:   req.Category,
		Status:     models.StatusPending,
		IsFeatured: false,
		Tags:       tags,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.store.Create(c.Request.Context(), ev); err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, ev)
}

// Update handles PATCH /api/events/:id with partial-update semantics.
func (h *Handler) Update(c *gin.Context) {
	p := middleware.Principal(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ev, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("get event", zap.Error(err))
		response.Internal(c, "failed to load event")
		return
	}

	if !auth.CanManageEvent(p.UserID, p.OrgID, p.Roles, ev) {
		response.Forbidden(c, "not allowed to manage this event")
		return
	}

	oldStatus := ev.Status
	if req.Title != "" {
		ev.Title = req.Title
	}
	if req.Category != "" {
		ev.Category = req.Category
	}
	if req.Tags != nil {
		ev.Tags = req.Tags
	}
	if req.IsFeatured != nil {
		ev.IsFeatured = *req.IsFeatured
	}
	if status, ok := models.ParseStatus(req.Status); ok {
		ev.Status = status
	}
	if req.StartDate != nil {
		ev.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		ev.EndDate = *req.EndDate
	}
	ev.UpdatedAt = time.Now().UTC()

	if err := h.store.Update(c.Request.Context(), ev); err != nil {
		h.logger.Error("update event", zap.Error(err))
		response.Internal(c, "failed to update event")
		return
	}
	if h.notifier != nil && ev.Status != oldStatus {
		h.notifier.EventStatusChanged(c.Request.Context(), ev)
	}
	response.OK(c, ev)
}

// Delete handles DELETE /api/events/:id.
func (h *Handler) Delete(c *gin.Context) {
	p := middleware.Principal(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	ev, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("get event", zap.Error(err))
		response.Internal(c, "failed to load event")
		return
	}

	if !auth.CanManageEvent(p.UserID, p.OrgID, p.Roles, ev) {
		response.Forbidden(c, "not allowed to manage this event")
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete event", zap.Error(err))
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// BulkUpdate handles PATCH /api/events/bulk. The action name is validated
// before any record is touched so an invalid action never half-applies.
// Records the caller may not manage are skipped silently; everything accepted
// is persisted in one transaction.
func (h *Handler) BulkUpdate(c *gin.Context) {
	p := middleware.Principal(c)

	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		response.BadRequest(c, "no ids provided")
		return
	}
	apply, ok := bulkActions[strings.ToLower(req.Action)]
	if !ok {
		response.BadRequest(c, "invalid action")
		return
	}

	evs, err := h.store.GetByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		h.logger.Error("load events", zap.Error(err))
		response.Internal(c, "failed to load events")
		return
	}
	if len(evs) == 0 {
		response.NotFound(c, "no matching events")
		return
	}

	now := time.Now().UTC()
	var accepted, changed []*models.Event
	for i := range evs {
		ev := &evs[i]
		if !auth.CanManageEvent(p.UserID, p.OrgID, p.Roles, ev) {
			continue
		}
		oldStatus := ev.Status
		apply(ev)
		ev.UpdatedAt = now
		accepted = append(accepted, ev)
		if ev.Status != oldStatus {
			changed = append(changed, ev)
		}
	}

	if err := h.store.UpdateBatch(c.Request.Context(), accepted); err != nil {
		h.logger.Error("bulk update", zap.Error(err))
		response.Internal(c, "failed to apply bulk update")
		return
	}
	if h.notifier != nil {
		for _, ev := range changed {
			h.notifier.EventStatusChanged(c.Request.Context(), ev)
		}
	}
	response.NoContent(c)
}
