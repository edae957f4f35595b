package events

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/organizations"
	"github.com/gatherly/backend/pkg/response"
	"github.com/gatherly/backend/pkg/storage"
)

// ContextEvent is the gin context key under which RequireEventAccess stores
// the resolved *models.Event.
const ContextEvent = "event"

var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)

// Handler handles event HTTP endpoints.
type Handler struct {
	repo    *Repository
	orgs    *organizations.Repository
	storage *storage.S3
	logger  *zap.Logger
}

// NewHandler creates an events handler. storage may be nil when poster
// uploads are disabled.
func NewHandler(repo *Repository, orgs *organizations.Repository, st *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orgs: orgs, storage: st, logger: logger}
}

// RequireEventAccess resolves the :id event and allows only members of its
// owning organization. The event is stored under ContextEvent for the handler.
func (h *Handler) RequireEventAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid event id")
			c.Abort()
			return
		}
		ev, err := h.repo.GetByID(c.Request.Context(), eventID)
		if err != nil {
			response.NotFound(c, "event not found")
			c.Abort()
			return
		}
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		if !h.orgs.IsMember(c.Request.Context(), ev.OrganizationID, userID) {
			response.Forbidden(c, "not a member of this event's organization")
			c.Abort()
			return
		}
		c.Set(ContextEvent, ev)
		c.Next()
	}
}

// CreateRequest is the body for POST /organizations/:id/events.
type CreateRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	Description  string `json:"description"`
	DateTime     string `json:"date_time" binding:"required"`
	Location     string `json:"location"`
	TotalTickets int    `json:"total_tickets"`
}

// Create handles POST /organizations/:id/events (owner/admin only). New events
// start in draft and stay off the public listing until published.
func (h *Handler) Create(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugRegex.MatchString(req.Slug) {
		response.BadRequest(c, "slug must be lowercase letters, numbers and hyphens")
		return
	}
	dateTime, err := time.Parse(time.RFC3339, req.DateTime)
	if err != nil {
		response.BadRequest(c, "invalid date_time")
		return
	}
	if req.TotalTickets < 0 {
		response.BadRequest(c, "total_tickets must not be negative")
		return
	}

	ev := &models.Event{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Slug:           req.Slug,
		Description:    req.Description,
		DateTime:       dateTime,
		Location:       req.Location,
		Status:         models.EventStatusDraft,
		TotalTickets:   req.TotalTickets,
	}
	if err := h.repo.Create(c.Request.Context(), ev); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			response.Conflict(c, "an event with this slug already exists")
			return
		}
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, ev)
}

// ListByOrganization handles GET /organizations/:id/events (members only).
func (h *Handler) ListByOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.repo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id (members of the owning org, via RequireEventAccess).
func (h *Handler) Get(c *gin.Context) {
	ev := c.MustGet(ContextEvent).(*models.Event)
	response.OK(c, ev)
}

// UpdateRequest is the body for PATCH /events/:id. Nil fields are left unchanged.
type UpdateRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Location     *string `json:"location"`
	DateTime     *string `json:"date_time"`
	TotalTickets *int    `json:"total_tickets"`
}

// Update handles PATCH /events/:id.
func (h *Handler) Update(c *gin.Context) {
	ev := c.MustGet(ContextEvent).(*models.Event)
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	var dateTime *time.Time
	if req.DateTime != nil {
		t, err := time.Parse(time.RFC3339, *req.DateTime)
		if err != nil {
			response.BadRequest(c, "invalid date_time")
			return
		}
		dateTime = &t
	}
	if req.TotalTickets != nil && *req.TotalTickets < 0 {
		response.BadRequest(c, "total_tickets must not be negative")
		return
	}
	if req.TotalTickets != nil && *req.TotalTickets > 0 && *req.TotalTickets < ev.TicketsSold {
		response.Conflict(c, "total_tickets cannot drop below tickets already sold")
		return
	}
	if err := h.repo.Update(c.Request.Context(), ev.ID, req.Name, req.Description, req.Location, dateTime, req.TotalTickets); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), ev.ID)
	response.OK(c, updated)
}

// Publish handles POST /events/:id/publish. Cancelled events cannot return
// to the published state.
func (h *Handler) Publish(c *gin.Context) {
	ev := c.MustGet(ContextEvent).(*models.Event)
	if ev.Status == models.EventStatusCancelled {
		response.Conflict(c, "cancelled events cannot be published")
		return
	}
	if err := h.repo.SetStatus(c.Request.Context(), ev.ID, models.EventStatusPublished); err != nil {
		response.Internal(c, "failed to publish event")
		return
	}
	ev.Status = models.EventStatusPublished
	response.OK(c, ev)
}

// Cancel handles POST /events/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	ev := c.MustGet(ContextEvent).(*models.Event)
	if err := h.repo.SetStatus(c.Request.Context(), ev.ID, models.EventStatusCancelled); err != nil {
		response.Internal(c, "failed to cancel event")
		return
	}
	ev.Status = models.EventStatusCancelled
	response.OK(c, ev)
}

// Delete handles DELETE /events/:id. Tickets cascade with the event.
func (h *Handler) Delete(c *gin.Context) {
	ev := c.MustGet(ContextEvent).(*models.Event)
	if err := h.repo.Delete(c.Request.Context(), ev.ID); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// ListPublished handles GET /public/events: published events for the
// public listing, no authentication required.
func (h *Handler) ListPublished(c *gin.Context) {
	list, err := h.repo.ListPublished(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetBySlug handles GET /public/events/:slug: the public event detail page.
// Draft events are hidden from anonymous visitors.
func (h *Handler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	ev, err := h.repo.GetBySlug(c.Request.Context(), slug)
	if err != nil || ev.Status == models.EventStatusDraft {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, ev)
}
