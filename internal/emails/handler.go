package emails

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/tickets"
	"github.com/gatherly/backend/pkg/queue"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo    *Repository
	tickets *tickets.Repository
	queue   *queue.Queue
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository, ticketsRepo *tickets.Repository, q *queue.Queue) *Handler {
	return &Handler{repo: repo, tickets: ticketsRepo, queue: q}
}

// ListByEvent handles GET /events/:id/emails (behind RequireEventAccess).
func (h *Handler) ListByEvent(c *gin.Context) {
	ev := c.MustGet(events.ContextEvent).(*models.Event)
	logs, err := h.repo.ListByEvent(c.Request.Context(), ev.ID)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}

// ResendRequest is the body for POST /events/:id/emails/resend.
type ResendRequest struct {
	TicketID string `json:"ticket_id" binding:"required,uuid"`
}

// Resend handles POST /events/:id/emails/resend: re-enqueues the confirmation
// email for one of the event's tickets.
func (h *Handler) Resend(c *gin.Context) {
	ev := c.MustGet(events.ContextEvent).(*models.Event)
	var body ResendRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "ticket_id required")
		return
	}
	ticketID, _ := uuid.Parse(body.TicketID)

	t, err := h.tickets.GetByID(c.Request.Context(), ticketID)
	if err != nil || t.EventID != ev.ID {
		response.NotFound(c, "ticket not found for this event")
		return
	}
	err = h.queue.EnqueueTicketEmail(c.Request.Context(), queue.TicketEmailPayload{
		TicketID:       t.ID,
		EventID:        t.EventID,
		RecipientEmail: t.CustomerEmail,
		RecipientName:  t.CustomerName,
	})
	if err != nil {
		response.Internal(c, "failed to enqueue email")
		return
	}
	response.OK(c, gin.H{"message": "resend queued"})
}
