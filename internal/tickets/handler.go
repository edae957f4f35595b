package tickets

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/organizations"
	"github.com/gatherly/backend/internal/realtime"
	"github.com/gatherly/backend/pkg/queue"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles ticket HTTP endpoints.
type Handler struct {
	repo   *Repository
	orgs   *organizations.Repository
	queue  *queue.Queue
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewHandler creates a tickets handler. queue and hub may be nil (emails and
// the live feed are then skipped).
func NewHandler(repo *Repository, orgs *organizations.Repository, q *queue.Queue, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orgs: orgs, queue: q, hub: hub, logger: logger}
}

// IssueRequest is the body for POST /events/:id/tickets.
type IssueRequest struct {
	CustomerName     string  `json:"customer_name" binding:"required"`
	CustomerEmail    string  `json:"customer_email" binding:"required,email"`
	CustomerWhatsApp *string `json:"customer_whatsapp"`
	TicketType       string  `json:"ticket_type"`
	Price            string  `json:"price" binding:"required"`
}

// Issue handles POST /events/:id/tickets: an organizer-issued ticket (the
// dashboard's manual sale path). Runs behind RequireEventAccess.
func (h *Handler) Issue(c *gin.Context) {
	ev := c.MustGet(events.ContextEvent).(*models.Event)

	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.IsNegative() {
		response.BadRequest(c, "price must be a non-negative decimal")
		return
	}

	t, err := h.repo.Issue(c.Request.Context(), IssueParams{
		EventID:          ev.ID,
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerEmail:    strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerWhatsApp: req.CustomerWhatsApp,
		TicketType:       req.TicketType,
		Price:            price,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSoldOut):
			response.Conflict(c, "event is sold out")
		case errors.Is(err, ErrNotOnSale):
			response.Conflict(c, "event is not on sale")
		default:
			h.logger.Error("issue ticket", zap.Error(err))
			response.Internal(c, "failed to issue ticket")
		}
		return
	}

	h.afterIssue(c, t)
	response.Created(c, t)
}

// afterIssue enqueues the confirmation email and pushes the live feed message.
func (h *Handler) afterIssue(c *gin.Context, t *models.Ticket) {
	if h.queue != nil {
		err := h.queue.EnqueueTicketEmail(c.Request.Context(), queue.TicketEmailPayload{
			TicketID:       t.ID,
			EventID:        t.EventID,
			RecipientEmail: t.CustomerEmail,
			RecipientName:  t.CustomerName,
		})
		if err != nil {
			h.logger.Warn("enqueue ticket email", zap.Error(err), zap.String("ticket_id", t.ID.String()))
		}
	}
	if h.hub != nil {
		h.hub.BroadcastAndPublish(t.EventID, realtime.EventTicketIssued, t)
	}
}

// ListByEvent handles GET /events/:id/tickets (behind RequireEventAccess).
func (h *Handler) ListByEvent(c *gin.Context) {
	ev := c.MustGet(events.ContextEvent).(*models.Event)
	list, err := h.repo.ListByEvent(c.Request.Context(), ev.ID)
	if err != nil {
		response.Internal(c, "failed to list tickets")
		return
	}
	response.OK(c, list)
}

// ListByOrganization handles GET /organizations/:id/tickets (members only).
func (h *Handler) ListByOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.repo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to list tickets")
		return
	}
	response.OK(c, list)
}

// CheckInRequest is the body for POST /tickets/check-in.
type CheckInRequest struct {
	QRCode string `json:"qr_code" binding:"required"`
}

// CheckIn handles POST /tickets/check-in: the scanner scans a QR code and the
// ticket flips to checked in exactly once. A re-scan returns 409 with the
// original check-in time so door staff see when it was first used.
func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "qr_code required")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	qr := strings.TrimSpace(req.QRCode)

	existing, err := h.repo.GetByQRCode(c.Request.Context(), qr)
	if err != nil {
		response.NotFound(c, "ticket not found")
		return
	}
	if !h.orgs.IsMember(c.Request.Context(), existing.OrganizationID, userID) {
		response.Forbidden(c, "not a member of this ticket's organization")
		return
	}

	t, err := h.repo.CheckIn(c.Request.Context(), qr, time.Now())
	if errors.Is(err, ErrAlreadyCheckedIn) {
		c.JSON(http.StatusConflict, response.Body{Success: false, Error: "ticket already checked in", Data: t})
		return
	}
	if err != nil {
		h.logger.Error("check in ticket", zap.Error(err))
		response.Internal(c, "failed to check in ticket")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastAndPublish(t.EventID, realtime.EventTicketCheckedIn, t)
	}
	response.OK(c, t)
}

// Lookup handles GET /tickets/qr/:code: resolves a QR code without checking
// it in, for the scanner's confirmation screen.
func (h *Handler) Lookup(c *gin.Context) {
	code := c.Param("code")
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	t, err := h.repo.GetByQRCode(c.Request.Context(), code)
	if err != nil {
		response.NotFound(c, "ticket not found")
		return
	}
	if !h.orgs.IsMember(c.Request.Context(), t.OrganizationID, userID) {
		response.Forbidden(c, "not a member of this ticket's organization")
		return
	}
	response.OK(c, t)
}
