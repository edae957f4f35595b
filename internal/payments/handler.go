package payments

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/tickets"
	"github.com/gatherly/backend/pkg/queue"
	"github.com/gatherly/backend/pkg/response"
)

// WebhookTokenHeader is the shared-secret header providers must send.
const WebhookTokenHeader = "X-Webhook-Token"

// Handler handles payment HTTP endpoints.
type Handler struct {
	repo         *Repository
	tickets      *tickets.Repository
	registry     *Registry
	queue        *queue.Queue
	webhookToken string
	logger       *zap.Logger
}

// NewHandler creates a payments handler.
func NewHandler(repo *Repository, ticketsRepo *tickets.Repository, registry *Registry, q *queue.Queue, webhookToken string, logger *zap.Logger) *Handler {
	return &Handler{
		repo:         repo,
		tickets:      ticketsRepo,
		registry:     registry,
		queue:        q,
		webhookToken: webhookToken,
		logger:       logger,
	}
}

// CreateChargeRequest is the body for POST /public/tickets/:id/charge.
type CreateChargeRequest struct {
	Provider string `json:"provider"`
}

// CreateCharge handles POST /public/tickets/:id/charge: creates a gateway
// charge for an issued ticket. The ticket ID acts as the capability here; it
// only reaches the customer through their confirmation email.
func (h *Handler) CreateCharge(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ticket id")
		return
	}
	var req CreateChargeRequest
	_ = c.ShouldBindJSON(&req)
	if req.Provider == "" {
		req.Provider = "sandbox"
	}
	gateway, err := h.registry.Get(req.Provider)
	if err != nil {
		response.BadRequest(c, "unknown payment provider")
		return
	}

	t, err := h.tickets.GetByID(c.Request.Context(), ticketID)
	if err != nil {
		response.NotFound(c, "ticket not found")
		return
	}
	if existing, err := h.repo.GetByTicketID(c.Request.Context(), t.ID); err == nil &&
		existing.Status == models.PaymentStatusPaid {
		response.Conflict(c, "ticket is already paid")
		return
	}

	charge, err := gateway.CreateCharge(c.Request.Context(), ChargeParams{
		TicketID:      t.ID,
		Amount:        t.Price,
		Currency:      "IDR",
		CustomerName:  t.CustomerName,
		CustomerEmail: t.CustomerEmail,
		Description:   "Gatherly ticket " + t.ID.String(),
	})
	if err != nil {
		h.logger.Error("create charge", zap.Error(err), zap.String("provider", req.Provider))
		response.Internal(c, "failed to create charge")
		return
	}

	p := &models.Payment{
		TicketID:       t.ID,
		OrganizationID: t.OrganizationID,
		Provider:       gateway.Name(),
		ChargeID:       charge.ChargeID,
		Amount:         t.Price,
		Currency:       "IDR",
		Status:         charge.Status,
	}
	if charge.PaymentURL != "" {
		p.PaymentURL = &charge.PaymentURL
	}
	if charge.QRCode != "" {
		p.QRString = &charge.QRCode
	}
	if err := h.repo.Create(c.Request.Context(), p); err != nil {
		h.logger.Error("save payment", zap.Error(err), zap.String("charge_id", charge.ChargeID))
		response.Internal(c, "failed to save payment")
		return
	}
	response.Created(c, p)
}

// Webhook handles POST /webhooks/payments/:provider. Providers authenticate
// with a shared token header; bodies are handed to the gateway for parsing.
// Replayed notifications are safe: the status update is a no-op the second time.
func (h *Handler) Webhook(c *gin.Context) {
	if h.webhookToken == "" || c.GetHeader(WebhookTokenHeader) != h.webhookToken {
		response.Unauthorized(c, "invalid webhook token")
		return
	}
	gateway, err := h.registry.Get(c.Param("provider"))
	if err != nil {
		response.NotFound(c, "unknown payment provider")
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}
	result, err := gateway.HandleWebhook(body)
	if err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err), zap.String("provider", gateway.Name()))
		response.BadRequest(c, "invalid webhook payload")
		return
	}

	p, err := h.repo.GetByChargeID(c.Request.Context(), result.ChargeID)
	if err != nil {
		response.NotFound(c, "unknown charge")
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), result.ChargeID, result.Status, result.PaidAt); err != nil {
		h.logger.Error("update payment status", zap.Error(err), zap.String("charge_id", result.ChargeID))
		response.Internal(c, "failed to update payment")
		return
	}
	h.logger.Info("payment status updated",
		zap.String("charge_id", result.ChargeID),
		zap.String("status", result.Status))

	// First transition to paid sends the confirmation email.
	if result.Status == models.PaymentStatusPaid && p.Status != models.PaymentStatusPaid && h.queue != nil {
		if t, err := h.tickets.GetByID(c.Request.Context(), p.TicketID); err == nil {
			if err := h.queue.EnqueueTicketEmail(c.Request.Context(), queue.TicketEmailPayload{
				TicketID:       t.ID,
				EventID:        t.EventID,
				RecipientEmail: t.CustomerEmail,
				RecipientName:  t.CustomerName,
			}); err != nil {
				h.logger.Warn("enqueue ticket email", zap.Error(err))
			}
		}
	}
	response.OK(c, gin.H{"charge_id": result.ChargeID, "status": result.Status})
}

// ListByOrganization handles GET /organizations/:id/payments (members only).
func (h *Handler) ListByOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.repo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to list payments")
		return
	}
	response.OK(c, list)
}
