package analytics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/currency"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles analytics endpoints for organizations and events.
type Handler struct {
	pool      *pgxpool.Pool
	eventRepo *events.Repository
}

// NewHandler creates an analytics handler.
func NewHandler(pool *pgxpool.Pool, eventRepo *events.Repository) *Handler {
	return &Handler{pool: pool, eventRepo: eventRepo}
}

// OrgSummaryResponse is the JSON shape for the organization dashboard header.
type OrgSummaryResponse struct {
	TotalEvents           int             `json:"total_events"`
	PublishedEvents       int             `json:"published_events"`
	TotalTicketsSold      int             `json:"total_tickets_sold"`
	TotalCheckedIn        int             `json:"total_checked_in"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	TotalRevenueFormatted string          `json:"total_revenue_formatted"`
}

// OrgSummary handles GET /organizations/:id/analytics (members only).
func (h *Handler) OrgSummary(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	ctx := c.Request.Context()

	var out OrgSummaryResponse
	const eventsQ = `SELECT COUNT(*),
		COUNT(*) FILTER (WHERE status = 'published'),
		COALESCE(SUM(tickets_sold), 0),
		COALESCE(SUM(total_revenue), 0)
		FROM events WHERE organization_id = $1`
	err = h.pool.QueryRow(ctx, eventsQ, orgID).
		Scan(&out.TotalEvents, &out.PublishedEvents, &out.TotalTicketsSold, &out.TotalRevenue)
	if err != nil {
		response.Internal(c, "failed to load event totals")
		return
	}

	const checkedQ = `SELECT COUNT(*) FROM tickets WHERE organization_id = $1 AND is_checked_in`
	if err := h.pool.QueryRow(ctx, checkedQ, orgID).Scan(&out.TotalCheckedIn); err != nil {
		response.Internal(c, "failed to load check-in totals")
		return
	}

	out.TotalRevenueFormatted = currency.FormatIDRDecimal(out.TotalRevenue)
	response.OK(c, out)
}

// EventSummaryResponse is the JSON shape for a single event's analytics card.
type EventSummaryResponse struct {
	EventID               uuid.UUID       `json:"event_id"`
	Name                  string          `json:"name"`
	Status                string          `json:"status"`
	TotalTickets          int             `json:"total_tickets"`
	TicketsSold           int             `json:"tickets_sold"`
	CheckedIn             int             `json:"checked_in"`
	CheckInPercent        float64         `json:"check_in_percent"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	TotalRevenueFormatted string          `json:"total_revenue_formatted"`
}

// EventSummary handles GET /events/:id/analytics (behind RequireEventAccess).
func (h *Handler) EventSummary(c *gin.Context) {
	ev := c.MustGet(events.ContextEvent).(*models.Event)
	ctx := c.Request.Context()

	var checkedIn int
	const checkedQ = `SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND is_checked_in`
	if err := h.pool.QueryRow(ctx, checkedQ, ev.ID).Scan(&checkedIn); err != nil {
		response.Internal(c, "failed to load check-in count")
		return
	}

	percent := 0.0
	if ev.TicketsSold > 0 {
		percent = float64(checkedIn) / float64(ev.TicketsSold) * 100
	}
	response.OK(c, EventSummaryResponse{
		EventID:               ev.ID,
		Name:                  ev.Name,
		Status:                string(ev.Status),
		TotalTickets:          ev.TotalTickets,
		TicketsSold:           ev.TicketsSold,
		CheckedIn:             checkedIn,
		CheckInPercent:        percent,
		TotalRevenue:          ev.TotalRevenue,
		TotalRevenueFormatted: currency.FormatIDRDecimal(ev.TotalRevenue),
	})
}

// DailySalesPoint is one day in the sales time series.
type DailySalesPoint struct {
	Day              time.Time       `json:"day"`
	TicketsSold      int             `json:"tickets_sold"`
	Revenue          decimal.Decimal `json:"revenue"`
	RevenueFormatted string          `json:"revenue_formatted"`
}

// DailySales handles GET /events/:id/analytics/daily (behind RequireEventAccess).
// Returns up to the last 30 days with at least one ticket sold.
func (h *Handler) DailySales(c *gin.Context) {
	ev := c.MustGet(events.ContextEvent).(*models.Event)

	const q = `SELECT date_trunc('day', created_at) AS day, COUNT(*), COALESCE(SUM(price), 0)
		FROM tickets WHERE event_id = $1
		GROUP BY day ORDER BY day DESC LIMIT 30`
	rows, err := h.pool.Query(c.Request.Context(), q, ev.ID)
	if err != nil {
		response.Internal(c, "failed to load daily sales")
		return
	}
	defer rows.Close()

	var series []DailySalesPoint
	for rows.Next() {
		var p DailySalesPoint
		if err := rows.Scan(&p.Day, &p.TicketsSold, &p.Revenue); err != nil {
			response.Internal(c, "failed to read daily sales")
			return
		}
		p.RevenueFormatted = currency.FormatIDRDecimal(p.Revenue)
		series = append(series, p)
	}
	if err := rows.Err(); err != nil {
		response.Internal(c, "failed to read daily sales")
		return
	}
	response.OK(c, series)
}
