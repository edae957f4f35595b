package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is an organization-scoped event with ticket sales counters.
// TotalRevenue is a fixed-precision decimal, never a float.
type Event struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description"`
	DateTime       time.Time       `json:"date_time"`
	Location       string          `json:"location"`
	PosterURL      *string         `json:"poster_url,omitempty"`
	Status         EventStatus     `json:"status"`
	TotalTickets   int             `json:"total_tickets"`
	TicketsSold    int             `json:"tickets_sold"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SoldOut reports whether no tickets remain (TotalTickets of 0 means unlimited).
func (e *Event) SoldOut() bool {
	return e.TotalTickets > 0 && e.TicketsSold >= e.TotalTickets
}
