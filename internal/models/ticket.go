package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ticket is one sold unit for an event. OrganizationID duplicates the event's
// organization for tenant-scoped queries; the write path copies it from the
// event row inside the issuance transaction.
type Ticket struct {
	ID               uuid.UUID       `json:"id"`
	EventID          uuid.UUID       `json:"event_id"`
	OrganizationID   uuid.UUID       `json:"organization_id"`
	CustomerName     string          `json:"customer_name"`
	CustomerEmail    string          `json:"customer_email"`
	CustomerWhatsApp *string         `json:"customer_whatsapp,omitempty"`
	TicketType       string          `json:"ticket_type"`
	Price            decimal.Decimal `json:"price"`
	QRCode           string          `json:"qr_code"`
	IsCheckedIn      bool            `json:"is_checked_in"`
	CheckedInAt      *time.Time      `json:"checked_in_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
