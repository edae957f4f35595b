package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusExpired  = "expired"
	PaymentStatusRefunded = "refunded"
)

// Payment records a gateway charge for a ticket.
type Payment struct {
	ID             uuid.UUID       `json:"id"`
	TicketID       uuid.UUID       `json:"ticket_id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Provider       string          `json:"provider"`
	ChargeID       string          `json:"charge_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	PaymentURL     *string         `json:"payment_url,omitempty"`
	QRString       *string         `json:"qr_string,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
