package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

const paymentColumns = `id, ticket_id, organization_id, provider, charge_id, amount, currency,
	status, payment_url, qr_string, paid_at, created_at, updated_at`

// Repository handles payment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a payments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.TicketID, &p.OrganizationID, &p.Provider, &p.ChargeID,
		&p.Amount, &p.Currency, &p.Status, &p.PaymentURL, &p.QRString,
		&p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a pending payment for a ticket.
func (r *Repository) Create(ctx context.Context, p *models.Payment) error {
	const q = `INSERT INTO payments (ticket_id, organization_id, provider, charge_id, amount, currency, status, payment_url, qr_string)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	if p.Currency == "" {
		p.Currency = "IDR"
	}
	if p.Status == "" {
		p.Status = models.PaymentStatusPending
	}
	return r.pool.QueryRow(ctx, q,
		p.TicketID, p.OrganizationID, p.Provider, p.ChargeID, p.Amount, p.Currency,
		p.Status, p.PaymentURL, p.QRString).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByChargeID returns a payment by the provider's charge handle.
func (r *Repository) GetByChargeID(ctx context.Context, chargeID string) (*models.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE charge_id = $1`, chargeID))
}

// GetByTicketID returns the payment attached to a ticket.
func (r *Repository) GetByTicketID(ctx context.Context, ticketID uuid.UUID) (*models.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE ticket_id = $1 ORDER BY created_at DESC LIMIT 1`, ticketID))
}

// UpdateStatus transitions a payment's status. Webhooks replay, so a payment
// already in the target status is left untouched.
func (r *Repository) UpdateStatus(ctx context.Context, chargeID, status string, paidAt *time.Time) error {
	const q = `UPDATE payments SET status = $2, paid_at = COALESCE($3, paid_at), updated_at = NOW()
		WHERE charge_id = $1 AND status <> $2`
	_, err := r.pool.Exec(ctx, q, chargeID, status, paidAt)
	return err
}

// ListByOrganization returns an organization's payments, newest first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}
