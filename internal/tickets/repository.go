package tickets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/utils"
)

var (
	// ErrSoldOut is returned when an event has no tickets left.
	ErrSoldOut = errors.New("event is sold out")
	// ErrNotOnSale is returned when the event is not published.
	ErrNotOnSale = errors.New("event is not on sale")
	// ErrAlreadyCheckedIn is returned on a second check-in of the same ticket.
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")
)

const ticketColumns = `id, event_id, organization_id, customer_name, customer_email,
	customer_whatsapp, ticket_type, price, qr_code, is_checked_in, checked_in_at, created_at`

// Repository handles ticket persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tickets repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTicket(row interface{ Scan(...any) error }) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(&t.ID, &t.EventID, &t.OrganizationID, &t.CustomerName, &t.CustomerEmail,
		&t.CustomerWhatsApp, &t.TicketType, &t.Price, &t.QRCode,
		&t.IsCheckedIn, &t.CheckedInAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IssueParams describes a ticket to issue.
type IssueParams struct {
	EventID          uuid.UUID
	CustomerName     string
	CustomerEmail    string
	CustomerWhatsApp *string
	TicketType       string
	Price            decimal.Decimal
}

// Issue creates a ticket inside one transaction: it locks the event row,
// copies the event's organization_id onto the ticket, rejects sold-out or
// unpublished events, and bumps tickets_sold and total_revenue together with
// the insert. The QR code is a random opaque token.
func (r *Repository) Issue(ctx context.Context, p IssueParams) (*models.Ticket, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var orgID uuid.UUID
	var status string
	var totalTickets, ticketsSold int
	err = tx.QueryRow(ctx,
		`SELECT organization_id, status, total_tickets, tickets_sold FROM events WHERE id = $1 FOR UPDATE`,
		p.EventID).Scan(&orgID, &status, &totalTickets, &ticketsSold)
	if err != nil {
		return nil, err
	}
	if status != string(models.EventStatusPublished) {
		return nil, ErrNotOnSale
	}
	if totalTickets > 0 && ticketsSold >= totalTickets {
		return nil, ErrSoldOut
	}

	qr, err := utils.RandomToken(16)
	if err != nil {
		return nil, err
	}
	if p.TicketType == "" {
		p.TicketType = "regular"
	}

	const insert = `INSERT INTO tickets (event_id, organization_id, customer_name, customer_email,
		customer_whatsapp, ticket_type, price, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + ticketColumns
	t, err := scanTicket(tx.QueryRow(ctx, insert,
		p.EventID, orgID, p.CustomerName, p.CustomerEmail, p.CustomerWhatsApp, p.TicketType, p.Price, qr))
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET tickets_sold = tickets_sold + 1, total_revenue = total_revenue + $2, updated_at = NOW()
		 WHERE id = $1`, p.EventID, p.Price)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByID returns a ticket by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
}

// GetByQRCode returns a ticket by its QR code (the check-in lookup key).
func (r *Repository) GetByQRCode(ctx context.Context, qr string) (*models.Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE qr_code = $1`, qr))
}

// CheckIn marks a ticket as checked in. The guarded UPDATE makes re-scans of
// the same QR code fail with ErrAlreadyCheckedIn instead of silently passing.
func (r *Repository) CheckIn(ctx context.Context, qr string, at time.Time) (*models.Ticket, error) {
	const q = `UPDATE tickets SET is_checked_in = TRUE, checked_in_at = $2
		WHERE qr_code = $1 AND is_checked_in = FALSE
		RETURNING ` + ticketColumns
	t, err := scanTicket(r.pool.QueryRow(ctx, q, qr, at))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	// No row updated: either the QR is unknown or the ticket was already used.
	existing, lookupErr := r.GetByQRCode(ctx, qr)
	if lookupErr != nil {
		return nil, lookupErr
	}
	return existing, ErrAlreadyCheckedIn
}

// ListByEvent returns an event's tickets, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
}

// ListByOrganization returns all tickets across an organization's events.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Ticket, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}
