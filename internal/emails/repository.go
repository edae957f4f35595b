package emails

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a queued email log entry and returns its ID.
func (r *Repository) Create(ctx context.Context, log *models.EmailLog) error {
	const q = `INSERT INTO email_logs (ticket_id, recipient, subject, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	if log.Status == "" {
		log.Status = models.EmailStatusQueued
	}
	return r.pool.QueryRow(ctx, q, log.TicketID, log.Recipient, log.Subject, log.Status).
		Scan(&log.ID, &log.CreatedAt)
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = $2, sent_at = $3, error = NULL WHERE id = $1`,
		id, models.EmailStatusSent, at)
	return err
}

// MarkFailed records a delivery failure with the error text.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = $2, error = $3 WHERE id = $1`,
		id, models.EmailStatusFailed, errMsg)
	return err
}

// ListByTicket returns delivery attempts for a ticket, newest first.
func (r *Repository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]models.EmailLog, error) {
	return r.list(ctx,
		`SELECT id, ticket_id, recipient, subject, status, error, sent_at, created_at
		 FROM email_logs WHERE ticket_id = $1 ORDER BY created_at DESC`, ticketID)
}

// ListByEvent returns delivery attempts for all of an event's tickets.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EmailLog, error) {
	return r.list(ctx,
		`SELECT el.id, el.ticket_id, el.recipient, el.subject, el.status, el.error, el.sent_at, el.created_at
		 FROM email_logs el
		 INNER JOIN tickets t ON t.id = el.ticket_id
		 WHERE t.event_id = $1 ORDER BY el.created_at DESC`, eventID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.EmailLog, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.TicketID, &el.Recipient, &el.Subject,
			&el.Status, &el.Error, &el.SentAt, &el.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	return list, rows.Err()
}
