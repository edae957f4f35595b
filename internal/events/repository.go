package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

const eventColumns = `id, organization_id, name, slug, description, date_time, location,
	poster_url, status, total_tickets, tickets_sold, total_revenue, created_at, updated_at`

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.OrganizationID, &e.Name, &e.Slug, &e.Description,
		&e.DateTime, &e.Location, &e.PosterURL, &e.Status,
		&e.TotalTickets, &e.TicketsSold, &e.TotalRevenue, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event in draft status.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (organization_id, name, slug, description, date_time, location, status, total_tickets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, tickets_sold, total_revenue, created_at, updated_at`
	if e.Status == "" {
		e.Status = models.EventStatusDraft
	}
	return r.pool.QueryRow(ctx, q,
		e.OrganizationID, e.Name, e.Slug, e.Description, e.DateTime, e.Location, e.Status, e.TotalTickets).
		Scan(&e.ID, &e.TicketsSold, &e.TotalRevenue, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// GetBySlug returns an event by its public slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug))
}

// ListByOrganization returns an organization's events, soonest first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events WHERE organization_id = $1 ORDER BY date_time DESC`, orgID)
}

// ListPublished returns published events across all organizations for the
// public listing pages.
func (r *Repository) ListPublished(ctx context.Context) ([]models.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events WHERE status = $1 ORDER BY date_time ASC`,
		models.EventStatusPublished)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Update updates mutable event fields; nil pointers leave the column untouched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description, location *string, dateTime *time.Time, totalTickets *int) error {
	const q = `UPDATE events SET
		name = COALESCE($2, name),
		description = COALESCE($3, description),
		location = COALESCE($4, location),
		date_time = COALESCE($5, date_time),
		total_tickets = COALESCE($6, total_tickets),
		updated_at = NOW()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, name, description, location, dateTime, totalTickets)
	return err
}

// SetStatus transitions an event's lifecycle state.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.EventStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

// SetPosterURL stores (or clears) the event's poster URL.
func (r *Repository) SetPosterURL(ctx context.Context, id uuid.UUID, url *string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE events SET poster_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

// Delete removes an event; its tickets cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}
