package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles user and session persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT id, name, email, email_verified, image, password_hash, created_at, updated_at
		FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.Image, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT id, name, email, email_verified, image, password_hash, created_at, updated_at
		FROM users WHERE email = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.Image, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	const q = `INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, email_verified, image, password_hash, created_at, updated_at`
	var u models.User
	err := r.pool.QueryRow(ctx, q, name, email, passwordHash).Scan(
		&u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.Image, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateSession inserts a session row for a login.
func (r *Repository) CreateSession(ctx context.Context, s *models.Session) error {
	const q = `INSERT INTO sessions (token, user_id, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''))
		RETURNING id, created_at, updated_at`
	ip, ua := "", ""
	if s.IPAddress != nil {
		ip = *s.IPAddress
	}
	if s.UserAgent != nil {
		ua = *s.UserAgent
	}
	return r.pool.QueryRow(ctx, q, s.Token, s.UserID, s.ExpiresAt, ip, ua).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetSessionByToken returns a session by its token.
func (r *Repository) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	const q = `SELECT id, token, user_id, expires_at, ip_address, user_agent,
		active_organization_id, active_team_id, created_at, updated_at
		FROM sessions WHERE token = $1`
	var s models.Session
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&s.ID, &s.Token, &s.UserID, &s.ExpiresAt, &s.IPAddress, &s.UserAgent,
		&s.ActiveOrganizationID, &s.ActiveTeamID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ValidateSessionToken reports whether a token maps to a stored, unexpired
// session. Used by the route gate's validator hook; any failure is simply
// "not authenticated".
func (r *Repository) ValidateSessionToken(ctx context.Context, token string) bool {
	s, err := r.GetSessionByToken(ctx, token)
	return err == nil && s != nil && s.Valid(time.Now())
}

// DeleteSessionByToken removes a session (logout).
func (r *Repository) DeleteSessionByToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpiredSessions removes all expired sessions and returns the count.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SetActiveOrganization switches the session's tenant context. The org must be
// one the user belongs to; callers verify membership first.
func (r *Repository) SetActiveOrganization(ctx context.Context, token string, orgID *uuid.UUID) error {
	const q = `UPDATE sessions SET active_organization_id = $2, active_team_id = NULL, updated_at = NOW()
		WHERE token = $1`
	_, err := r.pool.Exec(ctx, q, token, orgID)
	return err
}

// SetActiveTeam switches the session's team context within the active organization.
func (r *Repository) SetActiveTeam(ctx context.Context, token string, teamID *uuid.UUID) error {
	const q = `UPDATE sessions SET active_team_id = $2, updated_at = NOW() WHERE token = $1`
	_, err := r.pool.Exec(ctx, q, token, teamID)
	return err
}
