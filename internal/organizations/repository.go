package organizations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles organization, member, invitation and team persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create creates an organization.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (name, slug, logo, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, org.Name, org.Slug, org.Logo, org.Metadata).
		Scan(&org.ID, &org.CreatedAt)
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, slug, logo, metadata, created_at FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&org.ID, &org.Name, &org.Slug, &org.Logo, &org.Metadata, &org.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetBySlug returns an organization by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	const q = `SELECT id, name, slug, logo, metadata, created_at FROM organizations WHERE slug = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, slug).Scan(
		&org.ID, &org.Name, &org.Slug, &org.Logo, &org.Metadata, &org.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Delete removes an organization. Members, invitations, teams, events and
// tickets go with it via schema cascades.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}

// ListForUser returns organizations the user is a member of.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	const q = `SELECT o.id, o.name, o.slug, o.logo, o.metadata, o.created_at
		FROM organizations o
		INNER JOIN members m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Logo, &o.Metadata, &o.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// AddMember adds a user to an organization; on re-add the role is updated.
func (r *Repository) AddMember(ctx context.Context, orgID, userID uuid.UUID, role string) error {
	if role == "" {
		role = models.MemberRoleMember
	}
	const q = `INSERT INTO members (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role`
	_, err := r.pool.Exec(ctx, q, orgID, userID, role)
	return err
}

// RemoveMember removes a user from an organization.
func (r *Repository) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM members WHERE organization_id = $1 AND user_id = $2`, orgID, userID)
	return err
}

// GetMemberRole returns the user's role in the organization, or empty if not a member.
func (r *Repository) GetMemberRole(ctx context.Context, orgID, userID uuid.UUID) (string, error) {
	const q = `SELECT role FROM members WHERE organization_id = $1 AND user_id = $2`
	var role string
	if err := r.pool.QueryRow(ctx, q, orgID, userID).Scan(&role); err != nil {
		return "", err
	}
	return role, nil
}

// IsMember reports whether the user belongs to the organization.
func (r *Repository) IsMember(ctx context.Context, orgID, userID uuid.UUID) bool {
	role, err := r.GetMemberRole(ctx, orgID, userID)
	return err == nil && role != ""
}

// MemberDetail is an organization member joined with user details.
type MemberDetail struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	AddedAt time.Time `json:"added_at"`
}

// ListMembers returns members of an organization with user details.
func (r *Repository) ListMembers(ctx context.Context, orgID uuid.UUID) ([]MemberDetail, error) {
	const q = `SELECT m.id, m.user_id, u.name, u.email, m.role, m.created_at
		FROM members m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []MemberDetail
	for rows.Next() {
		var m MemberDetail
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Email, &m.Role, &m.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CreateInvitation inserts a pending invitation.
func (r *Repository) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	const q = `INSERT INTO invitations (organization_id, email, role, status, expires_at, inviter_id, team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		inv.OrganizationID, inv.Email, inv.Role, inv.Status, inv.ExpiresAt, inv.InviterID, inv.TeamID).
		Scan(&inv.ID, &inv.CreatedAt)
}

// GetInvitationByID returns an invitation by ID.
func (r *Repository) GetInvitationByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	const q = `SELECT id, organization_id, email, role, status, expires_at, inviter_id, team_id, created_at
		FROM invitations WHERE id = $1`
	var inv models.Invitation
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.Status,
		&inv.ExpiresAt, &inv.InviterID, &inv.TeamID, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInvitationsByOrg returns invitations for an organization, newest first.
func (r *Repository) ListInvitationsByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Invitation, error) {
	const q = `SELECT id, organization_id, email, role, status, expires_at, inviter_id, team_id, created_at
		FROM invitations WHERE organization_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.Status,
			&inv.ExpiresAt, &inv.InviterID, &inv.TeamID, &inv.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// UpdateInvitationStatus transitions an invitation out of pending.
func (r *Repository) UpdateInvitationStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE invitations SET status = $2 WHERE id = $1`, id, status)
	return err
}

// CreateTeam inserts a team within an organization.
func (r *Repository) CreateTeam(ctx context.Context, t *models.Team) error {
	const q = `INSERT INTO teams (organization_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.OrganizationID, t.Name).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetTeamByID returns a team by ID.
func (r *Repository) GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	const q = `SELECT id, organization_id, name, created_at, updated_at FROM teams WHERE id = $1`
	var t models.Team
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.OrganizationID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTeamsByOrg returns an organization's teams.
func (r *Repository) ListTeamsByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Team, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, organization_id, name, created_at, updated_at FROM teams WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// AddTeamMember adds a user to a team (idempotent).
func (r *Repository) AddTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	const q = `INSERT INTO team_members (team_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (team_id, user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, teamID, userID)
	return err
}

// DeleteTeam removes a team; team_members cascade.
func (r *Repository) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	return err
}
