package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an authentication token bound to a user. It carries the current
// tenant context (active organization/team) for dashboard requests.
type Session struct {
	ID                   uuid.UUID  `json:"id"`
	Token                string     `json:"-"`
	UserID               uuid.UUID  `json:"user_id"`
	ExpiresAt            time.Time  `json:"expires_at"`
	IPAddress            *string    `json:"ip_address,omitempty"`
	UserAgent            *string    `json:"user_agent,omitempty"`
	ActiveOrganizationID *uuid.UUID `json:"active_organization_id,omitempty"`
	ActiveTeamID         *uuid.UUID `json:"active_team_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Valid reports whether the session has not expired at the given instant.
// A session with a past expiry is invalid regardless of presence in storage.
func (s *Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
