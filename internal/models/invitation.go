package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation statuses.
const (
	InvitationStatusPending   = "pending"
	InvitationStatusAccepted  = "accepted"
	InvitationStatusRejected  = "rejected"
	InvitationStatusCancelled = "cancelled"
)

// Invitation is a pending membership offer into an organization.
type Invitation struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	ExpiresAt      time.Time  `json:"expires_at"`
	InviterID      uuid.UUID  `json:"inviter_id"`
	TeamID         *uuid.UUID `json:"team_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Expired reports whether the invitation's expiry has passed. Expired
// invitations are inert: they can no longer be accepted.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Acceptable reports whether the invitation is pending and not expired.
func (i *Invitation) Acceptable(now time.Time) bool {
	return i.Status == InvitationStatusPending && !i.Expired(now)
}
