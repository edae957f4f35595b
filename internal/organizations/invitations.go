package organizations

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// InvitationTTL is how long a membership invitation stays acceptable.
const InvitationTTL = 7 * 24 * time.Hour

// InviteRequest is the body for POST /organizations/:id/invitations.
type InviteRequest struct {
	Email  string     `json:"email" binding:"required,email"`
	Role   string     `json:"role"`
	TeamID *uuid.UUID `json:"team_id,omitempty"`
}

// Invite handles POST /organizations/:id/invitations (owner/admin only).
func (h *Handler) Invite(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var body InviteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "email required")
		return
	}
	role := body.Role
	switch role {
	case "":
		role = models.MemberRoleMember
	case models.MemberRoleOwner, models.MemberRoleAdmin, models.MemberRoleMember:
	default:
		response.BadRequest(c, "invalid role")
		return
	}
	if body.TeamID != nil {
		team, err := h.repo.GetTeamByID(c.Request.Context(), *body.TeamID)
		if err != nil || team.OrganizationID != orgID {
			response.BadRequest(c, "team does not belong to this organization")
			return
		}
	}

	inv := &models.Invitation{
		OrganizationID: orgID,
		Email:          strings.ToLower(strings.TrimSpace(body.Email)),
		Role:           role,
		Status:         models.InvitationStatusPending,
		ExpiresAt:      time.Now().Add(InvitationTTL),
		InviterID:      userID,
		TeamID:         body.TeamID,
	}
	if err := h.repo.CreateInvitation(c.Request.Context(), inv); err != nil {
		response.Internal(c, "failed to create invitation")
		return
	}
	response.Created(c, inv)
}

// ListInvitations handles GET /organizations/:id/invitations (owner/admin only).
func (h *Handler) ListInvitations(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.repo.ListInvitationsByOrg(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load invitations")
		return
	}
	response.OK(c, list)
}

// AcceptInvitation handles POST /invitations/:id/accept. The caller's email
// must match the invitation; expired or non-pending invitations are inert.
func (h *Handler) AcceptInvitation(c *gin.Context) {
	invID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	inv, err := h.repo.GetInvitationByID(c.Request.Context(), invID)
	if err != nil {
		response.NotFound(c, "invitation not found")
		return
	}
	if !inv.Acceptable(time.Now()) {
		response.Gone(c, "invitation expired or no longer pending")
		return
	}

	u, err := h.authRepo.GetByID(c.Request.Context(), userID)
	if err != nil || !strings.EqualFold(u.Email, inv.Email) {
		response.Forbidden(c, "invitation was issued to a different email")
		return
	}

	if err := h.repo.AddMember(c.Request.Context(), inv.OrganizationID, userID, inv.Role); err != nil {
		response.Internal(c, "failed to join organization")
		return
	}
	if inv.TeamID != nil {
		_ = h.repo.AddTeamMember(c.Request.Context(), *inv.TeamID, userID)
	}
	if err := h.repo.UpdateInvitationStatus(c.Request.Context(), inv.ID, models.InvitationStatusAccepted); err != nil {
		response.Internal(c, "failed to update invitation")
		return
	}
	response.NoContent(c)
}

// RevokeInvitation handles DELETE /organizations/:id/invitations/:invitationID
// (owner/admin only). Pending invitations become cancelled; others are left as is.
func (h *Handler) RevokeInvitation(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	invID, err := uuid.Parse(c.Param("invitationID"))
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}
	inv, err := h.repo.GetInvitationByID(c.Request.Context(), invID)
	if err != nil || inv.OrganizationID != orgID {
		response.NotFound(c, "invitation not found")
		return
	}
	if inv.Status != models.InvitationStatusPending {
		response.Conflict(c, "invitation is not pending")
		return
	}
	if err := h.repo.UpdateInvitationStatus(c.Request.Context(), inv.ID, models.InvitationStatusCancelled); err != nil {
		response.Internal(c, "failed to revoke invitation")
		return
	}
	response.NoContent(c)
}
