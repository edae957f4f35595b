package organizations

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// CreateTeamRequest is the body for POST /organizations/:id/teams.
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateTeam handles POST /organizations/:id/teams (owner/admin only).
func (h *Handler) CreateTeam(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	var body CreateTeamRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	team := &models.Team{OrganizationID: orgID, Name: strings.TrimSpace(body.Name)}
	if team.Name == "" {
		response.BadRequest(c, "name required")
		return
	}
	if err := h.repo.CreateTeam(c.Request.Context(), team); err != nil {
		response.Internal(c, "failed to create team")
		return
	}
	response.Created(c, team)
}

// ListTeams handles GET /organizations/:id/teams (members only).
func (h *Handler) ListTeams(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	teams, err := h.repo.ListTeamsByOrg(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load teams")
		return
	}
	response.OK(c, teams)
}

// AddTeamMemberRequest is the body for POST /organizations/:id/teams/:teamID/members.
type AddTeamMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// AddTeamMember handles POST /organizations/:id/teams/:teamID/members
// (owner/admin only). The user must already be an organization member.
func (h *Handler) AddTeamMember(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	teamID, err := uuid.Parse(c.Param("teamID"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	var body AddTeamMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id required")
		return
	}
	team, err := h.repo.GetTeamByID(c.Request.Context(), teamID)
	if err != nil || team.OrganizationID != orgID {
		response.NotFound(c, "team not found")
		return
	}
	if !h.repo.IsMember(c.Request.Context(), orgID, body.UserID) {
		response.BadRequest(c, "user is not a member of this organization")
		return
	}
	if err := h.repo.AddTeamMember(c.Request.Context(), teamID, body.UserID); err != nil {
		response.Internal(c, "failed to add team member")
		return
	}
	response.NoContent(c)
}

// DeleteTeam handles DELETE /organizations/:id/teams/:teamID (owner/admin only).
func (h *Handler) DeleteTeam(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	teamID, err := uuid.Parse(c.Param("teamID"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	team, err := h.repo.GetTeamByID(c.Request.Context(), teamID)
	if err != nil || team.OrganizationID != orgID {
		response.NotFound(c, "team not found")
		return
	}
	if err := h.repo.DeleteTeam(c.Request.Context(), teamID); err != nil {
		response.Internal(c, "failed to delete team")
		return
	}
	response.NoContent(c)
}
