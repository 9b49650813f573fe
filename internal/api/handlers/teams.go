package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apostai/engine/internal/providers"
	"github.com/apostai/engine/pkg/utils"
)

type TeamsHandler struct {
	provider *providers.FootballDataClient
}

func NewTeamsHandler(provider *providers.FootballDataClient) *TeamsHandler {
	return &TeamsHandler{
		provider: provider,
	}
}

// SearchTeams looks teams up by name fragment.
func (h *TeamsHandler) SearchTeams(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if len(name) < 3 {
		utils.SendValidationError(c, "Invalid search term", "name must be at least 3 characters")
		return
	}

	teams, err := h.provider.GetTeamsBySearch(c.Request.Context(), name)
	if err != nil {
		utils.SendInternalError(c, "Team search failed")
		return
	}
	utils.SendSuccess(c, teams)
}

// GetUpcomingFixtures lists the next scheduled fixtures for a team.
func (h *TeamsHandler) GetUpcomingFixtures(c *gin.Context) {
	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil || teamID <= 0 {
		utils.SendValidationError(c, "Invalid team ID", c.Param("id"))
		return
	}

	fixtures, err := h.provider.GetUpcomingFixtures(c.Request.Context(), teamID)
	if err != nil {
		utils.SendInternalError(c, "Failed to load fixtures")
		return
	}
	utils.SendSuccess(c, fixtures)
}
