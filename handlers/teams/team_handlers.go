package teams

import (
	"net/http"

	"ctfcore/middleware"
	"ctfcore/services"
	"ctfcore/utils/response"

	"github.com/gin-gonic/gin"
)

// GetMySolves lists the calling team's solve history
// @Summary Get own solves
// @Description List the calling team's solves and awards, oldest first
// @Tags Teams
// @Produce json
// @Success 200 {object} map[string][]services.TeamSolveEntry
// @Failure 500 {object} map[string]string
// @Security Bearer
// @Router /teams/solves [get]
func GetMySolves(c *gin.Context) {
	teamID, _, _ := middleware.TeamFromContext(c)
	respondTeamSolves(c, teamID)
}

// GetTeamSolves lists another team's solve history
// @Summary Get team solves
// @Description List a team's solves and awards, oldest first
// @Tags Teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} map[string][]services.TeamSolveEntry
// @Failure 500 {object} map[string]string
// @Security Bearer
// @Router /teams/{id}/solves [get]
func GetTeamSolves(c *gin.Context) {
	respondTeamSolves(c, c.Param("id"))
}

func respondTeamSolves(c *gin.Context, teamID string) {
	solves, err := services.ListTeamSolves(c.Request.Context(), teamID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedFetchSolves)
		return
	}
	c.JSON(http.StatusOK, gin.H{"solves": solves})
}

// GetTeamFails returns a team's raw fail and solve totals
// @Summary Get team fail totals
// @Description Administrative tally of a team's wrong attempts and solves
// @Tags Teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} FailSolveResponse
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security Bearer
// @Router /teams/{id}/fails [get]
func GetTeamFails(c *gin.Context) {
	teamID, _, isAdmin := middleware.TeamFromContext(c)
	target := c.Param("id")
	if !isAdmin && target != teamID {
		response.Error(c, http.StatusForbidden, ErrAdminOnly)
		return
	}

	fails, solves, err := services.FailSolveCounts(c.Request.Context(), target)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrFailedFetchFails)
		return
	}
	c.JSON(http.StatusOK, FailSolveResponse{Fails: fails, Solves: solves})
}
