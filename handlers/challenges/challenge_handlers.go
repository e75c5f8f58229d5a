package challenges

import (
	"net/http"
	"time"

	"ctfcore/middleware"
	"ctfcore/services"

	"github.com/gin-gonic/gin"
)

// GetChallenges lists the visible challenges for the calling team
// @Summary Get visible challenges
// @Description List every non-hidden challenge with tags, files and per-team instancing applied
// @Tags Challenges
// @Produce json
// @Success 200 {object} ChallengeListResponse
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security Bearer
// @Router /challenges [get]
func GetChallenges(c *gin.Context) {
	teamID, _, isAdmin := middleware.TeamFromContext(c)

	window := services.LoadCompetitionWindow()
	if rejection := window.CheckViewing(time.Now(), isAdmin); rejection != nil {
		respondWithError(c, http.StatusForbidden, rejection.Message)
		return
	}

	game, err := services.ListChallenges(c.Request.Context(), instanceService, teamID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrFailedFetchList)
		return
	}

	c.JSON(http.StatusOK, ChallengeListResponse{Game: game})
}

// GetSolveCounts returns the number of solves per challenge
// @Summary Get solve counts
// @Description Count solves per challenge, excluding banned teams
// @Tags Challenges
// @Produce json
// @Success 200 {object} map[string]int64
// @Failure 500 {object} map[string]string
// @Security Bearer
// @Router /challenges/solves [get]
func GetSolveCounts(c *gin.Context) {
	counts, err := services.SolveCountsPerChallenge(c.Request.Context())
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrFailedFetchSolves)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GetWhoSolved lists the teams that solved a challenge
// @Summary Get challenge solvers
// @Description List the non-banned teams that solved a challenge, earliest first
// @Tags Challenges
// @Produce json
// @Param id path string true "Challenge ID"
// @Success 200 {object} map[string][]services.SolverEntry
// @Failure 500 {object} map[string]string
// @Security Bearer
// @Router /challenges/{id}/solves [get]
func GetWhoSolved(c *gin.Context) {
	challengeID := c.Param("id")

	teams, err := services.WhoSolved(c.Request.Context(), challengeID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrFailedFetchSolves)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// GetMaxAttempts lists the challenges the caller can no longer attempt
// @Summary Get exhausted challenges
// @Description List the challenges on which the calling team has used up the attempt cap
// @Tags Challenges
// @Produce json
// @Success 200 {object} map[string][]MaxAttemptEntry
// @Failure 500 {object} map[string]string
// @Security Bearer
// @Router /challenges/maxattempts [get]
func GetMaxAttempts(c *gin.Context) {
	teamID, _, _ := middleware.TeamFromContext(c)

	challengeIDs, err := services.MaxAttemptsChallenges(c.Request.Context(), teamID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrFailedFetchList)
		return
	}

	entries := make([]MaxAttemptEntry, 0, len(challengeIDs))
	for _, id := range challengeIDs {
		entries = append(entries, MaxAttemptEntry{ChalID: id})
	}
	c.JSON(http.StatusOK, gin.H{"maxattempts": entries})
}
