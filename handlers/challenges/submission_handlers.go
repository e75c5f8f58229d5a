package challenges

import (
	"errors"
	"log"
	"net/http"
	"time"

	"ctfcore/database"
	"ctfcore/middleware"
	"ctfcore/models"
	"ctfcore/realtime"
	"ctfcore/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SubmitFlag runs a flag submission through the evaluation pipeline
// @Summary Submit a flag
// @Description Evaluate a flag for a challenge and return the outcome status
// @Tags Challenges
// @Accept json
// @Produce json
// @Param id path string true "Challenge ID"
// @Param submission body SubmitFlagRequest true "Submitted key"
// @Success 200 {object} SubmitFlagResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security Bearer
// @Router /challenges/{id}/submit [post]
func SubmitFlag(c *gin.Context) {
	var req SubmitFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	teamID, teamName, isAdmin := middleware.TeamFromContext(c)
	if services.GetBoolConfig(database.ConfigKeyVerifyEmails) && !isAdmin && !c.GetBool(middleware.ContextVerified) {
		respondWithError(c, http.StatusForbidden, ErrVerificationRequired)
		return
	}

	sub := services.Submission{
		TeamID:      teamID,
		TeamName:    teamName,
		ChallengeID: c.Param("id"),
		Flag:        req.Key,
		IP:          c.ClientIP(),
		IsAdmin:     isAdmin,
	}

	result, err := submissionService.Submit(c.Request.Context(), sub)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondWithError(c, http.StatusNotFound, ErrChallengeNotFound)
			return
		}
		log.Printf("Error evaluating submission on challenge %s: %v", sub.ChallengeID, err)
		respondWithError(c, http.StatusInternalServerError, ErrFailedSubmit)
		return
	}

	if result.Solved {
		go announceSolve(sub.ChallengeID, teamID, teamName)
	}

	c.JSON(http.StatusOK, SubmitFlagResponse{Status: result.Status, Message: result.Message})
}

// announceSolve pushes a new solve onto the live feed. Feed delivery is
// best effort and never blocks the submission response.
func announceSolve(challengeID string, teamID string, teamName string) {
	var challenge models.Challenge
	name := ""
	if err := database.DB.Select("name").First(&challenge, "id = ?", challengeID).Error; err == nil {
		name = challenge.Name
	}

	realtime.BroadcastSolve(realtime.SolveUpdate{
		ChallengeID:   challengeID,
		ChallengeName: name,
		TeamID:        teamID,
		TeamName:      teamName,
		Date:          time.Now(),
	})
}
