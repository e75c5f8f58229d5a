package challenges

import (
	"ctfcore/services"

	"github.com/gin-gonic/gin"
)

// Error message constants
const (
	ErrChallengeNotFound    = "Challenge not found"
	ErrInvalidRequest       = "Invalid request data"
	ErrFailedFetchList      = "Failed to fetch challenges"
	ErrFailedFetchSolves    = "Failed to fetch solves"
	ErrFailedSubmit         = "Submission failed"
	ErrVerificationRequired = "Email verification required"
)

// SubmitFlagRequest is the submission payload
type SubmitFlagRequest struct {
	Key string `json:"key" binding:"required"`
}

// SubmitFlagResponse mirrors the pipeline's terminal result
type SubmitFlagResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ChallengeListResponse wraps the rendered challenge listing
type ChallengeListResponse struct {
	Game []services.ChallengeSummary `json:"game"`
}

// MaxAttemptEntry flags one challenge as out of attempts for the caller
type MaxAttemptEntry struct {
	ChalID string `json:"chalid"`
}

// Handler dependencies, wired once at route registration.
var (
	submissionService *services.SubmissionService
	instanceService   *services.InstanceService
)

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
