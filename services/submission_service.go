package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"ctfcore/config"
	"ctfcore/metrics"
	"ctfcore/models"
)

// Stable submission status codes, part of the API contract.
const (
	StatusCorrect       = "1"
	StatusIncorrect     = "0"
	StatusAlreadySolved = "2"
	StatusRateLimited   = "3"
	StatusFault         = "-1"
)

// SubmitResult is the terminal outcome of one submission
type SubmitResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Solved  bool   `json:"-"`
}

// Submission is the request-scoped input to the pipeline
type Submission struct {
	TeamID      string
	TeamName    string
	ChallengeID string
	Flag        string
	IP          string
	IsAdmin     bool
}

// SubmissionStore is the storage contract the pipeline needs. The only
// hard requirement is that InsertSolve detects conflicts, so the
// check-then-insert sequence stays serializable per (team, challenge).
type SubmissionStore interface {
	GetChallenge(ctx context.Context, challengeID string) (*models.Challenge, error)
	SolveExists(ctx context.Context, challengeID string, teamID string) (bool, error)
	InsertSolve(ctx context.Context, solve *models.Solve) (bool, error)
	AppendWrongAttempt(ctx context.Context, attempt *models.WrongAttempt) error
	CountWrongAttempts(ctx context.Context, teamID string, challengeID string) (int64, error)
	CountRecentAttempts(ctx context.Context, teamID string, since time.Time) (int64, error)
}

// InstanceMaterializer is the slice of the instancing subsystem the
// pipeline consumes.
type InstanceMaterializer interface {
	Materialize(ctx context.Context, challenge *models.Challenge, teamID string) (*ResolvedInstance, error)
}

// SubmissionService runs the submission pipeline:
// window -> rate -> already solved -> attempts -> instance -> match,
// persisting exactly one record per submission that reaches a
// recording state.
type SubmissionService struct {
	store    SubmissionStore
	instance InstanceMaterializer
	window   func() CompetitionWindow
	maxTries func() int64
	limits   config.SubmissionLimitConfig
	logger   *log.Logger
	now      func() time.Time
}

func NewSubmissionService(store SubmissionStore, instance InstanceMaterializer, window func() CompetitionWindow, maxTries func() int64, logger *log.Logger) *SubmissionService {
	if logger == nil {
		logger = log.Default()
	}
	return &SubmissionService{
		store:    store,
		instance: instance,
		window:   window,
		maxTries: maxTries,
		limits:   config.DefaultSubmissionLimitConfig,
		now:      time.Now,
		logger:   logger,
	}
}

// Submit evaluates one flag submission and returns its terminal
// result. An error is only returned for storage failures outside the
// pipeline's taxonomy (the handler maps those to a generic 5xx); every
// policy rejection and resolver fault becomes a SubmitResult.
func (s *SubmissionService) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	now := s.now()
	window := s.window()

	if rejection := window.CheckSubmission(now, sub.IsAdmin); rejection != nil {
		s.logf(sub, now, "WINDOW CLOSED")
		return s.finish(SubmitResult{Status: StatusFault, Message: rejection.Message}, "window_closed"), nil
	}

	// Records are only written while the competition is live, even
	// when evaluation is permitted (admins, view-after-end).
	live := window.Live(now)

	rate, err := s.store.CountRecentAttempts(ctx, sub.TeamID, now.Add(-s.limits.KPMWindow))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("rate check failed: %w", err)
	}
	// The current submission counts against the rolling metric
	if rate+1 > int64(s.limits.KPMThreshold) {
		if live {
			if err := s.appendWrong(ctx, sub, now); err != nil {
				return SubmitResult{}, err
			}
		}
		s.logf(sub, now, "TOO FAST")
		return s.finish(SubmitResult{Status: StatusRateLimited, Message: "You're submitting keys too fast. Slow down."}, "rate_limited"), nil
	}

	solved, err := s.store.SolveExists(ctx, sub.ChallengeID, sub.TeamID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("solve lookup failed: %w", err)
	}
	if solved {
		s.logf(sub, now, "ALREADY SOLVED")
		return s.finish(SubmitResult{Status: StatusAlreadySolved, Message: "You already solved this"}, "already_solved"), nil
	}

	challenge, err := s.store.GetChallenge(ctx, sub.ChallengeID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("challenge lookup failed: %w", err)
	}

	fails, err := s.store.CountWrongAttempts(ctx, sub.TeamID, sub.ChallengeID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("attempt count failed: %w", err)
	}
	maxTries := s.maxTries()
	if maxTries > 0 && fails >= maxTries {
		// Beyond the cap nothing more is recorded
		s.logf(sub, now, "MAX ATTEMPTS")
		return s.finish(SubmitResult{Status: StatusIncorrect, Message: "You have 0 tries remaining"}, "no_attempts_left"), nil
	}

	var params map[string]string
	if challenge.Instanced {
		instance, err := s.instance.Materialize(ctx, challenge, sub.TeamID)
		if err != nil {
			s.logger.Printf("instancing error during submission in challenge %s (%s): %v", challenge.ID, challenge.Name, err)
			metrics.ResolverFaults.WithLabelValues(challenge.ID).Inc()
			s.logf(sub, now, "INSTANCE_ERROR")
			return s.finish(SubmitResult{Status: StatusFault, Message: "Challenge could not be instanced"}, "instance_fault"), nil
		}
		params = instance.Params
	}

	key := NormalizeFlag(sub.Flag)
	if MatchFlag(challenge.Flags, params, key) {
		if live {
			inserted, err := s.store.InsertSolve(ctx, &models.Solve{
				ChallengeID: sub.ChallengeID,
				TeamID:      sub.TeamID,
				Flag:        key,
				IP:          sub.IP,
				Date:        now,
			})
			if err != nil {
				return SubmitResult{}, fmt.Errorf("solve insert failed: %w", err)
			}
			if !inserted {
				// Lost the race against a concurrent submission
				s.logf(sub, now, "ALREADY SOLVED")
				return s.finish(SubmitResult{Status: StatusAlreadySolved, Message: "You already solved this"}, "already_solved"), nil
			}
		}
		s.logf(sub, now, "CORRECT")
		return s.finish(SubmitResult{Status: StatusCorrect, Message: "Correct", Solved: live}, "correct"), nil
	}

	if live {
		if err := s.appendWrong(ctx, sub, now); err != nil {
			return SubmitResult{}, err
		}
	}
	s.logf(sub, now, "WRONG")
	message := "Incorrect"
	if maxTries > 0 {
		remaining := maxTries - fails
		tries := "tries"
		if remaining == 1 {
			tries = "try"
		}
		message = fmt.Sprintf("Incorrect. You have %d %s remaining.", remaining, tries)
	}
	return s.finish(SubmitResult{Status: StatusIncorrect, Message: message}, "incorrect"), nil
}

func (s *SubmissionService) appendWrong(ctx context.Context, sub Submission, now time.Time) error {
	err := s.store.AppendWrongAttempt(ctx, &models.WrongAttempt{
		ChallengeID: sub.ChallengeID,
		TeamID:      sub.TeamID,
		Flag:        sub.Flag,
		Date:        now,
	})
	if err != nil {
		return fmt.Errorf("wrong attempt insert failed: %w", err)
	}
	return nil
}

func (s *SubmissionService) finish(result SubmitResult, outcome string) SubmitResult {
	metrics.SubmissionOutcomes.WithLabelValues(outcome).Inc()
	return result
}

func (s *SubmissionService) logf(sub Submission, now time.Time, verdict string) {
	s.logger.Printf("[%s] %s submitted %q on challenge %s [%s]",
		now.Format("01/02/2006 15:04:05"), sub.TeamName, sub.Flag, sub.ChallengeID, verdict)
}
