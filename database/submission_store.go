package database

import (
	"context"
	"time"

	"ctfcore/metrics"
	"ctfcore/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionStore is the gorm-backed storage used by the submission
// pipeline and the instance resolver.
type SubmissionStore struct {
	db *gorm.DB
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{db: DB}
}

// GetChallenge fetches a challenge with its matchers, files and tags.
// Matchers come back in list order.
func (s *SubmissionStore) GetChallenge(ctx context.Context, challengeID string) (*models.Challenge, error) {
	defer metrics.RecordDBOperation("select", "challenges", time.Now())

	var challenge models.Challenge
	err := s.db.WithContext(ctx).
		Preload("Flags", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Files").
		Preload("Tags").
		First(&challenge, "id = ?", challengeID).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// SolveExists reports whether the team already solved the challenge
func (s *SubmissionStore) SolveExists(ctx context.Context, challengeID string, teamID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Solve{}).
		Where("challenge_id = ? AND team_id = ?", challengeID, teamID).
		Count(&count).Error
	return count > 0, err
}

// InsertSolve writes a solve row unless one already exists for the
// (challenge, team) pair. Returns false when this submission lost the
// race: the unique index plus ON CONFLICT DO NOTHING make the
// check-then-insert sequence safe under concurrent submissions.
func (s *SubmissionStore) InsertSolve(ctx context.Context, solve *models.Solve) (bool, error) {
	defer metrics.RecordDBOperation("insert", "solves", time.Now())

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "challenge_id"}, {Name: "team_id"}},
			DoNothing: true,
		}).
		Create(solve)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AppendWrongAttempt records one failed or rate-limited submission
func (s *SubmissionStore) AppendWrongAttempt(ctx context.Context, attempt *models.WrongAttempt) error {
	defer metrics.RecordDBOperation("insert", "wrong_attempts", time.Now())

	return s.db.WithContext(ctx).Create(attempt).Error
}

// CountWrongAttempts returns the number of prior wrong attempts for
// the (team, challenge) pair
func (s *SubmissionStore) CountWrongAttempts(ctx context.Context, teamID string, challengeID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.WrongAttempt{}).
		Where("team_id = ? AND challenge_id = ?", teamID, challengeID).
		Count(&count).Error
	return count, err
}

// CountRecentAttempts returns the team's recorded submissions since
// the given instant, the raw metric behind the KPM limiter
func (s *SubmissionStore) CountRecentAttempts(ctx context.Context, teamID string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.WrongAttempt{}).
		Where("team_id = ? AND date >= ?", teamID, since).
		Count(&count).Error
	return count, err
}

// RegisterGeneratedFiles persists file locations produced by the
// dynamic generator. Idempotent: a location already registered for the
// challenge is left alone.
func (s *SubmissionStore) RegisterGeneratedFiles(ctx context.Context, challengeID string, files []string) error {
	defer metrics.RecordDBOperation("insert", "file_refs", time.Now())

	for _, location := range files {
		var file models.FileRef
		err := s.db.WithContext(ctx).
			Where(models.FileRef{ChallengeID: challengeID, Location: location}).
			Attrs(models.FileRef{Generated: true}).
			FirstOrCreate(&file).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ListFileLocations returns every file location attached to the
// challenge, static and generated
func (s *SubmissionStore) ListFileLocations(ctx context.Context, challengeID string) ([]string, error) {
	var locations []string
	err := s.db.WithContext(ctx).Model(&models.FileRef{}).
		Where("challenge_id = ?", challengeID).
		Pluck("location", &locations).Error
	return locations, err
}
