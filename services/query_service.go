package services

import (
	"context"
	"log"
	"sort"
	"time"

	"ctfcore/database"
	"ctfcore/metrics"
	"ctfcore/models"
)

// ChallengeSummary is one entry of the public challenge listing, with
// instancing already applied to name and description.
type ChallengeSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Value       int      `json:"value"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Files       []string `json:"files"`
}

// TeamSolveEntry is one row of a team's merged solve/award history
type TeamSolveEntry struct {
	Chal     string  `json:"chal"`
	ChalID   *string `json:"chalid"`
	Team     string  `json:"team"`
	Value    int     `json:"value"`
	Category string  `json:"category"`
	Time     int64   `json:"time"`
}

// SolverEntry is one team in a who-solved listing
type SolverEntry struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// ListChallenges returns every non-hidden challenge ordered by value,
// with tags, file locations and per-team instancing applied.
func ListChallenges(ctx context.Context, instance *InstanceService, teamID string) ([]ChallengeSummary, error) {
	var challenges []models.Challenge
	err := database.DB.WithContext(ctx).
		Preload("Tags").
		Preload("Files").
		Where("hidden = false").
		Order("value ASC").
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return buildChallengeList(ctx, instance, challenges, teamID), nil
}

// buildChallengeList renders the listing entries. A resolver fault on
// one challenge only drops that challenge from the listing, never the
// others. Instanced challenges take their file list from the resolved
// instance (Materialize already folds registered files back in for
// generated ones); plain challenges list their stored files.
func buildChallengeList(ctx context.Context, instance InstanceMaterializer, challenges []models.Challenge, teamID string) []ChallengeSummary {
	game := make([]ChallengeSummary, 0, len(challenges))
	for i := range challenges {
		chal := &challenges[i]

		name := chal.Name
		description := chal.Description
		files := make([]string, 0, len(chal.Files))
		for _, file := range chal.Files {
			files = append(files, file.Location)
		}

		if chal.Instanced {
			resolved, err := instance.Materialize(ctx, chal, teamID)
			if err != nil {
				log.Printf("instancing error while generating chal list in challenge %s (%s): %v", chal.ID, chal.Name, err)
				metrics.ResolverFaults.WithLabelValues(chal.ID).Inc()
				continue
			}
			name = RenderTemplate(name, resolved.Params)
			description = RenderTemplate(description, resolved.Params)
			files = resolved.Files
		}

		tags := make([]string, 0, len(chal.Tags))
		for _, tag := range chal.Tags {
			tags = append(tags, tag.Tag)
		}

		game = append(game, ChallengeSummary{
			ID:          chal.ID,
			Name:        name,
			Description: description,
			Value:       chal.Value,
			Category:    chal.Category,
			Tags:        tags,
			Files:       files,
		})
	}

	return game
}

// SolveCountsPerChallenge counts solves per challenge, excluding
// banned teams from the public numbers
func SolveCountsPerChallenge(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ChallengeID string
		Solves      int64
	}
	err := database.DB.WithContext(ctx).Model(&models.Solve{}).
		Select("solves.challenge_id, COUNT(*) as solves").
		Joins("JOIN teams ON teams.id = solves.team_id").
		Where("teams.banned = false").
		Group("solves.challenge_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ChallengeID] = row.Solves
	}
	return counts, nil
}

// ListTeamSolves merges a team's solves and awards into one
// chronologically sorted history
func ListTeamSolves(ctx context.Context, teamID string) ([]TeamSolveEntry, error) {
	var solves []models.Solve
	err := database.DB.WithContext(ctx).
		Preload("Challenge").
		Where("team_id = ?", teamID).
		Find(&solves).Error
	if err != nil {
		return nil, err
	}

	var awards []models.Award
	if err := database.DB.WithContext(ctx).Where("team_id = ?", teamID).Find(&awards).Error; err != nil {
		return nil, err
	}

	entries := make([]TeamSolveEntry, 0, len(solves)+len(awards))
	for _, solve := range solves {
		entry := TeamSolveEntry{Team: solve.TeamID, Time: solve.Date.Unix()}
		chalID := solve.ChallengeID
		entry.ChalID = &chalID
		if solve.Challenge != nil {
			entry.Chal = solve.Challenge.Name
			entry.Value = solve.Challenge.Value
			entry.Category = solve.Challenge.Category
		}
		entries = append(entries, entry)
	}
	for _, award := range awards {
		entries = append(entries, TeamSolveEntry{
			Chal:     award.Name,
			Team:     award.TeamID,
			Value:    award.Value,
			Category: award.Category,
			Time:     award.Date.Unix(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})
	return entries, nil
}

// WhoSolved lists the non-banned teams that solved a challenge,
// earliest solve first
func WhoSolved(ctx context.Context, challengeID string) ([]SolverEntry, error) {
	var entries []SolverEntry
	err := database.DB.WithContext(ctx).Model(&models.Solve{}).
		Select("teams.id, teams.name, solves.date").
		Joins("JOIN teams ON teams.id = solves.team_id").
		Where("solves.challenge_id = ? AND teams.banned = false", challengeID).
		Order("solves.date ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []SolverEntry{}
	}
	return entries, nil
}

// MaxAttemptsChallenges returns the challenge ids on which the team
// has used up the configured attempt cap
func MaxAttemptsChallenges(ctx context.Context, teamID string) ([]string, error) {
	maxTries := MaxTries()
	if maxTries <= 0 {
		return []string{}, nil
	}

	var challengeIDs []string
	err := database.DB.WithContext(ctx).Model(&models.WrongAttempt{}).
		Where("team_id = ?", teamID).
		Group("challenge_id").
		Having("COUNT(*) >= ?", maxTries).
		Pluck("challenge_id", &challengeIDs).Error
	if err != nil {
		return nil, err
	}
	if challengeIDs == nil {
		challengeIDs = []string{}
	}
	return challengeIDs, nil
}

// FailSolveCounts returns a team's raw fail and solve totals. Bans do
// not filter here, this is the administrative view.
func FailSolveCounts(ctx context.Context, teamID string) (int64, int64, error) {
	var fails, solves int64
	if err := database.DB.WithContext(ctx).Model(&models.WrongAttempt{}).Where("team_id = ?", teamID).Count(&fails).Error; err != nil {
		return 0, 0, err
	}
	if err := database.DB.WithContext(ctx).Model(&models.Solve{}).Where("team_id = ?", teamID).Count(&solves).Error; err != nil {
		return 0, 0, err
	}
	return fails, solves, nil
}
