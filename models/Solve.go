package models

import "time"

// Solve is the durable record that a team answered a challenge
// correctly. The composite unique index is what the pipeline's
// insert-if-absent relies on: at most one row per (challenge, team).
type Solve struct {
	ID          string     `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	ChallengeID string     `gorm:"type:uuid;not null;uniqueIndex:idx_solves_challenge_team;column:challenge_id" json:"challenge_id"`
	TeamID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_solves_challenge_team;column:team_id" json:"team_id"`
	Flag        string     `gorm:"type:text;not null" json:"flag"`
	IP          string     `gorm:"type:varchar(46);column:ip" json:"ip"`
	Date        time.Time  `gorm:"type:timestamptz;not null" json:"date"`
	Challenge   *Challenge `gorm:"foreignKey:ChallengeID" json:"-"`
	Team        *Team      `gorm:"foreignKey:TeamID" json:"-"`
}

// WrongAttempt is the append-only record of an incorrect or
// rate-limited submission made while the competition was live.
type WrongAttempt struct {
	ID          string    `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	ChallengeID string    `gorm:"type:uuid;not null;index;column:challenge_id" json:"challenge_id"`
	TeamID      string    `gorm:"type:uuid;not null;index;column:team_id" json:"team_id"`
	Flag        string    `gorm:"type:text;not null" json:"flag"`
	Date        time.Time `gorm:"type:timestamptz;not null;index" json:"date"`
}
