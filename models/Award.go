package models

import "time"

// Award is an out-of-band score adjustment for a team, created by
// administrators. Read-only from this service's perspective.
type Award struct {
	ID       string    `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	TeamID   string    `gorm:"type:uuid;not null;index;column:team_id" json:"team_id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Value    int       `gorm:"type:integer;not null" json:"value"`
	Category string    `gorm:"type:varchar(100)" json:"category"`
	Date     time.Time `gorm:"type:timestamptz;not null" json:"date"`
	Team     *Team     `gorm:"foreignKey:TeamID" json:"-"`
}
