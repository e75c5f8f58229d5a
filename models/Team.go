package models

// Team represents a competing team. Banned teams keep submitting and
// their attempt records persist, they are only excluded from public
// solve counts and listings.
type Team struct {
	ID     string `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	Name   string `gorm:"type:varchar(100);not null" json:"name"`
	Banned bool   `gorm:"not null;default:false" json:"banned"`
}
