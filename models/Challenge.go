package models

// Flag matcher kinds. Ordering between matchers of a challenge is given
// by Position; the first satisfied matcher wins.
const (
	MatcherExact = 0
	MatcherRegex = 1
)

// Challenge represents a scoreable challenge in the catalog
type Challenge struct {
	ID          string         `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Value       int            `gorm:"type:integer;not null" json:"value"`
	Category    string         `gorm:"type:varchar(100);not null" json:"category"`
	Hidden      bool           `gorm:"not null;default:false" json:"hidden"`
	Instanced   bool           `gorm:"not null;default:false" json:"instanced"`
	Generated   bool           `gorm:"not null;default:false" json:"generated"`
	Generator   string         `gorm:"type:varchar(255)" json:"generator"`
	Flags       []*FlagMatcher `gorm:"foreignKey:ChallengeID" json:"-"`
	Files       []*FileRef     `gorm:"foreignKey:ChallengeID" json:"files,omitempty"`
	Tags        []*Tag         `gorm:"foreignKey:ChallengeID" json:"tags,omitempty"`
}

// FlagMatcher is one accepted answer rule for a challenge. When the
// challenge is instanced the pattern may contain {{param}} placeholders.
type FlagMatcher struct {
	ID          string `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	ChallengeID string `gorm:"type:uuid;not null;index;column:challenge_id" json:"challenge_id"`
	Kind        int    `gorm:"type:integer;not null;default:0" json:"kind"`
	Pattern     string `gorm:"type:text;not null" json:"pattern"`
	Position    int    `gorm:"type:integer;not null;default:0" json:"position"`
}

// FileRef is a downloadable file attached to a challenge. Generated
// files are registered here at instancing time next to the static ones.
type FileRef struct {
	ID          string `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	ChallengeID string `gorm:"type:uuid;not null;index;column:challenge_id" json:"challenge_id"`
	Location    string `gorm:"type:varchar(255);not null" json:"location"`
	Generated   bool   `gorm:"not null;default:false" json:"generated"`
}

// Tag is a free-form label on a challenge
type Tag struct {
	ID          string `gorm:"type:uuid;default:gen_random_uuid();primary_key" json:"id"`
	ChallengeID string `gorm:"type:uuid;not null;index;column:challenge_id" json:"challenge_id"`
	Tag         string `gorm:"type:varchar(80);not null" json:"tag"`
}
