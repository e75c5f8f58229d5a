package models

// Config is a key/value row holding competition configuration
// (start, end, view_after_ctf, max_tries, verify_emails, ctf_name).
type Config struct {
	Key   string `gorm:"type:varchar(64);primary_key" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}
