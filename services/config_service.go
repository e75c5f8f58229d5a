package services

import (
	"strconv"

	"ctfcore/database"
	"ctfcore/models"
)

// GetConfig returns the configured value for a key, or "" when unset
func GetConfig(key string) string {
	var cfg models.Config
	if err := database.DB.First(&cfg, "key = ?", key).Error; err != nil {
		return ""
	}
	return cfg.Value
}

// GetIntConfig parses a numeric config value. A missing or invalid
// value degrades to 0 ("unset" / "no limit"), never to an error.
func GetIntConfig(key string) int64 {
	value, err := strconv.ParseInt(GetConfig(key), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// GetBoolConfig treats any value other than "", "0" and "false" as set
func GetBoolConfig(key string) bool {
	switch GetConfig(key) {
	case "", "0", "false":
		return false
	}
	return true
}

// MaxTries returns the configured attempt cap, 0 meaning unlimited
func MaxTries() int64 {
	return GetIntConfig(database.ConfigKeyMaxTries)
}
