package config

import "time"

// Submission policy configuration
type SubmissionLimitConfig struct {
	KPMThreshold int           // Submissions per trailing window before rejection
	KPMWindow    time.Duration // Rolling window for the KPM metric
}

var DefaultSubmissionLimitConfig = SubmissionLimitConfig{
	KPMThreshold: 10,
	KPMWindow:    time.Minute,
}
