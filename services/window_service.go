package services

import (
	"fmt"
	"time"

	"ctfcore/database"
)

// CompetitionWindow is the competition time configuration. Start and
// End are epoch seconds, 0 meaning unset (that side of the window is
// open).
type CompetitionWindow struct {
	Name      string
	Start     int64
	End       int64
	ViewAfter bool
}

// WindowRejection is a user-facing reason why the window guard blocked
// a request.
type WindowRejection struct {
	Message string
}

// LoadCompetitionWindow reads the window configuration from the config
// table
func LoadCompetitionWindow() CompetitionWindow {
	name := GetConfig(database.ConfigKeyCTFName)
	if name == "" {
		name = "CTF"
	}
	return CompetitionWindow{
		Name:      name,
		Start:     GetIntConfig(database.ConfigKeyStart),
		End:       GetIntConfig(database.ConfigKeyEnd),
		ViewAfter: GetBoolConfig(database.ConfigKeyViewAfterCTF),
	}
}

// Started reports whether the competition has begun
func (w CompetitionWindow) Started(now time.Time) bool {
	return w.Start == 0 || now.Unix() >= w.Start
}

// Ended reports whether the competition is over
func (w CompetitionWindow) Ended(now time.Time) bool {
	return w.End != 0 && now.Unix() > w.End
}

// Live reports whether the competition is currently running. Only live
// submissions produce solve and wrong-attempt records.
func (w CompetitionWindow) Live(now time.Time) bool {
	return w.Started(now) && !w.Ended(now)
}

// CheckSubmission decides whether a submission may enter the pipeline.
// Administrators bypass the window entirely. With the view-after flag
// set, submissions are still evaluated after the end (never before the
// start), but Live gates any record writing.
func (w CompetitionWindow) CheckSubmission(now time.Time, isAdmin bool) *WindowRejection {
	if isAdmin {
		return nil
	}
	if !w.Started(now) {
		return &WindowRejection{Message: fmt.Sprintf("%s has not started yet", w.Name)}
	}
	if w.Ended(now) && !w.ViewAfter {
		return &WindowRejection{Message: fmt.Sprintf("%s has ended", w.Name)}
	}
	return nil
}

// CheckViewing decides whether challenge listings may be shown
func (w CompetitionWindow) CheckViewing(now time.Time, isAdmin bool) *WindowRejection {
	return w.CheckSubmission(now, isAdmin)
}
