package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWindowUnsetBoundsAreOpen(t *testing.T) {
	window := CompetitionWindow{Name: "Test CTF"}
	now := time.Now()

	require.True(t, window.Started(now))
	require.False(t, window.Ended(now))
	require.True(t, window.Live(now))
	require.Nil(t, window.CheckSubmission(now, false))
}

func TestWindowBeforeStart(t *testing.T) {
	now := time.Unix(1000, 0)
	window := CompetitionWindow{Name: "Test CTF", Start: 2000, End: 3000}

	require.False(t, window.Started(now))
	require.False(t, window.Live(now))

	rejection := window.CheckSubmission(now, false)
	require.NotNil(t, rejection)
	require.Equal(t, "Test CTF has not started yet", rejection.Message)
}

func TestWindowAfterEnd(t *testing.T) {
	now := time.Unix(4000, 0)
	window := CompetitionWindow{Name: "Test CTF", Start: 2000, End: 3000}

	require.True(t, window.Ended(now))
	require.False(t, window.Live(now))

	rejection := window.CheckSubmission(now, false)
	require.NotNil(t, rejection)
	require.Equal(t, "Test CTF has ended", rejection.Message)
}

func TestWindowEndBoundaryIsInclusive(t *testing.T) {
	window := CompetitionWindow{Name: "Test CTF", Start: 2000, End: 3000}

	require.False(t, window.Ended(time.Unix(3000, 0)))
	require.True(t, window.Live(time.Unix(3000, 0)))
	require.True(t, window.Ended(time.Unix(3001, 0)))
}

func TestWindowAdminBypass(t *testing.T) {
	window := CompetitionWindow{Name: "Test CTF", Start: 2000, End: 3000}

	require.Nil(t, window.CheckSubmission(time.Unix(1000, 0), true))
	require.Nil(t, window.CheckSubmission(time.Unix(4000, 0), true))
}

func TestWindowViewAfterAllowsEvaluation(t *testing.T) {
	window := CompetitionWindow{Name: "Test CTF", Start: 2000, End: 3000, ViewAfter: true}
	now := time.Unix(4000, 0)

	require.Nil(t, window.CheckSubmission(now, false))
	require.False(t, window.Live(now), "evaluation allowed but the window is no longer live")
}

func TestWindowViewAfterDoesNotApplyBeforeStart(t *testing.T) {
	window := CompetitionWindow{Name: "Test CTF", Start: 2000, End: 3000, ViewAfter: true}

	rejection := window.CheckSubmission(time.Unix(1000, 0), false)
	require.NotNil(t, rejection)
	require.Equal(t, "Test CTF has not started yet", rejection.Message)
}
