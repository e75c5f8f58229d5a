package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"ctfcore/models"

	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory SubmissionStore with the same at-most-once
// insert semantics as the database implementation.
type fakeStore struct {
	mu         sync.Mutex
	challenges map[string]*models.Challenge
	solves     map[string]models.Solve
	wrongs     []models.WrongAttempt
}

func newFakeStore(challenges ...*models.Challenge) *fakeStore {
	store := &fakeStore{
		challenges: make(map[string]*models.Challenge),
		solves:     make(map[string]models.Solve),
	}
	for _, chal := range challenges {
		store.challenges[chal.ID] = chal
	}
	return store
}

func (s *fakeStore) GetChallenge(_ context.Context, challengeID string) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chal, ok := s.challenges[challengeID]
	if !ok {
		return nil, fmt.Errorf("challenge %s not found", challengeID)
	}
	return chal, nil
}

func (s *fakeStore) SolveExists(_ context.Context, challengeID string, teamID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.solves[challengeID+"|"+teamID]
	return ok, nil
}

func (s *fakeStore) InsertSolve(_ context.Context, solve *models.Solve) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := solve.ChallengeID + "|" + solve.TeamID
	if _, ok := s.solves[key]; ok {
		return false, nil
	}
	s.solves[key] = *solve
	return true, nil
}

func (s *fakeStore) AppendWrongAttempt(_ context.Context, attempt *models.WrongAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrongs = append(s.wrongs, *attempt)
	return nil
}

func (s *fakeStore) CountWrongAttempts(_ context.Context, teamID string, challengeID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, attempt := range s.wrongs {
		if attempt.TeamID == teamID && attempt.ChallengeID == challengeID {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) CountRecentAttempts(_ context.Context, teamID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, attempt := range s.wrongs {
		if attempt.TeamID == teamID && !attempt.Date.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) solveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.solves)
}

func (s *fakeStore) wrongCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wrongs)
}

type fakeMaterializer struct {
	params map[string]string
	err    error
}

func (m *fakeMaterializer) Materialize(_ context.Context, _ *models.Challenge, _ string) (*ResolvedInstance, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &ResolvedInstance{Params: m.params, Files: []string{}}, nil
}

func plainChallenge(flag string) *models.Challenge {
	return &models.Challenge{
		ID:   "chal-1",
		Name: "Warmup",
		Flags: []*models.FlagMatcher{
			{Kind: models.MatcherExact, Pattern: flag},
		},
	}
}

func newTestService(store SubmissionStore, instance InstanceMaterializer, window CompetitionWindow, maxTries int64) *SubmissionService {
	svc := NewSubmissionService(
		store,
		instance,
		func() CompetitionWindow { return window },
		func() int64 { return maxTries },
		log.New(io.Discard, "", 0),
	)
	svc.now = func() time.Time { return time.Unix(5000, 0) }
	return svc
}

func submission() Submission {
	return Submission{
		TeamID:      "team-1",
		TeamName:    "Team One",
		ChallengeID: "chal-1",
		Flag:        "FLAG{right}",
		IP:          "192.0.2.1",
	}
}

func TestSubmitCorrect(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	svc := newTestService(store, nil, CompetitionWindow{Name: "Test CTF"}, 0)

	result, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)
	require.Equal(t, StatusCorrect, result.Status)
	require.Equal(t, "Correct", result.Message)
	require.True(t, result.Solved)
	require.Equal(t, 1, store.solveCount())
	require.Equal(t, 0, store.wrongCount())
}

func TestSubmitIncorrectUnlimitedTries(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	svc := newTestService(store, nil, CompetitionWindow{Name: "Test CTF"}, 0)

	sub := submission()
	sub.Flag = "flag{wrong}"

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, StatusIncorrect, result.Status)
	require.Equal(t, "Incorrect", result.Message)
	require.False(t, result.Solved)
	require.Equal(t, 1, store.wrongCount())
}

func TestSubmitIncorrectCountsDownTries(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	svc := newTestService(store, nil, CompetitionWindow{Name: "Test CTF"}, 3)

	sub := submission()
	sub.Flag = "flag{wrong}"

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, "Incorrect. You have 3 tries remaining.", result.Message)

	result, err = svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, "Incorrect. You have 2 tries remaining.", result.Message)

	result, err = svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, "Incorrect. You have 1 try remaining.", result.Message)
}

func TestSubmitAttemptCapStopsRecording(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	svc := newTestService(store, nil, CompetitionWindow{Name: "Test CTF"}, 3)

	sub := submission()
	sub.Flag = "flag{wrong}"

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), sub)
		require.NoError(t, err)
	}
	require.Equal(t, 3, store.wrongCount())

	// Even the right flag is refused once the cap is reached, and
	// nothing further is recorded.
	capped := submission()
	result, err := svc.Submit(context.Background(), capped)
	require.NoError(t, err)
	require.Equal(t, StatusIncorrect, result.Status)
	require.Equal(t, "You have 0 tries remaining", result.Message)
	require.Equal(t, 3, store.wrongCount())
	require.Equal(t, 0, store.solveCount())
}

func TestSubmitAlreadySolved(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	svc := newTestService(store, nil, CompetitionWindow{Name: "Test CTF"}, 0)

	_, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)
	require.Equal(t, StatusAlreadySolved, result.Status)
	require.Equal(t, "You already solved this", result.Message)
	require.False(t, result.Solved)
	require.Equal(t, 1, store.solveCount())
}

func TestSubmitRateLimited(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	svc := newTestService(store, nil, CompetitionWindow{Name: "Test CTF"}, 0)

	sub := submission()
	sub.Flag = "flag{wrong}"
	for i := 0; i < 10; i++ {
		result, err := svc.Submit(context.Background(), sub)
		require.NoError(t, err)
		require.Equal(t, StatusIncorrect, result.Status)
	}

	// The eleventh submission inside the window is rejected, and the
	// rejection itself is recorded as a wrong attempt.
	result, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)
	require.Equal(t, StatusRateLimited, result.Status)
	require.Equal(t, "You're submitting keys too fast. Slow down.", result.Message)
	require.Equal(t, 11, store.wrongCount())
	require.Equal(t, 0, store.solveCount())
}

func TestSubmitRateLimitWindowSlides(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	svc := newTestService(store, nil, CompetitionWindow{Name: "Test CTF"}, 0)

	sub := submission()
	sub.Flag = "flag{wrong}"
	for i := 0; i < 10; i++ {
		_, err := svc.Submit(context.Background(), sub)
		require.NoError(t, err)
	}

	// Once the old attempts age out of the sliding window the team may
	// submit again.
	svc.now = func() time.Time { return time.Unix(5000+61, 0) }
	result, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)
	require.Equal(t, StatusCorrect, result.Status)
}

func TestSubmitOutsideWindow(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	window := CompetitionWindow{Name: "Test CTF", Start: 2000, End: 3000}
	svc := newTestService(store, nil, window, 0)

	result, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)
	require.Equal(t, StatusFault, result.Status)
	require.Equal(t, "Test CTF has ended", result.Message)
	require.Equal(t, 0, store.solveCount())
	require.Equal(t, 0, store.wrongCount())
}

func TestSubmitAdminAfterEndEvaluatesWithoutRecording(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	window := CompetitionWindow{Name: "Test CTF", Start: 2000, End: 3000}
	svc := newTestService(store, nil, window, 0)

	sub := submission()
	sub.IsAdmin = true

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, StatusCorrect, result.Status)
	require.False(t, result.Solved, "no solve is recorded outside the live window")
	require.Equal(t, 0, store.solveCount())

	sub.Flag = "flag{wrong}"
	result, err = svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, StatusIncorrect, result.Status)
	require.Equal(t, 0, store.wrongCount())
}

func TestSubmitInstancedChallenge(t *testing.T) {
	chal := plainChallenge("flag{team_{{id}}}")
	chal.Instanced = true
	store := newFakeStore(chal)
	instance := &fakeMaterializer{params: map[string]string{"id": "1337"}}
	svc := newTestService(store, instance, CompetitionWindow{Name: "Test CTF"}, 0)

	sub := submission()
	sub.Flag = "flag{team_1337}"

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, StatusCorrect, result.Status)
}

func TestSubmitInstanceFaultFailsClosed(t *testing.T) {
	chal := plainChallenge("flag{right}")
	chal.Instanced = true
	store := newFakeStore(chal)
	instance := &fakeMaterializer{err: fmt.Errorf("generator unreachable")}
	svc := newTestService(store, instance, CompetitionWindow{Name: "Test CTF"}, 0)

	result, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)
	require.Equal(t, StatusFault, result.Status)
	require.Equal(t, "Challenge could not be instanced", result.Message)
	require.Equal(t, 0, store.solveCount())
	require.Equal(t, 0, store.wrongCount())
}

func TestSubmitConcurrentAtMostOnce(t *testing.T) {
	store := newFakeStore(plainChallenge("flag{right}"))
	svc := newTestService(store, nil, CompetitionWindow{Name: "Test CTF"}, 0)

	const workers = 8
	results := make(chan SubmitResult, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Submit(context.Background(), submission())
			if err != nil {
				errs <- err
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var correct, already int
	for result := range results {
		switch result.Status {
		case StatusCorrect:
			correct++
		case StatusAlreadySolved:
			already++
		default:
			t.Fatalf("unexpected status %q", result.Status)
		}
	}
	require.Equal(t, 1, correct, "exactly one submission wins the solve")
	require.Equal(t, workers-1, already)
	require.Equal(t, 1, store.solveCount())
}
