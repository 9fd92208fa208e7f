package stats

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/spansk/internal/progress"
	"github.com/abhisek/spansk/internal/rewards"
	"github.com/abhisek/spansk/internal/store"
)

var testNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

// fakeRepo serves records and profiles from memory. Users listed in fail
// return an error from ListByUser.
type fakeRepo struct {
	mu       sync.Mutex
	records  map[string][]progress.Record
	profiles []store.Profile
	fail     map[string]bool
	calls    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records: make(map[string][]progress.Record),
		fail:    make(map[string]bool),
	}
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string) ([]progress.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[userID] {
		return nil, errors.New("connection reset")
	}
	return f.records[userID], nil
}

func (f *fakeRepo) RecordAttempt(context.Context, progress.Attempt, int, time.Time) (*progress.Record, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) ListProfiles(_ context.Context, limit int) ([]store.Profile, error) {
	limit = store.ClampProfileLimit(limit)
	if len(f.profiles) > limit {
		return f.profiles[:limit], nil
	}
	return f.profiles, nil
}

func (f *fakeRepo) GetProfile(_ context.Context, id string) (*store.Profile, error) {
	for _, p := range f.profiles {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) UpsertProfile(_ context.Context, p store.Profile) (*store.Profile, error) {
	f.profiles = append(f.profiles, p)
	return &p, nil
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func rec(score int, at time.Time, results string) progress.Record {
	r := progress.Record{Score: score, Completed: score >= 80, CreatedAt: at}
	if results != "" {
		r.QuestionResults = json.RawMessage(results)
	}
	return r
}

func newTestService(repo store.ProgressRepo) *Service {
	return NewService(repo, WithClock(func() time.Time { return testNow }))
}

func TestCalculateUserStats_Empty(t *testing.T) {
	svc := newTestService(newFakeRepo())

	st, err := svc.CalculateUserStats(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, st)

	assert.Equal(t, 0, st.TotalXP)
	assert.Equal(t, 0, st.QuestionsAnswered)
	assert.Equal(t, 0, st.AccuracyPercentage)
	assert.Equal(t, rewards.MedalNone, st.Current)
	require.NotNil(t, st.Next)
	assert.Equal(t, rewards.MedalBronze, *st.Next)
	assert.Equal(t, 0, st.ProgressToNext)
}

func TestCalculateUserStats_MixedSources(t *testing.T) {
	repo := newFakeRepo()
	repo.records["u1"] = []progress.Record{
		rec(67, daysAgo(2), `[{"question_id":"q1","correct":true},{"question_id":"q2","correct":false},{"question_id":"q3","correct":true}]`),
		rec(100, daysAgo(1), `{"question_id":"q9","correct":true}`),
		rec(100, daysAgo(0), ""),
		rec(40, daysAgo(0), "not json"),
	}
	svc := newTestService(repo)

	st, err := svc.CalculateUserStats(context.Background(), "u1")
	require.NoError(t, err)

	// 2 structured + 1 legacy + 1 heuristic correct, out of 3 + 1 + 1 + 0.
	assert.Equal(t, 5, st.QuestionsAnswered)
	assert.Equal(t, 4, st.CorrectAnswers)
	assert.Equal(t, 80, st.AccuracyPercentage)
	assert.Equal(t, 2, st.PerfectScores)
	assert.Equal(t, rewards.CalculateXP(4, 2), st.TotalXP)
	assert.Equal(t, 3, st.CurrentStreak)
	assert.Equal(t, 3, st.LongestStreak)
	assert.Equal(t, rewards.MedalNone, st.Current)
}

func TestCalculateUserStats_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.records["u1"] = []progress.Record{
		rec(90, daysAgo(3), `[{"correct":true},{"correct":true}]`),
		rec(75, daysAgo(1), ""),
	}
	svc := newTestService(repo)

	first, err := svc.CalculateUserStats(context.Background(), "u1")
	require.NoError(t, err)
	second, err := svc.CalculateUserStats(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, *first, *second)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, string(a), string(b))
}

func TestCalculateUserStats_Unavailable(t *testing.T) {
	repo := newFakeRepo()
	repo.fail["u1"] = true
	svc := newTestService(repo)

	st, err := svc.CalculateUserStats(context.Background(), "u1")
	assert.Nil(t, st)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "u1", unavailable.UserID)
	assert.EqualError(t, errors.Unwrap(err), "connection reset")
}

func TestCalculateUserStats_CompletedAtDrivesStreak(t *testing.T) {
	repo := newFakeRepo()
	completed := daysAgo(0)
	repo.records["u1"] = []progress.Record{
		{Score: 90, Completed: true, CreatedAt: daysAgo(10), CompletedAt: &completed},
	}
	svc := newTestService(repo)

	st, err := svc.CalculateUserStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStreak)
}

func TestCalculateUserStats_Location(t *testing.T) {
	copenhagen, err := time.LoadLocation("Europe/Copenhagen")
	require.NoError(t, err)

	// 23:30 UTC on the 14th is already the 15th in Copenhagen.
	late := time.Date(2026, time.October, 14, 23, 30, 0, 0, time.UTC)
	repo := newFakeRepo()
	repo.records["u1"] = []progress.Record{rec(90, late, "")}

	now := time.Date(2026, time.October, 16, 20, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	utc, err := NewService(repo, WithClock(clock)).CalculateUserStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, utc.CurrentStreak)

	local, err := NewService(repo, WithClock(clock), WithLocation(copenhagen)).CalculateUserStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, local.CurrentStreak)
}

func TestUserStats_JSON(t *testing.T) {
	st := newTestService(newFakeRepo()).Aggregate(nil, testNow)
	raw, err := json.Marshal(st)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{
		"total_xp", "current_streak", "longest_streak", "questions_answered",
		"correct_answers", "accuracy_percentage", "current_medal", "next_medal",
		"progress_to_next",
	} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "none", fields["current_medal"])
	assert.Equal(t, "bronze", fields["next_medal"])
}

func TestUserStats_Achievements(t *testing.T) {
	st := UserStats{CurrentStreak: 35}
	got := st.Achievements(testNow)
	require.Len(t, got, 2)
	assert.Equal(t, "week_warrior", got[0].ID)
	assert.Equal(t, "month_master", got[1].ID)
}
