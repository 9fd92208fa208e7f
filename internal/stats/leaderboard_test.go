package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/spansk/internal/logger"
	"github.com/abhisek/spansk/internal/progress"
	"github.com/abhisek/spansk/internal/store"
)

// correctRecords returns n heuristic-correct records on the test day.
func correctRecords(n int) []progress.Record {
	out := make([]progress.Record, n)
	for i := range out {
		out[i] = rec(80, testNow, "")
	}
	return out
}

func quietLogs(t *testing.T) {
	t.Helper()
	prev := logger.SetOutput(&discard{})
	t.Cleanup(func() { logger.SetOutput(prev) })
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func seedLeaderboard(repo *fakeRepo, correct map[string]int, order ...string) {
	for i, id := range order {
		repo.profiles = append(repo.profiles, store.Profile{
			ID:          id,
			DisplayName: "Learner " + id,
			CreatedAt:   testNow.Add(time.Duration(i) * time.Minute),
		})
		repo.records[id] = correctRecords(correct[id])
	}
}

func TestCalculateLeaderboard_Ranks(t *testing.T) {
	repo := newFakeRepo()
	seedLeaderboard(repo, map[string]int{"a": 1, "b": 5, "c": 3}, "a", "b", "c")
	r := NewRanker(newTestService(repo), repo, 0, nil)

	entries, err := r.CalculateLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "b", entries[0].UserID)
	assert.Equal(t, "c", entries[1].UserID)
	assert.Equal(t, "a", entries[2].UserID)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, "Learner b", entries[0].DisplayName)
	assert.Equal(t, 50, entries[0].TotalXP)
}

func TestCalculateLeaderboard_Limit(t *testing.T) {
	repo := newFakeRepo()
	seedLeaderboard(repo, map[string]int{"a": 1, "b": 5, "c": 3}, "a", "b", "c")
	r := NewRanker(newTestService(repo), repo, 0, nil)

	entries, err := r.CalculateLeaderboard(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].UserID)
	assert.Equal(t, "c", entries[1].UserID)
}

func TestCalculateLeaderboard_SkipsUnavailable(t *testing.T) {
	quietLogs(t)
	repo := newFakeRepo()
	seedLeaderboard(repo, map[string]int{"a": 1, "b": 5, "c": 3}, "a", "b", "c")
	repo.fail["b"] = true
	r := NewRanker(newTestService(repo), repo, 0, nil)

	entries, err := r.CalculateLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "a", entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestCalculateLeaderboard_TiesKeepProfileOrder(t *testing.T) {
	repo := newFakeRepo()
	ids := make([]string, 0, 20)
	correct := make(map[string]int)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("u%02d", i)
		ids = append(ids, id)
		correct[id] = 2
	}
	seedLeaderboard(repo, correct, ids...)
	r := NewRanker(newTestService(repo), repo, 0, nil)

	for run := 0; run < 5; run++ {
		entries, err := r.CalculateLeaderboard(context.Background(), 100)
		require.NoError(t, err)
		require.Len(t, entries, 20)
		for i, e := range entries {
			assert.Equal(t, ids[i], e.UserID)
			assert.Equal(t, i+1, e.Rank)
		}
	}
}

func TestCalculateLeaderboard_AchievementsCount(t *testing.T) {
	repo := newFakeRepo()
	repo.profiles = []store.Profile{{ID: "a", DisplayName: "Ana"}}
	var records []progress.Record
	for d := 0; d < 8; d++ {
		records = append(records, rec(90, daysAgo(d), ""))
	}
	repo.records["a"] = records
	r := NewRanker(newTestService(repo), repo, 0, nil)

	entries, err := r.CalculateLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 8, entries[0].CurrentStreak)
	assert.Equal(t, 1, entries[0].AchievementsCount)
}

func TestCalculateLeaderboard_Paced(t *testing.T) {
	repo := newFakeRepo()
	seedLeaderboard(repo, map[string]int{"a": 1, "b": 2}, "a", "b")
	r := NewRanker(newTestService(repo), repo, 1000, nil)

	entries, err := r.CalculateLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 2, repo.calls)
}

func TestCalculateLeaderboard_Empty(t *testing.T) {
	repo := newFakeRepo()
	r := NewRanker(newTestService(repo), repo, 0, nil)

	entries, err := r.CalculateLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// deadlineRepo honours ctx on record reads and runs afterProfiles once the
// profile listing has been served.
type deadlineRepo struct {
	*fakeRepo
	afterProfiles func()
}

func (d *deadlineRepo) ListProfiles(ctx context.Context, limit int) ([]store.Profile, error) {
	profiles, err := d.fakeRepo.ListProfiles(ctx, limit)
	d.afterProfiles()
	return profiles, err
}

func (d *deadlineRepo) ListByUser(ctx context.Context, userID string) ([]progress.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.fakeRepo.ListByUser(ctx, userID)
}

func TestCalculateLeaderboard_CancelledMidBuildFails(t *testing.T) {
	quietLogs(t)
	base := newFakeRepo()
	seedLeaderboard(base, map[string]int{"a": 1, "b": 5, "c": 3}, "a", "b", "c")

	live := &deadlineRepo{fakeRepo: base, afterProfiles: func() {}}
	entries, err := NewRanker(NewService(live, WithClock(func() time.Time { return testNow })), live, 0, nil).
		CalculateLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelled := &deadlineRepo{fakeRepo: base, afterProfiles: cancel}
	entries, err = NewRanker(NewService(cancelled, WithClock(func() time.Time { return testNow })), cancelled, 0, nil).
		CalculateLeaderboard(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, entries)
}

func TestCalculateLeaderboard_DeadlineExceededFails(t *testing.T) {
	quietLogs(t)
	base := newFakeRepo()
	seedLeaderboard(base, map[string]int{"a": 1, "b": 2}, "a", "b")

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	repo := &deadlineRepo{fakeRepo: base, afterProfiles: func() {}}
	entries, err := NewRanker(NewService(repo, WithClock(func() time.Time { return testNow })), repo, 0, nil).
		CalculateLeaderboard(ctx, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, entries)
}
