package stats

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abhisek/spansk/internal/logger"
	"github.com/abhisek/spansk/internal/metrics"
	"github.com/abhisek/spansk/internal/store"
)

// MaxConcurrentFetches bounds how many learners' records are read at once.
const MaxConcurrentFetches = 8

// LeaderboardEntry is one ranked learner.
type LeaderboardEntry struct {
	UserStats
	UserID            string `json:"user_id"`
	DisplayName       string `json:"display_name"`
	AchievementsCount int    `json:"achievements_count"`
	Rank              int    `json:"rank"`
}

// Ranker builds the leaderboard.
type Ranker struct {
	stats    *Service
	profiles store.ProfileRepo
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
}

// NewRanker creates a Ranker. fetchRate caps per-learner record reads per
// second; 0 or less leaves them unpaced.
func NewRanker(svc *Service, profiles store.ProfileRepo, fetchRate float64, m *metrics.Metrics) *Ranker {
	r := &Ranker{stats: svc, profiles: profiles, metrics: m}
	if fetchRate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(fetchRate), MaxConcurrentFetches)
	}
	return r
}

// CalculateLeaderboard ranks up to store.MaxProfiles learners by total XP
// and returns at most limit entries. Learners whose stats are unavailable
// are left out, but a cancelled or expired ctx fails the whole call.
// Equal XP keeps the profile listing order, which is creation order, so
// repeated calls rank identically.
func (r *Ranker) CalculateLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	start := time.Now()

	profiles, err := r.profiles.ListProfiles(ctx, store.MaxProfiles)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	now := r.stats.Now()
	results := make([]*LeaderboardEntry, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentFetches)
	for i, p := range profiles {
		g.Go(func() error {
			if r.limiter != nil {
				if err := r.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			st, err := r.stats.CalculateUserStats(gctx, p.ID)
			if err != nil {
				// A cancelled or expired request fails the whole board;
				// only a single learner's read failure is skipped.
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warning("leaderboard: skipping %s: %v", p.ID, err)
				return nil
			}
			results[i] = &LeaderboardEntry{
				UserStats:         *st,
				UserID:            p.ID,
				DisplayName:       p.DisplayName,
				AchievementsCount: len(st.Achievements(now)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for _, e := range results {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	skipped := len(profiles) - len(entries)

	slices.SortStableFunc(entries, func(a, b LeaderboardEntry) int {
		return b.TotalXP - a.TotalXP
	})

	limit = store.ClampProfileLimit(limit)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	r.metrics.ObserveLeaderboard(time.Since(start).Seconds(), skipped)
	return entries, nil
}
