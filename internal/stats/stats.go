// Package stats derives a learner's reward state from stored completion
// records and ranks learners on the leaderboard.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/spansk/internal/metrics"
	"github.com/abhisek/spansk/internal/progress"
	"github.com/abhisek/spansk/internal/rewards"
	"github.com/abhisek/spansk/internal/store"
)

// UserStats is a learner's derived reward state. It is recomputed from the
// raw records on every request and never stored.
type UserStats struct {
	TotalXP            int `json:"total_xp"`
	CurrentStreak      int `json:"current_streak"`
	LongestStreak      int `json:"longest_streak"`
	QuestionsAnswered  int `json:"questions_answered"`
	CorrectAnswers     int `json:"correct_answers"`
	AccuracyPercentage int `json:"accuracy_percentage"`
	PerfectScores      int `json:"perfect_scores"`
	rewards.MedalStatus
}

// Standing returns the view that medal and achievement rules evaluate.
func (s UserStats) Standing() rewards.Standing {
	return rewards.Standing{
		TotalXP:           s.TotalXP,
		CorrectAnswers:    s.CorrectAnswers,
		QuestionsAnswered: s.QuestionsAnswered,
		Accuracy:          s.AccuracyPercentage,
		CurrentStreak:     s.CurrentStreak,
	}
}

// Achievements returns every badge the stats currently qualify for.
func (s UserStats) Achievements(now time.Time) []rewards.Achievement {
	return rewards.GenerateAchievements(s.Standing(), now)
}

// UnavailableError reports that a learner's stats could not be computed
// because their records could not be read. It is never a zero result.
type UnavailableError struct {
	UserID string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("stats unavailable for %s: %v", e.UserID, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Service computes UserStats.
type Service struct {
	records store.ProgressRepo
	loc     *time.Location
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the location practice days are bucketed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the clock that decides "today" for streaks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records computations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a stats service reading records from repo.
func NewService(repo store.ProgressRepo, opts ...Option) *Service {
	s := &Service{
		records: repo,
		loc:     time.UTC,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// CalculateUserStats reads every record for userID and derives their
// stats. A learner without records gets zeroed stats with medal fields
// still evaluated. A read failure returns *UnavailableError.
func (s *Service) CalculateUserStats(ctx context.Context, userID string) (*UserStats, error) {
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		s.metrics.ObserveStats("unavailable")
		return nil, &UnavailableError{UserID: userID, Err: err}
	}

	stats := s.Aggregate(records, s.now())
	if len(records) == 0 {
		s.metrics.ObserveStats("empty")
	} else {
		s.metrics.ObserveStats("ok")
	}
	return &stats, nil
}

// Aggregate folds records into UserStats as of now.
func (s *Service) Aggregate(records []progress.Record, now time.Time) UserStats {
	var (
		totals  progress.Tally
		perfect int
		times   = make([]time.Time, 0, len(records))
	)
	for _, r := range records {
		t := progress.Classify(r)
		s.metrics.ObserveSource(t.Source.String())
		totals.Add(t)
		if r.IsPerfect() {
			perfect++
		}
		times = append(times, r.PracticedAt())
	}

	streak := rewards.CalculateStreak(times, now, s.loc)
	stats := UserStats{
		TotalXP:            rewards.CalculateXP(totals.Correct, perfect),
		CurrentStreak:      streak.Current,
		LongestStreak:      streak.Longest,
		QuestionsAnswered:  totals.Answered,
		CorrectAnswers:     totals.Correct,
		AccuracyPercentage: rewards.Accuracy(totals.Correct, totals.Answered),
		PerfectScores:      perfect,
	}
	stats.MedalStatus = rewards.EvaluateMedals(stats.Standing())
	return stats
}
