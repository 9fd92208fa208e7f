// Package store persists completion records, learner profiles and rate
// limit counters.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/spansk/internal/progress"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// MaxProfiles caps how many profiles a single listing returns.
const MaxProfiles = 100

// Profile is a learner identity shown on the leaderboard.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProgressRepo reads and writes completion records.
type ProgressRepo interface {
	// ListByUser returns every record for userID, oldest first.
	ListByUser(ctx context.Context, userID string) ([]progress.Record, error)

	// RecordAttempt upserts the record for the attempt's user and exercise.
	// The record becomes completed once a score reaches threshold and stays
	// completed afterwards.
	RecordAttempt(ctx context.Context, a progress.Attempt, threshold int, at time.Time) (*progress.Record, error)
}

// ProfileRepo reads and writes learner profiles.
type ProfileRepo interface {
	// ListProfiles returns up to limit profiles ordered by creation.
	ListProfiles(ctx context.Context, limit int) ([]Profile, error)

	// GetProfile returns ErrNotFound when id is unknown.
	GetProfile(ctx context.Context, id string) (*Profile, error)

	UpsertProfile(ctx context.Context, p Profile) (*Profile, error)
}

// CounterStore keeps expiring counters shared by every server instance.
type CounterStore interface {
	// Increment adds one to key and returns the new count. A key whose
	// expiry has passed restarts at 1 with a fresh ttl.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Backend is everything the service needs from a database.
type Backend interface {
	ProgressRepo
	ProfileRepo
	CounterStore
	Ping(ctx context.Context) error
	PurgeExpired(ctx context.Context) (int64, error)
	Close() error
}

// ClampProfileLimit bounds limit to 1..MaxProfiles. Non-positive limits
// mean "as many as allowed".
func ClampProfileLimit(limit int) int {
	if limit <= 0 || limit > MaxProfiles {
		return MaxProfiles
	}
	return limit
}
