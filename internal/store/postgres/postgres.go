// Package postgres implements the store backends on a hosted Postgres
// database through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhisek/spansk/internal/progress"
	"github.com/abhisek/spansk/internal/store"
)

// Store is a store.Backend backed by Postgres.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Open connects to databaseURL, verifies the connection and creates
// missing tables.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool, now: time.Now}
	if err := s.migrate(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS exercise_progress (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		exercise_id TEXT NOT NULL,
		score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		attempts INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		question_results JSONB,
		UNIQUE (user_id, exercise_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exercise_progress_user
		ON exercise_progress (user_id, created_at)`,
	`CREATE UNLOGGED TABLE IF NOT EXISTS rate_counters (
		key TEXT PRIMARY KEY,
		count BIGINT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const progressColumns = `id::text, user_id, exercise_id, score, completed, attempts, created_at, completed_at, question_results`

func scanRecord(row pgx.Row) (progress.Record, error) {
	var (
		r       progress.Record
		results []byte
	)
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.ExerciseID,
		&r.Score,
		&r.Completed,
		&r.Attempts,
		&r.CreatedAt,
		&r.CompletedAt,
		&results,
	)
	if err != nil {
		return progress.Record{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	if r.CompletedAt != nil {
		t := r.CompletedAt.UTC()
		r.CompletedAt = &t
	}
	if len(results) > 0 {
		r.QuestionResults = results
	}
	return r, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]progress.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+progressColumns+`
		FROM exercise_progress
		WHERE user_id = $1
		ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query progress for %s: %w", userID, err)
	}
	defer rows.Close()

	var records []progress.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress rows: %w", err)
	}
	return records, nil
}

func (s *Store) RecordAttempt(ctx context.Context, a progress.Attempt, threshold int, at time.Time) (*progress.Record, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	var completedAt *time.Time
	if a.Completes(threshold) {
		completedAt = &at
	}
	var results any
	if len(a.QuestionResults) > 0 {
		results = string(a.QuestionResults)
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO exercise_progress
			(id, user_id, exercise_id, score, completed, attempts, created_at, completed_at, question_results)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7, $8::jsonb)
		ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			score = EXCLUDED.score,
			completed = exercise_progress.completed OR EXCLUDED.completed,
			attempts = exercise_progress.attempts + 1,
			completed_at = COALESCE(exercise_progress.completed_at, EXCLUDED.completed_at),
			question_results = EXCLUDED.question_results
		RETURNING `+progressColumns,
		uuid.NewString(),
		a.UserID,
		a.ExerciseID,
		a.Score,
		a.Completes(threshold),
		at,
		completedAt,
		results,
	)

	r, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	return &r, nil
}

func (s *Store) ListProfiles(ctx context.Context, limit int) ([]store.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, display_name, created_at
		FROM profiles
		ORDER BY created_at, id
		LIMIT $1`,
		store.ClampProfileLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []store.Profile
	for rows.Next() {
		var p store.Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.CreatedAt = p.CreatedAt.UTC()
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*store.Profile, error) {
	var p store.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT id, display_name, created_at FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p store.Profile) (*store.Profile, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("profile id is required")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, display_name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING id, display_name, created_at`,
		p.ID, p.DisplayName, p.CreatedAt,
	).Scan(&p.ID, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *Store) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	now := s.now()

	var count int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO rate_counters (key, count, expires_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE WHEN rate_counters.expires_at <= $3 THEN 1 ELSE rate_counters.count + 1 END,
			expires_at = CASE WHEN rate_counters.expires_at <= $3 THEN EXCLUDED.expires_at ELSE rate_counters.expires_at END
		RETURNING count`,
		key, now.Add(ttl), now,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", key, err)
	}
	return count, nil
}

func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM rate_counters WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge counters: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ store.Backend = (*Store)(nil)
