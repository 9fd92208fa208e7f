package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/spansk/internal/progress"
)

const progressColumns = `id, user_id, exercise_id, score, completed, attempts, created_at, completed_at, question_results`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (progress.Record, error) {
	var (
		r           progress.Record
		createdAt   int64
		completedAt sql.NullInt64
		results     sql.NullString
	)
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.ExerciseID,
		&r.Score,
		&r.Completed,
		&r.Attempts,
		&createdAt,
		&completedAt,
		&results,
	)
	if err != nil {
		return progress.Record{}, err
	}
	r.CreatedAt = fromMillis(createdAt)
	if completedAt.Valid {
		t := fromMillis(completedAt.Int64)
		r.CompletedAt = &t
	}
	if results.Valid && results.String != "" {
		r.QuestionResults = json.RawMessage(results.String)
	}
	return r, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]progress.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+progressColumns+`
		FROM exercise_progress
		WHERE user_id = ?
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

	var completedAt sql.NullInt64
	if a.Completes(threshold) {
		completedAt = sql.NullInt64{Int64: toMillis(at), Valid: true}
	}
	var results sql.NullString
	if len(a.QuestionResults) > 0 {
		results = sql.NullString{String: string(a.QuestionResults), Valid: true}
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO exercise_progress
			(id, user_id, exercise_id, score, completed, attempts, created_at, completed_at, question_results)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			score = excluded.score,
			completed = MAX(exercise_progress.completed, excluded.completed),
			attempts = exercise_progress.attempts + 1,
			completed_at = COALESCE(exercise_progress.completed_at, excluded.completed_at),
			question_results = excluded.question_results
		RETURNING `+progressColumns,
		uuid.NewString(),
		a.UserID,
		a.ExerciseID,
		a.Score,
		a.Completes(threshold),
		toMillis(at),
		completedAt,
		results,
	)

	r, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	return &r, nil
}
