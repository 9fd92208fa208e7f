// Package progress models completion records and how each record
// contributes answered and correct questions to a learner's totals.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record is one learner's stored outcome on one exercise.
type Record struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ExerciseID      string          `json:"exercise_id"`
	Score           int             `json:"score"` // percent correct on the most recent attempt
	Completed       bool            `json:"completed"`
	Attempts        int             `json:"attempts"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	QuestionResults json.RawMessage `json:"question_results,omitempty"`
}

// PracticedAt returns the timestamp used for streak bucketing.
func (r Record) PracticedAt() time.Time {
	if r.CompletedAt != nil && !r.CompletedAt.IsZero() {
		return *r.CompletedAt
	}
	return r.CreatedAt
}

// IsPerfect reports whether the record scored exactly 100.
func (r Record) IsPerfect() bool {
	return r.Score == 100
}

// ErrInvalidAttempt is returned when an Attempt fails validation.
var ErrInvalidAttempt = errors.New("invalid attempt")

// Attempt is the write-path input for recording an exercise outcome.
type Attempt struct {
	UserID          string          `json:"user_id"`
	ExerciseID      string          `json:"exercise_id"`
	Score           int             `json:"score"`
	QuestionResults json.RawMessage `json:"question_results,omitempty"`
}

// Validate checks the attempt before it is written.
func (a Attempt) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidAttempt)
	}
	if strings.TrimSpace(a.ExerciseID) == "" {
		return fmt.Errorf("%w: exercise_id is required", ErrInvalidAttempt)
	}
	if a.Score < 0 || a.Score > 100 {
		return fmt.Errorf("%w: score %d outside 0-100", ErrInvalidAttempt, a.Score)
	}
	if len(a.QuestionResults) > 0 && !json.Valid(a.QuestionResults) {
		return fmt.Errorf("%w: question_results is not valid JSON", ErrInvalidAttempt)
	}
	return nil
}

// Completes reports whether the attempt's score crosses threshold.
func (a Attempt) Completes(threshold int) bool {
	return a.Score >= threshold
}
