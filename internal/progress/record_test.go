package progress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPracticedAt(t *testing.T) {
	created := time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)
	completed := created.Add(48 * time.Hour)

	assert.Equal(t, created, Record{CreatedAt: created}.PracticedAt())
	assert.Equal(t, completed, Record{CreatedAt: created, CompletedAt: &completed}.PracticedAt())

	var zero time.Time
	assert.Equal(t, created, Record{CreatedAt: created, CompletedAt: &zero}.PracticedAt())
}

func TestAttemptValidate(t *testing.T) {
	tests := []struct {
		name    string
		attempt Attempt
		wantErr bool
	}{
		{"valid", Attempt{UserID: "u1", ExerciseID: "ser-estar-1", Score: 80}, false},
		{"valid with results", Attempt{UserID: "u1", ExerciseID: "e", Score: 0, QuestionResults: json.RawMessage(`[{"correct":false}]`)}, false},
		{"missing user", Attempt{ExerciseID: "e", Score: 10}, true},
		{"blank exercise", Attempt{UserID: "u1", ExerciseID: "  ", Score: 10}, true},
		{"negative score", Attempt{UserID: "u1", ExerciseID: "e", Score: -1}, true},
		{"score above 100", Attempt{UserID: "u1", ExerciseID: "e", Score: 101}, true},
		{"bad json", Attempt{UserID: "u1", ExerciseID: "e", Score: 50, QuestionResults: json.RawMessage(`[{`)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attempt.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAttempt)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAttemptCompletes(t *testing.T) {
	assert.True(t, Attempt{Score: 80}.Completes(80))
	assert.False(t, Attempt{Score: 79}.Completes(80))
}
