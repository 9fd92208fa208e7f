package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/spansk/internal/logger"
	"github.com/abhisek/spansk/internal/progress"
)

var recordCmd = &cobra.Command{
	Use:   "record <user-id> <exercise-id> <score>",
	Short: "Record an exercise attempt",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("score must be an integer: %w", err)
		}
		results, _ := cmd.Flags().GetString("results")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		backend, err := openBackend(cmd, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		attempt := progress.Attempt{
			UserID:     args[0],
			ExerciseID: args[1],
			Score:      score,
		}
		if results != "" {
			attempt.QuestionResults = json.RawMessage(results)
		}

		rec, err := backend.RecordAttempt(cmd.Context(), attempt, cfg.CompletionThreshold, time.Now())
		if err != nil {
			return err
		}

		status := "not completed"
		if rec.Completed {
			status = "completed"
		}
		logger.Success("Recorded %s on %s: score %d, attempt %d, %s",
			rec.UserID, rec.ExerciseID, rec.Score, rec.Attempts, status)
		return nil
	},
}

func init() {
	recordCmd.Flags().String("results", "", `Per-question results as JSON, e.g. '[{"question_id":"q1","correct":true}]'`)
}
