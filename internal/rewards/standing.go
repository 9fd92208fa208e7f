// Package rewards holds the pure gamification rules: experience points,
// practice streaks, medal tiers and achievement badges.
package rewards

// Standing is the aggregate view of a learner that medal and achievement
// rules are evaluated against.
type Standing struct {
	TotalXP           int
	CorrectAnswers    int
	QuestionsAnswered int
	Accuracy          int // whole percent, 0-100
	CurrentStreak     int
}

// Accuracy returns round(100 * correct / answered), or 0 when nothing has
// been answered. Integer arithmetic keeps the result identical across runs.
func Accuracy(correct, answered int) int {
	if answered <= 0 {
		return 0
	}
	return (200*correct + answered) / (2 * answered)
}
