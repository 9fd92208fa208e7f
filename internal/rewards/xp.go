package rewards

// XP awarded per unit of progress.
const (
	XPPerCorrectAnswer = 10
	XPPerPerfectScore  = 50
)

// CalculateXP returns the total experience points for a learner.
// perfectScores counts completions whose score is exactly 100.
func CalculateXP(correctAnswers, perfectScores int) int {
	return correctAnswers*XPPerCorrectAnswer + perfectScores*XPPerPerfectScore
}
