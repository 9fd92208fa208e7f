package rewards

import "time"

// AchievementType identifies the category of an achievement.
type AchievementType string

const (
	AchievementStreak   AchievementType = "streak"
	AchievementAccuracy AchievementType = "accuracy"
	AchievementVolume   AchievementType = "volume"
)

// Achievement is a badge a learner currently qualifies for.
type Achievement struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	EarnedAt    time.Time       `json:"earned_at"`
	Type        AchievementType `json:"type"`
}

// achievementRule pairs a badge template with its qualifying predicate.
type achievementRule struct {
	template Achievement
	earned   func(Standing) bool
}

var achievementRules = []achievementRule{
	{
		template: Achievement{
			ID:          "week_warrior",
			Name:        "Week Warrior",
			Description: "Øvet 7 dage i træk",
			Icon:        "🔥",
			Type:        AchievementStreak,
		},
		earned: func(s Standing) bool { return s.CurrentStreak >= 7 },
	},
	{
		template: Achievement{
			ID:          "month_master",
			Name:        "Month Master",
			Description: "Øvet 30 dage i træk",
			Icon:        "🏆",
			Type:        AchievementStreak,
		},
		earned: func(s Standing) bool { return s.CurrentStreak >= 30 },
	},
	{
		template: Achievement{
			ID:          "perfectionist",
			Name:        "Perfectionist",
			Description: "Mindst 95% rigtige over 100 spørgsmål",
			Icon:        "🎯",
			Type:        AchievementAccuracy,
		},
		earned: func(s Standing) bool { return s.Accuracy >= 95 && s.QuestionsAnswered >= 100 },
	},
	{
		template: Achievement{
			ID:          "question_master",
			Name:        "Question Master",
			Description: "Besvaret 1000 spørgsmål",
			Icon:        "📚",
			Type:        AchievementVolume,
		},
		earned: func(s Standing) bool { return s.QuestionsAnswered >= 1000 },
	},
}

// GenerateAchievements re-derives every badge s qualifies for. Rules are
// independent, so a 35-day streak yields both streak badges. The result
// does not distinguish new badges from ones already shown; callers diff
// successive results for that.
func GenerateAchievements(s Standing, now time.Time) []Achievement {
	earned := make([]Achievement, 0, len(achievementRules))
	for _, rule := range achievementRules {
		if !rule.earned(s) {
			continue
		}
		a := rule.template
		a.EarnedAt = now
		earned = append(earned, a)
	}
	return earned
}
