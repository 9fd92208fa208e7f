package rewards

import (
	"encoding/json"
	"fmt"
)

// Medal is a gamification tier. Medals are totally ordered; MedalNone sits
// below every earnable tier.
type Medal int

const (
	MedalNone Medal = iota
	MedalBronze
	MedalSilver
	MedalGold
	MedalDiamond
	MedalEmerald
)

// AllMedals returns the earnable tiers in ascending order.
func AllMedals() []Medal {
	return []Medal{MedalBronze, MedalSilver, MedalGold, MedalDiamond, MedalEmerald}
}

var medalNames = [...]string{"none", "bronze", "silver", "gold", "diamond", "emerald"}

// String returns the lowercase identifier used on the wire.
func (m Medal) String() string {
	if m < MedalNone || int(m) >= len(medalNames) {
		return fmt.Sprintf("medal(%d)", int(m))
	}
	return medalNames[m]
}

// DisplayName returns the Danish label shown to learners.
func (m Medal) DisplayName() string {
	switch m {
	case MedalBronze:
		return "Bronze"
	case MedalSilver:
		return "Sølv"
	case MedalGold:
		return "Guld"
	case MedalDiamond:
		return "Diamant"
	case MedalEmerald:
		return "Smaragd"
	default:
		return "Ingen medalje"
	}
}

// Icon returns the display icon for the medal.
func (m Medal) Icon() string {
	switch m {
	case MedalBronze:
		return "🥉"
	case MedalSilver:
		return "🥈"
	case MedalGold:
		return "🥇"
	case MedalDiamond:
		return "💎"
	case MedalEmerald:
		return "💚"
	default:
		return "·"
	}
}

// ParseMedal parses a wire identifier back into a Medal.
func ParseMedal(s string) (Medal, error) {
	for i, name := range medalNames {
		if name == s {
			return Medal(i), nil
		}
	}
	return MedalNone, fmt.Errorf("unknown medal %q", s)
}

func (m Medal) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Medal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMedal(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Requirement is the set of thresholds a learner must meet simultaneously
// to hold a medal.
type Requirement struct {
	XP             int
	CorrectAnswers int
	Accuracy       int
}

var requirements = map[Medal]Requirement{
	MedalBronze:  {XP: 50, CorrectAnswers: 10, Accuracy: 60},
	MedalSilver:  {XP: 250, CorrectAnswers: 50, Accuracy: 70},
	MedalGold:    {XP: 750, CorrectAnswers: 100, Accuracy: 80},
	MedalDiamond: {XP: 2500, CorrectAnswers: 250, Accuracy: 85},
	MedalEmerald: {XP: 5000, CorrectAnswers: 500, Accuracy: 90},
}

// RequirementFor returns the thresholds of an earnable medal.
func RequirementFor(m Medal) (Requirement, bool) {
	r, ok := requirements[m]
	return r, ok
}

// Meets reports whether s satisfies every threshold of r.
func (r Requirement) Meets(s Standing) bool {
	return s.TotalXP >= r.XP &&
		s.CorrectAnswers >= r.CorrectAnswers &&
		s.Accuracy >= r.Accuracy
}

// CurrentMedal returns the highest tier whose requirements s fully meets.
// Tiers are evaluated independently, so a learner can reach gold without
// ever having held silver.
func CurrentMedal(s Standing) Medal {
	tiers := AllMedals()
	for i := len(tiers) - 1; i >= 0; i-- {
		if requirements[tiers[i]].Meets(s) {
			return tiers[i]
		}
	}
	return MedalNone
}

// NextMedal returns the tier immediately above m. The second result is
// false when m is already the top tier.
func NextMedal(m Medal) (Medal, bool) {
	if m < MedalNone || m >= MedalEmerald {
		return MedalNone, false
	}
	return m + 1, true
}

// ProgressToNext returns how far s is toward next as a whole percentage.
// Each dimension is capped at 100 and the smallest one wins, so the result
// reflects the bottleneck. Without a next medal the result is 100.
func ProgressToNext(s Standing, next Medal, ok bool) int {
	if !ok {
		return 100
	}
	req, known := requirements[next]
	if !known {
		return 100
	}
	return min(
		percentOf(s.TotalXP, req.XP),
		percentOf(s.CorrectAnswers, req.CorrectAnswers),
		percentOf(s.Accuracy, req.Accuracy),
	)
}

// percentOf returns floor(100 * have / need) clamped to 0-100.
func percentOf(have, need int) int {
	if need <= 0 || have >= need {
		return 100
	}
	if have <= 0 {
		return 0
	}
	return 100 * have / need
}

// MedalStatus bundles the medal fields reported alongside user stats.
type MedalStatus struct {
	Current        Medal  `json:"current_medal"`
	Next           *Medal `json:"next_medal,omitempty"`
	ProgressToNext int    `json:"progress_to_next"`
}

// EvaluateMedals computes the current medal, the next medal and progress
// toward it in one step.
func EvaluateMedals(s Standing) MedalStatus {
	current := CurrentMedal(s)
	next, ok := NextMedal(current)
	status := MedalStatus{
		Current:        current,
		ProgressToNext: ProgressToNext(s, next, ok),
	}
	if ok {
		status.Next = &next
	}
	return status
}
