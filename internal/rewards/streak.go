package rewards

import (
	"slices"
	"time"
)

// Streak holds practice streak lengths in calendar days.
type Streak struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// CalculateStreak derives the current and longest practice streak from
// practice timestamps. Timestamps are bucketed into calendar dates in loc.
// The current streak is zero unless the most recent practice date is today
// or yesterday relative to now. Dates after today count as today.
func CalculateStreak(times []time.Time, now time.Time, loc *time.Location) Streak {
	if loc == nil {
		loc = time.UTC
	}

	today := dayNumber(now, loc)
	days := uniqueDays(times, loc, today)
	if len(days) == 0 {
		return Streak{}
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := days[len(days)-1]
	if today-last > 1 {
		return Streak{Current: 0, Longest: longest}
	}

	current := 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i]-days[i-1] != 1 {
			break
		}
		current++
	}

	return Streak{Current: current, Longest: longest}
}

// uniqueDays returns the sorted, deduplicated day numbers of times, with
// days after today clamped to today.
func uniqueDays(times []time.Time, loc *time.Location, today int) []int {
	days := make([]int, 0, len(times))
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		days = append(days, min(dayNumber(t, loc), today))
	}
	slices.Sort(days)
	return slices.Compact(days)
}

// dayNumber maps t to the number of whole calendar days since the Unix
// epoch for its date in loc. Adjacent dates always differ by exactly 1,
// including across DST changes.
func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	civil := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(civil.Unix() / 86400)
}
