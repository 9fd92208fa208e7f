package rewards

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var copenhagen = mustLoad("Europe/Copenhagen")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 3600)
	}
	return loc
}

// day returns noon on the given day of October 2026 in loc.
func day(d int, loc *time.Location) time.Time {
	return time.Date(2026, time.October, d, 12, 0, 0, 0, loc)
}

func TestCalculateStreak(t *testing.T) {
	now := day(7, time.UTC)

	tests := []struct {
		name  string
		times []time.Time
		want  Streak
	}{
		{
			name: "no records",
			want: Streak{},
		},
		{
			name:  "single record today",
			times: []time.Time{now},
			want:  Streak{Current: 1, Longest: 1},
		},
		{
			name:  "single record yesterday",
			times: []time.Time{day(6, time.UTC)},
			want:  Streak{Current: 1, Longest: 1},
		},
		{
			name:  "lapsed single record",
			times: []time.Time{day(4, time.UTC)},
			want:  Streak{Current: 0, Longest: 1},
		},
		{
			name: "gap at day four",
			times: []time.Time{
				day(1, time.UTC), day(2, time.UTC), day(3, time.UTC),
				day(5, time.UTC), day(6, time.UTC), day(7, time.UTC),
			},
			want: Streak{Current: 3, Longest: 3},
		},
		{
			name: "longest run in the past",
			times: []time.Time{
				day(1, time.UTC), day(2, time.UTC), day(3, time.UTC), day(4, time.UTC),
				day(6, time.UTC), day(7, time.UTC),
			},
			want: Streak{Current: 2, Longest: 4},
		},
		{
			name: "duplicates on the same day collapse",
			times: []time.Time{
				day(7, time.UTC), day(7, time.UTC).Add(-3 * time.Hour), day(7, time.UTC).Add(5 * time.Hour),
			},
			want: Streak{Current: 1, Longest: 1},
		},
		{
			name: "unsorted input",
			times: []time.Time{
				day(6, time.UTC), day(4, time.UTC), day(5, time.UTC),
			},
			want: Streak{Current: 3, Longest: 3},
		},
		{
			name: "many records two days apart never merge",
			times: []time.Time{
				day(1, time.UTC), day(1, time.UTC), day(3, time.UTC), day(3, time.UTC), day(5, time.UTC),
			},
			want: Streak{Current: 0, Longest: 1},
		},
		{
			name:  "future date counts as today",
			times: []time.Time{day(5, time.UTC), day(6, time.UTC), day(9, time.UTC)},
			want:  Streak{Current: 3, Longest: 3},
		},
		{
			name:  "only future dates",
			times: []time.Time{day(10, time.UTC), day(12, time.UTC)},
			want:  Streak{Current: 1, Longest: 1},
		},
		{
			name:  "zero timestamps are ignored",
			times: []time.Time{{}, now},
			want:  Streak{Current: 1, Longest: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateStreak(tt.times, now, time.UTC)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateStreak_BucketsInLocation(t *testing.T) {
	// 23:30 UTC on the 6th is already the 7th in Copenhagen.
	late := time.Date(2026, time.October, 6, 23, 30, 0, 0, time.UTC)
	early := time.Date(2026, time.October, 6, 8, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.October, 7, 9, 0, 0, 0, copenhagen)

	got := CalculateStreak([]time.Time{early, late}, now, copenhagen)
	assert.Equal(t, Streak{Current: 2, Longest: 2}, got)

	got = CalculateStreak([]time.Time{early, late}, now, time.UTC)
	assert.Equal(t, Streak{Current: 1, Longest: 1}, got)
}

func TestCalculateStreak_AcrossDSTChange(t *testing.T) {
	// Copenhagen leaves summer time on 25 October 2026.
	times := []time.Time{day(24, copenhagen), day(25, copenhagen), day(26, copenhagen)}
	got := CalculateStreak(times, day(26, copenhagen), copenhagen)
	assert.Equal(t, Streak{Current: 3, Longest: 3}, got)
}

func TestCalculateStreak_NilLocationUsesUTC(t *testing.T) {
	now := day(7, time.UTC)
	got := CalculateStreak([]time.Time{now}, now, nil)
	assert.Equal(t, Streak{Current: 1, Longest: 1}, got)
}
