package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/spansk/internal/rewards"
	"github.com/abhisek/spansk/internal/stats"
	"github.com/abhisek/spansk/internal/ui/theme"
)

// MedalBadge renders a medal's icon and Danish name in its tier color.
func MedalBadge(m rewards.Medal) string {
	return lipgloss.NewStyle().
		Foreground(theme.MedalColor(m)).
		Bold(m != rewards.MedalNone).
		Render(m.Icon() + " " + m.DisplayName())
}

// StatsCard renders one learner's stats and badges in a bordered card.
func StatsCard(title string, st stats.UserStats, achievements []rewards.Achievement, width int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render(title) + "\n\n")

	rows := [][2]string{
		{"XP", fmt.Sprintf("%d", st.TotalXP)},
		{"Streak", fmt.Sprintf("%d dage (rekord %d)", st.CurrentStreak, st.LongestStreak)},
		{"Rigtige svar", fmt.Sprintf("%d / %d", st.CorrectAnswers, st.QuestionsAnswered)},
		{"Præcision", fmt.Sprintf("%d%%", st.AccuracyPercentage)},
		{"Perfekte", fmt.Sprintf("%d", st.PerfectScores)},
		{"Medalje", MedalBadge(st.Current)},
	}
	for _, row := range rows {
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%-14s", row[0])))
		b.WriteString(theme.Body.Render(row[1]) + "\n")
	}

	b.WriteString("\n")
	if st.Next != nil {
		label := "Mod " + st.Next.DisplayName()
		b.WriteString(NewProgressBar(label, st.ProgressToNext, true, width-8).View() + "\n")
	} else {
		b.WriteString(theme.Hint.Render("Højeste medalje opnået") + "\n")
	}

	if len(achievements) > 0 {
		b.WriteString("\n")
		for _, a := range achievements {
			b.WriteString(a.Icon + " " + theme.Body.Render(a.Name) + "  " + theme.Hint.Render(a.Description) + "\n")
		}
	}

	return theme.Card.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// LeaderboardTable renders ranked entries one per line.
func LeaderboardTable(entries []stats.LeaderboardEntry) string {
	if len(entries) == 0 {
		return theme.Hint.Render("Ingen på ranglisten endnu.")
	}

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%-5s %-24s %8s %6s %8s  %s", "#", "Navn", "XP", "Streak", "Præcis", "Medalje")))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(strings.Repeat("─", 72)))
	b.WriteString("\n")

	for _, e := range entries {
		name := e.DisplayName
		if name == "" {
			name = e.UserID
		}
		if len([]rune(name)) > 24 {
			name = string([]rune(name)[:23]) + "…"
		}
		style := theme.Body
		if e.Rank == 1 {
			style = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
		}
		line := fmt.Sprintf("%-5d %-24s %8d %6d %7d%%  ", e.Rank, name, e.TotalXP, e.CurrentStreak, e.AccuracyPercentage)
		b.WriteString(style.Render(line) + MedalBadge(e.Current) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
