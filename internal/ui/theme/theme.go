// Package theme holds the colors and styles used by terminal output.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/spansk/internal/rewards"
)

// Color palette
var (
	Primary   = lipgloss.Color("#C2410C") // Terracotta
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#FACC15") // Saffron
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Medal colors
var (
	Bronze  = lipgloss.Color("#CD7F32")
	Silver  = lipgloss.Color("#C0C0C0")
	Gold    = lipgloss.Color("#FFD700")
	Diamond = lipgloss.Color("#7DD3FC")
	Emerald = lipgloss.Color("#10B981")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// MedalColor returns the display color of a medal tier.
func MedalColor(m rewards.Medal) color.Color {
	switch m {
	case rewards.MedalBronze:
		return Bronze
	case rewards.MedalSilver:
		return Silver
	case rewards.MedalGold:
		return Gold
	case rewards.MedalDiamond:
		return Diamond
	case rewards.MedalEmerald:
		return Emerald
	default:
		return TextDim
	}
}
