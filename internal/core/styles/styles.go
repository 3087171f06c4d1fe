// Package styles provides shared lipgloss styles for CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/driftwatch/internal/core/change"
)

// Semantic colors.
var (
	ColorMuted   = lipgloss.Color("#565f89")
	ColorSuccess = lipgloss.Color("#9ece6a")
	ColorWarning = lipgloss.Color("#e0af68")
	ColorError   = lipgloss.Color("#f7768e")
	ColorAccent  = lipgloss.Color("#7aa2f7")
)

// Shared styles.
var (
	PathStyle    = lipgloss.NewStyle().Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	AddedStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	RemovedStyle = lipgloss.NewStyle().Foreground(ColorError)
	HeaderStyle  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	safeStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	reviewStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	riskyStyle  = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)

// Level renders a confidence level in its severity color.
func Level(l change.Level) string {
	switch l {
	case change.LevelSafe:
		return safeStyle.Render(string(l))
	case change.LevelReview:
		return reviewStyle.Render(string(l))
	case change.LevelRisky:
		return riskyStyle.Render(string(l))
	default:
		return string(l)
	}
}

// Kind renders a change kind with its marker.
func Kind(k change.Kind) string {
	switch k {
	case change.KindCreated:
		return AddedStyle.Render("+ created")
	case change.KindDeleted:
		return RemovedStyle.Render("- deleted")
	case change.KindMoved:
		return MutedStyle.Render("> moved")
	default:
		return MutedStyle.Render("~ modified")
	}
}
