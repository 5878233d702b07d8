package status

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#9CA3AF")
	colorBorder  = lipgloss.Color("#374151")
	colorAccent  = lipgloss.Color("#6366F1")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(colorBorder)

	successStyle = cellStyle.Foreground(colorSuccess)
	warningStyle = cellStyle.Foreground(colorWarning)
	errorStyle   = cellStyle.Foreground(colorError)
	mutedStyle   = cellStyle.Foreground(colorMuted)
)

func reviewStyle(decision string) lipgloss.Style {
	switch decision {
	case "APPROVED":
		return successStyle
	case "CHANGES_REQUESTED":
		return errorStyle
	case "REVIEW_REQUIRED":
		return warningStyle
	default:
		return mutedStyle
	}
}

func mergeableStyle(state string) lipgloss.Style {
	switch state {
	case "MERGEABLE":
		return successStyle
	case "CONFLICTING":
		return errorStyle
	default:
		return mutedStyle
	}
}

func checksStyle(summary string) lipgloss.Style {
	switch summary {
	case "passing":
		return successStyle
	case "failing":
		return errorStyle
	case "pending":
		return warningStyle
	default:
		return mutedStyle
	}
}
