package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	primaryColor = lipgloss.Color("#3B82F6") // Blue
	successColor = lipgloss.Color("#34D399") // Green
	errorColor   = lipgloss.Color("#F87171") // Red
	warningColor = lipgloss.Color("#FBBF24") // Amber
	mutedColor   = lipgloss.Color("#626262") // Gray
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1)

	headerRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#2d2d3d"))

	skeletonStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	emptyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(22)

	fieldErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			MarginLeft(24)

	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warningColor).
			Padding(1, 2)

	keyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)
