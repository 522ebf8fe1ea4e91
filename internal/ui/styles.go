package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorPrimary = lipgloss.Color("#FFB347") // Sunshine orange
	colorAccent  = lipgloss.Color("#00BFFF") // Deep sky blue
	colorDanger  = lipgloss.Color("#FF6B6B") // Red for errors
	colorSuccess = lipgloss.Color("#6BCF7F") // Green
	colorMuted   = lipgloss.Color("#6C757D") // Gray
	colorBorder  = lipgloss.Color("#4A90E2") // Border blue
	colorHigh    = lipgloss.Color("#FFFFFF")
	colorLow     = lipgloss.Color("#A9A9A9")

	// Title styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// Today row: bordered card with art on the left
	todayRowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	todaySelectedRowStyle = todayRowStyle.
				BorderForeground(colorAccent)

	todayArtStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			MarginRight(3)

	todayDateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHigh)

	todayHighStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHigh)

	// Future-day rows
	futureRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(lipgloss.Color("#000000")).
				Background(colorAccent)

	lowStyle = lipgloss.NewStyle().
			Foreground(colorLow)

	// Detail pane
	detailPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorHigh)

	// Status line
	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// Help text style
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 0, 0, 0)

	// Utility styles
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Width(64)
)
