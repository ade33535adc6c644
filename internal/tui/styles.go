package tui

import "github.com/charmbracelet/lipgloss"

var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#0F766E")
	goldFg    = lipgloss.Color("#D4A017")
	borderCol = lipgloss.Color("#243141")

	appStyle      = lipgloss.NewStyle().Foreground(baseFg)
	titleStyle    = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(baseDimFg)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	cardTitle     = lipgloss.NewStyle().Foreground(goldFg).Bold(true)
	markerStyle   = lipgloss.NewStyle().Foreground(accentFg)
	selectedStyle = lipgloss.NewStyle().Foreground(goldFg).Bold(true)
	controlStyle  = lipgloss.NewStyle().Foreground(baseDimFg)
)
