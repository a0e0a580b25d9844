package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#38bdf8")
	muted   = lipgloss.Color("#64748b")
	danger  = lipgloss.Color("#f87171")
	success = lipgloss.Color("#4ade80")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted)

	focusedPanelStyle = panelStyle.BorderForeground(accent)

	brandStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	navItemStyle   = lipgloss.NewStyle()
	navActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	cursorStyle    = lipgloss.NewStyle().Foreground(accent)

	userStyle    = lipgloss.NewStyle().Bold(true)
	modelStyle   = lipgloss.NewStyle().Foreground(accent)
	errorStyle   = lipgloss.NewStyle().Foreground(danger)
	statusStyle  = lipgloss.NewStyle().Foreground(muted)
	copiedStyle  = lipgloss.NewStyle().Foreground(success)
	chatTitle    = lipgloss.NewStyle().Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)
)
