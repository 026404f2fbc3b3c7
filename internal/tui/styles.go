package tui

import "github.com/charmbracelet/lipgloss"

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("34")).
			Padding(0, 1)
	launcherStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("34")).
			Foreground(lipgloss.Color("34")).
			Bold(true).
			Padding(0, 1)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34"))
	controlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34"))
	indicatorStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))

	buttonStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("34")).Padding(0, 1)
	disabledButtonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("236")).Padding(0, 1)
	statusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)
