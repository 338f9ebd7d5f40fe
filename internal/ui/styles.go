package ui

import (
	"github.com/charmbracelet/lipgloss"

	"eisen/internal/task"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Faint(true)

	doneStyle  = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	clockStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))

	quadrantStyles = map[task.Quadrant]lipgloss.Style{
		task.Q1: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		task.Q2: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		task.Q3: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		task.Q4: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
)

func quadrantBadge(q task.Quadrant) string {
	if q == "" {
		q = task.Q4
	}
	return quadrantStyles[q].Render(string(q))
}
