package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasklist-go/internal/todo"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	labelStyle   = lipgloss.NewStyle().Width(24)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	confirmStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))

	priorityColors = map[todo.Priority]lipgloss.Color{
		todo.PriorityHigh:   lipgloss.Color("196"),
		todo.PriorityMedium: lipgloss.Color("214"),
		todo.PriorityLow:    lipgloss.Color("42"),
	}
	completedColor = lipgloss.Color("42")
	pendingColor   = lipgloss.Color("214")
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}
