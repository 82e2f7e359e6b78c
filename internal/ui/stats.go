package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasklist-go/internal/todo"
)

const maxBarWidth = 30

// renderStats draws the statistics view: summary counts and one bar per
// priority and per completion state.
func renderStats(stats todo.Stats) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Summary Statistics") + "\n\n")
	b.WriteString(fmt.Sprintf("  Total Tasks:     %d\n", stats.Total))
	b.WriteString(fmt.Sprintf("  Completed Tasks: %d\n", stats.Completed))
	b.WriteString(fmt.Sprintf("  Pending Tasks:   %d\n\n", stats.Pending))

	if stats.Total == 0 {
		b.WriteString("  No tasks available to generate detailed statistics.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  Completion:      %.0f%%\n\n", stats.CompletionRate()*100))

	b.WriteString(headingStyle.Render("Task Priorities") + "\n\n")
	for _, p := range todo.Priorities() {
		b.WriteString(barLine(string(p), stats.ByPriority[p], stats.Total, priorityColors[p]))
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Task Completion Status") + "\n\n")
	b.WriteString(barLine("Completed", stats.Completed, stats.Total, completedColor))
	b.WriteString(barLine("Pending", stats.Pending, stats.Total, pendingColor))
	return b.String()
}

func barLine(label string, count, total int, color lipgloss.Color) string {
	width := 0
	if total > 0 {
		width = count * maxBarWidth / total
	}
	if count > 0 && width == 0 {
		width = 1
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", width))
	pad := strings.Repeat(" ", maxBarWidth-width)
	return fmt.Sprintf("  %-10s %s%s %d\n", label, bar, pad, count)
}
