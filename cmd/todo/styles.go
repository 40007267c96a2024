package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todosync/pkg/client"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

func ok(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}

func fail(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✖ "+msg))
}

func panel(w io.Writer, lines []string) {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	fmt.Fprintln(w, border.Render(strings.Join(lines, "\n")))
}

func renderTodo(todo client.Todo) string {
	if todo.State == client.StateCompleted {
		line := boxChecked + " " + doneStyle.Render(todo.Title)
		return line + "  " + mutedStyle.Render(todo.ID)
	}

	line := boxUnchecked + " " + pendingStyle.Render(todo.Title)
	if todo.Description != "" {
		line += mutedStyle.Render(" - " + todo.Description)
	}
	return line + "  " + mutedStyle.Render(todo.ID)
}

func renderList(w io.Writer, c *client.Controller) {
	todos := c.VisibleTodos()

	lines := []string{titleStyle.Render(fmt.Sprintf("Todos (%s)", c.Filter()))}
	if len(todos) == 0 {
		lines = append(lines, mutedStyle.Render("nothing here"))
	}
	for _, todo := range todos {
		lines = append(lines, renderTodo(todo))
	}

	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("%d total · %d active · %d completed",
		c.TotalCount(), c.ActiveCount(), c.CompletedCount())))

	panel(w, lines)
}
