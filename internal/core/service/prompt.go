package service

import (
	"sort"
	"strings"

	"todosync/internal/core/domain"
)

const summaryInstruction = "Analyze the following list of pending tasks. Identify any common themes, priorities, or logical groupings. Then, generate a concise, single-paragraph summary that presents these tasks in the most coherent and insightful order. The order of the tasks in the input list should NOT influence the order in your summary. Focus on creating a summary that flows well and highlights the most important aspects or connections between the tasks. Return only the summary paragraph."

// BuildSummaryPrompt renders the instruction followed by one "- title: description" line per todo.
// Todos are listed oldest first so the same set always yields the same prompt.
func BuildSummaryPrompt(todos []domain.Todo) string {
	ordered := make([]domain.Todo, len(todos))
	copy(ordered, todos)

	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var b strings.Builder
	b.WriteString(summaryInstruction)
	b.WriteString("\n")

	for i, todo := range ordered {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(todo.Title)
		b.WriteString(": ")
		b.WriteString(todo.Description)
	}

	return b.String()
}

// SlackText is the message delivered for a generated summary.
func SlackText(summary string) string {
	return "Todo Summary:\n" + summary
}
