package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/metalagman/lintgate/internal/task"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	descStyle    = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func groupTitle(group string) string {
	if group == "" {
		group = task.GroupOther
	}
	return strings.ToUpper(group[:1]) + group[1:] + " tasks"
}

// printTasks lists tasks grouped by group, verification first.
func printTasks(w io.Writer, tasks []task.Task) error {
	groups := make(map[string][]task.Task)
	for _, t := range tasks {
		groups[t.Group] = append(groups[t.Group], t)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == task.GroupVerification || keys[j] == task.GroupVerification {
			return keys[i] == task.GroupVerification
		}
		return keys[i] < keys[j]
	})

	for i, k := range keys {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, headerStyle.Render(groupTitle(k))); err != nil {
			return err
		}
		for _, t := range groups[k] {
			line := nameStyle.Render(t.Name)
			if t.Description != "" {
				line += " - " + descStyle.Render(t.Description)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func printReport(w io.Writer, report task.Report, runErr error) {
	for _, res := range report.Results {
		outcome := string(res.Outcome)
		switch res.Outcome {
		case task.OutcomeFailed:
			outcome = failureStyle.Render(outcome)
		case task.OutcomeSkipped, task.OutcomeUpToDate:
			outcome = skippedStyle.Render(outcome)
		}
		_, _ = fmt.Fprintf(w, "> %s %s\n", res.Name, outcome)
	}
	if runErr != nil {
		_, _ = fmt.Fprintln(w, failureStyle.Render("LINT FAILED"))
		return
	}
	_, _ = fmt.Fprintln(w, successStyle.Render("LINT SUCCESSFUL"))
}
