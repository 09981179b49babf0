package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.taskList(),
		m.logPane(),
	)
}

func (m *Model) taskList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("TASKS") + "\n\n")

	start := m.ListOffset
	end := min(m.ListOffset+m.ListHeight, len(m.Tasks))
	start = min(start, end)

	now := m.now()
	for i := start; i < end; i++ {
		s.WriteString(m.renderTaskRow(i, m.Tasks[i], now) + "\n")
	}

	return listStyle.Render(s.String())
}

func (m *Model) renderTaskRow(index int, task *TaskNode, now time.Time) string {
	rowStyle := taskStyle(task)

	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if !task.Status.Done() {
			rowStyle = selectedStyle
		}
	}

	row := cursor + strings.Repeat("  ", task.Depth) +
		rowStyle.Render(m.taskIcon(task)+" "+task.Name)

	if elapsed := task.Elapsed(now); elapsed > 0 {
		row += " " + detailStyle.Render(formatElapsed(elapsed))
	}
	if detail := taskDetail(task); detail != "" {
		row += "  " + detailStyle.Render(detail)
	}

	if m.ListWidth > 0 {
		row = ansi.Truncate(row, m.ListWidth, "…")
	}
	return row
}

func (m *Model) taskIcon(task *TaskNode) string {
	switch task.Status {
	case domain.StatusRunning:
		return m.Spinner.View()
	case domain.StatusCompleted:
		return style.Check
	case domain.StatusFailed:
		return style.Cross
	case domain.StatusSkipped:
		return style.Dash
	default:
		return style.Circle
	}
}

func taskStyle(task *TaskNode) lipgloss.Style {
	switch task.Status {
	case domain.StatusRunning:
		return taskRunningStyle
	case domain.StatusCompleted:
		return taskDoneStyle
	case domain.StatusFailed:
		return taskErrorStyle
	case domain.StatusSkipped:
		return taskSkippedStyle
	default:
		return taskPendingStyle
	}
}

// taskDetail is the text after the elapsed time: the latest output line,
// or why the task did not run.
func taskDetail(task *TaskNode) string {
	if task.Status == domain.StatusSkipped {
		return "dependency " + task.Dependency + " failed"
	}
	return task.Term.LastLine()
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func (m *Model) logPane() string {
	var header string
	var content string

	if m.ActiveTaskName != "" {
		status := " (Manual)"
		if m.FollowMode {
			status = " (Following)"
		}
		header = titleStyle.Render("LOGS: " + m.ActiveTaskName + status)
		if node, ok := m.TaskMap[m.ActiveTaskName]; ok {
			if node.Status == domain.StatusFailed && node.Err != nil {
				header = failureTitleStyle.Render("LOGS: " + m.ActiveTaskName + " " + style.Cross)
			}
			content = node.Term.View()
		}
	} else {
		header = titleStyle.Render("LOGS (Waiting...)")
	}

	return logStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			content,
		),
	)
}
