package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasktrack-go/internal/notify"
	"github.com/nibzard/tasktrack-go/internal/task"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(50)
	selectedCardStyle = cardStyle.BorderForeground(lipgloss.Color("212"))

	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusScheduled:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		task.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true),
	}
	countdownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("82")).
			Padding(0, 1)
	toastErrorStyle = toastStyle.BorderForeground(lipgloss.Color("196"))
)

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b)
	writeToasts(&b, m.toasts.visible())

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.focus)
		return b.String()
	}

	m.writeForm(&b)
	m.writeCards(&b)
	writeFooter(&b, m.focus)
	return b.String()
}

func writeTitle(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Task Tracker") + "\n\n")
}

func writeToasts(b *strings.Builder, toasts []toast) {
	for _, t := range toasts {
		style := toastStyle
		if t.kind == notify.KindSaveFailed {
			style = toastErrorStyle
		}
		b.WriteString(style.Render(t.message) + "\n")
	}
	if len(toasts) > 0 {
		b.WriteString("\n")
	}
}

func (m *Model) writeForm(b *strings.Builder) {
	heading := "Add Task"
	if m.editing {
		heading = "Edit Task"
	}
	b.WriteString(titleStyle.Render(heading) + "\n")

	labels := []string{"Title", "Date", "Time"}
	for i, input := range m.inputs {
		b.WriteString(m.fieldLabel(i, labels[i]) + input.View() + "\n")
	}
	status := fmt.Sprintf("< %s >", statusStyle(m.formStatus).Render(m.formStatus.Label()))
	b.WriteString(m.fieldLabel(focusStatus, "Status") + status + "\n")

	if m.formErr != "" {
		b.WriteString(errorStyle.Render(m.formErr) + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) fieldLabel(field int, name string) string {
	label := fmt.Sprintf("%-8s", name+":")
	if m.focus == field {
		return focusStyle.Render("> " + label)
	}
	return labelStyle.Render("  " + label)
}

func (m *Model) writeCards(b *strings.Builder) {
	tasks := m.tracker.Tasks()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Tasks (%d)", len(tasks))) + "\n")
	if len(tasks) == 0 {
		b.WriteString(dimStyle.Render("  No tasks yet.") + "\n\n")
		return
	}
	for i, t := range tasks {
		style := cardStyle
		if m.focus == focusList && i == m.selected {
			style = selectedCardStyle
		}
		b.WriteString(style.Render(m.cardBody(t)) + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) cardBody(t task.Task) string {
	if t.Malformed() {
		return errorStyle.Render("Unreadable task") + "\n" + dimStyle.Render(task.Truncate(string(t.Raw), 44))
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(t.Title),
		"Due: " + task.FormatDue(t.Date, t.Time),
		"Status: " + statusStyle(t.Status).Render(t.Status.Label()),
	}
	if t.Status == task.StatusInProgress {
		if cd, ok := m.tracker.Countdown(t.ID); ok {
			lines = append(lines,
				countdownStyle.Render("Time Left: "+cd.Text),
				m.bar.ViewAs(cd.Progress),
			)
		}
	}
	return strings.Join(lines, "\n")
}

func statusStyle(s task.Status) lipgloss.Style {
	if style, ok := statusStyles[s]; ok {
		return style
	}
	return dimStyle
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  tab, shift+tab  Move between form fields and the task list\n")
	b.WriteString("  enter           Add (or save) the task in the form\n")
	b.WriteString("  left, right     Change the form status\n")
	b.WriteString("  esc             Jump to the task list\n")
	b.WriteString("  up, down        Select a task\n")
	b.WriteString("  s, space        Cycle the selected task's status\n")
	b.WriteString("  1, 2, 3         Set scheduled, in-progress, completed\n")
	b.WriteString("  e               Edit the selected task\n")
	b.WriteString("  d               Delete the selected task\n")
	b.WriteString("  n               New task\n")
	b.WriteString("  ?               Toggle this help screen\n")
	b.WriteString("  q, ctrl+c       Quit\n\n")
}

func writeFooter(b *strings.Builder, focus int) {
	if focus == focusList {
		b.WriteString(dimStyle.Render("? help | e edit | d delete | s status | n new | q quit") + "\n")
		return
	}
	b.WriteString(dimStyle.Render("tab next field | enter submit | esc task list | ctrl+c quit") + "\n")
}
