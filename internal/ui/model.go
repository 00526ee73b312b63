package ui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasktrack-go/internal/notify"
	"github.com/nibzard/tasktrack-go/internal/task"
	"github.com/nibzard/tasktrack-go/internal/tracker"
)

// Focus targets, in tab order.
const (
	focusTitle = iota
	focusDate
	focusTime
	focusStatus
	focusList
	focusCount
)

// Options configures the model.
type Options struct {
	ToastTTL time.Duration
	Now      func() time.Time
}

// Model is the bubbletea model for the tracker.
type Model struct {
	tracker *tracker.Tracker
	now     func() time.Time

	inputs     []textinput.Model
	formStatus task.Status
	editing    bool
	formErr    string

	focus    int
	selected int
	showHelp bool
	width    int

	toasts *toastShelf
	bar    progress.Model

	// wakeGen identifies the latest scheduled wake-up; older ones are ignored.
	wakeGen int
}

type wakeMsg struct{ gen int }

type eventMsg struct{ event notify.Event }

type eventsClosedMsg struct{}

type toastExpiredMsg struct{}

// NewModel creates a model over a started tracker.
func NewModel(tr *tracker.Tracker, opts Options) *Model {
	if opts.ToastTTL <= 0 {
		opts.ToastTTL = 3 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	inputs := make([]textinput.Model, 3)
	inputs[focusTitle] = textinput.New()
	inputs[focusTitle].Placeholder = "Task title"
	inputs[focusTitle].CharLimit = 0
	inputs[focusTitle].Width = 40
	inputs[focusDate] = textinput.New()
	inputs[focusDate].Placeholder = "YYYY-MM-DD"
	inputs[focusDate].CharLimit = 10
	inputs[focusDate].Width = 12
	inputs[focusTime] = textinput.New()
	inputs[focusTime].Placeholder = "HH:MM"
	inputs[focusTime].CharLimit = 8
	inputs[focusTime].Width = 10
	inputs[focusTitle].Focus()

	return &Model{
		tracker:    tr,
		now:        opts.Now,
		inputs:     inputs,
		formStatus: task.StatusScheduled,
		focus:      focusTitle,
		toasts:     newToastShelf(opts.ToastTTL),
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.tracker.Events()), m.scheduleWake())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case wakeMsg:
		if msg.gen != m.wakeGen {
			return m, nil
		}
		m.tracker.Advance()
		return m, m.scheduleWake()
	case eventMsg:
		m.toasts.push(msg.event)
		return m, tea.Batch(
			waitForEvent(m.tracker.Events()),
			tea.Tick(m.toasts.ttl, func(time.Time) tea.Msg { return toastExpiredMsg{} }),
		)
	case eventsClosedMsg, toastExpiredMsg:
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m, m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "esc":
		return m, m.setFocus(focusList)
	}

	switch m.focus {
	case focusList:
		return m.handleListKey(msg)
	case focusStatus:
		switch msg.String() {
		case "enter":
			return m, m.submit()
		case "left", "h":
			m.formStatus = prevStatus(m.formStatus)
		case "right", "l", " ":
			m.formStatus = m.formStatus.Next()
		}
		return m, nil
	default:
		if msg.String() == "enter" {
			return m, m.submit()
		}
		return m.updateInput(msg)
	}
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.tracker.Len()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?", "H":
		m.showHelp = !m.showHelp
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < n-1 {
			m.selected++
		}
	case "n", "a":
		return m, m.setFocus(focusTitle)
	case "d", "x":
		if _, err := m.tracker.Delete(m.selected); errors.Is(err, tracker.ErrSaveFailed) || err == nil {
			m.clampSelection()
			return m, m.scheduleWake()
		}
	case "e":
		draft, err := m.tracker.Edit(m.selected)
		if errors.Is(err, tracker.ErrSaveFailed) || err == nil {
			m.loadDraft(draft)
			m.clampSelection()
			return m, tea.Batch(m.setFocus(focusTitle), m.scheduleWake())
		}
	case "s", " ":
		return m, m.cycleSelected()
	case "1", "2", "3":
		statuses := task.Statuses()
		idx := int(msg.String()[0] - '1')
		return m, m.setSelectedStatus(statuses[idx])
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus >= len(m.inputs) {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(target int) tea.Cmd {
	m.focus = target
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == target {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m *Model) submit() tea.Cmd {
	draft := tracker.Draft{
		Title:  m.inputs[focusTitle].Value(),
		Date:   m.inputs[focusDate].Value(),
		Time:   m.inputs[focusTime].Value(),
		Status: m.formStatus,
	}
	_, err := m.tracker.Submit(draft)
	switch {
	case errors.Is(err, tracker.ErrIncompleteDraft):
		m.formErr = "Please fill in the title, date and time"
		return nil
	case errors.Is(err, task.ErrInvalidStatus):
		m.formErr = err.Error()
		return nil
	}
	// A save failure keeps the task in memory and arrives as a toast.
	m.resetForm()
	m.selected = m.tracker.Len() - 1
	return tea.Batch(m.setFocus(focusTitle), m.scheduleWake())
}

func (m *Model) cycleSelected() tea.Cmd {
	tasks := m.tracker.Tasks()
	if m.selected < 0 || m.selected >= len(tasks) || tasks[m.selected].Malformed() {
		return nil
	}
	return m.setSelectedStatus(tasks[m.selected].Status.Next())
}

func (m *Model) setSelectedStatus(status task.Status) tea.Cmd {
	tasks := m.tracker.Tasks()
	if m.selected < 0 || m.selected >= len(tasks) || tasks[m.selected].Malformed() {
		return nil
	}
	if err := m.tracker.SetStatus(m.selected, status); err != nil && !errors.Is(err, tracker.ErrSaveFailed) {
		return nil
	}
	return m.scheduleWake()
}

func (m *Model) loadDraft(d tracker.Draft) {
	m.inputs[focusTitle].SetValue(d.Title)
	m.inputs[focusDate].SetValue(d.Date)
	m.inputs[focusTime].SetValue(d.Time)
	m.formStatus = d.Status
	if !m.formStatus.Valid() {
		m.formStatus = task.StatusScheduled
	}
	m.editing = true
	m.formErr = ""
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.formStatus = task.StatusScheduled
	m.editing = false
	m.formErr = ""
}

func (m *Model) clampSelection() {
	if n := m.tracker.Len(); m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// scheduleWake arms a single tick for the scheduler's next due time.
// Bumping the generation invalidates any wake already in flight.
func (m *Model) scheduleWake() tea.Cmd {
	m.wakeGen++
	due, ok := m.tracker.NextDue()
	if !ok {
		return nil
	}
	gen := m.wakeGen
	d := due.Sub(m.now())
	if d < 0 {
		d = 0
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return wakeMsg{gen: gen} })
}

func waitForEvent(ch <-chan notify.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func prevStatus(s task.Status) task.Status {
	statuses := task.Statuses()
	for i, candidate := range statuses {
		if candidate == s {
			return statuses[(i+len(statuses)-1)%len(statuses)]
		}
	}
	return task.StatusScheduled
}
