package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/domain"
)

// create form field order.
const (
	createTitle = iota
	createDescription
	createPriority
	createDueDate
	createDueTime
	createFieldCount
)

// createForm holds the new-task modal.
type createForm struct {
	focus       int
	title       textinput.Model
	description textinput.Model
	dueDate     textinput.Model
	priority    domain.Priority
	dueTime     string
	errs        app.FieldErrors
}

// createdMsg reports the result of CreateTask.
type createdMsg struct {
	task domain.Task
	err  error
}

// startCreate opens the create form with the due date prefilled from the selected group.
func (m Model) startCreate() (tea.Model, tea.Cmd) {
	m.create = createForm{
		title:       newModalInput("", "what needs doing?", "", domain.MaxTitleLength),
		description: newModalInput("", "optional", "", domain.MaxDescriptionLength),
		dueDate:     newModalInput("", "YYYY-MM-DD", m.selectedDateKey(), 32),
		priority:    domain.PriorityMedium,
	}
	m.mode = modeCreate
	m.status = "new task"
	return m, m.create.title.Focus()
}

// input returns the text input for a focus index, if the field is free text.
func (f *createForm) input(idx int) (*textinput.Model, bool) {
	switch idx {
	case createTitle:
		return &f.title, true
	case createDescription:
		return &f.description, true
	case createDueDate:
		return &f.dueDate, true
	default:
		return nil, false
	}
}

// setFocus moves focus and returns the blink command of the newly focused input.
func (f *createForm) setFocus(idx int) tea.Cmd {
	if in, ok := f.input(f.focus); ok {
		in.Blur()
	}
	f.focus = (idx + createFieldCount) % createFieldCount
	if in, ok := f.input(f.focus); ok {
		return in.Focus()
	}
	return nil
}

// values returns the form as service input.
func (f createForm) values() app.CreateTaskInput {
	return app.CreateTaskInput{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Priority:    f.priority,
		DueDate:     strings.TrimSpace(f.dueDate.Value()),
		DueTime:     f.dueTime,
	}
}

// handleCreateKey handles create form keys.
func (m Model) handleCreateKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.create = createForm{}
		m.status = "create cancelled"
		return m, nil
	case "tab", "down":
		return m, m.create.setFocus(m.create.focus + 1)
	case "shift+tab", "up":
		return m, m.create.setFocus(m.create.focus - 1)
	case "ctrl+s":
		return m.submitCreate()
	case "enter":
		if m.create.focus == createFieldCount-1 {
			return m.submitCreate()
		}
		return m, m.create.setFocus(m.create.focus + 1)
	case "left", "right":
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		switch m.create.focus {
		case createPriority:
			m.create.priority = cycle(domain.Priorities(), m.create.priority, step)
			return m, nil
		case createDueTime:
			m.create.dueTime = cycle(dueTimeChoices(), m.create.dueTime, step)
			return m, nil
		}
	}
	in, ok := m.create.input(m.create.focus)
	if !ok {
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

// submitCreate validates locally, then creates the task in the background.
func (m Model) submitCreate() (tea.Model, tea.Cmd) {
	in := m.create.values()
	if errs := app.ValidateCreateInput(in); errs != nil {
		m.create.errs = errs
		m.status = "fix the highlighted fields"
		return m, nil
	}
	m.create.errs = nil
	svc := m.svc
	return m, func() tea.Msg {
		task, err := svc.CreateTask(context.Background(), in)
		return createdMsg{task: task, err: err}
	}
}

// handleCreated closes the form on success and keeps it open with messages on failure.
func (m Model) handleCreated(msg createdMsg) (tea.Model, tea.Cmd) {
	var fieldErrs app.FieldErrors
	switch {
	case errors.As(msg.err, &fieldErrs):
		m.create.errs = fieldErrs
		m.status = "fix the highlighted fields"
		return m, nil
	case msg.err != nil:
		m.status = "create failed: " + msg.err.Error()
		return m, m.pushToast(app.Notification{Kind: app.NotifyError, Title: "Could not create task", Description: msg.err.Error()})
	}
	m.mode = modeNone
	m.create = createForm{}
	m.status = "created " + msg.task.Title
	return m, tea.Batch(
		m.pushToast(app.Notification{Kind: app.NotifySuccess, Title: "Task created successfully!", Description: msg.task.Title}),
		m.loadData,
	)
}

// renderCreateForm renders the create modal.
func (m Model) renderCreateForm(s palette, width int) string {
	f := m.create
	labels := []string{"title", "description", "priority", "due date", "due time"}
	fieldKeys := []string{app.FieldTitle, app.FieldDescription, app.FieldPriority, app.FieldDueDate, app.FieldDueTime}
	labelStyle := lipgloss.NewStyle().Foreground(s.muted)
	focusStyle := lipgloss.NewStyle().Foreground(s.primary).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(s.danger)

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(s.fg).Render("Create New Task"), ""}
	for idx, label := range labels {
		style := labelStyle
		marker := "  "
		if idx == f.focus {
			style = focusStyle
			marker = "› "
		}
		var value string
		switch idx {
		case createTitle:
			value = f.title.View()
		case createDescription:
			value = f.description.View()
		case createDueDate:
			value = f.dueDate.View()
		case createPriority:
			value = "‹ " + string(f.priority) + " ›"
		case createDueTime:
			shown := "none"
			if f.dueTime != "" {
				shown = domain.FormatClock(f.dueTime)
			}
			value = "‹ " + shown + " ›"
		}
		lines = append(lines, marker+style.Render(fmt.Sprintf("%-12s", label+":"))+" "+value)
		if msg := f.errs.Field(fieldKeys[idx]); msg != "" {
			lines = append(lines, "    "+errStyle.Render(msg))
		}
	}
	lines = append(lines, "", labelStyle.Render("tab next • ←/→ choose • ctrl+s create • esc cancel"))
	return modalStyle(s, width).Render(strings.Join(lines, "\n"))
}

// dueTimeChoices is "" (no time) followed by every half-hour slot.
func dueTimeChoices() []string {
	return append([]string{""}, domain.DueTimeSlots()...)
}

// cycle steps through options from current, wrapping at both ends.
func cycle[T comparable](options []T, current T, step int) T {
	if len(options) == 0 {
		return current
	}
	idx := slices.Index(options, current)
	if idx < 0 {
		return options[0]
	}
	return options[(idx+step+len(options))%len(options)]
}
