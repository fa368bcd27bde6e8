package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/domain"
)

// editorModal wraps the staged task editor with per-field inputs.
type editorModal struct {
	ed     app.Editor
	focus  int
	inputs map[app.EditorField]*textinput.Model
	err    string
}

// savedMsg reports the result of an editor save.
type savedMsg struct {
	task domain.Task
	err  error
}

// textField reports whether field is edited through a text input.
func textField(field app.EditorField) bool {
	switch field {
	case app.EditTitle, app.EditDescription, app.EditDueDate:
		return true
	default:
		return false
	}
}

// openEditor stages the selected task.
func (m Model) openEditor() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	m.editor = editorModal{inputs: map[app.EditorField]*textinput.Model{}}
	m.editor.ed.Open(task)
	m.mode = modeEditor
	m.status = "editing " + task.Title
	return m, nil
}

// focusedField returns the field under the editor cursor.
func (e editorModal) focusedField() app.EditorField {
	fields := app.EditorFields()
	return fields[clamp(e.focus, 0, len(fields)-1)]
}

// stagedText returns the staged value of a text field.
func (e editorModal) stagedText(field app.EditorField) string {
	staged := e.ed.Staged()
	switch field {
	case app.EditTitle:
		return staged.Title
	case app.EditDescription:
		return staged.Description
	case app.EditDueDate:
		return staged.DueDate
	default:
		return ""
	}
}

// applyText stages an input value through the matching editor setter.
func (e *editorModal) applyText(field app.EditorField, value string) error {
	switch field {
	case app.EditTitle:
		return e.ed.SetTitle(value)
	case app.EditDescription:
		return e.ed.SetDescription(value)
	case app.EditDueDate:
		return e.ed.SetDueDate(value)
	default:
		return nil
	}
}

// toggleField enters or leaves edit mode on field. Leaving a text field stages its value.
func (e *editorModal) toggleField(field app.EditorField) (tea.Cmd, error) {
	if !e.ed.Editing(field) {
		e.ed.ToggleField(field)
		if !textField(field) {
			return nil, nil
		}
		limit := 64
		switch field {
		case app.EditTitle:
			limit = domain.MaxTitleLength
		case app.EditDescription:
			limit = domain.MaxDescriptionLength
		}
		in := newModalInput("", string(field), e.stagedText(field), limit)
		in.CursorEnd()
		e.inputs[field] = &in
		return in.Focus(), nil
	}
	if in, ok := e.inputs[field]; ok {
		if err := e.applyText(field, in.Value()); err != nil {
			return nil, err
		}
		delete(e.inputs, field)
	}
	e.ed.ToggleField(field)
	return nil, nil
}

// stepChoice cycles a choice field in edit mode.
func (e *editorModal) stepChoice(field app.EditorField, step int) error {
	staged := e.ed.Staged()
	switch field {
	case app.EditPriority:
		return e.ed.SetPriority(cycle(domain.Priorities(), staged.Priority, step))
	case app.EditStatus:
		return e.ed.SetStatus(cycle(domain.Statuses(), staged.Status, step))
	case app.EditDueTime:
		return e.ed.SetDueTime(cycle(dueTimeChoices(), staged.DueTime, step))
	default:
		return nil
	}
}

// commitInputs stages every open text input before a save.
func (e *editorModal) commitInputs() error {
	for _, field := range app.EditorFields() {
		in, ok := e.inputs[field]
		if !ok {
			continue
		}
		if err := e.applyText(field, in.Value()); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}

// handleEditorKey handles detail editor keys.
func (m Model) handleEditorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	field := m.editor.focusedField()
	typing := false
	if _, ok := m.editor.inputs[field]; ok {
		typing = true
	}

	switch msg.String() {
	case "esc":
		m.editor.ed.Cancel()
		m.editor = editorModal{}
		m.mode = modeNone
		m.status = "edit cancelled"
		return m, nil
	case "ctrl+s":
		return m.saveEditor()
	case "enter":
		cmd, err := m.editor.toggleField(field)
		if err != nil {
			m.editor.err = err.Error()
			return m, nil
		}
		m.editor.err = ""
		return m, cmd
	case "tab", "down":
		m.editor.focus = (m.editor.focus + 1) % len(app.EditorFields())
		return m, nil
	case "shift+tab", "up":
		m.editor.focus = (m.editor.focus - 1 + len(app.EditorFields())) % len(app.EditorFields())
		return m, nil
	}

	if typing {
		var cmd tea.Cmd
		in := m.editor.inputs[field]
		*in, cmd = in.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "j":
		m.editor.focus = (m.editor.focus + 1) % len(app.EditorFields())
	case "k":
		m.editor.focus = (m.editor.focus - 1 + len(app.EditorFields())) % len(app.EditorFields())
	case "e":
		cmd, err := m.editor.toggleField(field)
		if err != nil {
			m.editor.err = err.Error()
		}
		return m, cmd
	case "x", " ", "space":
		if err := m.editor.ed.SetCompleted(!m.editor.ed.Staged().Completed()); err != nil {
			m.editor.err = err.Error()
		}
	case "left", "h", "right", "l":
		if !m.editor.ed.Editing(field) {
			return m, nil
		}
		step := 1
		if msg.String() == "left" || msg.String() == "h" {
			step = -1
		}
		if err := m.editor.stepChoice(field, step); err != nil {
			m.editor.err = err.Error()
		} else {
			m.editor.err = ""
		}
	}
	return m, nil
}

// saveEditor commits the staged copy in one replace.
func (m Model) saveEditor() (tea.Model, tea.Cmd) {
	if err := m.editor.commitInputs(); err != nil {
		m.editor.err = err.Error()
		return m, nil
	}
	ed := m.editor.ed
	svc := m.svc
	return m, func() tea.Msg {
		saved, err := ed.Save(context.Background(), svc)
		return savedMsg{task: saved, err: err}
	}
}

// handleSaved closes the editor on success and keeps staged edits on failure.
func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.editor.err = msg.err.Error()
		m.status = "save failed"
		return m, nil
	}
	m.editor.ed.Cancel()
	m.editor = editorModal{}
	m.mode = modeNone
	m.status = "saved " + msg.task.Title
	return m, tea.Batch(
		m.pushToast(app.Notification{Kind: app.NotifySuccess, Title: "Task updated!", Description: msg.task.Title}),
		m.loadData,
	)
}

// renderEditor renders the detail editor modal.
func (m Model) renderEditor(s palette, width int) string {
	staged := m.editor.ed.Staged()
	labelStyle := lipgloss.NewStyle().Foreground(s.muted)
	focusStyle := lipgloss.NewStyle().Foreground(s.primary).Bold(true)
	editStyle := lipgloss.NewStyle().Foreground(s.accent)

	check := "[ ]"
	if staged.Completed() {
		check = "[x]"
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(s.fg).Render(check + " " + staged.Title),
		labelStyle.Render("created " + staged.CreatedAt),
		"",
	}
	for idx, field := range app.EditorFields() {
		style := labelStyle
		marker := "  "
		if idx == m.editor.focus {
			style = focusStyle
			marker = "› "
		}
		value := m.editorValue(field, staged)
		if m.editor.ed.Editing(field) {
			if in, ok := m.editor.inputs[field]; ok {
				value = in.View()
			} else {
				value = editStyle.Render("‹ " + value + " ›")
			}
		}
		label := strings.ReplaceAll(string(field), "_", " ")
		lines = append(lines, marker+style.Render(fmt.Sprintf("%-12s", label+":"))+" "+value)
	}

	if rendered := m.markdown.render(staged.Description, width-6, m.palette().dark); rendered != "" {
		lines = append(lines, "", labelStyle.Render("description"), rendered)
	}
	if m.editor.err != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(s.danger).Render(m.editor.err))
	}
	lines = append(lines, "", labelStyle.Render("enter edit field • ←/→ choose • x done • ctrl+s save • esc cancel"))
	return modalStyle(s, width).Render(strings.Join(lines, "\n"))
}

// editorValue formats a staged field for display.
func (m Model) editorValue(field app.EditorField, staged domain.Task) string {
	switch field {
	case app.EditTitle:
		return staged.Title
	case app.EditDescription:
		if staged.Description == "" {
			return "-"
		}
		return truncate(strings.ReplaceAll(staged.Description, "\n", " "), 48)
	case app.EditPriority:
		return string(staged.Priority)
	case app.EditStatus:
		return staged.Status.Label()
	case app.EditDueDate:
		if staged.DueDate == "" {
			return "none"
		}
		return staged.DueDate
	case app.EditDueTime:
		if staged.DueTime == "" {
			return "none"
		}
		return domain.FormatClock(staged.DueTime)
	default:
		return ""
	}
}
