package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/domain"
	"github.com/evanschultz/acta/internal/prefs"
	"github.com/evanschultz/acta/internal/theme"
)

const (
	sidebarWidth          = 16
	sidebarCollapsedWidth = 4
	kanbanColumnWidth     = 30
)

// palette holds resolved theme colours for one render.
type palette struct {
	dark    bool
	preset  theme.Preset
	fg      color.Color
	muted   color.Color
	primary color.Color
	accent  color.Color
	border  color.Color
	success color.Color
	warning color.Color
	danger  color.Color
}

// palette resolves the active preset and colour mode.
func (m Model) palette() palette {
	dark := theme.ResolveDark(string(m.ui.ColorMode), m.terminalDark)
	preset, err := theme.ParsePreset(m.ui.ThemePreset)
	if err != nil {
		preset = theme.Midnight
	}
	tokens := theme.Tokens(preset, dark)
	return palette{
		dark:    dark,
		preset:  preset,
		fg:      lipgloss.Color(tokens.Foreground),
		muted:   lipgloss.Color(tokens.Muted),
		primary: lipgloss.Color(tokens.Primary),
		accent:  lipgloss.Color(tokens.Accent),
		border:  lipgloss.Color(tokens.Border),
		success: lipgloss.Color(tokens.Success),
		warning: lipgloss.Color(tokens.Warning),
		danger:  lipgloss.Color(tokens.Destructive),
	}
}

// modalStyle returns the bordered modal frame.
func modalStyle(s palette, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.primary).
		Padding(1, 2).
		Width(max(40, min(width, 84)))
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the whole screen as a string.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready || !m.loaded {
		return "loading..."
	}

	s := m.palette()
	header := m.renderHeader(s)
	helpLine := m.renderHelpLine(s)
	statusLine := lipgloss.NewStyle().Foreground(s.muted).Padding(0, 1).Render(m.status)
	toasts := m.renderToasts(s)

	footer := []string{statusLine}
	if toasts != "" {
		footer = append([]string{toasts}, footer...)
	}
	footerBlock := strings.Join(footer, "\n")

	bodyHeight := 0
	if m.height > 0 {
		bodyHeight = max(1, m.height-lipgloss.Height(header)-lipgloss.Height(footerBlock)-lipgloss.Height(helpLine))
	}
	sidebar := m.renderSidebar(s, bodyHeight)
	contentWidth := max(20, m.width-lipgloss.Width(sidebar)-2)
	content := lipgloss.NewStyle().Padding(0, 1).Render(m.renderPage(s, contentWidth))
	if bodyHeight > 0 {
		content = fitLines(content, bodyHeight)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)

	full := strings.Join([]string{header, body, footerBlock, helpLine}, "\n")
	if overlay := m.renderModeOverlay(s, m.width-8); overlay != "" {
		overlayHeight := lipgloss.Height(full)
		if m.height > 0 {
			overlayHeight = m.height
		}
		full = overlayOnContent(full, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return full
}

// renderHeader renders the title bar.
func (m Model) renderHeader(s palette) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(s.primary).Render("acta")
	pageLabel := lipgloss.NewStyle().Foreground(s.fg).Render(m.page.label())
	mode := string(m.ui.ColorMode)
	right := lipgloss.NewStyle().Foreground(s.muted).Render(fmt.Sprintf("%s · %s", s.preset.Label(), mode))
	left := title + "  " + pageLabel
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return lipgloss.NewStyle().Padding(0, 1).Render(left + strings.Repeat(" ", gap) + right)
}

// renderHelpLine renders the key help footer.
func (m Model) renderHelpLine(s palette) string {
	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	return lipgloss.NewStyle().
		Foreground(s.muted).
		BorderTop(true).
		BorderForeground(s.border).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))
}

// renderSidebar renders page navigation. Collapsed mode shows page numbers only.
func (m Model) renderSidebar(s palette, height int) string {
	collapsed := m.ui.SidebarCollapsed
	width := sidebarWidth
	if collapsed {
		width = sidebarCollapsedWidth
	}
	lines := make([]string, 0, len(pages))
	for idx, p := range pages {
		label := fmt.Sprintf("%d %s", idx+1, p.label())
		if collapsed {
			label = fmt.Sprintf("%d", idx+1)
		}
		style := lipgloss.NewStyle().Foreground(s.muted)
		if p == m.page {
			style = lipgloss.NewStyle().Foreground(s.primary).Bold(true)
			label = "› " + label
		} else {
			label = "  " + label
		}
		lines = append(lines, style.Render(truncate(label, width)))
	}
	content := strings.Join(lines, "\n")
	if height > 0 {
		content = fitLines(content, height)
	}
	return lipgloss.NewStyle().
		Width(width).
		BorderRight(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.border).
		Render(content)
}

// renderPage renders the active page body.
func (m Model) renderPage(s palette, width int) string {
	switch m.page {
	case pageToday:
		return m.renderToday(s, width)
	case pageTasks:
		return m.renderTasks(s, width)
	default:
		return m.renderOverview(s, width)
	}
}

// renderOverview renders counters, daily progress and the due-today list.
func (m Model) renderOverview(s palette, width int) string {
	stats := m.stats
	card := func(label string, value int, c color.Color) string {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(s.border).
			Padding(0, 1).
			Width(18).
			Render(lipgloss.NewStyle().Foreground(s.muted).Render(label) + "\n" +
				lipgloss.NewStyle().Bold(true).Foreground(c).Render(fmt.Sprintf("%d", value)))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total tasks", stats.Total, s.fg),
		card("Completed", stats.Completed, s.success),
		card("In progress", stats.InProgress, s.accent),
		card("Overdue", stats.Overdue, s.danger),
	)

	barWidth := max(10, min(40, width-30))
	filled := barWidth * stats.DailyProgress / 100
	bar := lipgloss.NewStyle().Foreground(s.success).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(s.border).Render(strings.Repeat("░", barWidth-filled))
	progress := fmt.Sprintf("Daily progress %s %d%% (%d of %d done)", bar, stats.DailyProgress, stats.DoneToday, stats.DueToday)

	sections := []string{
		lipgloss.NewStyle().Bold(true).Foreground(s.fg).Render("Overview"),
		cards,
		progress,
		"",
		m.renderSection(s, "Due today", m.selectableTasks(), 0, width),
	}
	return strings.Join(sections, "\n")
}

// renderToday renders overdue and due-today sections. The cursor spans both.
func (m Model) renderToday(s palette, width int) string {
	overdue := app.Overdue(m.tasks, m.today(), m.completing)
	today := app.DueToday(m.tasks, m.today(), m.completing)
	sections := []string{
		lipgloss.NewStyle().Bold(true).Foreground(s.fg).Render("Today · " + domain.FormatDayHeading(domain.DateKey(m.today()))),
		"",
	}
	if len(overdue) > 0 {
		sections = append(sections, m.renderSection(s, "Overdue", overdue, 0, width), "")
	}
	sections = append(sections, m.renderSection(s, "Due today", today, len(overdue), width))
	return strings.Join(sections, "\n")
}

// renderSection renders a titled task list. offset is the cursor index of its first row.
func (m Model) renderSection(s palette, title string, tasks []domain.Task, offset, width int) string {
	lines := []string{lipgloss.NewStyle().Foreground(s.accent).Bold(true).Render(fmt.Sprintf("%s (%d)", title, len(tasks)))}
	if len(tasks) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(s.muted).Render("  nothing here"))
	}
	for idx, task := range tasks {
		lines = append(lines, m.renderTaskRow(s, task, offset+idx == m.cursor, width, true))
	}
	return strings.Join(lines, "\n")
}

// renderTasks renders the search line and the list or kanban projection.
func (m Model) renderTasks(s palette, width int) string {
	muted := lipgloss.NewStyle().Foreground(s.muted)
	search := muted.Render("/ search")
	switch {
	case m.mode == modeSearch:
		search = m.searchInput.View()
	case m.searchQuery != "":
		search = muted.Render("filter: ") + lipgloss.NewStyle().Foreground(s.fg).Render(m.searchQuery) + muted.Render("  (esc clears)")
	}

	grouping := m.grouping()
	view := "list"
	if m.ui.TaskViewMode == prefs.TaskViewKanban {
		view = "kanban"
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(s.fg).Render("Tasks") +
		muted.Render(fmt.Sprintf("  %d shown · %s view", grouping.Len(), view))

	if len(grouping.Keys) == 0 {
		empty := "No tasks yet. Press n to create one."
		if m.searchQuery != "" {
			empty = fmt.Sprintf("No tasks match %q.", m.searchQuery)
		}
		return strings.Join([]string{header, search, "", muted.Render(empty)}, "\n")
	}
	if m.ui.TaskViewMode == prefs.TaskViewKanban {
		return strings.Join([]string{header, search, "", m.renderKanban(s, grouping, width)}, "\n")
	}
	return strings.Join([]string{header, search, "", m.renderList(s, grouping, width)}, "\n")
}

// groupHeading formats a date group heading with its count.
func groupHeading(key string, count int) string {
	noun := "tasks"
	if count == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%s · %d %s", domain.FormatDayHeading(key), count, noun)
}

// renderList renders date sections in key order.
func (m Model) renderList(s palette, grouping app.Grouping, width int) string {
	lines := make([]string, 0, grouping.Len()+2*len(grouping.Keys))
	idx := 0
	for _, dateKey := range grouping.Keys {
		tasks := grouping.Groups[dateKey]
		lines = append(lines, lipgloss.NewStyle().Foreground(s.accent).Bold(true).Render(groupHeading(dateKey, len(tasks))))
		for _, task := range tasks {
			lines = append(lines, m.renderTaskRow(s, task, idx == m.cursor, width, false))
			idx++
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// renderKanban renders one column per date key, scrolled so the selected column is visible.
func (m Model) renderKanban(s palette, grouping app.Grouping, width int) string {
	visible := max(1, width/(kanbanColumnWidth+2))
	start := 0
	if m.column >= visible {
		start = m.column - visible + 1
	}
	end := min(len(grouping.Keys), start+visible)

	columns := make([]string, 0, end-start)
	for colIdx := start; colIdx < end; colIdx++ {
		dateKey := grouping.Keys[colIdx]
		tasks := grouping.Groups[dateKey]
		active := colIdx == m.column
		headingStyle := lipgloss.NewStyle().Foreground(s.muted).Bold(true)
		borderColor := s.border
		if active {
			headingStyle = headingStyle.Foreground(s.primary)
			borderColor = s.primary
		}
		lines := []string{
			headingStyle.Render(truncate(domain.FormatDayHeading(dateKey), kanbanColumnWidth-2)),
			lipgloss.NewStyle().Foreground(s.muted).Render(fmt.Sprintf("%d tasks", len(tasks))),
			"",
		}
		for rowIdx, task := range tasks {
			lines = append(lines, m.renderTaskRow(s, task, active && rowIdx == m.row, kanbanColumnWidth-2, false))
		}
		columns = append(columns, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Width(kanbanColumnWidth).
			Render(strings.Join(lines, "\n")))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	if len(grouping.Keys) > visible {
		board += "\n" + lipgloss.NewStyle().Foreground(s.muted).Render(fmt.Sprintf("columns %d-%d of %d (h/l)", start+1, end, len(grouping.Keys)))
	}
	return board
}

// renderTaskRow renders one task line. Completed tasks are struck through.
func (m Model) renderTaskRow(s palette, task domain.Task, selected bool, width int, showDate bool) string {
	check := "[ ]"
	if task.Completed() {
		check = "[x]"
	}
	meta := []string{}
	if showDate && task.DueDate != "" {
		meta = append(meta, task.DueDate)
	}
	if task.DueTime != "" {
		meta = append(meta, domain.FormatClock(task.DueTime))
	}
	if task.Status == domain.StatusInProgress {
		meta = append(meta, task.Status.Label())
	}
	metaText := strings.Join(meta, " · ")

	prefix := "  "
	if selected {
		prefix = "› "
	}
	titleWidth := max(8, width-len(prefix)-len(check)-lipgloss.Width(metaText)-len(task.Priority)-6)
	titleStyle := lipgloss.NewStyle().Foreground(s.fg)
	if task.Completed() {
		titleStyle = titleStyle.Strikethrough(true).Foreground(s.muted)
	}
	if selected {
		titleStyle = titleStyle.Bold(true)
	}
	row := prefix + check + " " + titleStyle.Render(truncate(task.Title, titleWidth)) + " " + m.priorityBadge(s, task.Priority)
	if metaText != "" {
		row += " " + lipgloss.NewStyle().Foreground(s.muted).Render(metaText)
	}
	if selected {
		return lipgloss.NewStyle().Foreground(s.primary).Render(row)
	}
	return row
}

// priorityBadge colours a priority label.
func (m Model) priorityBadge(s palette, p domain.Priority) string {
	c := s.muted
	switch p {
	case domain.PriorityHigh:
		c = s.danger
	case domain.PriorityMedium:
		c = s.warning
	case domain.PriorityLow:
		c = s.success
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(p))
}

// renderToasts renders visible notifications, newest last.
func (m Model) renderToasts(s palette) string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		c := s.accent
		switch t.note.Kind {
		case app.NotifySuccess:
			c = s.success
		case app.NotifyError:
			c = s.danger
		}
		text := lipgloss.NewStyle().Bold(true).Foreground(c).Render(t.note.Title)
		if t.note.Description != "" {
			text += " " + lipgloss.NewStyle().Foreground(s.fg).Render(t.note.Description)
		}
		if t.note.Action != nil {
			text += " " + lipgloss.NewStyle().Foreground(s.primary).Render(fmt.Sprintf("[%s %s]", m.keys.undo.Help().Key, t.note.Action.Label))
		}
		lines = append(lines, text)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// renderModeOverlay renders the active modal, if any.
func (m Model) renderModeOverlay(s palette, width int) string {
	switch m.mode {
	case modeCommandPalette:
		return m.renderCommandPalette(s, width)
	case modeCreate:
		return m.renderCreateForm(s, width)
	case modeEditor:
		return m.renderEditor(s, width)
	default:
		return ""
	}
}

// renderCommandPalette renders the palette with up to ten matches.
func (m Model) renderCommandPalette(s palette, width int) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(s.fg).Render("Commands"),
		m.commandInput.View(),
		"",
	}
	if len(m.commandMatches) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(s.muted).Render("no matching commands"))
	}
	for idx, item := range m.commandMatches {
		if idx >= 10 {
			lines = append(lines, lipgloss.NewStyle().Foreground(s.muted).Render(fmt.Sprintf("… %d more", len(m.commandMatches)-10)))
			break
		}
		style := lipgloss.NewStyle().Foreground(s.fg)
		marker := "  "
		if idx == m.commandIndex {
			style = style.Foreground(s.primary).Bold(true)
			marker = "› "
		}
		lines = append(lines, marker+style.Render(fmt.Sprintf("%-16s", item.Command))+" "+lipgloss.NewStyle().Foreground(s.muted).Render(item.Description))
	}
	return modalStyle(s, width).Render(strings.Join(lines, "\n"))
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centres overlay above base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centered).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
