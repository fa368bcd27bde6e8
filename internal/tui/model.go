package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/domain"
	"github.com/evanschultz/acta/internal/prefs"
	"github.com/evanschultz/acta/internal/theme"
)

// Service represents the task operations the dashboard needs.
type Service interface {
	ListTasks(context.Context) ([]domain.Task, error)
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	SaveTask(context.Context, domain.Task) (domain.Task, error)
	Stats(context.Context) (app.Stats, error)
	Now() time.Time
}

// Completer drives the completion toggle workflow.
type Completer interface {
	Toggle(context.Context, string) (app.ToggleOutcome, error)
	Fire(context.Context, string) (domain.Task, error)
	CompletingIDs() map[string]struct{}
	Close()
}

// PrefsStore persists UI preferences.
type PrefsStore interface {
	State() prefs.UIState
	ToggleSidebar(context.Context) (prefs.UIState, error)
	SetColorMode(context.Context, prefs.ColorMode) (prefs.UIState, error)
	SetThemePreset(context.Context, string) (prefs.UIState, error)
	SetTaskViewMode(context.Context, prefs.TaskViewMode) (prefs.UIState, error)
}

// page identifies one dashboard screen.
type page int

const (
	pageOverview page = iota
	pageToday
	pageTasks
)

var pages = []page{pageOverview, pageToday, pageTasks}

// label returns the sidebar label.
func (p page) label() string {
	switch p {
	case pageToday:
		return "Today"
	case pageTasks:
		return "Tasks"
	default:
		return "Overview"
	}
}

// inputMode describes input mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeSearch
	modeCommandPalette
	modeCreate
	modeEditor
)

// Model represents the dashboard state.
type Model struct {
	svc        Service
	completion Completer
	jobs       <-chan string
	prefs      PrefsStore
	ui         prefs.UIState
	notes      *Notifications
	logger     *charmLog.Logger
	copy       func(string) error

	ready      bool
	loaded     bool
	err        error
	tasks      []domain.Task
	stats      app.Stats
	completing map[string]struct{}
	now        time.Time

	page   page
	cursor int
	column int
	row    int

	width        int
	height       int
	help         help.Model
	keys         keyMap
	mode         inputMode
	status       string
	terminalDark bool

	searchInput textinput.Model
	searchQuery string

	commandInput   textinput.Model
	commandMatches []commandItem
	commandIndex   int

	create createForm
	editor editorModal

	toasts    []toast
	toastSeq  int
	toastTTL  time.Duration
	toastTick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
	markdown  *markdownRenderer
}

// loadedMsg carries a fresh snapshot of the collection.
type loadedMsg struct {
	tasks      []domain.Task
	stats      app.Stats
	completing map[string]struct{}
	now        time.Time
	err        error
}

// actionMsg reports the result of a background action.
type actionMsg struct {
	err    error
	status string
	reload bool
}

// completionDueMsg carries a scheduler job id that reached its trigger time.
type completionDueMsg struct {
	jobID string
}

// jobsClosedMsg reports that the scheduler stopped.
type jobsClosedMsg struct{}

// prefsMsg carries preference state after a write.
type prefsMsg struct {
	state prefs.UIState
	err   error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	searchInput := textinput.New()
	searchInput.Prompt = "/ "
	searchInput.Placeholder = "search task titles"
	searchInput.CharLimit = 120
	commandInput := textinput.New()
	commandInput.Prompt = ": "
	commandInput.Placeholder = "type to filter commands"
	commandInput.CharLimit = 120
	m := Model{
		svc:          svc,
		ui:           prefs.Defaults(),
		notes:        NewNotifications(),
		logger:       charmLog.Default(),
		copy:         systemClipboard,
		status:       "loading...",
		help:         h,
		keys:         newKeyMap(),
		searchInput:  searchInput,
		commandInput: commandInput,
		completing:   map[string]struct{}{},
		toastTTL:     DefaultToastTTL,
		toastTick:    tea.Tick,
		markdown:     &markdownRenderer{},
		terminalDark: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	if m.prefs != nil {
		m.ui = m.prefs.State()
	}
	return m
}

// Init loads tasks, asks the terminal for its background and starts draining scheduler jobs.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadData, tea.RequestBackgroundColor}
	if wait := m.waitForJob(); wait != nil {
		cmds = append(cmds, wait)
	}
	return tea.Batch(cmds...)
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.BackgroundColorMsg:
		m.terminalDark = msg.IsDark()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "load failed"
			return m, nil
		}
		m.err = nil
		m.loaded = true
		m.tasks = msg.tasks
		m.stats = msg.stats
		m.completing = msg.completing
		m.now = msg.now
		if m.status == "loading..." || m.status == "reloading..." {
			m.status = "ready"
		}
		m.clampSelection()
		return m, m.flushNotifications()

	case actionMsg:
		cmds := []tea.Cmd{m.flushNotifications()}
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			m.logger.Warn("dashboard action failed", "err", msg.err)
		} else if msg.status != "" {
			m.status = msg.status
		}
		if msg.reload {
			cmds = append(cmds, m.loadData)
		}
		return m, tea.Batch(cmds...)

	case completionDueMsg:
		return m, tea.Batch(m.fireCompletion(msg.jobID), m.waitForJob())

	case jobsClosedMsg:
		m.jobs = nil
		return m, nil

	case prefsMsg:
		if msg.err != nil {
			m.status = "preferences not saved: " + msg.err.Error()
			return m, m.pushToast(app.Notification{Kind: app.NotifyError, Title: "Could not save preferences", Description: msg.err.Error()})
		}
		m.ui = msg.state
		m.clampSelection()
		return m, nil

	case toastExpiredMsg:
		m.dismissToast(msg.id)
		return m, nil

	case createdMsg:
		return m.handleCreated(msg)

	case savedMsg:
		return m.handleSaved(msg)

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	tasks, err := m.svc.ListTasks(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	stats, err := m.svc.Stats(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	completing := map[string]struct{}{}
	if m.completion != nil {
		completing = m.completion.CompletingIDs()
	}
	return loadedMsg{tasks: tasks, stats: stats, completing: completing, now: m.svc.Now()}
}

// waitForJob blocks on the scheduler channel and returns the next fired job.
func (m Model) waitForJob() tea.Cmd {
	if m.jobs == nil {
		return nil
	}
	jobs := m.jobs
	return func() tea.Msg {
		jobID, ok := <-jobs
		if !ok {
			return jobsClosedMsg{}
		}
		return completionDueMsg{jobID: jobID}
	}
}

// fireCompletion commits a scheduled completion. Stale jobs reload silently.
func (m Model) fireCompletion(jobID string) tea.Cmd {
	if m.completion == nil {
		return nil
	}
	completion := m.completion
	return func() tea.Msg {
		task, err := completion.Fire(context.Background(), jobID)
		if errors.Is(err, app.ErrNoPendingCompletion) {
			return actionMsg{reload: true}
		}
		if err != nil {
			return actionMsg{err: err, reload: true}
		}
		return actionMsg{status: "completed " + task.Title, reload: true}
	}
}

// toggleSelected flips completion on the selected task.
func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	if m.completion == nil {
		m.status = "completion unavailable"
		return m, nil
	}
	completion := m.completion
	taskID, title := task.ID, task.Title
	return m, func() tea.Msg {
		outcome, err := completion.Toggle(context.Background(), taskID)
		if err != nil {
			return actionMsg{err: err, reload: true}
		}
		switch outcome {
		case app.OutcomeCompleting:
			return actionMsg{status: "completing " + title, reload: true}
		case app.OutcomeCancelled:
			return actionMsg{status: "completion cancelled", reload: true}
		default:
			return actionMsg{status: "reopened " + title, reload: true}
		}
	}
}

// runToastAction runs the newest toast action, such as UNDO, and dismisses its toast.
func (m Model) runToastAction() (tea.Model, tea.Cmd) {
	t, ok := m.latestActionToast()
	if !ok {
		m.status = "nothing to undo"
		return m, nil
	}
	m.dismissToast(t.id)
	action := t.note.Action
	return m, func() tea.Msg {
		if err := action.Run(context.Background()); err != nil {
			return actionMsg{err: err, reload: true}
		}
		return actionMsg{status: strings.ToLower(action.Label) + " applied", reload: true}
	}
}

// copySelected writes a one-line summary of the selected task to the clipboard.
func (m Model) copySelected() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	if err := m.copy(taskSummary(task)); err != nil {
		m.status = "copy failed: " + err.Error()
		return m, nil
	}
	m.status = "copied " + task.Title
	return m, nil
}

// taskSummary renders task as plain text.
func taskSummary(task domain.Task) string {
	parts := []string{task.Title, "[" + string(task.Priority) + "]", task.Status.Label()}
	if task.DueDate != "" {
		due := "due " + task.DueDate
		if task.DueTime != "" {
			due += " " + domain.FormatClock(task.DueTime)
		}
		parts = append(parts, due)
	}
	return strings.Join(parts, " ")
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		if m.completion != nil {
			m.completion.Close()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
			return m, nil
		}
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.status = "search cleared"
			m.clampSelection()
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.nextPage):
		return m.setPage(pages[(int(m.page)+1)%len(pages)]), nil
	case key.Matches(msg, m.keys.overview):
		return m.setPage(pageOverview), nil
	case key.Matches(msg, m.keys.today):
		return m.setPage(pageToday), nil
	case key.Matches(msg, m.keys.tasks):
		return m.setPage(pageTasks), nil
	case key.Matches(msg, m.keys.moveLeft):
		if m.kanbanActive() && m.column > 0 {
			m.column--
			m.row = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.kanbanActive() && m.column < len(m.grouping().Keys)-1 {
			m.column++
			m.row = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.toggleDone):
		return m.toggleSelected()
	case key.Matches(msg, m.keys.openTask):
		return m.openEditor()
	case key.Matches(msg, m.keys.addTask):
		return m.startCreate()
	case key.Matches(msg, m.keys.undo):
		return m.runToastAction()
	case key.Matches(msg, m.keys.copyTask):
		return m.copySelected()
	case key.Matches(msg, m.keys.search):
		return m.startSearch()
	case key.Matches(msg, m.keys.commandPalette):
		return m.startCommandPalette()
	case key.Matches(msg, m.keys.toggleView):
		return m.toggleTaskView()
	case key.Matches(msg, m.keys.toggleSidebar):
		return m.toggleSidebar()
	case key.Matches(msg, m.keys.cycleTheme):
		current, err := theme.ParsePreset(m.ui.ThemePreset)
		if err != nil {
			current = theme.Midnight
		}
		return m.setThemePreset(current.Next())
	case key.Matches(msg, m.keys.cycleColorMode):
		return m.setColorMode(m.ui.ColorMode.Next())
	default:
		return m, nil
	}
}

// handleInputModeKey routes keys to the active overlay.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeCommandPalette:
		return m.handleCommandKey(msg)
	case modeCreate:
		return m.handleCreateKey(msg)
	case modeEditor:
		return m.handleEditorKey(msg)
	default:
		m.mode = modeNone
		return m, nil
	}
}

// setPage switches the visible page and resets the cursor.
func (m Model) setPage(p page) Model {
	m.page = p
	m.cursor, m.column, m.row = 0, 0, 0
	m.status = p.label()
	m.clampSelection()
	return m
}

// startSearch focuses the search input on the Tasks page.
func (m Model) startSearch() (tea.Model, tea.Cmd) {
	if m.page != pageTasks {
		m = m.setPage(pageTasks)
	}
	m.mode = modeSearch
	m.searchInput.SetValue(m.searchQuery)
	m.searchInput.CursorEnd()
	return m, m.searchInput.Focus()
}

// handleSearchKey filters live while typing. enter keeps the query, esc clears it.
func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.status = "search cleared"
		m.clampSelection()
		return m, nil
	case "enter":
		m.mode = modeNone
		m.searchInput.Blur()
		m.searchQuery = m.searchInput.Value()
		if m.searchQuery == "" {
			m.status = "ready"
		} else {
			m.status = fmt.Sprintf("filtering %q", m.searchQuery)
		}
		m.clampSelection()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searchQuery = m.searchInput.Value()
	m.cursor, m.column, m.row = 0, 0, 0
	m.clampSelection()
	return m, cmd
}

// startCommandPalette opens the palette.
func (m Model) startCommandPalette() (tea.Model, tea.Cmd) {
	m.mode = modeCommandPalette
	m.commandInput.SetValue("")
	m.commandMatches = filteredCommandItems("")
	m.commandIndex = 0
	return m, m.commandInput.Focus()
}

// handleCommandKey navigates and runs palette commands.
func (m Model) handleCommandKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.commandInput.Blur()
		m.status = "ready"
		return m, nil
	case "up", "ctrl+p":
		m.commandIndex = clamp(m.commandIndex-1, 0, len(m.commandMatches)-1)
		return m, nil
	case "down", "ctrl+n":
		m.commandIndex = clamp(m.commandIndex+1, 0, len(m.commandMatches)-1)
		return m, nil
	case "enter":
		command := m.commandToExecute()
		m.mode = modeNone
		m.commandInput.Blur()
		return m.executeCommand(command)
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.commandMatches = filteredCommandItems(m.commandInput.Value())
	m.commandIndex = 0
	return m, cmd
}

// commandToExecute returns the selected command from the palette state.
func (m Model) commandToExecute() string {
	if len(m.commandMatches) > 0 {
		return m.commandMatches[clamp(m.commandIndex, 0, len(m.commandMatches)-1)].Command
	}
	return strings.TrimSpace(strings.ToLower(m.commandInput.Value()))
}

// executeCommand runs one palette command.
func (m Model) executeCommand(command string) (tea.Model, tea.Cmd) {
	switch {
	case command == "overview":
		return m.setPage(pageOverview), nil
	case command == "today":
		return m.setPage(pageToday), nil
	case command == "tasks":
		return m.setPage(pageTasks), nil
	case command == "new-task":
		return m.startCreate()
	case command == "toggle-view":
		return m.toggleTaskView()
	case command == "toggle-sidebar":
		return m.toggleSidebar()
	case command == "search":
		return m.startSearch()
	case command == "clear-search":
		m.searchQuery = ""
		m.status = "search cleared"
		m.clampSelection()
		return m, nil
	case command == "reload":
		m.status = "reloading..."
		return m, m.loadData
	case command == "quit":
		if m.completion != nil {
			m.completion.Close()
		}
		return m, tea.Quit
	case strings.HasPrefix(command, "mode-"):
		return m.setColorMode(prefs.ColorMode(strings.TrimPrefix(command, "mode-")))
	case strings.HasPrefix(command, "theme-"):
		preset, err := theme.ParsePreset(strings.TrimPrefix(command, "theme-"))
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m.setThemePreset(preset)
	default:
		m.status = fmt.Sprintf("unknown command %q", command)
		return m, nil
	}
}

// toggleTaskView switches between list and kanban layouts.
func (m Model) toggleTaskView() (tea.Model, tea.Cmd) {
	next := m.ui.TaskViewMode.Toggle()
	m.status = string(next) + " view"
	m.cursor, m.column, m.row = 0, 0, 0
	return m.updatePrefs(
		func(ctx context.Context, store PrefsStore) (prefs.UIState, error) {
			return store.SetTaskViewMode(ctx, next)
		},
		func(ui *prefs.UIState) { ui.TaskViewMode = next },
	)
}

// toggleSidebar collapses or expands the sidebar.
func (m Model) toggleSidebar() (tea.Model, tea.Cmd) {
	return m.updatePrefs(
		func(ctx context.Context, store PrefsStore) (prefs.UIState, error) {
			return store.ToggleSidebar(ctx)
		},
		func(ui *prefs.UIState) { ui.SidebarCollapsed = !ui.SidebarCollapsed },
	)
}

// setThemePreset applies a preset.
func (m Model) setThemePreset(preset theme.Preset) (tea.Model, tea.Cmd) {
	m.status = "theme " + preset.Label()
	return m.updatePrefs(
		func(ctx context.Context, store PrefsStore) (prefs.UIState, error) {
			return store.SetThemePreset(ctx, string(preset))
		},
		func(ui *prefs.UIState) { ui.ThemePreset = string(preset) },
	)
}

// setColorMode applies a colour mode.
func (m Model) setColorMode(mode prefs.ColorMode) (tea.Model, tea.Cmd) {
	if !mode.IsValid() {
		m.status = fmt.Sprintf("unknown colour mode %q", mode)
		return m, nil
	}
	m.status = string(mode) + " mode"
	return m.updatePrefs(
		func(ctx context.Context, store PrefsStore) (prefs.UIState, error) {
			return store.SetColorMode(ctx, mode)
		},
		func(ui *prefs.UIState) { ui.ColorMode = mode },
	)
}

// updatePrefs writes through the store when one is wired and edits the in-session state otherwise.
func (m Model) updatePrefs(
	write func(context.Context, PrefsStore) (prefs.UIState, error),
	local func(*prefs.UIState),
) (tea.Model, tea.Cmd) {
	if m.prefs == nil {
		local(&m.ui)
		m.clampSelection()
		return m, nil
	}
	store := m.prefs
	return m, func() tea.Msg {
		state, err := write(context.Background(), store)
		return prefsMsg{state: state, err: err}
	}
}

// kanbanActive reports whether the Tasks page shows columns.
func (m Model) kanbanActive() bool {
	return m.page == pageTasks && m.ui.TaskViewMode == prefs.TaskViewKanban
}

// grouping returns the Tasks page projection.
func (m Model) grouping() app.Grouping {
	return app.GroupByDueDate(m.tasks, m.searchQuery, m.completing)
}

// today returns the reference day used by the Today and Overview pages.
func (m Model) today() time.Time {
	if m.now.IsZero() {
		return time.Now()
	}
	return m.now
}

// selectableTasks returns the tasks the cursor moves over on the current page.
func (m Model) selectableTasks() []domain.Task {
	switch m.page {
	case pageOverview:
		return app.DueToday(m.tasks, m.today(), m.completing)
	case pageToday:
		overdue := app.Overdue(m.tasks, m.today(), m.completing)
		return append(overdue, app.DueToday(m.tasks, m.today(), m.completing)...)
	default:
		grouping := m.grouping()
		if m.ui.TaskViewMode == prefs.TaskViewKanban {
			if len(grouping.Keys) == 0 {
				return nil
			}
			return grouping.Groups[grouping.Keys[clamp(m.column, 0, len(grouping.Keys)-1)]]
		}
		return grouping.Flatten()
	}
}

// selectedTask returns the task under the cursor.
func (m Model) selectedTask() (domain.Task, bool) {
	tasks := m.selectableTasks()
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	if m.kanbanActive() {
		return tasks[clamp(m.row, 0, len(tasks)-1)], true
	}
	return tasks[clamp(m.cursor, 0, len(tasks)-1)], true
}

// selectedDateKey returns the due date group the cursor sits in, or today.
func (m Model) selectedDateKey() string {
	if m.page == pageTasks {
		if task, ok := m.selectedTask(); ok && task.DueDate != "" {
			return task.DueDate
		}
	}
	return domain.DateKey(m.today())
}

// moveSelection moves the cursor by delta.
func (m *Model) moveSelection(delta int) {
	tasks := m.selectableTasks()
	if m.kanbanActive() {
		m.row = clamp(m.row+delta, 0, len(tasks)-1)
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(tasks)-1)
}

// clampSelection keeps cursors inside the visible collection.
func (m *Model) clampSelection() {
	if m.kanbanActive() {
		m.column = clamp(m.column, 0, len(m.grouping().Keys)-1)
		m.row = clamp(m.row, 0, len(m.selectableTasks())-1)
		return
	}
	m.cursor = clamp(m.cursor, 0, len(m.selectableTasks())-1)
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// clamp clamps v into [minV, maxV]; an empty range yields minV.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
