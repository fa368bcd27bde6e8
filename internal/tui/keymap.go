package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// KeyConfig overrides the remappable bindings. Blank fields keep defaults.
type KeyConfig struct {
	CommandPalette string
	Undo           string
	Search         string
}

// keyMap represents key map data used by this package.
type keyMap struct {
	quit           key.Binding
	reload         key.Binding
	toggleHelp     key.Binding
	moveLeft       key.Binding
	moveRight      key.Binding
	moveUp         key.Binding
	moveDown       key.Binding
	nextPage       key.Binding
	overview       key.Binding
	today          key.Binding
	tasks          key.Binding
	toggleDone     key.Binding
	openTask       key.Binding
	addTask        key.Binding
	toggleView     key.Binding
	toggleSidebar  key.Binding
	cycleTheme     key.Binding
	cycleColorMode key.Binding
	commandPalette key.Binding
	search         key.Binding
	undo           key.Binding
	copyTask       key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		nextPage:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
		overview:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview")),
		today:          key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "today")),
		tasks:          key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "tasks")),
		toggleDone:     key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle done")),
		openTask:       key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "open task")),
		addTask:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		toggleView:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "list/kanban")),
		toggleSidebar:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "sidebar")),
		cycleTheme:     key.NewBinding(key.WithKeys("T", "shift+t"), key.WithHelp("T", "next theme")),
		cycleColorMode: key.NewBinding(key.WithKeys("C", "shift+c"), key.WithHelp("C", "color mode")),
		commandPalette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command palette")),
		search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		undo:           key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		copyTask:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
	}
}

// applyConfig rebinds the remappable keys.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.commandPalette, cfg.CommandPalette, ":", "command palette")
	configureBinding(&k.undo, cfg.Undo, "u", "undo")
	configureBinding(&k.search, cfg.Search, "/", "search")
}

// configureBinding replaces a binding's keys and help text from a config value.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns a configured key into matcher keys plus its help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	if strings.EqualFold(raw, "space") {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if unicode.IsUpper(r) {
			return []string{raw, "shift+" + string(unicode.ToLower(r))}, raw
		}
		return []string{raw}, raw
	}
	return []string{strings.ToLower(raw)}, raw
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.nextPage, k.toggleDone, k.openTask, k.addTask, k.toggleView, k.search, k.commandPalette, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.overview, k.today, k.tasks, k.nextPage, k.toggleSidebar, k.commandPalette, k.search, k.toggleHelp, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.toggleDone, k.openTask, k.addTask, k.toggleView, k.undo, k.copyTask},
		{k.cycleTheme, k.cycleColorMode},
	}
}
