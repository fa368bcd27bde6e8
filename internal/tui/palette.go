package tui

import (
	"slices"
	"strings"

	"github.com/evanschultz/acta/internal/prefs"
	"github.com/evanschultz/acta/internal/theme"
)

// commandItem describes one command palette entry.
type commandItem struct {
	Command     string
	Aliases     []string
	Description string
}

// commandPaletteItems returns every palette command in display order.
func commandPaletteItems() []commandItem {
	items := []commandItem{
		{Command: "overview", Aliases: []string{"dashboard", "home"}, Description: "go to overview"},
		{Command: "today", Aliases: []string{"due"}, Description: "go to due-today list"},
		{Command: "tasks", Aliases: []string{"all"}, Description: "go to task list"},
		{Command: "new-task", Aliases: []string{"create", "add"}, Description: "create a task"},
		{Command: "toggle-view", Aliases: []string{"kanban", "list"}, Description: "switch list and kanban"},
		{Command: "toggle-sidebar", Aliases: []string{"sidebar"}, Description: "collapse or expand sidebar"},
		{Command: "search", Aliases: []string{"find"}, Description: "filter tasks by title"},
		{Command: "clear-search", Aliases: []string{"reset"}, Description: "clear task filter"},
		{Command: "reload", Aliases: []string{"refresh"}, Description: "reload tasks"},
	}
	for _, mode := range []prefs.ColorMode{prefs.ColorModeLight, prefs.ColorModeDark, prefs.ColorModeSystem} {
		items = append(items, commandItem{
			Command:     "mode-" + string(mode),
			Aliases:     []string{string(mode)},
			Description: "use " + string(mode) + " colour mode",
		})
	}
	for _, preset := range theme.Presets() {
		items = append(items, commandItem{
			Command:     "theme-" + string(preset),
			Aliases:     []string{preset.Label()},
			Description: "apply " + preset.Label() + " theme",
		})
	}
	return append(items, commandItem{Command: "quit", Aliases: []string{"exit"}, Description: "quit"})
}

// filteredCommandItems ranks palette commands against query.
func filteredCommandItems(query string) []commandItem {
	items := commandPaletteItems()
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	type scored struct {
		item  commandItem
		score int
		order int
	}
	matches := make([]scored, 0, len(items))
	for idx, item := range items {
		best, ok := fuzzyScore(query, item.Command)
		for _, alias := range item.Aliases {
			if score, match := fuzzyScore(query, alias); match && (!ok || score > best) {
				best, ok = score, true
			}
		}
		if ok {
			matches = append(matches, scored{item: item, score: best, order: idx})
		}
	}
	slices.SortStableFunc(matches, func(a, b scored) int {
		if a.score != b.score {
			return b.score - a.score
		}
		return a.order - b.order
	})
	out := make([]commandItem, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.item)
	}
	return out
}

// fuzzyScore returns a deterministic fuzzy score where higher is better.
func fuzzyScore(query, candidate string) (int, bool) {
	query = strings.TrimSpace(strings.ToLower(query))
	candidate = strings.TrimSpace(strings.ToLower(candidate))
	if query == "" {
		return 0, true
	}
	if candidate == "" {
		return 0, false
	}

	// Exact, prefix and substring hits outrank subsequence matches.
	if query == candidate {
		return 6000, true
	}
	if strings.HasPrefix(candidate, query) {
		return 5000 - len(candidate), true
	}
	if idx := strings.Index(candidate, query); idx >= 0 {
		return 4200 - idx, true
	}

	q := []rune(query)
	c := []rune(candidate)
	qi := 0
	score := 3000
	last := -1
	for ci, r := range c {
		if qi >= len(q) {
			break
		}
		if r != q[qi] {
			continue
		}
		if last < 0 {
			score -= ci
		} else {
			score -= (ci - last - 1) * 3
		}
		last = ci
		qi++
	}
	if qi != len(q) {
		return 0, false
	}
	score -= len(c) - len(q)
	return score, true
}
