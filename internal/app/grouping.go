package app

import (
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/acta/internal/domain"
)

// View identifies which screen a task list is rendered for.
type View int

const (
	// ViewTasks is the full task list or kanban board. Completed tasks stay visible.
	ViewTasks View = iota
	// ViewToday is the dashboard due-today list. Completed tasks drop out once settled.
	ViewToday
)

// Grouping is the date-keyed projection rendered as list sections or kanban columns.
type Grouping struct {
	Keys   []string
	Groups map[string][]domain.Task
}

// Len returns the number of tasks across all groups.
func (g Grouping) Len() int {
	total := 0
	for _, key := range g.Keys {
		total += len(g.Groups[key])
	}
	return total
}

// Flatten returns every grouped task in display order.
func (g Grouping) Flatten() []domain.Task {
	out := make([]domain.Task, 0, g.Len())
	for _, key := range g.Keys {
		out = append(out, g.Groups[key]...)
	}
	return out
}

// FilterTasks keeps tasks whose title contains search (case-insensitive) and that are not completing.
func FilterTasks(tasks []domain.Task, search string, completing map[string]struct{}) []domain.Task {
	needle := strings.ToLower(search)
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := completing[task.ID]; ok {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(task.Title), needle) {
			continue
		}
		out = append(out, task)
	}
	return out
}

// GroupByDueDate filters tasks and groups them by their verbatim due-date key.
// Keys are ordered by calendar date; keys that do not parse as dates sort last.
// Each group is ordered by due time, untimed tasks last, keeping collection order on ties.
func GroupByDueDate(tasks []domain.Task, search string, completing map[string]struct{}) Grouping {
	grouping := Grouping{Groups: map[string][]domain.Task{}}
	for _, task := range FilterTasks(tasks, search, completing) {
		if !task.HasDueDate() {
			continue
		}
		key := task.DueDate
		if _, ok := grouping.Groups[key]; !ok {
			grouping.Keys = append(grouping.Keys, key)
		}
		grouping.Groups[key] = append(grouping.Groups[key], task)
	}
	SortDateKeys(grouping.Keys)
	for _, key := range grouping.Keys {
		slices.SortStableFunc(grouping.Groups[key], compareDueTime)
	}
	return grouping
}

// compareDueTime orders by minutes past midnight. Empty or unparseable times sort after timed tasks.
func compareDueTime(a, b domain.Task) int {
	ma, errA := domain.ParseClock(a.DueTime)
	mb, errB := domain.ParseClock(b.DueTime)
	switch {
	case errA == nil && errB == nil:
		return ma - mb
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return 0
	}
}

// SortDateKeys orders due-date keys chronologically in place.
func SortDateKeys(keys []string) {
	parsed := make(map[string]time.Time, len(keys))
	for _, key := range keys {
		if day, err := domain.ParseDueDate(key); err == nil {
			parsed[key] = day
		}
	}
	slices.SortStableFunc(keys, func(a, b string) int {
		da, okA := parsed[a]
		db, okB := parsed[b]
		switch {
		case okA && okB:
			if c := da.Compare(db); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}

// VisibleIn applies the per-view rule for tasks that are not mid-completion.
func VisibleIn(view View, task domain.Task, completing map[string]struct{}) bool {
	if _, ok := completing[task.ID]; ok {
		return false
	}
	if view == ViewToday && task.Completed() {
		return false
	}
	return true
}

// DueToday returns open tasks due on the calendar day of today.
func DueToday(tasks []domain.Task, today time.Time, completing map[string]struct{}) []domain.Task {
	day := calendarDay(today)
	return selectOpen(tasks, completing, func(due time.Time) bool { return due.Equal(day) })
}

// Overdue returns open tasks due before the calendar day of today.
func Overdue(tasks []domain.Task, today time.Time, completing map[string]struct{}) []domain.Task {
	day := calendarDay(today)
	return selectOpen(tasks, completing, func(due time.Time) bool { return due.Before(day) })
}

func selectOpen(tasks []domain.Task, completing map[string]struct{}, match func(time.Time) bool) []domain.Task {
	out := make([]domain.Task, 0)
	for _, task := range tasks {
		if !VisibleIn(ViewToday, task, completing) || !task.HasDueDate() {
			continue
		}
		due, err := domain.ParseDueDate(task.DueDate)
		if err != nil {
			continue
		}
		if match(due) {
			out = append(out, task)
		}
	}
	return out
}

// calendarDay truncates t to its local calendar date expressed at UTC midnight, matching ParseDueDate.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
