package app

import (
	"time"

	"github.com/evanschultz/acta/internal/domain"
)

// Stats holds the overview counters.
type Stats struct {
	Total         int
	Completed     int
	InProgress    int
	Overdue       int
	DueToday      int
	DoneToday     int
	DailyProgress int
}

// ComputeStats counts tasks by status and derives today's completion percentage.
func ComputeStats(tasks []domain.Task, now time.Time) Stats {
	day := calendarDay(now)
	var stats Stats
	for _, task := range tasks {
		stats.Total++
		switch task.Status {
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusInProgress:
			stats.InProgress++
		}
		if !task.HasDueDate() {
			continue
		}
		due, err := domain.ParseDueDate(task.DueDate)
		if err != nil {
			continue
		}
		switch {
		case due.Equal(day):
			stats.DueToday++
			if task.Completed() {
				stats.DoneToday++
			}
		case due.Before(day) && !task.Completed():
			stats.Overdue++
		}
	}
	if stats.DueToday > 0 {
		stats.DailyProgress = stats.DoneToday * 100 / stats.DueToday
	}
	return stats
}
