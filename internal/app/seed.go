package app

import "github.com/evanschultz/acta/internal/domain"

// SeedTasks returns the demo board loaded at startup in place of a backend fetch.
func SeedTasks() []domain.Task {
	return []domain.Task{
		{ID: "1", Title: "Design system update", Description: "Update colors and typography", Priority: domain.PriorityHigh, Status: domain.StatusInProgress, CreatedAt: "2024-12-20", DueDate: "2026-01-04", DueTime: "14:00"},
		{ID: "2", Title: "API integration", Description: "Connect to Django backend", Priority: domain.PriorityHigh, Status: domain.StatusTodo, CreatedAt: "2024-12-21", DueDate: "2026-01-04", DueTime: "10:00"},
		{ID: "3", Title: "Write unit tests", Description: "Cover main components", Priority: domain.PriorityMedium, Status: domain.StatusTodo, CreatedAt: "2024-12-22", DueDate: "2026-01-05", DueTime: "16:30"},
		{ID: "4", Title: "Documentation", Description: "Update README file", Priority: domain.PriorityLow, Status: domain.StatusCompleted, CreatedAt: "2024-12-18", DueDate: "2026-01-05", DueTime: "09:00"},
		{ID: "5", Title: "Code review session", Description: "Review pull requests", Priority: domain.PriorityMedium, Status: domain.StatusTodo, CreatedAt: "2024-12-23", DueDate: "2026-01-05", DueTime: "11:00"},
		{ID: "6", Title: "Bug fixes", Description: "Fix login issues", Priority: domain.PriorityHigh, Status: domain.StatusTodo, CreatedAt: "2024-12-24", DueDate: "2026-01-05", DueTime: "15:00"},
		{ID: "7", Title: "Team standup", Description: "Daily sync meeting", Priority: domain.PriorityLow, Status: domain.StatusTodo, CreatedAt: "2024-12-24", DueDate: "2026-01-05", DueTime: "09:30"},
		{ID: "8", Title: "Performance optimization", Description: "Reduce bundle size", Priority: domain.PriorityMedium, Status: domain.StatusInProgress, CreatedAt: "2024-12-23", DueDate: "2026-01-06", DueTime: "11:00"},
		{ID: "9", Title: "Database migration", Description: "Migrate to new schema", Priority: domain.PriorityHigh, Status: domain.StatusTodo, CreatedAt: "2024-12-24", DueDate: "2026-01-06", DueTime: "15:00"},
		{ID: "10", Title: "User feedback review", Description: "Analyze survey results", Priority: domain.PriorityMedium, Status: domain.StatusTodo, CreatedAt: "2024-12-25", DueDate: "2026-01-07", DueTime: "10:00"},
		{ID: "11", Title: "Design mockups", Description: "Create new landing page", Priority: domain.PriorityHigh, Status: domain.StatusTodo, CreatedAt: "2024-12-25", DueDate: "2026-01-07", DueTime: "14:00"},
		{ID: "12", Title: "Client meeting", Description: "Project status update", Priority: domain.PriorityHigh, Status: domain.StatusTodo, CreatedAt: "2024-12-25", DueDate: "2026-01-07", DueTime: "16:00"},
		{ID: "13", Title: "Security audit", Description: "Review auth flow", Priority: domain.PriorityHigh, Status: domain.StatusTodo, CreatedAt: "2024-12-26", DueDate: "2026-01-08", DueTime: "09:00"},
		{ID: "14", Title: "Feature planning", Description: "Q1 roadmap review", Priority: domain.PriorityMedium, Status: domain.StatusTodo, CreatedAt: "2024-12-26", DueDate: "2026-01-08", DueTime: "11:00"},
		{ID: "15", Title: "API documentation", Description: "Update Swagger docs", Priority: domain.PriorityLow, Status: domain.StatusTodo, CreatedAt: "2024-12-26", DueDate: "2026-01-08", DueTime: "14:00"},
		{ID: "16", Title: "Testing session", Description: "E2E testing", Priority: domain.PriorityMedium, Status: domain.StatusTodo, CreatedAt: "2024-12-26", DueDate: "2026-01-08", DueTime: "16:00"},
		{ID: "17", Title: "Deployment prep", Description: "Staging environment", Priority: domain.PriorityHigh, Status: domain.StatusTodo, CreatedAt: "2024-12-26", DueDate: "2026-01-08", DueTime: "17:00"},
		{ID: "18", Title: "Sprint retrospective", Description: "Team feedback session", Priority: domain.PriorityMedium, Status: domain.StatusTodo, CreatedAt: "2024-12-27", DueDate: "2026-01-09", DueTime: "10:00"},
		{ID: "19", Title: "Infrastructure review", Description: "AWS cost optimization", Priority: domain.PriorityLow, Status: domain.StatusTodo, CreatedAt: "2024-12-27", DueDate: "2026-01-09", DueTime: "14:00"},
		{ID: "20", Title: "Release preparation", Description: "Version 2.0 release", Priority: domain.PriorityHigh, Status: domain.StatusTodo, CreatedAt: "2024-12-28", DueDate: "2026-01-10", DueTime: "09:00"},
		{ID: "21", Title: "Marketing sync", Description: "Launch campaign review", Priority: domain.PriorityMedium, Status: domain.StatusTodo, CreatedAt: "2024-12-28", DueDate: "2026-01-10", DueTime: "11:00"},
		{ID: "22", Title: "Training session", Description: "New feature onboarding", Priority: domain.PriorityLow, Status: domain.StatusTodo, CreatedAt: "2024-12-28", DueDate: "2026-01-10", DueTime: "15:00"},
		{ID: "23", Title: "Weekend monitoring", Description: "Check system health", Priority: domain.PriorityLow, Status: domain.StatusTodo, CreatedAt: "2024-12-29", DueDate: "2026-01-11", DueTime: "10:00"},
		{ID: "24", Title: "Backup verification", Description: "Verify backup integrity", Priority: domain.PriorityMedium, Status: domain.StatusTodo, CreatedAt: "2024-12-29", DueDate: "2026-01-11", DueTime: "12:00"},
	}
}
