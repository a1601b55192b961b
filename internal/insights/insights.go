// Package insights derives metrics from a user's tasks and habits: current
// streaks, the dashboard aggregate, and the persisted weekly report.
// Functions here never read the clock; "today" is always a parameter.
package insights

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ananta12-d/lifeos/internal/models"
)

// Store is the slice of the persistence gateway the engine reads from and
// writes reports to. Soft-deleted records are already filtered out by the
// implementation.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListActiveTasks(ctx context.Context, userID string) ([]models.Task, error)
	ListActiveHabits(ctx context.Context, userID string) ([]models.Habit, error)
	ListCompletedLogs(ctx context.Context, habitID string) ([]models.HabitLog, error)
	CountCompletedLogsInRange(ctx context.Context, userID string, start, end time.Time) (int, error)
	FindReport(ctx context.Context, userID string, weekStart time.Time) (*models.WeeklyReport, error)
	UpsertReport(ctx context.Context, rep *models.WeeklyReport) error
}

type Engine struct {
	Store Store
	Log   *zap.Logger
}

func New(store Store, logger *zap.Logger) *Engine {
	return &Engine{Store: store, Log: logger}
}

// dateOnly truncates t to its calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// startOfWeek returns the most recent Monday on or before day.
func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
