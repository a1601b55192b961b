package insights

import (
	"context"
	"math"
	"time"

	"github.com/ananta12-d/lifeos/internal/models"
)

// Dashboard aggregates one user's tasks and habits into point-in-time
// metrics. Zero totals yield zero rates rather than errors.
func (e *Engine) Dashboard(ctx context.Context, userID string, today time.Time) (models.Dashboard, error) {
	today = dateOnly(today)

	tasks, err := e.Store.ListActiveTasks(ctx, userID)
	if err != nil {
		return models.Dashboard{}, err
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == models.TaskCompleted {
			completed++
		}
	}
	taskRate := 0.0
	if len(tasks) > 0 {
		taskRate = round1(float64(completed) / float64(len(tasks)) * 100)
	}

	habits, err := e.Store.ListActiveHabits(ctx, userID)
	if err != nil {
		return models.Dashboard{}, err
	}
	loggedToday := 0
	streaks := make([]models.StreakSummary, 0, len(habits))
	for _, h := range habits {
		logs, err := e.Store.ListCompletedLogs(ctx, h.ID)
		if err != nil {
			return models.Dashboard{}, err
		}
		length, isToday := Streak(logs, today)
		if isToday {
			loggedToday++
		}
		streaks = append(streaks, models.StreakSummary{Name: h.Name, Streak: length, LoggedToday: isToday})
	}

	habitRate := 0.0
	if len(habits) > 0 {
		weekStart := startOfWeek(today)
		logsThisWeek, err := e.Store.CountCompletedLogsInRange(ctx, userID, weekStart, weekStart.AddDate(0, 0, 6))
		if err != nil {
			return models.Dashboard{}, err
		}
		habitRate = round1(float64(logsThisWeek) / float64(len(habits)*7) * 100)
	}

	return models.Dashboard{
		TotalTasks:           len(tasks),
		CompletedTasks:       completed,
		PendingTasks:         len(tasks) - completed,
		TaskCompletionRate:   taskRate,
		TotalHabits:          len(habits),
		HabitsLoggedToday:    loggedToday,
		HabitConsistencyRate: habitRate,
		ProductivityScore:    score(taskRate, habitRate),
		CurrentStreaks:       streaks,
	}, nil
}

// score blends the two rates, 60% tasks and 40% habits.
func score(taskRate, habitRate float64) int {
	return int(math.Round(taskRate*0.6 + habitRate*0.4))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
