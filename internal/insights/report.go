package insights

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ananta12-d/lifeos/internal/models"
)

// GenerateWeeklyReport summarizes the most recently completed Monday-Sunday
// window for one user and persists it. The window always ends yesterday, so
// a report never covers a week still in progress. Regenerating the same week
// overwrites the stored text and score instead of adding a row.
func (e *Engine) GenerateWeeklyReport(ctx context.Context, user models.User, today time.Time) (models.WeeklyReport, error) {
	today = dateOnly(today)
	weekEnd := today.AddDate(0, 0, -1)
	weekStart := weekEnd.AddDate(0, 0, -6)

	tasks, err := e.Store.ListActiveTasks(ctx, user.ID)
	if err != nil {
		return models.WeeklyReport{}, err
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == models.TaskCompleted {
			completed++
		}
	}
	taskRate := 0
	if len(tasks) > 0 {
		taskRate = int(math.Round(float64(completed) / float64(len(tasks)) * 100))
	}

	habits, err := e.Store.ListActiveHabits(ctx, user.ID)
	if err != nil {
		return models.WeeklyReport{}, err
	}
	logsThisWeek, err := e.Store.CountCompletedLogsInRange(ctx, user.ID, weekStart, weekEnd)
	if err != nil {
		return models.WeeklyReport{}, err
	}
	possibleLogs := len(habits) * 7
	habitRate := 0
	if possibleLogs > 0 {
		habitRate = int(math.Round(float64(logsThisWeek) / float64(possibleLogs) * 100))
	}
	weeklyScore := int(math.Round(float64(taskRate)*0.6 + float64(habitRate)*0.4))

	// Best-performing habit by streak; first habit wins ties. Habits arrive
	// ordered by creation time, so the winner is deterministic.
	bestHabit := ""
	bestStreak := 0
	for _, h := range habits {
		logs, err := e.Store.ListCompletedLogs(ctx, h.ID)
		if err != nil {
			return models.WeeklyReport{}, err
		}
		length, _ := Streak(logs, today)
		if length > bestStreak {
			bestStreak = length
			bestHabit = h.Name
		}
	}

	text := reportText(displayName(user), weeklyScore, completed, len(tasks), taskRate,
		logsThisWeek, possibleLogs, habitRate, bestHabit, bestStreak, weekStart, weekEnd)

	rep := models.WeeklyReport{
		UserID:    user.ID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Report:    text,
		Score:     weeklyScore,
	}
	existing, err := e.Store.FindReport(ctx, user.ID, weekStart)
	if err != nil {
		return models.WeeklyReport{}, err
	}
	if existing != nil {
		rep.ID = existing.ID
		rep.CreatedAt = existing.CreatedAt
	}
	if err := e.Store.UpsertReport(ctx, &rep); err != nil {
		return models.WeeklyReport{}, err
	}
	return rep, nil
}

// RunWeeklyReports generates a report for every user. A failure for one user
// is logged and skipped; the batch always finishes. The returned count is the
// number of users iterated, including failed ones.
func (e *Engine) RunWeeklyReports(ctx context.Context, today time.Time) (int, error) {
	users, err := e.Store.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	log := e.Log.With(zap.String("run_id", uuid.NewString()))
	log.Info("generating weekly reports", zap.Int("users", len(users)))
	for _, u := range users {
		rep, err := e.GenerateWeeklyReport(ctx, u, today)
		if err != nil {
			log.Error("weekly report failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		log.Info("weekly report generated", zap.String("user_id", u.ID), zap.Int("score", rep.Score))
	}
	log.Info("weekly reports done", zap.Int("users_processed", len(users)))
	return len(users), nil
}

// displayName falls back to the local part of the email when the user never
// set a name.
func displayName(u models.User) string {
	if u.Name != "" {
		return u.Name
	}
	name, _, _ := strings.Cut(u.Email, "@")
	return name
}

func reportText(name string, score, completedTasks, totalTasks, taskRate, logs, possibleLogs, habitRate int, bestHabit string, bestStreak int, weekStart, weekEnd time.Time) string {
	var opening string
	switch {
	case score >= 80:
		opening = fmt.Sprintf("Outstanding week, %s! You were firing on all cylinders.", name)
	case score >= 60:
		opening = fmt.Sprintf("Solid week, %s! You made real progress.", name)
	case score >= 40:
		opening = fmt.Sprintf("Decent effort this week, %s. There's room to push harder.", name)
	default:
		opening = fmt.Sprintf("Tough week, %s. Every week is a fresh start — let's go.", name)
	}

	streakLine := "Start a habit this week to build your first streak."
	if bestHabit != "" {
		streakLine = fmt.Sprintf("Your best streak is '%s' at %d days — keep it going!", bestHabit, bestStreak)
	}

	return fmt.Sprintf("%s\n\n"+
		"Tasks: You completed %d out of %d tasks (%d%%).\n"+
		"Habits: You logged %d out of %d possible check-ins (%d%%).\n"+
		"Weekly Score: %d/100\n\n"+
		"%s\n\n"+
		"Week: %s — %s",
		opening,
		completedTasks, totalTasks, taskRate,
		logs, possibleLogs, habitRate,
		score,
		streakLine,
		weekStart.Format("Jan 02"), weekEnd.Format("Jan 02, 2006"))
}
