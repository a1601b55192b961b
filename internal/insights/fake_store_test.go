package insights

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ananta12-d/lifeos/internal/models"
)

// fakeStore is an in-memory gateway for engine tests. Completed logs are
// served newest-first, matching the real repository's query contract.
type fakeStore struct {
	users     []models.User
	tasks     map[string][]models.Task
	habits    map[string][]models.Habit
	logs      map[string][]models.HabitLog
	reports   map[string]*models.WeeklyReport
	failUsers map[string]bool
	upserts   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:     make(map[string][]models.Task),
		habits:    make(map[string][]models.Habit),
		logs:      make(map[string][]models.HabitLog),
		reports:   make(map[string]*models.WeeklyReport),
		failUsers: make(map[string]bool),
	}
}

func (f *fakeStore) addUser(id, name, email string) models.User {
	u := models.User{ID: id, Name: name, Email: email}
	f.users = append(f.users, u)
	return u
}

func (f *fakeStore) addTasks(userID string, completed, pending int) {
	for i := 0; i < completed; i++ {
		f.tasks[userID] = append(f.tasks[userID], models.Task{ID: fmt.Sprintf("%s-tc%d", userID, i), UserID: userID, Status: models.TaskCompleted})
	}
	for i := 0; i < pending; i++ {
		f.tasks[userID] = append(f.tasks[userID], models.Task{ID: fmt.Sprintf("%s-tp%d", userID, i), UserID: userID, Status: models.TaskPending})
	}
}

func (f *fakeStore) addHabit(userID, habitID, name string, days ...time.Time) {
	f.habits[userID] = append(f.habits[userID], models.Habit{ID: habitID, UserID: userID, Name: name})
	for _, d := range days {
		f.logs[habitID] = append(f.logs[habitID], models.HabitLog{HabitID: habitID, LogDate: d, Completed: true})
	}
	sort.Slice(f.logs[habitID], func(i, j int) bool {
		return f.logs[habitID][i].LogDate.After(f.logs[habitID][j].LogDate)
	})
}

func reportKey(userID string, weekStart time.Time) string {
	return userID + "|" + weekStart.Format("2006-01-02")
}

func (f *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeStore) ListActiveTasks(_ context.Context, userID string) ([]models.Task, error) {
	if f.failUsers[userID] {
		return nil, errors.New("storage unavailable")
	}
	return f.tasks[userID], nil
}

func (f *fakeStore) ListActiveHabits(_ context.Context, userID string) ([]models.Habit, error) {
	return f.habits[userID], nil
}

func (f *fakeStore) ListCompletedLogs(_ context.Context, habitID string) ([]models.HabitLog, error) {
	return f.logs[habitID], nil
}

func (f *fakeStore) CountCompletedLogsInRange(_ context.Context, userID string, start, end time.Time) (int, error) {
	count := 0
	for _, h := range f.habits[userID] {
		for _, l := range f.logs[h.ID] {
			if !l.LogDate.Before(start) && !l.LogDate.After(end) {
				count++
			}
		}
	}
	return count, nil
}

func (f *fakeStore) FindReport(_ context.Context, userID string, weekStart time.Time) (*models.WeeklyReport, error) {
	rep, ok := f.reports[reportKey(userID, weekStart)]
	if !ok {
		return nil, nil
	}
	copied := *rep
	return &copied, nil
}

func (f *fakeStore) UpsertReport(_ context.Context, rep *models.WeeklyReport) error {
	f.upserts++
	key := reportKey(rep.UserID, rep.WeekStart)
	if existing, ok := f.reports[key]; ok {
		rep.ID = existing.ID
		rep.CreatedAt = existing.CreatedAt
	} else {
		rep.ID = fmt.Sprintf("rep-%d", len(f.reports)+1)
		rep.CreatedAt = time.Now()
	}
	copied := *rep
	f.reports[key] = &copied
	return nil
}
