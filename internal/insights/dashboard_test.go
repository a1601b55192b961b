package insights

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

var wednesday = time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC) // week starts Mon Jun 10

func TestDashboardEmptyUser(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Dana", "dana@example.com")
	engine := New(store, zap.NewNop())

	d, err := engine.Dashboard(context.Background(), "u1", wednesday)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.TotalTasks != 0 || d.TaskCompletionRate != 0 {
		t.Fatalf("expected zero task metrics, got %+v", d)
	}
	if d.TotalHabits != 0 || d.HabitConsistencyRate != 0 {
		t.Fatalf("expected zero habit metrics, got %+v", d)
	}
	if d.ProductivityScore != 0 {
		t.Fatalf("expected score 0, got %d", d.ProductivityScore)
	}
	if len(d.CurrentStreaks) != 0 {
		t.Fatalf("expected no streak entries, got %d", len(d.CurrentStreaks))
	}
}

func TestDashboardAggregation(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Dana", "dana@example.com")
	store.addTasks("u1", 6, 4)
	// Both habits logged Mon through Wed of the current week.
	days := []time.Time{wednesday, wednesday.AddDate(0, 0, -1), wednesday.AddDate(0, 0, -2)}
	store.addHabit("u1", "h1", "Reading", days...)
	store.addHabit("u1", "h2", "Running", days...)
	engine := New(store, zap.NewNop())

	d, err := engine.Dashboard(context.Background(), "u1", wednesday)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.TotalTasks != 10 || d.CompletedTasks != 6 || d.PendingTasks != 4 {
		t.Fatalf("task counts wrong: %+v", d)
	}
	if d.TaskCompletionRate != 60.0 {
		t.Fatalf("task rate = %v, want 60.0", d.TaskCompletionRate)
	}
	// 6 logs out of 2 habits * 7 days = 42.857... rounded to one decimal.
	if d.HabitConsistencyRate != 42.9 {
		t.Fatalf("habit rate = %v, want 42.9", d.HabitConsistencyRate)
	}
	if d.HabitsLoggedToday != 2 {
		t.Fatalf("habits logged today = %d, want 2", d.HabitsLoggedToday)
	}
	// round(60*0.6 + 42.9*0.4) = round(53.16) = 53
	if d.ProductivityScore != 53 {
		t.Fatalf("score = %d, want 53", d.ProductivityScore)
	}
	if len(d.CurrentStreaks) != 2 {
		t.Fatalf("expected 2 streak entries, got %d", len(d.CurrentStreaks))
	}
	if d.CurrentStreaks[0].Name != "Reading" || d.CurrentStreaks[0].Streak != 3 || !d.CurrentStreaks[0].LoggedToday {
		t.Fatalf("first streak entry wrong: %+v", d.CurrentStreaks[0])
	}
}

func TestDashboardScoreStaysInBounds(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Dana", "dana@example.com")
	store.addTasks("u1", 5, 0)
	weekStart := wednesday.AddDate(0, 0, -2)
	var full []time.Time
	for i := 0; i < 7; i++ {
		full = append(full, weekStart.AddDate(0, 0, i))
	}
	store.addHabit("u1", "h1", "Reading", full...)
	engine := New(store, zap.NewNop())

	d, err := engine.Dashboard(context.Background(), "u1", wednesday)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.ProductivityScore < 0 || d.ProductivityScore > 100 {
		t.Fatalf("score out of bounds: %d", d.ProductivityScore)
	}
	if d.ProductivityScore != 100 {
		t.Fatalf("score = %d, want 100", d.ProductivityScore)
	}
}
