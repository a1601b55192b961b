package insights

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fullWindow returns one log per day of the elapsed week before today.
func fullWindow(today time.Time) []time.Time {
	var days []time.Time
	for i := 1; i <= 7; i++ {
		days = append(days, today.AddDate(0, 0, -i))
	}
	return days
}

func TestReportWindow(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("u1", "Dana", "dana@example.com")
	engine := New(store, zap.NewNop())

	rep, err := engine.GenerateWeeklyReport(context.Background(), user, wednesday)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	wantStart := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	if !rep.WeekStart.Equal(wantStart) || !rep.WeekEnd.Equal(wantEnd) {
		t.Fatalf("window = [%v, %v], want [%v, %v]", rep.WeekStart, rep.WeekEnd, wantStart, wantEnd)
	}
	if !strings.Contains(rep.Report, "Week: Jun 05 — Jun 11, 2024") {
		t.Fatalf("report missing date range:\n%s", rep.Report)
	}
}

func TestReportScoring(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("u1", "Dana", "dana@example.com")
	store.addTasks("u1", 6, 4)
	store.addHabit("u1", "h1", "Reading", fullWindow(wednesday)...)
	store.addHabit("u1", "h2", "Running", fullWindow(wednesday)...)
	engine := New(store, zap.NewNop())

	rep, err := engine.GenerateWeeklyReport(context.Background(), user, wednesday)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// task rate 60, habit rate 100, score round(60*0.6 + 100*0.4) = 76
	if rep.Score != 76 {
		t.Fatalf("score = %d, want 76", rep.Score)
	}
	for _, want := range []string{
		"Solid week, Dana!",
		"You completed 6 out of 10 tasks (60%).",
		"You logged 14 out of 14 possible check-ins (100%).",
		"Weekly Score: 76/100",
		"Your best streak is 'Reading' at 7 days",
	} {
		if !strings.Contains(rep.Report, want) {
			t.Fatalf("report missing %q:\n%s", want, rep.Report)
		}
	}
}

func TestReportIdempotent(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("u1", "Dana", "dana@example.com")
	store.addTasks("u1", 3, 1)
	engine := New(store, zap.NewNop())

	first, err := engine.GenerateWeeklyReport(context.Background(), user, wednesday)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	second, err := engine.GenerateWeeklyReport(context.Background(), user, wednesday)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(store.reports) != 1 {
		t.Fatalf("expected exactly one stored report, got %d", len(store.reports))
	}
	if second.ID != first.ID {
		t.Fatalf("regenerate changed identity: %s vs %s", first.ID, second.ID)
	}
	if second.Report != first.Report || second.Score != first.Score {
		t.Fatalf("identical inputs produced different output")
	}
}

func TestReportTiersAndFallbacks(t *testing.T) {
	store := newFakeStore()
	// Name unset: the email local part is the display name.
	user := store.addUser("u1", "", "sam@example.com")
	engine := New(store, zap.NewNop())

	rep, err := engine.GenerateWeeklyReport(context.Background(), user, wednesday)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rep.Score != 0 {
		t.Fatalf("score = %d, want 0", rep.Score)
	}
	if !strings.Contains(rep.Report, "Tough week, sam.") {
		t.Fatalf("expected motivational opening with email local part:\n%s", rep.Report)
	}
	if !strings.Contains(rep.Report, "Start a habit this week to build your first streak.") {
		t.Fatalf("expected no-streak prompt:\n%s", rep.Report)
	}
}

func TestReportTopTier(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("u1", "Dana", "dana@example.com")
	store.addTasks("u1", 5, 0)
	store.addHabit("u1", "h1", "Reading", fullWindow(wednesday)...)
	engine := New(store, zap.NewNop())

	rep, err := engine.GenerateWeeklyReport(context.Background(), user, wednesday)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rep.Score != 100 {
		t.Fatalf("score = %d, want 100", rep.Score)
	}
	if !strings.Contains(rep.Report, "Outstanding week, Dana!") {
		t.Fatalf("expected top-tier opening:\n%s", rep.Report)
	}
}

func TestReportBestStreakTieBreak(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("u1", "Dana", "dana@example.com")
	days := []time.Time{wednesday.AddDate(0, 0, -1), wednesday.AddDate(0, 0, -2)}
	store.addHabit("u1", "h1", "Reading", days...)
	store.addHabit("u1", "h2", "Running", days...)
	engine := New(store, zap.NewNop())

	rep, err := engine.GenerateWeeklyReport(context.Background(), user, wednesday)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(rep.Report, "Your best streak is 'Reading' at 2 days") {
		t.Fatalf("tie should keep the first habit:\n%s", rep.Report)
	}
}

func TestRunWeeklyReportsIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "A", "a@example.com")
	store.addUser("u2", "B", "b@example.com")
	store.addUser("u3", "C", "c@example.com")
	store.addTasks("u1", 1, 0)
	store.addTasks("u3", 2, 0)
	store.failUsers["u2"] = true
	engine := New(store, zap.NewNop())

	processed, err := engine.RunWeeklyReports(context.Background(), wednesday)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if processed != 3 {
		t.Fatalf("processed = %d, want 3", processed)
	}
	weekStart := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	if store.reports[reportKey("u1", weekStart)] == nil {
		t.Fatalf("missing report for u1")
	}
	if store.reports[reportKey("u2", weekStart)] != nil {
		t.Fatalf("failed user should not have a report")
	}
	if store.reports[reportKey("u3", weekStart)] == nil {
		t.Fatalf("missing report for u3")
	}
}
