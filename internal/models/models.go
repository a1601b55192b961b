package models

import "time"

// Task status values.
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"-"`
}

type Habit struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	TargetType string     `json:"target_type"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"-"`
}

// HabitLog is one check-in for a habit on a calendar date. At most one log
// exists per (habit, date); logging the same date again overwrites it.
type HabitLog struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	LogDate   time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

// HabitStatus is a habit enriched with its derived streak state.
type HabitStatus struct {
	Habit
	CurrentStreak int  `json:"current_streak"`
	IsLoggedToday bool `json:"is_logged_today"`
}

// StreakSummary is the per-habit entry on the dashboard.
type StreakSummary struct {
	Name        string `json:"name"`
	Streak      int    `json:"streak"`
	LoggedToday bool   `json:"logged_today"`
}

// Dashboard is a point-in-time view of one user's tasks and habits.
type Dashboard struct {
	TotalTasks           int             `json:"total_tasks"`
	CompletedTasks       int             `json:"completed_tasks"`
	PendingTasks         int             `json:"pending_tasks"`
	TaskCompletionRate   float64         `json:"task_completion_rate"`
	TotalHabits          int             `json:"total_habits"`
	HabitsLoggedToday    int             `json:"habits_logged_today"`
	HabitConsistencyRate float64         `json:"habit_consistency_rate"`
	ProductivityScore    int             `json:"productivity_score"`
	CurrentStreaks       []StreakSummary `json:"current_streaks"`
}

// WeeklyReport is the persisted narrative summary of one fully elapsed
// Monday-Sunday week. WeekEnd is always WeekStart plus six days.
type WeeklyReport struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
	Report    string    `json:"report"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
