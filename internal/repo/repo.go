package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ananta12-d/lifeos/internal/models"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

// Repo is the persistence gateway. Soft-deleted tasks and habits are
// filtered out of every query here; callers never see inactive records.
type Repo struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// users

func (r *Repo) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	var u models.User
	err := r.Pool.QueryRow(ctx, `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3)
		RETURNING id, name, email, password_hash, role, created_at`,
		name, email, passwordHash).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.User{}, ErrEmailTaken
	}
	return u, err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.Pool.QueryRow(ctx, `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email=$1`,
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *Repo) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	err := r.Pool.QueryRow(ctx, `SELECT id, name, email, password_hash, role, created_at FROM users WHERE id=$1`,
		userID).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *Repo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, name, email, password_hash, role, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// sessions

func (r *Repo) CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)`, userID, token, expiresAt)
	return err
}

func (r *Repo) GetSession(ctx context.Context, token string) (models.Session, error) {
	var s models.Session
	err := r.Pool.QueryRow(ctx, `SELECT id, user_id, token, expires_at, revoked, created_at FROM sessions
		WHERE token=$1 AND NOT revoked`, token).Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.Revoked, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, ErrNotFound
	}
	return s, err
}

func (r *Repo) RevokeSession(ctx context.Context, token string) error {
	_, err := r.Pool.Exec(ctx, `UPDATE sessions SET revoked=true WHERE token=$1`, token)
	return err
}

// tasks

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at`

func (r *Repo) CreateTask(ctx context.Context, userID, title, description, priority string, dueDate *time.Time) (models.Task, error) {
	var t models.Task
	err := r.Pool.QueryRow(ctx, `INSERT INTO tasks (user_id, title, description, priority, due_date)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+taskColumns,
		userID, title, description, priority, dueDate).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt)
	return t, err
}

func (r *Repo) ListTasks(ctx context.Context, userID string, page, limit int) ([]models.Task, int, error) {
	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE user_id=$1 AND deleted_at IS NULL`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE user_id=$1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id OFFSET $2 LIMIT $3`, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	tasks, err := scanTasks(rows)
	return tasks, total, err
}

func (r *Repo) ListActiveTasks(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE user_id=$1 AND deleted_at IS NULL ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTasks(rows pgx.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *Repo) UpdateTaskTitle(ctx context.Context, id, userID, title string) (models.Task, error) {
	var t models.Task
	err := r.Pool.QueryRow(ctx, `UPDATE tasks SET title=$1
		WHERE id=$2 AND user_id=$3 AND deleted_at IS NULL RETURNING `+taskColumns,
		title, id, userID).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

// ToggleTask flips a task between pending and completed.
func (r *Repo) ToggleTask(ctx context.Context, id, userID string) (models.Task, error) {
	var t models.Task
	err := r.Pool.QueryRow(ctx, `UPDATE tasks
		SET status = CASE WHEN status='completed' THEN 'pending' ELSE 'completed' END
		WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL RETURNING `+taskColumns,
		id, userID).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

func (r *Repo) SoftDeleteTask(ctx context.Context, id, userID string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE tasks SET deleted_at=now() WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// habits

const habitColumns = `id, user_id, name, target_type, created_at`

func (r *Repo) CreateHabit(ctx context.Context, userID, name, targetType string) (models.Habit, error) {
	var h models.Habit
	err := r.Pool.QueryRow(ctx, `INSERT INTO habits (user_id, name, target_type) VALUES ($1, $2, $3)
		RETURNING `+habitColumns, userID, name, targetType).
		Scan(&h.ID, &h.UserID, &h.Name, &h.TargetType, &h.CreatedAt)
	return h, err
}

func (r *Repo) ListHabits(ctx context.Context, userID string, page, limit int) ([]models.Habit, int, error) {
	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM habits WHERE user_id=$1 AND deleted_at IS NULL`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+habitColumns+` FROM habits
		WHERE user_id=$1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id OFFSET $2 LIMIT $3`, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	habits, err := scanHabits(rows)
	return habits, total, err
}

// ListActiveHabits returns every non-deleted habit for a user, oldest first.
// The order is stable (created_at, id) so streak tie-breaks downstream are
// deterministic.
func (r *Repo) ListActiveHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+habitColumns+` FROM habits
		WHERE user_id=$1 AND deleted_at IS NULL ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHabits(rows)
}

func scanHabits(rows pgx.Rows) ([]models.Habit, error) {
	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.TargetType, &h.CreatedAt); err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (r *Repo) GetActiveHabit(ctx context.Context, id, userID string) (models.Habit, error) {
	var h models.Habit
	err := r.Pool.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits
		WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID).
		Scan(&h.ID, &h.UserID, &h.Name, &h.TargetType, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Habit{}, ErrNotFound
	}
	return h, err
}

func (r *Repo) RenameHabit(ctx context.Context, id, userID, name string) (models.Habit, error) {
	var h models.Habit
	err := r.Pool.QueryRow(ctx, `UPDATE habits SET name=$1
		WHERE id=$2 AND user_id=$3 AND deleted_at IS NULL RETURNING `+habitColumns,
		name, id, userID).
		Scan(&h.ID, &h.UserID, &h.Name, &h.TargetType, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Habit{}, ErrNotFound
	}
	return h, err
}

func (r *Repo) SoftDeleteHabit(ctx context.Context, id, userID string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE habits SET deleted_at=now() WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// habit logs

// UpsertHabitLog records a check-in for one calendar date. Logging a date
// twice updates the existing row, so (habit, date) stays unique without a
// constraint-violation path.
func (r *Repo) UpsertHabitLog(ctx context.Context, habitID string, logDate time.Time, completed bool) (models.HabitLog, error) {
	var l models.HabitLog
	err := r.Pool.QueryRow(ctx, `INSERT INTO habit_logs (habit_id, log_date, completed) VALUES ($1, $2, $3)
		ON CONFLICT (habit_id, log_date) DO UPDATE SET completed=EXCLUDED.completed
		RETURNING id, habit_id, log_date, completed`,
		habitID, logDate, completed).Scan(&l.ID, &l.HabitID, &l.LogDate, &l.Completed)
	return l, err
}

// ListCompletedLogs returns a habit's completed check-ins, newest date first.
func (r *Repo) ListCompletedLogs(ctx context.Context, habitID string) ([]models.HabitLog, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, habit_id, log_date, completed FROM habit_logs
		WHERE habit_id=$1 AND completed ORDER BY log_date DESC`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []models.HabitLog
	for rows.Next() {
		var l models.HabitLog
		if err := rows.Scan(&l.ID, &l.HabitID, &l.LogDate, &l.Completed); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// CountCompletedLogsInRange counts completed check-ins across all of a
// user's active habits with log_date in [start, end].
func (r *Repo) CountCompletedLogsInRange(ctx context.Context, userID string, start, end time.Time) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM habit_logs l
		JOIN habits h ON h.id = l.habit_id
		WHERE h.user_id=$1 AND h.deleted_at IS NULL AND l.completed
		AND l.log_date >= $2 AND l.log_date <= $3`, userID, start, end).Scan(&count)
	return count, err
}

// weekly reports

const reportColumns = `id, user_id, week_start, week_end, report, score, created_at`

// FindReport returns the report for (user, weekStart), or nil if none exists.
func (r *Repo) FindReport(ctx context.Context, userID string, weekStart time.Time) (*models.WeeklyReport, error) {
	var rep models.WeeklyReport
	err := r.Pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM weekly_reports
		WHERE user_id=$1 AND week_start=$2`, userID, weekStart).
		Scan(&rep.ID, &rep.UserID, &rep.WeekStart, &rep.WeekEnd, &rep.Report, &rep.Score, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *Repo) LatestReport(ctx context.Context, userID string) (models.WeeklyReport, error) {
	var rep models.WeeklyReport
	err := r.Pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM weekly_reports
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT 1`, userID).
		Scan(&rep.ID, &rep.UserID, &rep.WeekStart, &rep.WeekEnd, &rep.Report, &rep.Score, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.WeeklyReport{}, ErrNotFound
	}
	return rep, err
}

// UpsertReport saves a report, overwriting text and score in place when a
// row for (user, week_start) already exists. The report's ID and CreatedAt
// reflect the stored row after the call.
func (r *Repo) UpsertReport(ctx context.Context, rep *models.WeeklyReport) error {
	return r.Pool.QueryRow(ctx, `INSERT INTO weekly_reports (user_id, week_start, week_end, report, score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, week_start) DO UPDATE SET report=EXCLUDED.report, score=EXCLUDED.score
		RETURNING id, created_at`,
		rep.UserID, rep.WeekStart, rep.WeekEnd, rep.Report, rep.Score).Scan(&rep.ID, &rep.CreatedAt)
}
