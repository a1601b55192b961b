package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ananta12-d/lifeos/internal/auth"
	"github.com/ananta12-d/lifeos/internal/insights"
	"github.com/ananta12-d/lifeos/internal/models"
	"github.com/ananta12-d/lifeos/internal/repo"
	"github.com/ananta12-d/lifeos/internal/service"
)

// FlexDate accepts YYYY-MM-DD from date inputs as well as RFC3339
// timestamps; only the calendar date is kept.
type FlexDate struct {
	time.Time
}

func (fd *FlexDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		fd.Time = t
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		fd.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	}
	return errors.New("invalid date format")
}

func (fd *FlexDate) ToTimePtr() *time.Time {
	if fd == nil || fd.Time.IsZero() {
		return nil
	}
	t := fd.Time
	return &t
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type taskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	DueDate     *FlexDate `json:"due_date"`
}

type habitRequest struct {
	Name       string `json:"name"`
	TargetType string `json:"target_type"`
}

type habitLogRequest struct {
	Date      *FlexDate `json:"date"`
	Completed bool      `json:"completed"`
}

type pageMeta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type taskListResponse struct {
	Items []models.Task `json:"items"`
	pageMeta
}

type habitListResponse struct {
	Items []models.HabitStatus `json:"items"`
	pageMeta
}

type reportGeneratedResponse struct {
	Message string `json:"message"`
	Score   int    `json:"score"`
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func meta(total, page, limit int) pageMeta {
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return pageMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page*limit < total,
		HasPrev:    page > 1,
	}
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "online"})
}

// auth

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password required")
		return
	}
	user, err := a.Service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		return
	}
	a.Log.Info("user registered", zap.String("user_id", user.ID))
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	accessToken, refreshToken, err := a.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: accessToken, RefreshToken: refreshToken, TokenType: "bearer"})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	accessToken, refreshToken, err := a.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrSessionExpired) {
			writeError(w, http.StatusUnauthorized, "SESSION_EXPIRED", "Refresh token expired, please log in again")
			return
		}
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired refresh token")
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: accessToken, RefreshToken: refreshToken, TokenType: "bearer"})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Service.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Logout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "New password required")
		return
	}
	if err := a.Service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Current password is incorrect")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Password change failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	user, err := a.Repo.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// tasks

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	page, limit := pageParams(r)
	tasks, total, err := a.Repo.ListTasks(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, taskListResponse{Items: tasks, pageMeta: meta(total, page, limit)})
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Title required")
		return
	}
	priority := req.Priority
	switch priority {
	case "":
		priority = "medium"
	case "high", "medium", "low":
	default:
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Priority must be high, medium or low")
		return
	}
	task, err := a.Repo.CreateTask(r.Context(), userID, req.Title, req.Description, priority, req.DueDate.ToTimePtr())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Title required")
		return
	}
	task, err := a.Repo.UpdateTaskTitle(r.Context(), chi.URLParam(r, "id"), userID, req.Title)
	if err != nil {
		respondRepoErr(w, err, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (a *API) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	task, err := a.Repo.ToggleTask(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondRepoErr(w, err, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := a.Repo.SoftDeleteTask(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondRepoErr(w, err, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}

// habits

func (a *API) handleListHabits(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	page, limit := pageParams(r)
	habits, total, err := a.Repo.ListHabits(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list habits")
		return
	}
	today := time.Now()
	items := make([]models.HabitStatus, 0, len(habits))
	for _, h := range habits {
		logs, err := a.Repo.ListCompletedLogs(r.Context(), h.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list habits")
			return
		}
		streak, loggedToday := insights.Streak(logs, today)
		items = append(items, models.HabitStatus{Habit: h, CurrentStreak: streak, IsLoggedToday: loggedToday})
	}
	writeJSON(w, http.StatusOK, habitListResponse{Items: items, pageMeta: meta(total, page, limit)})
}

func (a *API) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req habitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name required")
		return
	}
	if req.TargetType == "" {
		req.TargetType = "daily"
	}
	habit, err := a.Repo.CreateHabit(r.Context(), userID, req.Name, req.TargetType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create habit")
		return
	}
	writeJSON(w, http.StatusCreated, models.HabitStatus{Habit: habit})
}

func (a *API) handleRenameHabit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req habitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name required")
		return
	}
	habit, err := a.Repo.RenameHabit(r.Context(), chi.URLParam(r, "id"), userID, req.Name)
	if err != nil {
		respondRepoErr(w, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, models.HabitStatus{Habit: habit})
}

func (a *API) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := a.Repo.SoftDeleteHabit(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondRepoErr(w, err, "Habit not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Habit deleted"})
}

func (a *API) handleLogHabit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req habitLogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	logDate := time.Now()
	if d := req.Date.ToTimePtr(); d != nil {
		logDate = *d
	}
	habit, err := a.Repo.GetActiveHabit(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondRepoErr(w, err, "Habit not found")
		return
	}
	log, err := a.Repo.UpsertHabitLog(r.Context(), habit.ID, logDate, req.Completed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log habit")
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

// dashboard & reports

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	dashboard, err := a.Engine.Dashboard(r.Context(), userID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build dashboard")
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (a *API) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	report, err := a.Repo.LatestReport(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "No report yet — check back after Monday!")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := a.Repo.GetUserByID(r.Context(), userID)
	if err != nil {
		respondRepoErr(w, err, "User not found")
		return
	}
	report, err := a.Engine.GenerateWeeklyReport(r.Context(), user, time.Now())
	if err != nil {
		a.Log.Error("on-demand report failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Report generation failed")
		return
	}
	writeJSON(w, http.StatusOK, reportGeneratedResponse{Message: "Report generated!", Score: report.Score})
}

func respondRepoErr(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", notFoundMsg)
		return
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
}
