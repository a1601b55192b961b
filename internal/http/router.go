package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ananta12-d/lifeos/internal/auth"
	"github.com/ananta12-d/lifeos/internal/insights"
	"github.com/ananta12-d/lifeos/internal/repo"
	"github.com/ananta12-d/lifeos/internal/service"
)

type API struct {
	Repo    *repo.Repo
	Service *service.Service
	Engine  *insights.Engine
	Auth    *auth.Manager
	Log     *zap.Logger
	Origins []string
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(a.logMiddleware)
	r.Use(a.corsMiddleware)

	r.Get("/health", a.handleHealth)

	// Same limits the original deployment used: 3 registrations and
	// 5 login attempts per minute per IP.
	registerLimit := newIPLimiter(rate.Every(time.Minute/3), 3)
	loginLimit := newIPLimiter(rate.Every(time.Minute/5), 5)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(registerLimit.Middleware).Post("/register", a.handleRegister)
			r.With(loginLimit.Middleware).Post("/login", a.handleLogin)
			r.Post("/refresh", a.handleRefresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.authMiddleware)
			r.Post("/auth/logout", a.handleLogout)
			r.Post("/auth/change-password", a.handleChangePassword)
			r.Get("/me", a.handleMe)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", a.handleListTasks)
				r.Post("/", a.handleCreateTask)
				r.Put("/{id}", a.handleUpdateTask)
				r.Put("/{id}/complete", a.handleToggleTask)
				r.Delete("/{id}", a.handleDeleteTask)
			})
			r.Route("/habits", func(r chi.Router) {
				r.Get("/", a.handleListHabits)
				r.Post("/", a.handleCreateHabit)
				r.Put("/{id}", a.handleRenameHabit)
				r.Delete("/{id}", a.handleDeleteHabit)
				r.Post("/{id}/logs", a.handleLogHabit)
			})
			r.Get("/dashboard", a.handleDashboard)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/latest", a.handleLatestReport)
				r.Post("/generate", a.handleGenerateReport)
			})
		})
	})

	return r
}
