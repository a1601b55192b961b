package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ananta12-d/lifeos/internal/auth"
	"github.com/ananta12-d/lifeos/internal/config"
	"github.com/ananta12-d/lifeos/internal/db"
	api "github.com/ananta12-d/lifeos/internal/http"
	"github.com/ananta12-d/lifeos/internal/insights"
	"github.com/ananta12-d/lifeos/internal/repo"
	"github.com/ananta12-d/lifeos/internal/scheduler"
	"github.com/ananta12-d/lifeos/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	cfg := config.Load(logger)
	if cfg.Debug {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	authManager := auth.NewManager(cfg.JWTSecret)
	repository := repo.New(pool)
	svc := service.New(repository, authManager)
	engine := insights.New(repository, logger.Named("insights"))

	sched := scheduler.New(scheduler.Trigger{
		Weekday: cfg.ReportWeekday,
		Hour:    cfg.ReportHour,
		Minute:  cfg.ReportMinute,
	}, engine, logger.Named("scheduler"))
	sched.Start()

	handler := &api.API{
		Repo:    repository,
		Service: svc,
		Engine:  engine,
		Auth:    authManager,
		Log:     logger.Named("http"),
		Origins: splitOrigins(cfg.CORSOrigin),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	sched.Stop()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

func splitOrigins(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
