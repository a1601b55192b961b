package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	DatabaseURL   string
	JWTSecret     string
	Port          string
	CORSOrigin    string
	MigrationsDir string
	Debug         bool

	// Weekly report schedule. Defaults to Monday 08:00.
	ReportWeekday time.Weekday
	ReportHour    int
	ReportMinute  int
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

func Load(logger *zap.Logger) Config {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	cfg := Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Port:          os.Getenv("PORT"),
		CORSOrigin:    os.Getenv("CORS_ORIGIN"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
		Debug:         os.Getenv("DEBUG") == "true",
		ReportWeekday: time.Monday,
		ReportHour:    8,
		ReportMinute:  0,
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("required environment variable is not set", zap.String("key", "JWT_SECRET"))
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("required environment variable is not set", zap.String("key", "DATABASE_URL"))
	}

	if v := strings.ToLower(os.Getenv("REPORT_WEEKDAY")); v != "" {
		wd, ok := weekdays[v]
		if !ok {
			logger.Fatal("invalid REPORT_WEEKDAY", zap.String("value", v))
		}
		cfg.ReportWeekday = wd
	}
	cfg.ReportHour = intEnv("REPORT_HOUR", cfg.ReportHour, 23, logger)
	cfg.ReportMinute = intEnv("REPORT_MINUTE", cfg.ReportMinute, 59, logger)

	return cfg
}

func intEnv(key string, def, max int, logger *zap.Logger) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > max {
		logger.Fatal("invalid integer environment variable", zap.String("key", key), zap.String("value", v))
	}
	return n
}
