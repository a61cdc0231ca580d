package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/muse/internal/database"
	"github.com/hugh/muse/internal/jobs"
	"github.com/hugh/muse/internal/mailer"
	"github.com/hugh/muse/pkg/config"
	"github.com/hugh/muse/pkg/crypto"
	"github.com/hugh/muse/pkg/queue"
	"github.com/hugh/muse/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting muse worker")

	db, err := database.Connect(&cfg.Database, cfg.Server.Debug, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.Encryption.Key == "" {
		logger.Warn("ENCRYPTION_KEY not set, invite emails are sent by the server instead of queued")
	}
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		logger.Error("failed to create encryptor", "error", err)
		os.Exit(1)
	}

	mail, err := mailer.New(&cfg.Mail, logger)
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}

	if err := util.ValidateCronExpr(cfg.Reminders.CronExpr); err != nil {
		logger.Error("invalid REMINDERS_CRON", "expr", cfg.Reminders.CronExpr, "error", err)
		os.Exit(1)
	}

	srv := queue.NewServer(&cfg.Redis, 10)

	handler := jobs.NewHandler(db, logger, mail, encryptor, cfg.Server.FrontendURL)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	scheduler := queue.NewScheduler(&cfg.Redis)
	entryID, err := scheduler.Register(cfg.Reminders.CronExpr, jobs.NewTaskRemindersTask())
	if err != nil {
		logger.Error("failed to register reminder schedule", "error", err)
		os.Exit(1)
	}
	logger.Info("registered reminder schedule", "entry_id", entryID, "cron", cfg.Reminders.CronExpr)

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(mux); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	logger.Info("worker started, waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	scheduler.Shutdown()
	srv.Shutdown()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
