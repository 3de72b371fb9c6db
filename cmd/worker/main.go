package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/arkive-ai/arkive-backend/internal/config"
	"github.com/arkive-ai/arkive-backend/internal/database"
	"github.com/arkive-ai/arkive-backend/internal/ingest"
	"github.com/arkive-ai/arkive-backend/internal/queue"
	"github.com/arkive-ai/arkive-backend/internal/queue/workers"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	retentionWorker := workers.NewRetentionWorker(
		vectorstore.NewPgVectorStore(db),
		ingest.NewPgDocumentStore(db),
		cfg.Retention.Window,
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeRetentionSweep, retentionWorker.ProcessTask)

	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register(
		"@every "+cfg.Retention.SweepInterval.String(),
		asynq.NewTask(queue.TypeRetentionSweep, nil),
	); err != nil {
		slog.Error("failed to register retention schedule", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Shutdown()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 1,
		},
	})

	slog.Info("starting worker", "sweep_interval", cfg.Retention.SweepInterval.String())
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
