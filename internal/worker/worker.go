package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/makkenzo/niches-hunter-api/internal/email"
	"github.com/makkenzo/niches-hunter-api/internal/tasks"
	"go.uber.org/zap"
)

// Deps are the collaborators task handlers need.
type Deps struct {
	Accounts account.Repository
	Sender   email.Sender
}

func RedisConnOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewServeMux routes every task type to its handler.
func NewServeMux(deps Deps, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()

	emailHandler := tasks.NewEmailSendHandler(deps.Sender, logger)
	mux.HandleFunc(tasks.TypeEmailSend, emailHandler.ProcessTask)

	cleanupHandler := tasks.NewResetTokenCleanupHandler(deps.Accounts, logger)
	mux.HandleFunc(tasks.TypeResetTokenCleanup, cleanupHandler.ProcessTask)

	return mux
}

func RunWorkers(cfg *config.Config, deps Deps, logger *zap.Logger) (<-chan error, func(context.Context)) {
	errChan := make(chan error, 2)

	redisConnOpts := RedisConnOpt(&cfg.Redis)

	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		redisConnOpts,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 6,
				"low":     1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log := logger.Named("AsynqServerErrorHandler")
				log.Error("Asynq task processing failed",
					zap.String("task_type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err),
				)

			}),
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqServer")),
		},
	)

	mux := NewServeMux(deps, logger)

	go func() {
		logger.Info("Starting Asynq Server...")
		if err := srv.Run(mux); err != nil {
			logger.Error("Asynq Server run failed", zap.Error(err))
			errChan <- fmt.Errorf("asynq server error: %w", err)
		}
		logger.Info("Asynq Server stopped.")
	}()

	scheduler := asynq.NewScheduler(
		redisConnOpts,
		&asynq.SchedulerOpts{
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqScheduler")),
		},
	)

	schedule := cfg.Worker.CleanupSchedule
	if schedule == "" {
		schedule = "@every 1h"
	}

	cleanupTask, err := tasks.NewResetTokenCleanupTask()
	if err != nil {
		logger.Error("Failed to create reset token cleanup task for scheduler", zap.Error(err))
		errChan <- fmt.Errorf("scheduler task creation error: %w", err)
	} else {
		entryID, err := scheduler.Register(schedule, cleanupTask)
		if err != nil {
			logger.Error("Could not register periodic reset token cleanup", zap.Error(err))
			errChan <- fmt.Errorf("scheduler registration error: %w", err)
		} else {
			logger.Info("Registered periodic reset token cleanup", zap.String("entry_id", entryID), zap.String("schedule", schedule))
		}
	}

	go func() {
		logger.Info("Starting Asynq Scheduler...")
		if err := scheduler.Run(); err != nil {
			logger.Error("Asynq Scheduler run failed", zap.Error(err))
			errChan <- fmt.Errorf("asynq scheduler error: %w", err)
		}
		logger.Info("Asynq Scheduler stopped.")
	}()

	shutdownFunc := func(ctx context.Context) {
		logger.Info("Shutting down Asynq Scheduler...")
		scheduler.Shutdown()
		logger.Info("Asynq Scheduler stopped.")

		logger.Info("Shutting down Asynq Server...")
		srv.Shutdown()
		logger.Info("Asynq Server stopped.")
	}

	return errChan, shutdownFunc
}

type asynqLoggerAdapter struct {
	logger *zap.Logger
}

func NewAsynqLoggerAdapter(logger *zap.Logger) *asynqLoggerAdapter {
	return &asynqLoggerAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *asynqLoggerAdapter) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
