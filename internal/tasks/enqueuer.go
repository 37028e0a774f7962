package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// EmailEnqueuer hands outgoing mail to the background worker.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, p EmailPayload) error
}

type AsynqEnqueuer struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewAsynqEnqueuer(client *asynq.Client, logger *zap.Logger) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client: client,
		logger: logger.Named("TaskEnqueuer"),
	}
}

var _ EmailEnqueuer = (*AsynqEnqueuer)(nil)

func (e *AsynqEnqueuer) EnqueueEmail(ctx context.Context, p EmailPayload) error {
	task, err := NewEmailTask(p)
	if err != nil {
		return fmt.Errorf("build email task: %w", err)
	}
	info, err := e.client.EnqueueContext(ctx, task, asynq.Queue("default"))
	if err != nil {
		e.logger.Error("Failed to enqueue email", zap.String("subject", p.Subject), zap.Error(err))
		return fmt.Errorf("enqueue email: %w", err)
	}
	e.logger.Debug("Email enqueued", zap.String("task_id", info.ID), zap.String("queue", info.Queue))
	return nil
}
