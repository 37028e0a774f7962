package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"go.uber.org/zap"
)

type ResetTokenCleanupHandler struct {
	repo   account.Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewResetTokenCleanupHandler(repo account.Repository, logger *zap.Logger) *ResetTokenCleanupHandler {
	return &ResetTokenCleanupHandler{
		repo:   repo,
		now:    time.Now,
		logger: logger.Named("ResetTokenCleanupHandler"),
	}
}

func (h *ResetTokenCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeResetTokenCleanup {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	deleted, err := h.repo.DeleteExpiredResetTokens(ctx, h.now().UTC())
	if err != nil {
		h.logger.Error("Failed to delete expired reset tokens", zap.Error(err))
		return fmt.Errorf("repository error deleting reset tokens: %w", err)
	}

	h.logger.Info("Reset token cleanup finished", zap.Int64("deleted", deleted))
	return nil
}
