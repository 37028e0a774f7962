package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/niches-hunter-api/internal/email"
	"go.uber.org/zap"
)

type EmailSendHandler struct {
	sender email.Sender
	logger *zap.Logger
}

func NewEmailSendHandler(sender email.Sender, logger *zap.Logger) *EmailSendHandler {
	return &EmailSendHandler{
		sender: sender,
		logger: logger.Named("EmailSendHandler"),
	}
}

func (h *EmailSendHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeEmailSend {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	var p EmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.logger.Error("Failed to unmarshal email payload", zap.Error(err), zap.ByteString("payload", t.Payload()))
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.To == "" {
		return fmt.Errorf("email payload without recipient: %w", asynq.SkipRetry)
	}

	if err := h.sender.SendMail(ctx, p.To, p.Subject, p.HTML); err != nil {
		h.logger.Warn("Email delivery failed", zap.String("subject", p.Subject), zap.Error(err))
		return err
	}

	h.logger.Info("Email delivered", zap.String("subject", p.Subject))
	return nil
}
