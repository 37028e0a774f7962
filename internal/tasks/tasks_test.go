package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/niches-hunter-api/internal/domain/account"
	"github.com/makkenzo/niches-hunter-api/internal/storage/memstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	to, subject, body string
	err               error
}

func (s *recordingSender) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	s.to, s.subject, s.body = to, subject, htmlBody
	return s.err
}

func TestEmailSendHandler_Delivers(t *testing.T) {
	sender := &recordingSender{}
	h := NewEmailSendHandler(sender, zap.NewNop())

	task, err := NewEmailTask(EmailPayload{To: "a@b.c", Subject: "hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))

	assert.Equal(t, "a@b.c", sender.to)
	assert.Equal(t, "hi", sender.subject)
	assert.Equal(t, "<p>x</p>", sender.body)
}

func TestEmailSendHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := NewEmailSendHandler(&recordingSender{}, zap.NewNop())
	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeEmailSend, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestEmailSendHandler_PropagatesSendError(t *testing.T) {
	h := NewEmailSendHandler(&recordingSender{err: errors.New("smtp down")}, zap.NewNop())
	payload, _ := json.Marshal(EmailPayload{To: "a@b.c"})
	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeEmailSend, payload))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestResetTokenCleanupHandler_DeletesExpired(t *testing.T) {
	repo := memstorage.NewAccountRepository()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := repo.AddAccount("cleanup@example.com", "password123").ID

	require.NoError(t, repo.CreateResetToken(ctx, &account.PasswordResetToken{TokenHash: "old", UserID: userID, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.CreateResetToken(ctx, &account.PasswordResetToken{TokenHash: "fresh", UserID: userID, ExpiresAt: now.Add(time.Hour)}))

	h := NewResetTokenCleanupHandler(repo, zap.NewNop())
	h.now = func() time.Time { return now }

	task, err := NewResetTokenCleanupTask()
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(ctx, task))

	_, err = repo.ResetPassword(ctx, "old", "hash", now)
	assert.ErrorIs(t, err, account.ErrResetTokenInvalid)
	got, err := repo.ResetPassword(ctx, "fresh", "hash", now)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
