package worker

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/makkenzo/niches-hunter-api/internal/storage/memstorage"
	"github.com/makkenzo/niches-hunter-api/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSender struct{ sent int }

func (s *countingSender) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	s.sent++
	return nil
}

func TestNewServeMux_RoutesKnownTasks(t *testing.T) {
	sender := &countingSender{}
	mux := NewServeMux(Deps{Accounts: memstorage.NewAccountRepository(), Sender: sender}, zap.NewNop())
	ctx := context.Background()

	emailTask, err := tasks.NewEmailTask(tasks.EmailPayload{To: "a@b.c", Subject: "s", HTML: "h"})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(ctx, emailTask))
	assert.Equal(t, 1, sender.sent)

	cleanupTask, err := tasks.NewResetTokenCleanupTask()
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(ctx, cleanupTask))

	assert.Error(t, mux.ProcessTask(ctx, asynq.NewTask("unknown:type", nil)))
}

func TestRedisConnOpt(t *testing.T) {
	opt := RedisConnOpt(&config.RedisConfig{Addr: "localhost:6379", Password: "pw", DB: 2})
	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
}
